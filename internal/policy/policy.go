// Package policy implements the gateway's per-frame decision table: a
// message-id whitelist, command-code dispatch for the two navigation
// message types, and a geofence check that may rewrite an out-of-fence
// target to the deployment's home position.
package policy

import (
	"math"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"

	"SerialFilter/internal/geofence"
	"SerialFilter/internal/mavlink"
)

// Action is the policy engine's disposition for one frame.
type Action int

const (
	// Drop discards the frame; nothing is written downstream.
	Drop Action = iota
	// Forward passes the frame through unmodified.
	Forward
	// ForwardRewritten passes the frame through after the policy engine
	// mutated its payload (currently: redirect-to-home).
	ForwardRewritten
)

// Verdict is the outcome of Evaluate: an Action plus, for ForwardRewritten,
// the frame to serialize in place of the original.
type Verdict struct {
	Action Action
	Frame  *mavlink.Frame
}

// Coordinate is a navigation target decoded from a command payload.
// Altitude never participates in the fence test (spec: "informational").
type Coordinate struct {
	Latitude  float64
	Longitude float64
	Altitude  float32
}

// message ids this gateway recognizes; mirrors internal/mavlink's table but
// is redeclared here because the dispatch in Evaluate is keyed on it and the
// ids are part of the policy contract, not an implementation detail of the
// codec.
const (
	idHeartbeat        = 0
	idPing             = 4
	idParamRequestRead = 20
	idCommandInt       = 75
	idCommandLong      = 76
)

// Evaluate dispatches on f.MsgID per the whitelist and returns a Verdict.
// Unknown ids are denied by default — this is the whitelist discipline that
// gives the gateway its security value.
func Evaluate(f *mavlink.Frame) Verdict {
	switch f.MsgID {
	case idHeartbeat, idPing, idParamRequestRead:
		return Verdict{Action: Forward}
	case idCommandLong:
		return evaluateCommandLong(f)
	case idCommandInt:
		return evaluateCommandInt(f)
	default:
		return Verdict{Action: Drop}
	}
}

func evaluateCommandLong(f *mavlink.Frame) Verdict {
	cmd := mavlink.DecodeCommandLong(f)
	switch common.MAV_CMD(cmd.Command) {
	case common.MAV_CMD_NAV_LAND, common.MAV_CMD_NAV_TAKEOFF:
		coord := Coordinate{
			Latitude:  float64(cmd.Param5),
			Longitude: float64(cmd.Param6),
			Altitude:  cmd.Param7,
		}
		return applyGeofence(f, coord, func(rewritten Coordinate) *mavlink.Frame {
			cmd.Param5 = float32(rewritten.Latitude)
			cmd.Param6 = float32(rewritten.Longitude)
			cmd.Param7 = rewritten.Altitude
			return reencodeCommandLong(f, cmd)
		})
	case common.MAV_CMD_DO_SET_MODE, common.MAV_CMD_COMPONENT_ARM_DISARM,
		common.MAV_CMD_SET_MESSAGE_INTERVAL, common.MAV_CMD_REQUEST_MESSAGE:
		return Verdict{Action: Forward}
	default:
		return Verdict{Action: Drop}
	}
}

func evaluateCommandInt(f *mavlink.Frame) Verdict {
	cmd := mavlink.DecodeCommandInt(f)
	coord := Coordinate{
		Latitude:  float64(cmd.X) * 1e-7,
		Longitude: float64(cmd.Y) * 1e-7,
		// NOTE: z is taken as-is. Production MAVLink COMMAND_INT carries
		// altitude in millimeters in a GLOBAL frame; this mixes mm and m
		// with the rest of the system's meter-denominated altitudes. Kept
		// faithfully per spec's open question — altitude never enters the
		// fence test so this has no safety consequence today.
		Altitude: cmd.Z,
	}
	return applyGeofence(f, coord, func(rewritten Coordinate) *mavlink.Frame {
		cmd.X = int32(rewritten.Latitude * 1e7)
		cmd.Y = int32(rewritten.Longitude * 1e7)
		cmd.Z = rewritten.Altitude
		return reencodeCommandInt(f, cmd)
	})
}

// applyGeofence implements §4.3.3: NaN coordinates drop, in-fence forwards
// unmodified, out-of-fence rewrites via rewrite (which the caller supplies
// because the payload shape differs between COMMAND_LONG and COMMAND_INT).
func applyGeofence(f *mavlink.Frame, coord Coordinate, rewrite func(Coordinate) *mavlink.Frame) Verdict {
	if math.IsNaN(coord.Latitude) || math.IsNaN(coord.Longitude) {
		return Verdict{Action: Drop}
	}
	point := geofence.Point{X: coord.Latitude, Y: coord.Longitude}
	if geofence.Inside(point, Fence) {
		return Verdict{Action: Forward}
	}
	rewritten := rewrite(Home)
	return Verdict{Action: ForwardRewritten, Frame: rewritten}
}

func reencodeCommandLong(f *mavlink.Frame, cmd mavlink.CommandLong) *mavlink.Frame {
	return &mavlink.Frame{
		MsgID:    f.MsgID,
		Sequence: f.Sequence,
		SystemID: f.SystemID,
		CompID:   f.CompID,
		Payload:  mavlink.EncodeCommandLong(cmd),
	}
}

func reencodeCommandInt(f *mavlink.Frame, cmd mavlink.CommandInt) *mavlink.Frame {
	return &mavlink.Frame{
		MsgID:    f.MsgID,
		Sequence: f.Sequence,
		SystemID: f.SystemID,
		CompID:   f.CompID,
		Payload:  mavlink.EncodeCommandInt(cmd),
	}
}
