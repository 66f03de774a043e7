package mavlink

// Message IDs this gateway recognizes. Unlisted IDs are policy-dropped
// before ever reaching a decoder (see internal/policy).
const (
	idHeartbeat        uint32 = 0
	idPing             uint32 = 4
	idParamRequestRead uint32 = 20
	idCommandInt       uint32 = 75
	idCommandLong      uint32 = 76
)

// payloadLen gives the fixed MAVLink v1 payload length for each known
// message ID, matching the wire layout of the common dialect's generated
// C structs (fields packed largest-type-first, not declaration order).
var payloadLen = map[uint32]int{
	idHeartbeat:        9,
	idPing:             14,
	idParamRequestRead: 20,
	idCommandInt:       35,
	idCommandLong:      33,
}

// CommandLong is the decoded payload of a COMMAND_LONG (id 76) message.
// Field order mirrors gomavlib's pkg/dialects/common.MessageCommandLong.
type CommandLong struct {
	Param1          float32
	Param2          float32
	Param3          float32
	Param4          float32
	Param5          float32
	Param6          float32
	Param7          float32
	Command         uint16
	TargetSystem    uint8
	TargetComponent uint8
	Confirmation    uint8
}

// DecodeCommandLong decodes a COMMAND_LONG payload. Caller must ensure
// f.MsgID == idCommandLong and len(f.Payload) == payloadLen[idCommandLong].
func DecodeCommandLong(f *Frame) CommandLong {
	p := f.Payload
	return CommandLong{
		Param1:          decodeFloat32(p[0:4]),
		Param2:          decodeFloat32(p[4:8]),
		Param3:          decodeFloat32(p[8:12]),
		Param4:          decodeFloat32(p[12:16]),
		Param5:          decodeFloat32(p[16:20]),
		Param6:          decodeFloat32(p[20:24]),
		Param7:          decodeFloat32(p[24:28]),
		Command:         decodeUint16(p[28:30]),
		TargetSystem:    p[30],
		TargetComponent: p[31],
		Confirmation:    p[32],
	}
}

// EncodeCommandLong serializes a CommandLong back into v1 wire order.
func EncodeCommandLong(c CommandLong) []byte {
	out := make([]byte, payloadLen[idCommandLong])
	encodeFloat32(out[0:4], c.Param1)
	encodeFloat32(out[4:8], c.Param2)
	encodeFloat32(out[8:12], c.Param3)
	encodeFloat32(out[12:16], c.Param4)
	encodeFloat32(out[16:20], c.Param5)
	encodeFloat32(out[20:24], c.Param6)
	encodeFloat32(out[24:28], c.Param7)
	encodeUint16(out[28:30], c.Command)
	out[30] = c.TargetSystem
	out[31] = c.TargetComponent
	out[32] = c.Confirmation
	return out
}

// CommandInt is the decoded payload of a COMMAND_INT (id 75) message.
// Latitude/longitude/altitude are NOT pre-converted here — X and Y are
// still the raw 1e7-scaled fixed-point integers; see policy's
// evaluateCommandInt for the conversion, matching spec.md §4.3.2.
type CommandInt struct {
	Param1          float32
	Param2          float32
	Param3          float32
	Param4          float32
	X               int32
	Y               int32
	Z               float32
	Command         uint16
	TargetSystem    uint8
	TargetComponent uint8
	Frame           uint8
	Current         uint8
	Autocontinue    uint8
}

// DecodeCommandInt decodes a COMMAND_INT payload. Caller must ensure
// f.MsgID == idCommandInt and len(f.Payload) == payloadLen[idCommandInt].
func DecodeCommandInt(f *Frame) CommandInt {
	p := f.Payload
	return CommandInt{
		Param1:          decodeFloat32(p[0:4]),
		Param2:          decodeFloat32(p[4:8]),
		Param3:          decodeFloat32(p[8:12]),
		Param4:          decodeFloat32(p[12:16]),
		X:               int32(decodeUint32(p[16:20])),
		Y:               int32(decodeUint32(p[20:24])),
		Z:               decodeFloat32(p[24:28]),
		Command:         decodeUint16(p[28:30]),
		TargetSystem:    p[30],
		TargetComponent: p[31],
		Frame:           p[32],
		Current:         p[33],
		Autocontinue:    p[34],
	}
}

// EncodeCommandInt serializes a CommandInt back into v1 wire order.
func EncodeCommandInt(c CommandInt) []byte {
	out := make([]byte, payloadLen[idCommandInt])
	encodeFloat32(out[0:4], c.Param1)
	encodeFloat32(out[4:8], c.Param2)
	encodeFloat32(out[8:12], c.Param3)
	encodeFloat32(out[12:16], c.Param4)
	encodeUint32(out[16:20], uint32(c.X))
	encodeUint32(out[20:24], uint32(c.Y))
	encodeFloat32(out[24:28], c.Z)
	encodeUint16(out[28:30], c.Command)
	out[30] = c.TargetSystem
	out[31] = c.TargetComponent
	out[32] = c.Frame
	out[33] = c.Current
	out[34] = c.Autocontinue
	return out
}
