package policy_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"SerialFilter/internal/mavlink"
	"SerialFilter/internal/policy"
)

func commandLongFrame(command uint16, p5, p6, p7 float32) *mavlink.Frame {
	payload := mavlink.EncodeCommandLong(mavlink.CommandLong{
		Param5: p5, Param6: p6, Param7: p7, Command: command,
	})
	return &mavlink.Frame{MsgID: 76, Payload: payload}
}

func commandIntFrame(x, y int32, z float32) *mavlink.Frame {
	payload := mavlink.EncodeCommandInt(mavlink.CommandInt{X: x, Y: y, Z: z})
	return &mavlink.Frame{MsgID: 75, Payload: payload}
}

func TestEvaluate_S1_InFenceLanding(t *testing.T) {
	f := commandLongFrame(21, 48.0550, 11.6525, 0)
	v := policy.Evaluate(f)
	require.Equal(t, policy.Forward, v.Action)
}

func TestEvaluate_S2_OutOfFenceLanding(t *testing.T) {
	f := commandLongFrame(21, 48.2557, 11.5865, 0)
	v := policy.Evaluate(f)
	require.Equal(t, policy.ForwardRewritten, v.Action)
	require.NotNil(t, v.Frame)

	got := mavlink.DecodeCommandLong(v.Frame)
	require.InDelta(t, 48.05502700126609, float64(got.Param5), 1e-6)
	require.InDelta(t, 11.652206077452211, float64(got.Param6), 1e-6)
}

func TestEvaluate_S3_UnknownCommand(t *testing.T) {
	f := commandLongFrame(999, 0, 0, 0)
	v := policy.Evaluate(f)
	require.Equal(t, policy.Drop, v.Action)
}

func TestEvaluate_S4_CommandIntFixedPoint(t *testing.T) {
	f := commandIntFrame(480552968, 116523968, 0)
	v := policy.Evaluate(f)
	require.Equal(t, policy.Forward, v.Action)
}

func TestEvaluate_S5_NaNDropped(t *testing.T) {
	f := commandLongFrame(22, float32(math.NaN()), 11.6525, 0)
	v := policy.Evaluate(f)
	require.Equal(t, policy.Drop, v.Action)
}

func TestEvaluate_UnknownMsgID_Dropped(t *testing.T) {
	f := &mavlink.Frame{MsgID: 9999, Payload: []byte{1, 2, 3}}
	v := policy.Evaluate(f)
	require.Equal(t, policy.Drop, v.Action)
}

func TestEvaluate_WhitelistedIDs_Forward(t *testing.T) {
	for _, id := range []uint32{0, 4, 20} {
		f := &mavlink.Frame{MsgID: id}
		v := policy.Evaluate(f)
		require.Equal(t, policy.Forward, v.Action, "msgid %d", id)
	}
}

func TestEvaluate_CommandLongForwardableCommands(t *testing.T) {
	for _, cmd := range []uint16{176, 400, 511, 512} {
		f := commandLongFrame(cmd, 0, 0, 0)
		v := policy.Evaluate(f)
		require.Equal(t, policy.Forward, v.Action, "command %d", cmd)
	}
}

func TestEvaluate_GeofenceIdempotence(t *testing.T) {
	// Property 3: applying the filter twice to an out-of-fence frame
	// yields the same HOME-targeted frame on the second pass.
	f := commandLongFrame(21, 48.2557, 11.5865, 0)
	v1 := policy.Evaluate(f)
	require.Equal(t, policy.ForwardRewritten, v1.Action)

	v2 := policy.Evaluate(v1.Frame)
	require.Equal(t, policy.Forward, v2.Action, "a HOME-targeted frame is already inside the fence")
}
