package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"SerialFilter/internal/filter"
	"SerialFilter/internal/mavlink"
	"SerialFilter/internal/telemetry"
)

func heartbeat(seq byte) *mavlink.Frame {
	return &mavlink.Frame{
		MsgID:    0,
		Sequence: seq,
		SystemID: 1,
		CompID:   1,
		Payload:  make([]byte, 9),
	}
}

func commandLong(seq byte, command uint16, p5, p6, p7 float32) *mavlink.Frame {
	return &mavlink.Frame{
		MsgID:    76,
		Sequence: seq,
		SystemID: 1,
		CompID:   1,
		Payload: mavlink.EncodeCommandLong(mavlink.CommandLong{
			Param5: p5, Param6: p6, Param7: p7, Command: command,
		}),
	}
}

// TestRun_WhitelistCompleteness is property 1: unknown msgids contribute
// zero output bytes.
func TestRun_WhitelistCompleteness(t *testing.T) {
	// Hand-build the wire bytes directly since Encode refuses unknown ids.
	wire := []byte{0xfe, 4, 0, 1, 1, 0x0f, 1, 2, 3, 4, 0x00, 0x00}

	p := filter.New(telemetry.New())
	out := p.Run(wire, nil)
	require.Empty(t, out)
}

// TestRun_TransparentForward is property 2.
func TestRun_TransparentForward(t *testing.T) {
	h := heartbeat(5)
	wire := h.Encode()
	require.NotNil(t, wire)

	p := filter.New(telemetry.New())
	out := p.Run(wire, nil)
	require.Equal(t, wire, out)
}

func TestRun_S3_UnknownCommandDropped(t *testing.T) {
	f := commandLong(1, 999, 0, 0, 0)
	wire := f.Encode()
	require.NotNil(t, wire)

	p := filter.New(telemetry.New())
	out := p.Run(wire, nil)
	require.Empty(t, out)
}

// TestRun_StreamReassembly is property 5.
func TestRun_StreamReassembly(t *testing.T) {
	f := heartbeat(11)
	wire := f.Encode()
	mid := len(wire) / 2

	whole := filter.New(telemetry.New()).Run(wire, nil)

	split := filter.New(telemetry.New())
	var out []byte
	out = split.Run(wire[:mid], out)
	out = split.Run(wire[mid:], out)

	require.Equal(t, whole, out)
}

// TestRun_S6_SplitHeartbeat mirrors spec.md S6 exactly: first call yields
// empty output, second call yields the serialized frame.
func TestRun_S6_SplitHeartbeat(t *testing.T) {
	wire := heartbeat(3).Encode()
	mid := len(wire) / 2

	p := filter.New(telemetry.New())
	out1 := p.Run(wire[:mid], nil)
	require.Empty(t, out1)

	out2 := p.Run(wire[mid:], nil)
	require.Equal(t, wire, out2)
}

// TestRun_OrderPreservation is property 6.
func TestRun_OrderPreservation(t *testing.T) {
	f1 := heartbeat(1)
	f2 := heartbeat(2)
	f3 := heartbeat(3)

	var in []byte
	in = append(in, f1.Encode()...)
	in = append(in, f2.Encode()...)
	in = append(in, f3.Encode()...)

	p := filter.New(telemetry.New())
	out := p.Run(in, nil)
	require.Equal(t, in, out)
}

func TestRun_NaNCoordinateDropped(t *testing.T) {
	f := commandLong(1, 22, float32(nanVal()), 11.6525, 0)
	wire := f.Encode()
	require.NotNil(t, wire)

	p := filter.New(telemetry.New())
	out := p.Run(wire, nil)
	require.Empty(t, out)
}

func nanVal() float64 {
	var zero float64
	return zero / zero
}

func TestRun_OutOfFenceRewrite(t *testing.T) {
	f := commandLong(1, 21, 48.2557, 11.5865, 0)
	wire := f.Encode()
	require.NotNil(t, wire)

	p := filter.New(telemetry.New())
	out := p.Run(wire, nil)
	require.NotEmpty(t, out)
	require.NotEqual(t, wire, out)

	var parser mavlink.ParserState
	var got *mavlink.Frame
	for _, b := range out {
		if fr, ok := parser.ParseByte(b); ok {
			got = fr
		}
	}
	require.NotNil(t, got)
	decoded := mavlink.DecodeCommandLong(got)
	require.InDelta(t, 48.05502700126609, float64(decoded.Param5), 1e-6)
}
