// Package filter drives the MAVLink parser over a byte span, asks the
// policy engine for a verdict on each completed frame, and serializes
// approved (or rewritten) frames into an output span. It is the PX4-bound
// half of the relay's data path; the VM-bound half is pass-through.
package filter

import (
	"strconv"

	"SerialFilter/internal/mavlink"
	"SerialFilter/internal/policy"
	"SerialFilter/internal/telemetry"
)

// Pipeline wraps one ParserState and is the unit of stream-reassembly
// state: partial frames spanning two Run calls are retained here, not in
// either caller's buffer.
type Pipeline struct {
	parser  mavlink.ParserState
	metrics *telemetry.Metrics
}

// New returns a ready-to-use Pipeline that records verdict counts on m.
func New(m *telemetry.Metrics) *Pipeline {
	return &Pipeline{metrics: m}
}

// Run feeds in through the parser, evaluates every completed frame, and
// appends the serialized bytes of every Forward/ForwardRewritten verdict to
// out. It returns out with the new bytes appended — callers that want a
// fixed-capacity scratch buffer should pass out[:0] of sufficient capacity.
//
// Guarantees: frame order is preserved; a Drop verdict contributes zero
// bytes; a trailing partial frame in `in` is retained in p's parser state
// and completes on a subsequent call (property 5, stream reassembly).
func (p *Pipeline) Run(in []byte, out []byte) []byte {
	before := p.parser.FramingErrors
	for _, b := range in {
		frame, ok := p.parser.ParseByte(b)
		if !ok {
			continue
		}
		verdict := policy.Evaluate(frame)
		msgid := strconv.FormatUint(uint64(frame.MsgID), 10)
		switch verdict.Action {
		case policy.Forward:
			out = append(out, frame.Encode()...)
			p.metrics.FramesForwarded.WithLabelValues(msgid).Inc()
		case policy.ForwardRewritten:
			out = append(out, verdict.Frame.Encode()...)
			p.metrics.FramesRewritten.WithLabelValues(msgid).Inc()
		case policy.Drop:
			p.metrics.FramesDropped.WithLabelValues(msgid).Inc()
			telemetry.Debug("filter: dropped frame msgid=%s", msgid)
		}
	}
	if delta := p.parser.FramingErrors - before; delta > 0 {
		p.metrics.FramingErrors.Add(float64(delta))
	}
	return out
}

// FramingErrors reports the cumulative count of framing errors: rejected
// frames plus MAVLink v2 start bytes (diagnostic only, see SPEC_FULL.md §7).
func (p *Pipeline) FramingErrors() uint64 {
	return p.parser.FramingErrors
}
