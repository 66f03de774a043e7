package mavlink

// stx is the MAVLink v1 start-of-frame marker. A v2 frame (stx2) is
// recognized only so it can be rejected cleanly; this gateway's wire
// protocol is fixed at v1 per the deployment (spec.md §6).
const (
	stx  = 0xfe
	stx2 = 0xfd
)

// Frame is a complete, checksum-validated MAVLink v1 frame as emitted by
// ParserState.ParseByte. It is an independent value — a Filter call that
// sees several frames gets a distinct *Frame per frame, never a shared
// scratch struct (see SPEC_FULL.md §12, "Parser-message aliasing").
type Frame struct {
	MsgID    uint32
	Sequence byte
	SystemID byte
	CompID   byte
	Payload  []byte
	Checksum uint16
}

// Encode serializes f back into MAVLink v1 wire bytes: STX, LEN, SEQ, SYS,
// COMP, MSGID, payload, CRC (little-endian). Returns nil if f's MsgID has
// no known CRC_EXTRA (defensive — every Frame this package ever hands back
// to a caller was itself decoded from a known message ID).
func (f *Frame) Encode() []byte {
	length := byte(len(f.Payload))
	crc, ok := checksum(length, f.Sequence, f.SystemID, f.CompID, f.MsgID, f.Payload)
	if !ok {
		return nil
	}
	out := make([]byte, 0, 8+len(f.Payload))
	out = append(out, stx, length, f.Sequence, f.SystemID, f.CompID, byte(f.MsgID))
	out = append(out, f.Payload...)
	out = append(out, byte(crc), byte(crc>>8))
	return out
}

// parseState is the parser's position within one frame, following the
// STX/len/seq/sys/comp/msgid/payload/crc progression spec.md §3 names.
type parseState int

const (
	stateIdle parseState = iota
	stateLength
	stateSeq
	stateSysID
	stateCompID
	stateMsgID
	statePayload
	stateCRCLow
	stateCRCHigh
)

// ParserState is one channel's MAVLink v1 stream-reassembly state. The
// zero value is ready to use. A ParserState must not be shared across
// directions (spec.md §3): the filter pipeline uses exactly one, for the
// VM-to-PX4 direction only.
type ParserState struct {
	state   parseState
	length  byte
	seq     byte
	sysID   byte
	compID  byte
	msgID   uint32
	payload []byte
	crcLow  byte

	// FramingErrors counts framing errors: one per MAVLink v2 start byte
	// seen while idle, and one per complete frame whose checksum does not
	// match or whose message ID has no known CRC_EXTRA. Other stray bytes
	// are skipped without being counted. Diagnostic only — see SPEC_FULL.md §7.
	FramingErrors uint64
}

// ParseByte feeds one byte of the incoming stream into the parser. It
// returns (frame, true) exactly when this byte completed a valid,
// checksum-verified frame; otherwise (nil, false). Partial frame state is
// retained internally across calls — this is the stream-reassembly
// property spec.md §8 (property 5) requires.
func (p *ParserState) ParseByte(b byte) (*Frame, bool) {
	switch p.state {
	case stateIdle:
		switch b {
		case stx:
			p.state = stateLength
		case stx2:
			p.FramingErrors++
		}
		return nil, false

	case stateLength:
		p.length = b
		p.payload = make([]byte, 0, p.length)
		p.state = stateSeq
		return nil, false

	case stateSeq:
		p.seq = b
		p.state = stateSysID
		return nil, false

	case stateSysID:
		p.sysID = b
		p.state = stateCompID
		return nil, false

	case stateCompID:
		p.compID = b
		p.state = stateMsgID
		return nil, false

	case stateMsgID:
		p.msgID = uint32(b)
		p.state = statePayload
		if p.length == 0 {
			p.state = stateCRCLow
		}
		return nil, false

	case statePayload:
		p.payload = append(p.payload, b)
		if len(p.payload) >= int(p.length) {
			p.state = stateCRCLow
		}
		return nil, false

	case stateCRCLow:
		p.crcLow = b
		p.state = stateCRCHigh
		return nil, false

	case stateCRCHigh:
		got := uint16(p.crcLow) | uint16(b)<<8
		want, known := checksum(p.length, p.seq, p.sysID, p.compID, p.msgID, p.payload)

		var frame *Frame
		ok := known && got == want
		if ok {
			frame = &Frame{
				MsgID:    p.msgID,
				Sequence: p.seq,
				SystemID: p.sysID,
				CompID:   p.compID,
				Payload:  append([]byte(nil), p.payload...),
				Checksum: got,
			}
		} else {
			p.FramingErrors++
		}
		p.reset()
		return frame, ok
	}

	return nil, false
}

func (p *ParserState) reset() {
	p.state = stateIdle
	p.length = 0
	p.seq = 0
	p.sysID = 0
	p.compID = 0
	p.msgID = 0
	p.payload = nil
	p.crcLow = 0
}
