package protocol

import "encoding/binary"

// Header is the fixed 20-byte prefix of every datagram this module sends
// or receives: protocol magic, an id carrying the top-nibble flag bits,
// the sender's own sequence number, the highest remote sequence it has
// seen (ack), and the 32-bit selective-ack bitfield for the 32 sequences
// preceding ack.
type Header struct {
	Magic       uint32
	ID          uint32
	Flags       uint32
	Sequence    uint32
	Ack         uint32
	AckBitfield uint32
}

// Encode writes h into a new HeaderSize-byte big-endian buffer.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint32(buf[4:8], (h.ID&idMask)|h.Flags)
	binary.BigEndian.PutUint32(buf[8:12], h.Sequence)
	binary.BigEndian.PutUint32(buf[12:16], h.Ack)
	binary.BigEndian.PutUint32(buf[16:20], h.AckBitfield)
	return buf
}

// DecodeHeader parses the first HeaderSize bytes of buf. It returns
// ErrInvalidHeader if buf is too short or its magic doesn't match want.
func DecodeHeader(buf []byte, want uint32) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrInvalidHeader
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != want {
		return Header{}, ErrInvalidHeader
	}
	idFlags := binary.BigEndian.Uint32(buf[4:8])
	return Header{
		Magic:       magic,
		ID:          idFlags & idMask,
		Flags:       idFlags &^ idMask,
		Sequence:    binary.BigEndian.Uint32(buf[8:12]),
		Ack:         binary.BigEndian.Uint32(buf[12:16]),
		AckBitfield: binary.BigEndian.Uint32(buf[16:20]),
	}, nil
}

func (h Header) HasFlag(flag uint32) bool {
	return h.Flags&flag != 0
}
