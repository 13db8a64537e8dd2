package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	ErrInvalidMagic   = errors.New("invalid protocol magic")
	ErrInvalidVersion = errors.New("unsupported protocol version")
	ErrInvalidHeader  = errors.New("invalid header")
	ErrPayloadTooBig  = errors.New("payload exceeds maximum size")
	ErrFieldTooLong   = errors.New("field exceeds length prefix")
)

// Header represents the protocol frame header
type Header struct {
	Magic    uint32 // Magic number (0x5A54494D)
	Version  uint16 // Protocol version
	Type     uint16 // Message type
	Length   uint32 // Payload length
	Flags    uint16 // Feature flags
	Sign     int64  // Correlation sign
	Reserved uint16 // Reserved for future use
}

// Encode encodes the header to bytes
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)

	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], h.Version)
	binary.BigEndian.PutUint16(buf[6:8], h.Type)
	binary.BigEndian.PutUint32(buf[8:12], h.Length)
	binary.BigEndian.PutUint16(buf[12:14], h.Flags)
	binary.BigEndian.PutUint64(buf[14:22], uint64(h.Sign))
	binary.BigEndian.PutUint16(buf[22:24], h.Reserved)

	return buf
}

// Decode decodes the header from bytes
func (h *Header) Decode(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrInvalidHeader
	}

	h.Magic = binary.BigEndian.Uint32(buf[0:4])
	h.Version = binary.BigEndian.Uint16(buf[4:6])
	h.Type = binary.BigEndian.Uint16(buf[6:8])
	h.Length = binary.BigEndian.Uint32(buf[8:12])
	h.Flags = binary.BigEndian.Uint16(buf[12:14])
	h.Sign = int64(binary.BigEndian.Uint64(buf[14:22]))
	h.Reserved = binary.BigEndian.Uint16(buf[22:24])

	return nil
}

// Validate validates the header
func (h *Header) Validate() error {
	if h.Magic != ProtocolMagic {
		return ErrInvalidMagic
	}

	if h.Version != ProtocolVersion {
		return ErrInvalidVersion
	}

	if h.Length > MaxPayloadSize {
		return ErrPayloadTooBig
	}

	return nil
}

// HasFlag checks if a flag is set
func (h *Header) HasFlag(flag uint16) bool {
	return (h.Flags & flag) != 0
}

// SetFlag sets a flag
func (h *Header) SetFlag(flag uint16) {
	h.Flags |= flag
}

// ClearFlag clears a flag
func (h *Header) ClearFlag(flag uint16) {
	h.Flags &^= flag
}

// ReadHeader reads a header from an io.Reader
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	header := &Header{}
	if err := header.Decode(buf); err != nil {
		return nil, err
	}

	if err := header.Validate(); err != nil {
		return nil, err
	}

	return header, nil
}
