package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame represents a complete protocol frame
type Frame struct {
	Header  *Header
	Payload []byte
}

// NewFrame creates a new frame
func NewFrame(msgType uint16, sign int64, payload []byte) *Frame {
	return &Frame{
		Header: &Header{
			Magic:    ProtocolMagic,
			Version:  ProtocolVersion,
			Type:     msgType,
			Length:   uint32(len(payload)),
			Flags:    0,
			Sign:     sign,
			Reserved: 0,
		},
		Payload: payload,
	}
}

// Sign returns the correlation sign carried in the header
func (f *Frame) Sign() int64 {
	return f.Header.Sign
}

// Type returns the message type carried in the header
func (f *Frame) Type() uint16 {
	return f.Header.Type
}

// SetPayload replaces the payload and keeps Header.Length in step
func (f *Frame) SetPayload(payload []byte) {
	f.Payload = payload
	f.Header.Length = uint32(len(payload))
}

// Encode encodes header and payload into one buffer
func (f *Frame) Encode() []byte {
	f.Header.Length = uint32(len(f.Payload))
	buf := make([]byte, 0, HeaderSize+len(f.Payload))
	buf = append(buf, f.Header.Encode()...)
	buf = append(buf, f.Payload...)
	return buf
}

// ReadFrame reads one frame (header and payload) from r
func ReadFrame(r io.Reader) (*Frame, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, header.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	return &Frame{Header: header, Payload: payload}, nil
}

// ===== RESULT =====

// Result is the server's generic acknowledgement body.
// The sign lives in the frame header.
type Result struct {
	Code  int64  // 0 = success
	Msg   string // Human-readable error text
	Extra []byte // Type-specific fields
}

// Encode encodes result to bytes. A message longer than MaxFieldLen is cut
// to MaxFieldLen bytes.
func (r *Result) Encode() []byte {
	msg := []byte(r.Msg)
	if len(msg) > MaxFieldLen {
		msg = msg[:MaxFieldLen]
	}
	buf := make([]byte, 8+2+len(msg)+len(r.Extra))
	offset := 0

	binary.BigEndian.PutUint64(buf[offset:], uint64(r.Code))
	offset += 8

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(msg)))
	offset += 2

	copy(buf[offset:], msg)
	offset += len(msg)

	copy(buf[offset:], r.Extra)

	return buf
}

// Decode decodes result from bytes
func (r *Result) Decode(buf []byte) error {
	if len(buf) < 10 {
		return fmt.Errorf("buffer too short for result")
	}

	offset := 0

	r.Code = int64(binary.BigEndian.Uint64(buf[offset:]))
	offset += 8

	msgLen := int(binary.BigEndian.Uint16(buf[offset:]))
	offset += 2

	if len(buf) < offset+msgLen {
		return fmt.Errorf("buffer too short for result message")
	}
	r.Msg = string(buf[offset : offset+msgLen])
	offset += msgLen

	r.Extra = make([]byte, len(buf)-offset)
	copy(r.Extra, buf[offset:])

	return nil
}

// NewResultFrame builds a result frame answering sign
func NewResultFrame(sign int64, result *Result) *Frame {
	return NewFrame(MsgTypeResult, sign, result.Encode())
}

// ===== SIGN IN =====

// SignInRequest is the sign-in request body
type SignInRequest struct {
	Token  string
	Device string
}

// Encode encodes sign-in request to bytes
func (s *SignInRequest) Encode() ([]byte, error) {
	token := []byte(s.Token)
	device := []byte(s.Device)
	if len(token) > MaxFieldLen {
		return nil, fmt.Errorf("%w: token is %d bytes", ErrFieldTooLong, len(token))
	}
	if len(device) > MaxFieldLen {
		return nil, fmt.Errorf("%w: device is %d bytes", ErrFieldTooLong, len(device))
	}
	buf := make([]byte, 2+len(token)+2+len(device))
	offset := 0

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(token)))
	offset += 2

	copy(buf[offset:], token)
	offset += len(token)

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(device)))
	offset += 2

	copy(buf[offset:], device)

	return buf, nil
}

// Decode decodes sign-in request from bytes
func (s *SignInRequest) Decode(buf []byte) error {
	if len(buf) < 2 {
		return fmt.Errorf("buffer too short for sign-in request")
	}

	offset := 0

	tokenLen := int(binary.BigEndian.Uint16(buf[offset:]))
	offset += 2

	if len(buf) < offset+tokenLen+2 {
		return fmt.Errorf("buffer too short for sign-in token")
	}
	s.Token = string(buf[offset : offset+tokenLen])
	offset += tokenLen

	deviceLen := int(binary.BigEndian.Uint16(buf[offset:]))
	offset += 2

	if len(buf) < offset+deviceLen {
		return fmt.Errorf("buffer too short for sign-in device")
	}
	s.Device = string(buf[offset : offset+deviceLen])

	return nil
}

// EncodeUserID encodes the sign-in result extra (uid)
func EncodeUserID(uid int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(uid))
	return buf
}

// DecodeUserID decodes the sign-in result extra (uid)
func DecodeUserID(extra []byte) (int64, error) {
	if len(extra) < 8 {
		return 0, fmt.Errorf("buffer too short for user id")
	}
	return int64(binary.BigEndian.Uint64(extra)), nil
}
