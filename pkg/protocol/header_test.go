package protocol

import (
	"bytes"
	"testing"
)

func TestHeaderEncodeDecode(t *testing.T) {
	sign := NextSign()

	tests := []struct {
		name   string
		header *Header
	}{
		{
			name: "sign in header",
			header: &Header{
				Magic:    ProtocolMagic,
				Version:  ProtocolVersion,
				Type:     MsgTypeSignIn,
				Length:   64,
				Flags:    0,
				Sign:     sign,
				Reserved: 0,
			},
		},
		{
			name: "encrypted result header",
			header: &Header{
				Magic:    ProtocolMagic,
				Version:  ProtocolVersion,
				Type:     MsgTypeResult,
				Length:   2048,
				Flags:    FlagEncrypted,
				Sign:     sign,
				Reserved: 0,
			},
		},
		{
			name: "ping header with zero length",
			header: &Header{
				Magic:    ProtocolMagic,
				Version:  ProtocolVersion,
				Type:     MsgTypePing,
				Length:   0,
				Flags:    0,
				Sign:     sign,
				Reserved: 0,
			},
		},
		{
			name: "negative sign survives",
			header: &Header{
				Magic:    ProtocolMagic,
				Version:  ProtocolVersion,
				Type:     MsgTypeBusinessMin,
				Length:   1,
				Flags:    0,
				Sign:     -42,
				Reserved: 7,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Encode
			encoded := tt.header.Encode()

			// Verify encoded size
			if len(encoded) != HeaderSize {
				t.Errorf("Encode() length = %d, want %d", len(encoded), HeaderSize)
			}

			// Decode
			decoded := &Header{}
			err := decoded.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			if *decoded != *tt.header {
				t.Errorf("Decode() = %+v, want %+v", decoded, tt.header)
			}
		})
	}
}

func TestHeaderDecodeTooShort(t *testing.T) {
	shortBuf := make([]byte, HeaderSize-1)

	header := &Header{}
	err := header.Decode(shortBuf)
	if err != ErrInvalidHeader {
		t.Errorf("Decode() error = %v, want %v", err, ErrInvalidHeader)
	}
}

func TestHeaderValidate(t *testing.T) {
	tests := []struct {
		name    string
		header  *Header
		wantErr error
	}{
		{
			name: "valid header",
			header: &Header{
				Magic:   ProtocolMagic,
				Version: ProtocolVersion,
			},
			wantErr: nil,
		},
		{
			name: "invalid magic",
			header: &Header{
				Magic:   0x12345678,
				Version: ProtocolVersion,
			},
			wantErr: ErrInvalidMagic,
		},
		{
			name: "invalid version",
			header: &Header{
				Magic:   ProtocolMagic,
				Version: 0x9999,
			},
			wantErr: ErrInvalidVersion,
		},
		{
			name: "payload too big",
			header: &Header{
				Magic:   ProtocolMagic,
				Version: ProtocolVersion,
				Length:  MaxPayloadSize + 1,
			},
			wantErr: ErrPayloadTooBig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHeaderFlags(t *testing.T) {
	header := &Header{}

	header.SetFlag(FlagEncrypted)
	if !header.HasFlag(FlagEncrypted) {
		t.Error("HasFlag(FlagEncrypted) = false after SetFlag, want true")
	}

	header.ClearFlag(FlagEncrypted)
	if header.HasFlag(FlagEncrypted) {
		t.Error("HasFlag(FlagEncrypted) = true after ClearFlag, want false")
	}
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	h := &Header{Magic: 0xDEADBEEF, Version: ProtocolVersion}

	_, err := ReadHeader(bytes.NewReader(h.Encode()))
	if err != ErrInvalidMagic {
		t.Errorf("ReadHeader() error = %v, want %v", err, ErrInvalidMagic)
	}
}

func TestReadHeaderFromStream(t *testing.T) {
	h := &Header{
		Magic:   ProtocolMagic,
		Version: ProtocolVersion,
		Type:    MsgTypeSignOut,
		Sign:    99,
	}

	// Header followed by unrelated bytes; only the header is consumed
	r := bytes.NewReader(append(h.Encode(), 0xAA, 0xBB))

	got, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if got.Type != MsgTypeSignOut || got.Sign != 99 {
		t.Errorf("ReadHeader() = %+v, want type %x sign 99", got, MsgTypeSignOut)
	}
	if r.Len() != 2 {
		t.Errorf("ReadHeader() left %d bytes, want 2", r.Len())
	}
}
