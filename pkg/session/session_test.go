package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		address  string
		aesKey   string
		wantHost string
		wantPort uint16
		wantErr  error
	}{
		{"host port", "tok", "im.example.com:9000", "", "im.example.com", 9000, nil},
		{"ipv6", "tok", "[::1]:7000", "", "::1", 7000, nil},
		{"with aes-128 key", "tok", "127.0.0.1:1", "0123456789abcdef", "127.0.0.1", 1, nil},
		{"multiaddr ip4", "tok", "/ip4/10.0.0.2/tcp/9100", "", "10.0.0.2", 9100, nil},
		{"multiaddr dns4", "tok", "/dns4/im.example.com/tcp/443", "", "im.example.com", 443, nil},
		{"blank token", "   ", "host:1", "", "", 0, ErrInvalidToken},
		{"token too long", strings.Repeat("t", 70000), "host:1", "", "", 0, ErrInvalidToken},
		{"missing port", "tok", "host", "", "", 0, ErrInvalidAddress},
		{"port zero", "tok", "host:0", "", "", 0, ErrInvalidAddress},
		{"port overflow", "tok", "host:65536", "", "", 0, ErrInvalidAddress},
		{"empty host", "tok", ":9000", "", "", 0, ErrInvalidAddress},
		{"multiaddr without tcp", "tok", "/ip4/10.0.0.2/udp/9100", "", "", 0, ErrInvalidAddress},
		{"bad key length", "tok", "host:1", "short", "", 0, ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.token, tt.address, tt.aesKey)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "error = %v, want %v", err, tt.wantErr)
				assert.Nil(t, s)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, s.Host())
			assert.Equal(t, tt.wantPort, s.Port())
			assert.Equal(t, tt.aesKey != "", s.HasKey())
		})
	}
}

func TestSessionStringHidesToken(t *testing.T) {
	s, err := New("super-secret-token", "127.0.0.1:9000", "")
	require.NoError(t, err)

	assert.False(t, strings.Contains(s.String(), "super-secret-token"))
	assert.Contains(t, s.String(), s.Fingerprint())
	assert.Equal(t, "127.0.0.1:9000", s.Address())
}

func TestHolder(t *testing.T) {
	h := NewHolder()
	a, _ := New("a", "host:1", "")
	b, _ := New("b", "host:1", "")

	assert.False(t, h.IsValid(a))

	h.Set(a)
	assert.True(t, h.IsValid(a))
	assert.False(t, h.IsValid(b))
	assert.Same(t, a, h.Current())

	// A stale session cannot clear its replacement
	h.Set(b)
	assert.False(t, h.ClearIf(a))
	assert.True(t, h.IsValid(b))

	assert.True(t, h.ClearIf(b))
	assert.Nil(t, h.Current())
	assert.False(t, h.IsValid(nil))
}

func TestHolderChangeListener(t *testing.T) {
	h := NewHolder()
	a, _ := New("a", "host:1", "")

	var events [][2]*Session
	l := NewChangeListener(func(prev, next *Session) {
		events = append(events, [2]*Session{prev, next})
	})
	h.Changes().Register(l)

	h.Set(a)
	h.Set(a)
	h.Clear()
	h.Clear()

	require.Len(t, events, 2)
	assert.Equal(t, [2]*Session{nil, a}, events[0])
	assert.Equal(t, [2]*Session{a, nil}, events[1])
}
