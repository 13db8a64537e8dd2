// Package session holds the immutable login session and the slot that marks
// which session is current.
package session

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/multiformats/go-multiaddr"

	"github.com/ZentaChain/zentalk-session/pkg/crypto"
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

var (
	ErrInvalidToken   = errors.New("invalid session token")
	ErrInvalidAddress = errors.New("invalid server address")
	ErrInvalidKey     = errors.New("invalid session aes key")
)

// Session is one login: credential, server endpoint and optional payload key.
// It is never mutated; a new login produces a new Session.
type Session struct {
	token  string
	host   string
	port   uint16
	aesKey string
}

// New creates a session. address is host:port, [v6]:port or a multiaddr such
// as /dns4/im.example.com/tcp/9000. aesKey may be empty.
func New(token, address, aesKey string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	if len(token) > protocol.MaxFieldLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidToken, len(token))
	}

	host, port, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	if aesKey != "" && !crypto.ValidKeyLength(len(aesKey)) {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidKey, len(aesKey))
	}

	return &Session{
		token:  token,
		host:   host,
		port:   port,
		aesKey: aesKey,
	}, nil
}

// ParseAddress splits a server address into host and port
func ParseAddress(address string) (string, uint16, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", 0, ErrInvalidAddress
	}

	var hostStr, portStr string
	if strings.HasPrefix(address, "/") {
		var err error
		hostStr, portStr, err = parseMultiaddr(address)
		if err != nil {
			return "", 0, err
		}
	} else {
		var err error
		hostStr, portStr, err = net.SplitHostPort(address)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
	}

	if strings.TrimSpace(hostStr) == "" {
		return "", 0, fmt.Errorf("%w: empty host", ErrInvalidAddress)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("%w: port %q", ErrInvalidAddress, portStr)
	}

	return hostStr, uint16(port), nil
}

func parseMultiaddr(address string) (string, string, error) {
	maddr, err := multiaddr.NewMultiaddr(address)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	var host string
	for _, code := range []int{multiaddr.P_IP4, multiaddr.P_IP6, multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6} {
		if v, err := maddr.ValueForProtocol(code); err == nil {
			host = v
			break
		}
	}
	if host == "" {
		return "", "", fmt.Errorf("%w: no host component in %s", ErrInvalidAddress, address)
	}

	port, err := maddr.ValueForProtocol(multiaddr.P_TCP)
	if err != nil {
		return "", "", fmt.Errorf("%w: no tcp component in %s", ErrInvalidAddress, address)
	}

	return host, port, nil
}

// Token returns the credential issued by the login service
func (s *Session) Token() string { return s.token }

// Host returns the server host
func (s *Session) Host() string { return s.host }

// Port returns the server port
func (s *Session) Port() uint16 { return s.port }

// AESKey returns the payload key, empty when the session has none
func (s *Session) AESKey() string { return s.aesKey }

// HasKey reports whether payloads for this session are encrypted
func (s *Session) HasKey() bool { return s.aesKey != "" }

// Address returns host:port suitable for net.Dial
func (s *Session) Address() string {
	return net.JoinHostPort(s.host, strconv.Itoa(int(s.port)))
}

// Fingerprint identifies the token in logs without revealing it
func (s *Session) Fingerprint() string {
	return crypto.Fingerprint(s.token)
}

func (s *Session) String() string {
	return fmt.Sprintf("session[%s@%s]", s.Fingerprint(), s.Address())
}
