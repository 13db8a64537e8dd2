// Package transport moves protocol frames over a single persistent link.
package transport

import (
	"context"
	"errors"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

var (
	ErrNotConnected = errors.New("transport not connected")
	ErrInvalidState = errors.New("transport cannot connect from current state")
)

// State of the underlying link
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Listener receives transport events. Calls come from transport goroutines.
type Listener interface {
	OnStateChanged(state State)
	OnFrame(frame *protocol.Frame)
	OnWriteIdle()
}

// Transport is one connection to the IM server. A transport is single use:
// once closed it cannot be reconnected.
type Transport interface {
	Connect(ctx context.Context, host string, port uint16) error
	Send(data []byte) error
	Disconnect()
	State() State
}

// Factory builds a transport that reports to l
type Factory func(l Listener) Transport
