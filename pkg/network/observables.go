package network

import (
	"github.com/ZentaChain/zentalk-session/pkg/observable"
	"github.com/ZentaChain/zentalk-session/pkg/packet"
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

// ConnectionStateListener observes a client's transport state
type ConnectionStateListener struct {
	fn func(c *Client, state transport.State)
}

// NewConnectionStateListener wraps fn
func NewConnectionStateListener(fn func(c *Client, state transport.State)) *ConnectionStateListener {
	return &ConnectionStateListener{fn: fn}
}

// PacketStateListener observes the sign-in or sign-out packet of a client
type PacketStateListener struct {
	fn func(c *Client, p *packet.Packet, state packet.State)
}

// NewPacketStateListener wraps fn
func NewPacketStateListener(fn func(c *Client, p *packet.Packet, state packet.State)) *PacketStateListener {
	return &PacketStateListener{fn: fn}
}

// ClientEventListener observes a one-shot client event (kicked, token expired)
type ClientEventListener struct {
	fn func(c *Client)
}

// NewClientEventListener wraps fn
func NewClientEventListener(fn func(c *Client)) *ClientEventListener {
	return &ClientEventListener{fn: fn}
}

// Observables are the registries shared by every client in the process.
// Listeners are held weakly; callers keep their own reference.
type Observables struct {
	ConnectionState *observable.Registry[ConnectionStateListener]
	SignInState     *observable.Registry[PacketStateListener]
	SignOutState    *observable.Registry[PacketStateListener]
	Kicked          *observable.Registry[ClientEventListener]
	TokenExpired    *observable.Registry[ClientEventListener]
}

// NewObservables creates empty registries
func NewObservables() *Observables {
	return &Observables{
		ConnectionState: observable.NewRegistry[ConnectionStateListener](),
		SignInState:     observable.NewRegistry[PacketStateListener](),
		SignOutState:    observable.NewRegistry[PacketStateListener](),
		Kicked:          observable.NewRegistry[ClientEventListener](),
		TokenExpired:    observable.NewRegistry[ClientEventListener](),
	}
}

func (o *Observables) fireConnectionState(c *Client, state transport.State) {
	o.ConnectionState.ForEach(func(l *ConnectionStateListener) { l.fn(c, state) })
}

func (o *Observables) fireSignInState(c *Client, p *packet.Packet, state packet.State) {
	o.SignInState.ForEach(func(l *PacketStateListener) { l.fn(c, p, state) })
}

func (o *Observables) fireSignOutState(c *Client, p *packet.Packet, state packet.State) {
	o.SignOutState.ForEach(func(l *PacketStateListener) { l.fn(c, p, state) })
}

func (o *Observables) fireKicked(c *Client) {
	o.Kicked.ForEach(func(l *ClientEventListener) { l.fn(c) })
}

func (o *Observables) fireTokenExpired(c *Client) {
	o.TokenExpired.ForEach(func(l *ClientEventListener) { l.fn(c) })
}

// MessageQueue receives business frames once the client is signed in
type MessageQueue interface {
	Enqueue(frame *protocol.Frame) error
}
