package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/crypto"
	"github.com/ZentaChain/zentalk-session/pkg/packet"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/tick"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

var (
	ErrSessionInvalid = errors.New("session is no longer current")
	ErrNotOnline      = errors.New("client not signed in")
	ErrPacketInUse    = errors.New("packet already sent")
	ErrMissingDep     = errors.New("missing client dependency")
)

// Deps are the collaborators a client is wired to. Holder, Observables,
// Broadcaster and Transport are required.
type Deps struct {
	Holder      *session.Holder
	Validator   session.Validator // Defaults to Holder
	Observables *Observables
	Broadcaster *tick.Broadcaster
	Queue       MessageQueue // Nil drops business frames
	Transport   transport.Factory
}

// Client keeps one authenticated link for one session. It signs in once,
// sends heartbeats while idle and tears itself down when the session stops
// being current.
type Client struct {
	id      string
	config  Config
	session *session.Session
	log     *logrus.Entry

	holder      *session.Holder
	validator   session.Validator
	observables *Observables
	broadcaster *tick.Broadcaster
	queue       MessageQueue
	transport   transport.Transport
	cipher      *crypto.Cipher

	signIn     *packet.SignInPacket
	signOut    *packet.SignOutPacket
	processors []packet.Processor
	pending    *pendingRequests

	// Strong references; packet registries hold listeners weakly
	signInListener  *packet.StateListener
	signOutListener *packet.StateListener

	signInStarted atomic.Bool
	tokenExpired  atomic.Bool
	sendMu        sync.Mutex
}

// NewClient creates a client bound to s. The link is not opened until Connect.
func NewClient(s *session.Session, deps Deps, config *Config) (*Client, error) {
	if s == nil {
		return nil, ErrSessionInvalid
	}
	if deps.Holder == nil || deps.Observables == nil || deps.Broadcaster == nil || deps.Transport == nil {
		return nil, ErrMissingDep
	}
	if config == nil {
		config = DefaultConfig()
	}

	c := &Client{
		id:          uuid.NewString(),
		config:      *config,
		session:     s,
		holder:      deps.Holder,
		validator:   deps.Validator,
		observables: deps.Observables,
		broadcaster: deps.Broadcaster,
		queue:       deps.Queue,
	}
	if c.validator == nil {
		c.validator = deps.Holder
	}
	c.log = logrus.WithFields(logrus.Fields{
		"scope":     "client",
		"client_id": c.id,
		"session":   s.Fingerprint(),
	})

	if s.HasKey() {
		cipher, err := crypto.NewCipher([]byte(s.AESKey()))
		if err != nil {
			return nil, fmt.Errorf("session key: %w", err)
		}
		c.cipher = cipher
	}

	c.signIn = packet.NewSignInPacket(c.config.Device, c.broadcaster, c.config.SignInTimeout)
	c.signOut = packet.NewSignOutPacket(c.broadcaster, c.config.SignOutTimeout)
	c.signInListener = packet.NewStateListener(c.onSignInState)
	c.signOutListener = packet.NewStateListener(c.onSignOutState)
	c.signIn.StateListeners().Register(c.signInListener)
	c.signOut.StateListeners().Register(c.signOutListener)

	c.processors = []packet.Processor{
		c.signIn,
		c.signOut,
		&kickedDetector{client: c},
	}
	c.pending = newPendingRequests()

	c.transport = deps.Transport(c)

	return c, nil
}

// ID returns the client's unique id
func (c *Client) ID() string {
	return c.id
}

// Session returns the session this client is bound to
func (c *Client) Session() *session.Session {
	return c.session
}

// SessionUserID returns the signed-in user id, 0 before sign-in succeeded
func (c *Client) SessionUserID() int64 {
	return c.signIn.SessionUserID()
}

// SignInState returns the state of the sign-in packet
func (c *Client) SignInState() packet.State {
	return c.signIn.State()
}

// ConnectionState returns the transport state
func (c *Client) ConnectionState() transport.State {
	return c.transport.State()
}

// Connect opens the link. Sign-in starts as soon as it is up.
func (c *Client) Connect(ctx context.Context) error {
	if !c.validator.IsValid(c.session) {
		c.forceDisconnect("connect")
		return ErrSessionInvalid
	}

	c.log.Infof("Connecting to %s", c.session.Address())
	if err := c.transport.Connect(ctx, c.session.Host(), c.session.Port()); err != nil {
		return fmt.Errorf("connect %s: %w", c.session.Address(), err)
	}
	return nil
}

// Disconnect closes the link
func (c *Client) Disconnect() {
	c.transport.Disconnect()
}

// IsOnline reports whether the session is current, the link is up and
// sign-in succeeded with a user id
func (c *Client) IsOnline() bool {
	return c.validator.IsValid(c.session) &&
		c.transport.State() == transport.StateConnected &&
		c.signIn.State() == packet.StateSuccess &&
		c.signIn.SessionUserID() > 0
}

// SignOut ends the session on the server. On success the session is cleared
// and the link closed.
func (c *Client) SignOut() error {
	return c.SendMessagePacket(c.signOut, true)
}

func (c *Client) forceDisconnect(where string) {
	c.log.Warnf("Session no longer current (%s), disconnecting", where)
	c.transport.Disconnect()
}

// OnStateChanged implements transport.Listener
func (c *Client) OnStateChanged(state transport.State) {
	c.log.Debugf("Transport %s", state)
	c.observables.fireConnectionState(c, state)

	if state == transport.StateConnected && c.signInStarted.CompareAndSwap(false, true) {
		c.SendMessagePacketQuietly(c.signIn, false)
	}
}

func (c *Client) onSignInState(p *packet.Packet, _, next packet.State) {
	c.observables.fireSignInState(c, p, next)

	switch next {
	case packet.StateSuccess:
		c.log.Infof("✅ Signed in as user %d", c.signIn.SessionUserID())

	case packet.StateFail:
		c.log.Warnf("Sign-in failed: code=%d msg=%q", p.ErrorCode(), p.ErrorMessage())
		if c.signIn.TokenInvalid() {
			c.handleTokenExpired()
		}
	}
}

func (c *Client) onSignOutState(p *packet.Packet, _, next packet.State) {
	c.observables.fireSignOutState(c, p, next)

	switch next {
	case packet.StateSuccess:
		c.log.Info("Signed out")
		c.holder.ClearIf(c.session)
		c.transport.Disconnect()

	case packet.StateFail:
		c.log.Warnf("Sign-out failed: code=%d msg=%q", p.ErrorCode(), p.ErrorMessage())
	}
}

func (c *Client) handleTokenExpired() {
	if !c.tokenExpired.CompareAndSwap(false, true) {
		return
	}

	c.log.Warn("🔑 Token expired, clearing session")
	c.holder.ClearIf(c.session)
	c.observables.fireTokenExpired(c)
	c.transport.Disconnect()
}

func (c *Client) handleKicked() {
	c.log.Warn("⛔ Kicked by server, clearing session")
	c.holder.ClearIf(c.session)
	c.observables.fireKicked(c)
	c.transport.Disconnect()
}
