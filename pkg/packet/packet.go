// Package packet implements the lifecycle of request packets sent over a
// session: sign assignment, the state machine, timeouts and reply matching.
package packet

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/observable"
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/session"
)

// Processor inspects an inbound frame and reports whether it consumed it
type Processor interface {
	Process(frame *protocol.Frame) bool
}

// MessagePacket is implemented by every packet kind the client can send
type MessagePacket interface {
	Processor

	// Base returns the shared state machine
	Base() *Packet

	// Build encodes the request frame for s
	Build(s *session.Session) (*protocol.Frame, error)

	// ExpectsReply is false for fire-and-forget packets, which never enter
	// the state machine
	ExpectsReply() bool
}

// StateListener observes a packet's transitions
type StateListener struct {
	fn func(p *Packet, prev, next State)
}

// NewStateListener wraps fn as a state listener
func NewStateListener(fn func(p *Packet, prev, next State)) *StateListener {
	return &StateListener{fn: fn}
}

// Packet carries the sign and state shared by all packet kinds
type Packet struct {
	sign    int64
	msgType uint16
	log     *logrus.Entry

	mu           sync.Mutex
	state        State
	errorCode    int64
	errorMessage string

	listeners *observable.Registry[StateListener]

	// Transitions waiting for notification, in the order they happened.
	// Only one goroutine drains them at a time.
	events    []transitionEvent
	notifying bool

	// afterTransition runs before listeners, outside the lock
	afterTransition func(prev, next State)
}

type transitionEvent struct {
	prev, next State
}

// NewPacket creates an idle packet of msgType with a fresh sign
func NewPacket(msgType uint16) *Packet {
	p := &Packet{}
	p.init(msgType)
	return p
}

func (p *Packet) init(msgType uint16) {
	p.sign = protocol.NextSign()
	p.msgType = msgType
	p.state = StateIdle
	p.listeners = observable.NewRegistry[StateListener]()
	p.log = logrus.WithFields(logrus.Fields{
		"scope": "packet",
		"type":  protocol.TypeName(msgType),
		"sign":  p.sign,
	})
}

// Base returns p
func (p *Packet) Base() *Packet {
	return p
}

// Sign returns the correlation sign
func (p *Packet) Sign() int64 {
	return p.sign
}

// Type returns the wire message type
func (p *Packet) Type() uint16 {
	return p.msgType
}

// State returns the current state
func (p *Packet) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ErrorCode returns the failure code, 0 unless the packet failed
func (p *Packet) ErrorCode() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorCode
}

// ErrorMessage returns the failure text
func (p *Packet) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errorMessage
}

// StateListeners returns the registry fired on every effective transition
func (p *Packet) StateListeners() *observable.Registry[StateListener] {
	return p.listeners
}

// MoveToState moves the packet to next. It returns false when the move is
// rejected; moving to the current state is accepted and does nothing.
func (p *Packet) MoveToState(next State) bool {
	return p.transition(next, false, 0, "", -1)
}

// MoveFrom moves the packet to next only while it is still in from. It
// returns false without complaint when another transition got there first.
func (p *Packet) MoveFrom(from, next State) bool {
	return p.transition(next, false, 0, "", from)
}

// Fail moves the packet to FAIL recording code and msg
func (p *Packet) Fail(code int64, msg string) bool {
	return p.transition(StateFail, true, code, msg, -1)
}

// transition applies next. When expect is not negative the move only
// happens if the state still equals expect.
func (p *Packet) transition(next State, setError bool, code int64, msg string, expect State) bool {
	p.mu.Lock()
	prev := p.state
	if expect >= 0 && prev != expect {
		p.mu.Unlock()
		return false
	}
	if prev == next {
		p.mu.Unlock()
		return true
	}
	if !canMove(prev, next) {
		p.mu.Unlock()
		text := fmt.Sprintf("invalid packet transition %s -> %s (sign %d)", prev, next, p.sign)
		p.log.Error(text)
		invalidTransition(text)
		return false
	}

	p.state = next
	if setError {
		p.errorCode = code
		p.errorMessage = msg
	}
	p.events = append(p.events, transitionEvent{prev: prev, next: next})
	if p.notifying {
		p.mu.Unlock()
		return true
	}
	p.notifying = true
	p.mu.Unlock()

	p.notify()
	return true
}

// notify delivers queued transitions until none are left. A transition made
// while another goroutine is notifying is delivered by that goroutine, after
// the ones before it.
func (p *Packet) notify() {
	for {
		p.mu.Lock()
		if len(p.events) == 0 {
			p.notifying = false
			p.mu.Unlock()
			return
		}
		ev := p.events[0]
		p.events = p.events[1:]
		hook := p.afterTransition
		p.mu.Unlock()

		p.log.Debugf("%s -> %s", ev.prev, ev.next)

		if hook != nil {
			hook(ev.prev, ev.next)
		}
		p.listeners.ForEach(func(l *StateListener) {
			l.fn(p, ev.prev, ev.next)
		})
	}
}

// matchResult decodes frame as a Result answering p. ok is false when the
// frame is not a reply to p. A reply that cannot be decoded fails the packet
// and still counts as consumed.
func (p *Packet) matchResult(frame *protocol.Frame) (result *protocol.Result, ok bool) {
	if frame == nil || frame.Type() != protocol.MsgTypeResult || frame.Sign() != p.sign {
		return nil, false
	}

	if p.State().IsTerminal() {
		p.log.Debugf("late reply ignored (state %s)", p.State())
		return nil, true
	}

	result = &protocol.Result{}
	if err := result.Decode(frame.Payload); err != nil {
		p.Fail(protocol.CodeBadReply, err.Error())
		return nil, true
	}

	return result, true
}
