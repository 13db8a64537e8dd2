package packet

import (
	"time"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/tick"
)

// SignOutPacket ends the server side of the session
type SignOutPacket struct {
	TimeoutPacket
}

// NewSignOutPacket creates a sign-out packet
func NewSignOutPacket(b *tick.Broadcaster, timeout time.Duration) *SignOutPacket {
	p := &SignOutPacket{}
	p.initTimeout(protocol.MsgTypeSignOut, b, timeout)
	return p
}

// Build encodes an empty sign-out request
func (p *SignOutPacket) Build(*session.Session) (*protocol.Frame, error) {
	return protocol.NewFrame(protocol.MsgTypeSignOut, p.sign, nil), nil
}

// ExpectsReply is always true
func (p *SignOutPacket) ExpectsReply() bool {
	return true
}

// Process consumes the sign-out result
func (p *SignOutPacket) Process(frame *protocol.Frame) bool {
	result, ok := p.matchResult(frame)
	if !ok || result == nil {
		return ok
	}

	if result.Code == protocol.CodeSuccess {
		p.MoveToState(StateSuccess)
	} else {
		p.Fail(result.Code, result.Msg)
	}
	return true
}
