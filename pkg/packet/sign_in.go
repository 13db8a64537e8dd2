package packet

import (
	"sync/atomic"
	"time"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/tick"
)

// SignInPacket authenticates the link. On success it carries the user id the
// server bound to the token.
type SignInPacket struct {
	TimeoutPacket

	device        string
	sessionUserID atomic.Int64
}

// NewSignInPacket creates a sign-in packet for device
func NewSignInPacket(device string, b *tick.Broadcaster, timeout time.Duration) *SignInPacket {
	p := &SignInPacket{device: device}
	p.initTimeout(protocol.MsgTypeSignIn, b, timeout)
	return p
}

// Build encodes the sign-in request with the session token
func (p *SignInPacket) Build(s *session.Session) (*protocol.Frame, error) {
	req := &protocol.SignInRequest{Token: s.Token(), Device: p.device}
	body, err := req.Encode()
	if err != nil {
		return nil, err
	}
	return protocol.NewFrame(protocol.MsgTypeSignIn, p.sign, body), nil
}

// ExpectsReply is always true
func (p *SignInPacket) ExpectsReply() bool {
	return true
}

// Process consumes the sign-in result
func (p *SignInPacket) Process(frame *protocol.Frame) bool {
	result, ok := p.matchResult(frame)
	if !ok || result == nil {
		return ok
	}

	if result.Code != protocol.CodeSuccess {
		p.Fail(result.Code, result.Msg)
		return true
	}

	uid, err := protocol.DecodeUserID(result.Extra)
	if err != nil || uid <= 0 {
		p.Fail(protocol.CodeBadReply, "sign-in result without user id")
		return true
	}

	p.sessionUserID.Store(uid)
	p.MoveToState(StateSuccess)
	return true
}

// SessionUserID returns the user id, 0 until sign-in succeeded
func (p *SignInPacket) SessionUserID() int64 {
	return p.sessionUserID.Load()
}

// TokenInvalid reports whether sign-in failed because the token is dead
func (p *SignInPacket) TokenInvalid() bool {
	return p.State() == StateFail && protocol.IsTokenInvalid(p.ErrorCode())
}
