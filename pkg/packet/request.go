package packet

import (
	"fmt"
	"sync"
	"time"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/tick"
)

// RequestPacket carries an opaque business request and waits for its result
type RequestPacket struct {
	TimeoutPacket

	payload []byte

	rmu    sync.Mutex
	result *protocol.Result
}

// NewRequestPacket creates a business request of msgType
func NewRequestPacket(msgType uint16, payload []byte, b *tick.Broadcaster, timeout time.Duration) *RequestPacket {
	p := &RequestPacket{payload: payload}
	p.initTimeout(msgType, b, timeout)
	return p
}

// Build encodes the business payload
func (p *RequestPacket) Build(*session.Session) (*protocol.Frame, error) {
	if !protocol.IsBusinessType(p.msgType) {
		return nil, fmt.Errorf("message type 0x%04x is not a business type", p.msgType)
	}
	return protocol.NewFrame(p.msgType, p.sign, p.payload), nil
}

// ExpectsReply is always true
func (p *RequestPacket) ExpectsReply() bool {
	return true
}

// Process consumes the business result. An empty result counts as success.
func (p *RequestPacket) Process(frame *protocol.Frame) bool {
	result, ok := p.matchResult(frame)
	if !ok || result == nil {
		return ok
	}

	switch result.Code {
	case protocol.CodeSuccess, protocol.CodeEmptyResult:
		p.rmu.Lock()
		p.result = result
		p.rmu.Unlock()
		p.MoveToState(StateSuccess)
	default:
		p.Fail(result.Code, result.Msg)
	}
	return true
}

// Result returns the server result once the packet succeeded
func (p *RequestPacket) Result() *protocol.Result {
	p.rmu.Lock()
	defer p.rmu.Unlock()
	return p.result
}
