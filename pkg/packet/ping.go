package packet

import (
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/session"
)

// PingPacket is the heartbeat. The server does not answer it.
type PingPacket struct {
	Packet
}

// NewPingPacket creates a heartbeat packet
func NewPingPacket() *PingPacket {
	p := &PingPacket{}
	p.init(protocol.MsgTypePing)
	return p
}

// Build encodes an empty ping frame
func (p *PingPacket) Build(*session.Session) (*protocol.Frame, error) {
	return protocol.NewFrame(protocol.MsgTypePing, p.sign, nil), nil
}

// ExpectsReply is always false
func (p *PingPacket) ExpectsReply() bool {
	return false
}

// Process never consumes anything
func (p *PingPacket) Process(*protocol.Frame) bool {
	return false
}
