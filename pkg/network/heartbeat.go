package network

import (
	"github.com/ZentaChain/zentalk-session/pkg/packet"
)

// OnWriteIdle implements transport.Listener: keep the link alive while
// signed in
func (c *Client) OnWriteIdle() {
	if !c.IsOnline() {
		return
	}

	c.SendMessagePacketQuietly(packet.NewPingPacket(), true)
}

// SendPing sends one heartbeat. It requires sign-in.
func (c *Client) SendPing() error {
	return c.SendMessagePacket(packet.NewPingPacket(), true)
}
