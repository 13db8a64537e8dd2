package network

import (
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

// OnFrame implements transport.Listener. Frames run through the local
// processors first; anything left over is business traffic.
func (c *Client) OnFrame(frame *protocol.Frame) {
	if !c.validator.IsValid(c.session) {
		c.forceDisconnect("receive")
		return
	}

	if c.cipher != nil && len(frame.Payload) > 0 {
		plain, err := c.cipher.Decrypt(frame.Payload)
		if err != nil {
			c.log.Warnf("Dropping %s sign=%d: %v", protocol.TypeName(frame.Type()), frame.Sign(), err)
			return
		}
		frame.SetPayload(plain)
		frame.Header.ClearFlag(protocol.FlagEncrypted)
	}

	c.log.Debugf("← %s sign=%d (%d bytes)", protocol.TypeName(frame.Type()), frame.Sign(), len(frame.Payload))

	for _, p := range c.processors {
		if p.Process(frame) {
			return
		}
	}

	if c.pending.Process(frame) {
		return
	}

	c.dispatchBusiness(frame)
}

func (c *Client) dispatchBusiness(frame *protocol.Frame) {
	if !c.IsOnline() {
		c.log.Warnf("Dropping %s sign=%d: not signed in", protocol.TypeName(frame.Type()), frame.Sign())
		return
	}

	if c.queue == nil {
		c.log.Debugf("No message queue, dropping sign=%d", frame.Sign())
		return
	}

	if err := c.queue.Enqueue(frame); err != nil {
		c.log.Errorf("Enqueue sign=%d failed: %v", frame.Sign(), err)
	}
}
