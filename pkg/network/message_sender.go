package network

import (
	"errors"
	"fmt"

	"github.com/ZentaChain/zentalk-session/pkg/packet"
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

// SendMessagePacket writes p to the link.
//
// Packets that expect a reply move IDLE -> GOING -> WAIT_RESULT and then wait for the
// matching result or their timeout. A packet that cannot be written fails with
// protocol.CodeSendFailed. With requireSignIn the packet fails with
// protocol.CodeNotSignedIn unless the client is online.
func (c *Client) SendMessagePacket(p packet.MessagePacket, requireSignIn bool) error {
	if !c.validator.IsValid(c.session) {
		c.forceDisconnect("send")
		return ErrSessionInvalid
	}

	base := p.Base()
	expectsReply := p.ExpectsReply()

	// Claiming IDLE -> GOING is the only way in, so a packet is written once
	if expectsReply && !base.MoveFrom(packet.StateIdle, packet.StateGoing) {
		return fmt.Errorf("%w: sign %d is %s", ErrPacketInUse, base.Sign(), base.State())
	}

	if requireSignIn && !c.IsOnline() {
		if expectsReply {
			base.Fail(protocol.CodeNotSignedIn, ErrNotOnline.Error())
		}
		return ErrNotOnline
	}

	frame, err := p.Build(c.session)
	if err != nil {
		if expectsReply {
			base.Fail(protocol.CodeSendFailed, err.Error())
		}
		return fmt.Errorf("build %s: %w", protocol.TypeName(base.Type()), err)
	}

	if frame.Type() == protocol.MsgTypeSignIn && c.config.EncryptSignIn && c.cipher != nil {
		frame.SetPayload(c.cipher.Encrypt(frame.Payload))
		frame.Header.SetFlag(protocol.FlagEncrypted)
	}

	if expectsReply && !c.isLocalPacket(p) {
		c.pending.add(p)
	}

	c.sendMu.Lock()
	err = c.transport.Send(frame.Encode())
	c.sendMu.Unlock()

	if err != nil {
		if expectsReply {
			base.Fail(protocol.CodeSendFailed, err.Error())
		}
		return fmt.Errorf("send %s: %w", protocol.TypeName(base.Type()), err)
	}

	c.log.Debugf("→ %s sign=%d (%d bytes)", protocol.TypeName(frame.Type()), frame.Sign(), len(frame.Payload))

	if expectsReply {
		// The reply may already have moved the packet on
		base.MoveFrom(packet.StateGoing, packet.StateWaitResult)
	}
	return nil
}

// SendMessagePacketQuietly sends p and logs instead of returning errors
func (c *Client) SendMessagePacketQuietly(p packet.MessagePacket, requireSignIn bool) {
	if err := c.SendMessagePacket(p, requireSignIn); err != nil {
		if errors.Is(err, ErrNotOnline) {
			c.log.Debugf("Skipped %s: %v", protocol.TypeName(p.Base().Type()), err)
			return
		}
		c.log.Warnf("⚠️  Send %s failed: %v", protocol.TypeName(p.Base().Type()), err)
	}
}

func (c *Client) isLocalPacket(p packet.MessagePacket) bool {
	base := p.Base()
	return base == c.signIn.Base() || base == c.signOut.Base()
}
