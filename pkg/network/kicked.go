package network

import (
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

// kickedDetector is the last local processor: it catches the server's
// forced-logout result, whatever its sign.
type kickedDetector struct {
	client *Client
}

func (k *kickedDetector) Process(frame *protocol.Frame) bool {
	if frame.Type() != protocol.MsgTypeResult {
		return false
	}

	var result protocol.Result
	if err := result.Decode(frame.Payload); err != nil || result.Code != protocol.CodeKicked {
		return false
	}

	if k.client.transport.State() != transport.StateConnected {
		return false
	}

	k.client.handleKicked()
	return true
}
