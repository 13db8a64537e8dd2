package packet

import (
	"sync"
	"time"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/tick"
)

// DefaultTimeout bounds how long a packet waits for its reply
const DefaultTimeout = 60 * time.Second

// TimeoutPacket fails itself when no reply arrives within the timeout.
// The clock starts when the packet enters WAIT_RESULT.
type TimeoutPacket struct {
	Packet

	broadcaster *tick.Broadcaster
	timeout     time.Duration
	listener    *tick.Listener

	tmu              sync.Mutex
	sendTime         time.Time
	timeoutTriggered bool
}

// NewTimeoutPacket creates an idle timeout packet. A non-positive timeout
// means DefaultTimeout.
func NewTimeoutPacket(msgType uint16, b *tick.Broadcaster, timeout time.Duration) *TimeoutPacket {
	p := &TimeoutPacket{}
	p.initTimeout(msgType, b, timeout)
	return p
}

func (p *TimeoutPacket) initTimeout(msgType uint16, b *tick.Broadcaster, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p.Packet.init(msgType)
	p.broadcaster = b
	p.timeout = timeout
	p.listener = tick.NewListener(p.onTick)
	p.afterTransition = p.onTransition
}

// Timeout returns the configured timeout
func (p *TimeoutPacket) Timeout() time.Duration {
	return p.timeout
}

// TimeoutTriggered reports whether the packet failed by timing out
func (p *TimeoutPacket) TimeoutTriggered() bool {
	p.tmu.Lock()
	defer p.tmu.Unlock()
	return p.timeoutTriggered
}

// SendTime returns when the packet entered WAIT_RESULT
func (p *TimeoutPacket) SendTime() time.Time {
	p.tmu.Lock()
	defer p.tmu.Unlock()
	return p.sendTime
}

func (p *TimeoutPacket) onTransition(_, next State) {
	switch {
	case next == StateWaitResult:
		p.tmu.Lock()
		p.sendTime = p.broadcaster.Clock().Now()
		p.tmu.Unlock()
		p.broadcaster.Subscribe(p.listener)

		// The reply may have raced the subscription
		if p.State().IsTerminal() {
			p.broadcaster.Unsubscribe(p.listener)
		}

	case next.IsTerminal():
		p.broadcaster.Unsubscribe(p.listener)
	}
}

func (p *TimeoutPacket) onTick(now time.Time) {
	if p.State() != StateWaitResult {
		return
	}

	p.tmu.Lock()
	if p.timeoutTriggered || now.Sub(p.sendTime) <= p.timeout {
		p.tmu.Unlock()
		return
	}
	p.timeoutTriggered = true
	p.tmu.Unlock()

	if p.Fail(protocol.CodeTimeout, "timeout") {
		p.log.Warnf("no reply after %v", p.timeout)
	}
}
