package network

import (
	"sync"

	"github.com/ZentaChain/zentalk-session/pkg/packet"
	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

type pendingEntry struct {
	packet   packet.MessagePacket
	listener *packet.StateListener
}

// pendingRequests tracks in-flight request packets other than sign-in and
// sign-out, keyed by sign. Entries leave the table when their packet ends.
type pendingRequests struct {
	mu      sync.Mutex
	entries map[int64]*pendingEntry
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{entries: make(map[int64]*pendingEntry)}
}

func (r *pendingRequests) add(p packet.MessagePacket) {
	base := p.Base()
	sign := base.Sign()

	entry := &pendingEntry{packet: p}
	entry.listener = packet.NewStateListener(func(_ *packet.Packet, _, next packet.State) {
		if next.IsTerminal() {
			r.remove(sign)
		}
	})

	r.mu.Lock()
	r.entries[sign] = entry
	r.mu.Unlock()

	base.StateListeners().Register(entry.listener)
}

func (r *pendingRequests) remove(sign int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sign)
}

// Process implements packet.Processor
func (r *pendingRequests) Process(frame *protocol.Frame) bool {
	r.mu.Lock()
	entry, ok := r.entries[frame.Sign()]
	r.mu.Unlock()

	if !ok {
		return false
	}
	return entry.packet.Process(frame)
}

func (r *pendingRequests) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
