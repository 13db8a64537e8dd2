package network

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

// fakeTransport records frames instead of writing them
type fakeTransport struct {
	listener transport.Listener

	mu       sync.Mutex
	state    transport.State
	sent     []*protocol.Frame
	sendErr  error
	connects int
}

func (f *fakeTransport) Connect(_ context.Context, _ string, _ uint16) error {
	f.mu.Lock()
	f.connects++
	f.state = transport.StateConnected
	f.mu.Unlock()

	f.listener.OnStateChanged(transport.StateConnected)
	return nil
}

func (f *fakeTransport) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != transport.StateConnected {
		return transport.ErrNotConnected
	}
	if f.sendErr != nil {
		return f.sendErr
	}

	frame, err := protocol.ReadFrame(bytes.NewReader(data))
	if err != nil {
		return errors.New("fake transport: unreadable frame")
	}
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	if f.state == transport.StateClosed {
		f.mu.Unlock()
		return
	}
	f.state = transport.StateClosed
	f.mu.Unlock()

	f.listener.OnStateChanged(transport.StateClosed)
}

func (f *fakeTransport) State() transport.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeTransport) frames() []*protocol.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*protocol.Frame(nil), f.sent...)
}

func (f *fakeTransport) setSendErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// memQueue is an in-memory MessageQueue
type memQueue struct {
	mu     sync.Mutex
	frames []*protocol.Frame
}

func (q *memQueue) Enqueue(frame *protocol.Frame) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.frames = append(q.frames, frame)
	return nil
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}
