package transport

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
	"github.com/ZentaChain/zentalk-session/pkg/testutil/testlog"
)

type recordingListener struct {
	mu     sync.Mutex
	states []State
	frames chan *protocol.Frame
	idle   chan struct{}
}

func newRecordingListener() *recordingListener {
	return &recordingListener{
		frames: make(chan *protocol.Frame, 16),
		idle:   make(chan struct{}, 16),
	}
}

func (l *recordingListener) OnStateChanged(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
}

func (l *recordingListener) OnFrame(frame *protocol.Frame) {
	l.frames <- frame
}

func (l *recordingListener) OnWriteIdle() {
	l.idle <- struct{}{}
}

func (l *recordingListener) seen() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}

// startServer accepts one connection and hands it to the test
func startServer(t *testing.T) (string, uint16, <-chan net.Conn) {
	t.Helper()
	testlog.Start(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	conns := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conns <- conn
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, uint16(port), conns
}

func TestTCPSendReceive(t *testing.T) {
	host, port, conns := startServer(t)
	l := newRecordingListener()

	tr := NewTCP(&TCPConfig{DialTimeout: time.Second}, l)
	require.NoError(t, tr.Connect(context.Background(), host, port))
	assert.Equal(t, StateConnected, tr.State())

	server := <-conns
	defer server.Close()

	// Client -> server
	out := protocol.NewFrame(protocol.MsgTypeSignIn, 11, []byte("hello"))
	require.NoError(t, tr.Send(out.Encode()))

	got, err := protocol.ReadFrame(server)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.Sign())
	assert.Equal(t, []byte("hello"), got.Payload)

	// Server -> client
	reply := protocol.NewResultFrame(11, &protocol.Result{Code: protocol.CodeSuccess})
	_, err = server.Write(reply.Encode())
	require.NoError(t, err)

	select {
	case frame := <-l.frames:
		assert.Equal(t, protocol.MsgTypeResult, frame.Type())
		assert.Equal(t, int64(11), frame.Sign())
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}

	tr.Disconnect()
	tr.Disconnect()
	assert.Equal(t, StateClosed, tr.State())
	assert.Equal(t, []State{StateConnecting, StateConnected, StateClosed}, l.seen())
	assert.ErrorIs(t, tr.Send([]byte{1}), ErrNotConnected)
}

func TestTCPRemoteClose(t *testing.T) {
	host, port, conns := startServer(t)
	l := newRecordingListener()

	tr := NewTCP(&TCPConfig{DialTimeout: time.Second}, l)
	require.NoError(t, tr.Connect(context.Background(), host, port))

	server := <-conns
	server.Close()

	assert.Eventually(t, func() bool { return tr.State() == StateClosed }, 2*time.Second, 10*time.Millisecond)
}

func TestTCPConnectFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	l := newRecordingListener()
	tr := NewTCP(&TCPConfig{DialTimeout: time.Second}, l)

	err = tr.Connect(context.Background(), "127.0.0.1", uint16(addr.Port))
	assert.Error(t, err)
	assert.Equal(t, StateClosed, tr.State())

	// Single use
	assert.ErrorIs(t, tr.Connect(context.Background(), "127.0.0.1", uint16(addr.Port)), ErrInvalidState)
}

func TestTCPWriteIdle(t *testing.T) {
	host, port, conns := startServer(t)
	l := newRecordingListener()
	mock := clock.NewMock()

	tr := NewTCP(&TCPConfig{DialTimeout: time.Second, WriteIdle: 30 * time.Second, Clock: mock}, l)
	require.NoError(t, tr.Connect(context.Background(), host, port))
	defer tr.Disconnect()

	server := <-conns
	defer server.Close()

	mock.Add(20 * time.Second)
	select {
	case <-l.idle:
		t.Fatal("idle fired early")
	case <-time.After(20 * time.Millisecond):
	}

	mock.Add(10 * time.Second)
	select {
	case <-l.idle:
	case <-time.After(2 * time.Second):
		t.Fatal("idle not fired")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CONNECTED", StateConnected.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}
