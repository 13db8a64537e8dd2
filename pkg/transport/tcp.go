package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/protocol"
)

// TCPConfig holds TCP transport settings
type TCPConfig struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	WriteIdle    time.Duration // 0 disables idle detection
	Clock        clock.Clock
}

// DefaultTCPConfig returns default TCP settings
func DefaultTCPConfig() *TCPConfig {
	return &TCPConfig{
		DialTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		WriteIdle:    30 * time.Second,
	}
}

// TCP is a Transport over one TCP connection
type TCP struct {
	config   TCPConfig
	listener Listener
	clock    clock.Clock
	log      *logrus.Entry

	mu        sync.Mutex
	conn      net.Conn
	state     State
	lastWrite time.Time
	done      chan struct{}

	writeMu sync.Mutex
}

// NewTCP creates an idle TCP transport
func NewTCP(config *TCPConfig, l Listener) *TCP {
	if config == nil {
		config = DefaultTCPConfig()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &TCP{
		config:   *config,
		listener: l,
		clock:    clk,
		log:      logrus.WithField("scope", "transport"),
		state:    StateIdle,
	}
}

// TCPFactory returns a Factory producing TCP transports with config
func TCPFactory(config *TCPConfig) Factory {
	return func(l Listener) Transport {
		return NewTCP(config, l)
	}
}

// State returns the link state
func (t *TCP) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Connect dials host:port and starts the reader
func (t *TCP) Connect(ctx context.Context, host string, port uint16) error {
	t.mu.Lock()
	if t.state != StateIdle {
		state := t.state
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}
	t.state = StateConnecting
	t.mu.Unlock()
	t.listener.OnStateChanged(StateConnecting)

	address := net.JoinHostPort(host, strconv.Itoa(int(port)))
	dialer := &net.Dialer{Timeout: t.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		t.setClosed()
		return fmt.Errorf("dial %s: %w", address, err)
	}

	t.mu.Lock()
	if t.state != StateConnecting {
		// Disconnected while dialing
		t.mu.Unlock()
		conn.Close()
		return ErrNotConnected
	}
	t.conn = conn
	t.state = StateConnected
	t.lastWrite = t.clock.Now()
	t.done = make(chan struct{})
	done := t.done
	var idle *clock.Timer
	if t.config.WriteIdle > 0 {
		idle = t.clock.Timer(t.config.WriteIdle)
	}
	t.mu.Unlock()

	t.log.Infof("Connected to %s", address)

	go t.readLoop(conn)
	if idle != nil {
		go t.idleLoop(idle, done)
	}

	t.listener.OnStateChanged(StateConnected)
	return nil
}

// Send writes data as one unit
func (t *TCP) Send(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	connected := t.state == StateConnected
	t.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.config.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	t.mu.Lock()
	t.lastWrite = t.clock.Now()
	t.mu.Unlock()

	return nil
}

// Disconnect closes the link. Safe to call more than once.
func (t *TCP) Disconnect() {
	t.setClosed()
}

func (t *TCP) setClosed() {
	t.mu.Lock()
	if t.state == StateClosed {
		t.mu.Unlock()
		return
	}
	t.state = StateClosed
	conn := t.conn
	t.conn = nil
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
		t.log.Info("Disconnected")
	}

	t.listener.OnStateChanged(StateClosed)
}

func (t *TCP) readLoop(conn net.Conn) {
	for {
		frame, err := protocol.ReadFrame(conn)
		if err != nil {
			if t.State() == StateConnected && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				t.log.Warnf("Read error: %v", err)
			}
			break
		}

		t.listener.OnFrame(frame)
	}

	t.setClosed()
}

// idleLoop fires OnWriteIdle once per WriteIdle period without writes
func (t *TCP) idleLoop(timer *clock.Timer, done <-chan struct{}) {
	defer timer.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-timer.C:
			t.mu.Lock()
			since := now.Sub(t.lastWrite)
			t.mu.Unlock()

			if since >= t.config.WriteIdle {
				t.listener.OnWriteIdle()
				timer.Reset(t.config.WriteIdle)
			} else {
				timer.Reset(t.config.WriteIdle - since)
			}
		}
	}
}
