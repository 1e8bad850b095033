// Package wsrelay binds the roomcast Transport capability to a websocket
// broadcast relay. The relay fans envelopes out to every attached client,
// stores per-client session metadata, and pushes connect/disconnect
// notifications; it provides no ordering or delivery guarantees.
package wsrelay

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/roomcast/roomcast-go/roomcast"
	"github.com/roomcast/roomcast-go/roomcast/internal"
)

// Config controls how the transport connects to the relay.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// Transport implements roomcast.Transport over a single relay connection.
type Transport struct {
	cfg     Config
	logger  roomcast.Logger
	conn    *internal.Conn
	writeCh chan frame
	cancel  context.CancelFunc

	mu        sync.Mutex
	handler   roomcast.Handler
	closed    bool
	peersWait chan []roomcast.Peer
}

var _ roomcast.Transport = (*Transport)(nil)

// Dial connects to the relay and starts the internal loops.
func Dial(ctx context.Context, cfg Config) (*Transport, error) {
	if cfg.URL == "" {
		return nil, errors.New("empty relay URL")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}

	dialCtx := ctx
	if cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	t := &Transport{
		cfg:     cfg,
		logger:  noopLogger{},
		conn:    internal.NewConn(ws, cfg.ReadTimeout, cfg.WriteTimeout),
		writeCh: make(chan frame, 16),
		cancel:  cancel,
	}

	go t.readLoop(runCtx)
	go t.writeLoop(runCtx)
	return t, nil
}

// SetLogger overrides logger (optional).
func (t *Transport) SetLogger(l roomcast.Logger) {
	if l != nil {
		t.logger = l
	}
}

// Bind registers the single inbound consumer.
func (t *Transport) Bind(h roomcast.Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Unbind removes the inbound consumer.
func (t *Transport) Unbind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = nil
}

// Broadcast fans the envelope out through the relay.
func (t *Transport) Broadcast(ctx context.Context, env roomcast.Envelope) error {
	return t.enqueue(ctx, frame{Op: opBroadcast, Envelope: &env})
}

// SetSessionData replaces this client's session metadata on the relay.
func (t *Transport) SetSessionData(ctx context.Context, data roomcast.SessionData) error {
	return t.enqueue(ctx, frame{Op: opSession, Session: &data})
}

// ListPeers requests the relay's peer list. A single request may be in
// flight at a time.
func (t *Transport) ListPeers(ctx context.Context) ([]roomcast.Peer, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errors.New("relay connection closed")
	}
	if t.peersWait != nil {
		t.mu.Unlock()
		return nil, errors.New("peer list request already in flight")
	}
	wait := make(chan []roomcast.Peer, 1)
	t.peersWait = wait
	t.mu.Unlock()

	if err := t.enqueue(ctx, frame{Op: opPeers}); err != nil {
		t.clearPeersWait(wait)
		return nil, err
	}

	select {
	case peers := <-wait:
		return peers, nil
	case <-ctx.Done():
		t.clearPeersWait(wait)
		return nil, ctx.Err()
	}
}

// Close shuts down the transport and the underlying connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.handler = nil
	t.mu.Unlock()
	t.cancel()
	return t.conn.Close(websocket.StatusNormalClosure, "client close")
}

func (t *Transport) enqueue(ctx context.Context, f frame) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return errors.New("relay connection closed")
	}

	select {
	case t.writeCh <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) clearPeersWait(wait chan []roomcast.Peer) {
	t.mu.Lock()
	if t.peersWait == wait {
		t.peersWait = nil
	}
	t.mu.Unlock()
}

func (t *Transport) readLoop(ctx context.Context) {
	for {
		var f frame
		if err := t.conn.Read(ctx, &f); err != nil {
			if !isExpectedDisconnect(ctx, err) {
				t.logger.Warn("read loop exit", map[string]any{"error": err.Error()})
			}
			t.mu.Lock()
			t.closed = true
			t.mu.Unlock()
			return
		}
		t.handleFrame(f)
	}
}

func (t *Transport) writeLoop(ctx context.Context) {
	for {
		select {
		case f := <-t.writeCh:
			if err := t.conn.Write(ctx, f); err != nil {
				t.logger.Warn("write loop exit", map[string]any{"error": err.Error()})
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (t *Transport) handleFrame(f frame) {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()

	switch f.Op {
	case opMessage:
		if handler == nil || f.Peer == nil || f.Envelope == nil {
			return
		}
		handler.HandleMessage(t.peerView(*f.Peer), *f.Envelope)
	case opConnect:
		if handler == nil || f.Peer == nil {
			return
		}
		handler.HandlePeerConnect(t.peerView(*f.Peer))
	case opDisconnect:
		if handler == nil || f.Peer == nil {
			return
		}
		handler.HandlePeerDisconnect(t.peerView(*f.Peer))
	case opPeers:
		peers := make([]roomcast.Peer, 0, len(f.Peers))
		for _, info := range f.Peers {
			peers = append(peers, t.peerView(info))
		}
		t.mu.Lock()
		wait := t.peersWait
		t.peersWait = nil
		t.mu.Unlock()
		if wait != nil {
			wait <- peers
		}
	default:
		t.logger.Debug("ignoring unknown relay frame", map[string]any{"op": f.Op})
	}
}

func (t *Transport) peerView(info peerInfo) roomcast.Peer {
	return &relayPeer{transport: t, info: info}
}

// relayPeer is a snapshot view of another relay client.
type relayPeer struct {
	transport *Transport
	info      peerInfo
}

func (p *relayPeer) SessionData() (roomcast.SessionData, bool) {
	if p.info.Session == nil {
		return roomcast.SessionData{}, false
	}
	return *p.info.Session, true
}

func (p *relayPeer) Send(ctx context.Context, env roomcast.Envelope) error {
	return p.transport.enqueue(ctx, frame{Op: opSend, To: p.info.ID, Envelope: &env})
}

// noopLogger discards relay transport logs until SetLogger is called.
type noopLogger struct{}

func (noopLogger) Debug(string, map[string]any) {}
func (noopLogger) Info(string, map[string]any)  {}
func (noopLogger) Warn(string, map[string]any)  {}
func (noopLogger) Error(string, map[string]any) {}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
