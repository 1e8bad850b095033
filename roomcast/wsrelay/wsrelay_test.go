package wsrelay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast-go/roomcast"
)

func TestFrameRoundTrip(t *testing.T) {
	session := roomcast.SessionData{Type: "janus", UserID: "alice", RoomID: "lobby", Version: "1.0.0"}
	env := roomcast.Envelope{Type: "janus", Data: json.RawMessage(`{"method":"user_chat","data":{"userId":"alice","message":"hi"}}`)}
	f := frame{
		Op:       opMessage,
		Envelope: &env,
		Peer:     &peerInfo{ID: "p1", Session: &session},
	}

	raw, err := json.Marshal(f)
	require.NoError(t, err)

	var got frame
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, f.Op, got.Op)
	require.NotNil(t, got.Peer)
	assert.Equal(t, "p1", got.Peer.ID)
	assert.Equal(t, session, *got.Peer.Session)
	require.NotNil(t, got.Envelope)
	assert.Equal(t, "janus", got.Envelope.Type)
	assert.JSONEq(t, string(env.Data), string(got.Envelope.Data))
}

// startRelay runs a canned relay on an httptest server and returns its ws URL.
func startRelay(t *testing.T, serve func(ctx context.Context, c *websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer c.CloseNow()
		serve(r.Context(), c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

type inboundMessage struct {
	peer roomcast.Peer
	env  roomcast.Envelope
}

// chanHandler funnels transport notifications into channels.
type chanHandler struct {
	messages    chan inboundMessage
	connects    chan roomcast.Peer
	disconnects chan roomcast.Peer
}

func newChanHandler() *chanHandler {
	return &chanHandler{
		messages:    make(chan inboundMessage, 8),
		connects:    make(chan roomcast.Peer, 8),
		disconnects: make(chan roomcast.Peer, 8),
	}
}

func (h *chanHandler) HandleMessage(p roomcast.Peer, env roomcast.Envelope) {
	h.messages <- inboundMessage{peer: p, env: env}
}
func (h *chanHandler) HandlePeerConnect(p roomcast.Peer)    { h.connects <- p }
func (h *chanHandler) HandlePeerDisconnect(p roomcast.Peer) { h.disconnects <- p }

func dialTestRelay(t *testing.T, url string) *Transport {
	t.Helper()
	cfg := DefaultConfig()
	cfg.URL = url
	tr, err := Dial(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestBroadcastEchoedAsPeerMessage(t *testing.T) {
	remote := roomcast.SessionData{Type: "janus", UserID: "remote"}
	url := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		for {
			var f frame
			if err := wsjson.Read(ctx, c, &f); err != nil {
				return
			}
			// Reflect every broadcast back as if another client sent it.
			if f.Op == opBroadcast {
				reply := frame{
					Op:       opMessage,
					Peer:     &peerInfo{ID: "p1", Session: &remote},
					Envelope: f.Envelope,
				}
				if err := wsjson.Write(ctx, c, reply); err != nil {
					return
				}
			}
		}
	})

	tr := dialTestRelay(t, url)
	h := newChanHandler()
	tr.Bind(h)

	env, err := roomcast.NewPresenceEnvelope("janus", roomcast.UserChatEvent{UserID: "alice", Message: "hi"})
	require.NoError(t, err)
	require.NoError(t, tr.Broadcast(context.Background(), env))

	select {
	case got := <-h.messages:
		sd, ok := got.peer.SessionData()
		require.True(t, ok)
		assert.Equal(t, remote, sd)
		assert.Equal(t, "janus", got.env.Type)
		assert.JSONEq(t, string(env.Data), string(got.env.Data))
	case <-time.After(2 * time.Second):
		t.Fatalf("no message from relay")
	}
}

func TestListPeersRequestResponse(t *testing.T) {
	session := roomcast.SessionData{Type: "janus", UserID: "remote"}
	url := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		for {
			var f frame
			if err := wsjson.Read(ctx, c, &f); err != nil {
				return
			}
			if f.Op == opPeers {
				resp := frame{Op: opPeers, Peers: []peerInfo{
					{ID: "p1", Session: &session},
					{ID: "p2"},
				}}
				if err := wsjson.Write(ctx, c, resp); err != nil {
					return
				}
			}
		}
	})

	tr := dialTestRelay(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	peers, err := tr.ListPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 2)

	sd, ok := peers[0].SessionData()
	require.True(t, ok)
	assert.Equal(t, session, sd)

	_, ok = peers[1].SessionData()
	assert.False(t, ok)
}

func TestSessionAndUnicastReachRelay(t *testing.T) {
	received := make(chan frame, 8)
	url := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		for {
			var f frame
			if err := wsjson.Read(ctx, c, &f); err != nil {
				return
			}
			received <- f
			if f.Op == opPeers {
				resp := frame{Op: opPeers, Peers: []peerInfo{{ID: "p1"}}}
				if err := wsjson.Write(ctx, c, resp); err != nil {
					return
				}
			}
		}
	})

	tr := dialTestRelay(t, url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, tr.SetSessionData(ctx, roomcast.SessionData{Type: "janus", UserID: "alice"}))
	got := waitFrame(t, received)
	require.Equal(t, opSession, got.Op)
	require.NotNil(t, got.Session)
	assert.Equal(t, "alice", got.Session.UserID)

	peers, err := tr.ListPeers(ctx)
	require.NoError(t, err)
	waitFrame(t, received) // the peers request itself
	require.Len(t, peers, 1)

	env := roomcast.Envelope{Type: "janus", Data: json.RawMessage(`{"method":"user_enter","data":{"userId":"alice","roomId":"lobby"}}`)}
	require.NoError(t, peers[0].Send(ctx, env))
	got = waitFrame(t, received)
	require.Equal(t, opSend, got.Op)
	assert.Equal(t, "p1", got.To)
	require.NotNil(t, got.Envelope)
	assert.JSONEq(t, string(env.Data), string(got.Envelope.Data))
}

func TestPeerConnectDisconnectNotifications(t *testing.T) {
	session := roomcast.SessionData{Type: "janus", UserID: "bob", RoomID: "lobby"}
	url := startRelay(t, func(ctx context.Context, c *websocket.Conn) {
		// Wait for the client's logon so the handler is bound before the
		// notifications are pushed.
		var f frame
		if err := wsjson.Read(ctx, c, &f); err != nil {
			return
		}
		info := peerInfo{ID: "p1", Session: &session}
		if err := wsjson.Write(ctx, c, frame{Op: opConnect, Peer: &info}); err != nil {
			return
		}
		if err := wsjson.Write(ctx, c, frame{Op: opDisconnect, Peer: &info}); err != nil {
			return
		}
		for wsjson.Read(ctx, c, &f) == nil {
		}
	})

	tr := dialTestRelay(t, url)
	h := newChanHandler()
	tr.Bind(h)
	require.NoError(t, tr.SetSessionData(context.Background(), roomcast.SessionData{Type: "janus", UserID: "alice"}))

	select {
	case p := <-h.connects:
		sd, ok := p.SessionData()
		require.True(t, ok)
		assert.Equal(t, session, sd)
	case <-time.After(2 * time.Second):
		t.Fatalf("no connect notification")
	}
	select {
	case p := <-h.disconnects:
		sd, ok := p.SessionData()
		require.True(t, ok)
		assert.Equal(t, "lobby", sd.RoomID)
	case <-time.After(2 * time.Second):
		t.Fatalf("no disconnect notification")
	}
}

func waitFrame(t *testing.T, ch chan frame) frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame received")
		return frame{}
	}
}
