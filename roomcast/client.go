package roomcast

import (
	"context"
	"sync"
)

// Client layers the presence-and-room protocol on a broadcast Transport.
// It advertises this participant's identity through transport session
// metadata, filters inbound traffic to its application namespace, and
// encodes the presence operations as typed envelopes.
//
// All mutation is confined to the client's own fields; calling an operation
// from inside an event callback is safe.
type Client struct {
	cfg        Config
	logger     Logger
	transport  Transport
	dispatcher Dispatcher

	mu       sync.Mutex
	state    ConnectionState
	identity SessionData
	rooms    map[string]struct{}
}

// NewClient constructs a client over the given transport.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(transport Transport, cfg Config) *Client {
	return &Client{
		cfg:       cfg,
		logger:    noopLogger{},
		transport: transport,
		rooms:     make(map[string]struct{}),
	}
}

// SetLogger overrides logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// OnUserEnter registers callback for user_enter events.
func (c *Client) OnUserEnter(fn func(UserEnterEvent)) { c.dispatcher.SetOnUserEnter(fn) }

// OnUserLeave registers callback for user_leave events.
func (c *Client) OnUserLeave(fn func(UserLeaveEvent)) { c.dispatcher.SetOnUserLeave(fn) }

// OnUserMoved registers callback for user_moved events.
func (c *Client) OnUserMoved(fn func(UserMovedEvent)) { c.dispatcher.SetOnUserMoved(fn) }

// OnUserChat registers callback for user_chat events.
func (c *Client) OnUserChat(fn func(UserChatEvent)) { c.dispatcher.SetOnUserChat(fn) }

// OnUsersOnline registers callback for the local users_online snapshot.
func (c *Client) OnUsersOnline(fn func(UsersOnlineEvent)) { c.dispatcher.SetOnUsersOnline(fn) }

// OnError registers callback for decode and replay errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// State returns the current lifecycle state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentRoom returns the active room, or "" when not in any room.
func (c *Client) CurrentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity.RoomID
}

// Connect attaches to the transport and publishes the initial identity.
// Must be called before any other operation.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return NewError(ErrorAlreadyConnected, "already connected")
	}
	c.identity = SessionData{
		Type:    c.cfg.NetworkType,
		UserID:  c.cfg.UserID,
		Version: c.cfg.Version,
	}
	c.rooms = make(map[string]struct{})
	c.state = StateConnected
	id := c.identity
	c.mu.Unlock()

	c.transport.Bind(c)
	if err := c.logon(ctx, id); err != nil {
		c.transport.Unbind()
		c.mu.Lock()
		c.state = StateDisconnected
		c.identity = SessionData{}
		c.mu.Unlock()
		return err
	}
	return nil
}

// Reconnect republishes the current identity after a transport-level
// reconnection that preserved the handler binding but lost session metadata.
func (c *Client) Reconnect(ctx context.Context) error {
	id, err := c.snapshot()
	if err != nil {
		return err
	}
	return c.logon(ctx, id)
}

// Disconnect detaches from the transport and clears the published identity
// so observers see this participant go away. Terminal until the next
// Connect. The handler is removed before the identity is cleared so no
// inbound event is classified against a half-torn-down session.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "not connected")
	}
	c.state = StateDisconnected
	c.identity = SessionData{}
	c.mu.Unlock()

	c.transport.Unbind()
	if err := c.transport.SetSessionData(ctx, SessionData{}); err != nil {
		return WrapError(ErrorTransport, "failed to clear session data", err)
	}
	return nil
}

// SetUserID changes the advertised user id and republishes the identity.
func (c *Client) SetUserID(ctx context.Context, userID string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "not connected")
	}
	id := c.identity
	id.UserID = userID
	c.identity = id
	c.mu.Unlock()

	return c.logon(ctx, id)
}

// EnterRoom subscribes to the room, makes it the active room, republishes
// the identity, and announces user_enter. Purely advisory; receivers decide
// locally whether to materialize this user.
func (c *Client) EnterRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "not connected")
	}
	c.rooms[roomID] = struct{}{}
	id := c.identity
	id.RoomID = roomID
	c.identity = id
	c.mu.Unlock()

	if err := c.logon(ctx, id); err != nil {
		return err
	}
	return c.broadcast(ctx, UserEnterEvent{UserID: id.UserID, RoomID: roomID})
}

// LeaveRoom unsubscribes from the room and announces user_leave. If the room
// was the active one the identity is cleared and republished first. Leaving
// a room that was never active still broadcasts; receivers treat it as a
// no-op.
func (c *Client) LeaveRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return NewError(ErrorNotConnected, "not connected")
	}
	delete(c.rooms, roomID)
	id := c.identity
	active := id.RoomID == roomID
	if active {
		id.RoomID = ""
		c.identity = id
	}
	c.mu.Unlock()

	if active {
		if err := c.logon(ctx, id); err != nil {
			return err
		}
	}
	return c.broadcast(ctx, UserLeaveEvent{UserID: id.UserID, RoomID: roomID})
}

// Move broadcasts a position sample tagged with the current room, which may
// be empty if no room is active.
func (c *Client) Move(ctx context.Context, pos Position) error {
	id, err := c.snapshot()
	if err != nil {
		return err
	}
	return c.broadcast(ctx, UserMovedEvent{UserID: id.UserID, RoomID: id.RoomID, Position: pos})
}

// Chat broadcasts an opaque chat message tagged with the current room.
func (c *Client) Chat(ctx context.Context, message string) error {
	id, err := c.snapshot()
	if err != nil {
		return err
	}
	return c.broadcast(ctx, UserChatEvent{UserID: id.UserID, RoomID: id.RoomID, Message: message})
}

// ListUsers queries the transport's peer list, projects the peers visible in
// this namespace to their user ids, and emits a local-only users_online
// snapshot. Nothing is broadcast. Peer order is whatever the transport
// returns.
func (c *Client) ListUsers(ctx context.Context) error {
	if _, err := c.snapshot(); err != nil {
		return err
	}
	peers, err := c.transport.ListPeers(ctx)
	if err != nil {
		return WrapError(ErrorTransport, "failed to list peers", err)
	}

	users := make([]string, 0, len(peers))
	for _, p := range peers {
		sd, ok := p.SessionData()
		if !ok || sd.Type != c.cfg.NetworkType {
			continue
		}
		users = append(users, sd.UserID)
	}
	c.dispatcher.DispatchEvent(UsersOnlineEvent{Users: users})
	return nil
}

// Subscribe adds a room to the local subscription set without entering it.
func (c *Client) Subscribe(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

// Unsubscribe removes a room from the local subscription set.
func (c *Client) Unsubscribe(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

// Rooms returns the subscribed rooms. Bookkeeping only; it does not gate
// message filtering.
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// snapshot returns the current identity, or ErrorNotConnected.
func (c *Client) snapshot() (SessionData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return SessionData{}, NewError(ErrorNotConnected, "not connected")
	}
	return c.identity, nil
}

// logon republishes the full identity to the transport's session slot.
func (c *Client) logon(ctx context.Context, id SessionData) error {
	if err := c.transport.SetSessionData(ctx, id); err != nil {
		return WrapError(ErrorTransport, "failed to set session data", err)
	}
	return nil
}

func (c *Client) broadcast(ctx context.Context, ev Event) error {
	env, err := NewPresenceEnvelope(c.cfg.NetworkType, ev)
	if err != nil {
		return err
	}
	if err := c.transport.Broadcast(ctx, env); err != nil {
		return WrapError(ErrorTransport, "failed to broadcast", err)
	}
	return nil
}
