package roomcast

import (
	"context"
	"encoding/json"
)

// Client implements Handler: the transport delivers raw peer events here and
// the router either promotes them to typed local events or drops them.

// HandleMessage classifies an inbound broadcast. Drops: envelopes for a
// different namespace, peers that never published session data, and peers
// published under a different namespace. Everything else is decoded and
// dispatched. Dropped traffic is silent; there is nothing to retry against.
func (c *Client) HandleMessage(peer Peer, env Envelope) {
	c.mu.Lock()
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected {
		return
	}

	if env.Type != c.cfg.NetworkType {
		return
	}
	sd, ok := peer.SessionData()
	if !ok {
		return
	}
	if sd.Type != c.cfg.NetworkType {
		return
	}

	var p Payload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.logger.Debug("dropping malformed payload", map[string]any{"error": err.Error()})
		return
	}
	c.dispatcher.Dispatch(p)
}

// HandlePeerConnect implements the optional presence replay extension: a
// broadcast medium keeps no history, so a late joiner would otherwise wait
// for our next room change to learn we exist. Unicast our user_enter to the
// new peer when we hold an active room.
func (c *Client) HandlePeerConnect(peer Peer) {
	if !c.cfg.PresenceReplay {
		return
	}
	id, err := c.snapshot()
	if err != nil || id.RoomID == "" {
		return
	}

	env, err := NewPresenceEnvelope(c.cfg.NetworkType, UserEnterEvent{UserID: id.UserID, RoomID: id.RoomID})
	if err != nil {
		c.dispatcher.fireError(err)
		return
	}
	if err := peer.Send(context.Background(), env); err != nil {
		c.logger.Warn("presence replay send failed", map[string]any{"error": err.Error()})
	}
}

// HandlePeerDisconnect synthesizes a local user_leave for a departing peer
// whose last-known session held an active room, as if it had left
// explicitly. The peer itself can no longer announce anything.
func (c *Client) HandlePeerDisconnect(peer Peer) {
	if !c.cfg.PresenceReplay {
		return
	}
	if _, err := c.snapshot(); err != nil {
		return
	}
	sd, ok := peer.SessionData()
	if !ok || sd.Type != c.cfg.NetworkType || sd.RoomID == "" {
		return
	}
	c.dispatcher.DispatchEvent(UserLeaveEvent{UserID: sd.UserID, RoomID: sd.RoomID})
}
