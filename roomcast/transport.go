package roomcast

import "context"

// Transport is the broadcast-only peer capability this SDK is layered on.
// It offers no addressing, ordering, or delivery guarantees; failed or lost
// sends are final. Implementations must be safe for concurrent use.
type Transport interface {
	// Broadcast fans the envelope out to every connected peer.
	Broadcast(ctx context.Context, env Envelope) error

	// SetSessionData replaces this participant's session metadata in full.
	// The slot is replace-only; partial updates are not possible.
	SetSessionData(ctx context.Context, data SessionData) error

	// ListPeers returns the currently connected peers in transport order.
	ListPeers(ctx context.Context) ([]Peer, error)

	// Bind registers the single inbound event consumer, replacing any
	// previous one. Unbind removes it; after Unbind returns no further
	// handler calls are made.
	Bind(h Handler)
	Unbind()
}

// Peer is the transport's read-only view of another participant.
type Peer interface {
	// SessionData returns the peer's published session metadata. The
	// second result is false if the peer never published any.
	SessionData() (SessionData, bool)

	// Send delivers an envelope to this peer only. Used by the presence
	// replay extension; best-effort like everything else.
	Send(ctx context.Context, env Envelope) error
}

// Handler receives asynchronous transport notifications. Calls are made
// sequentially from the transport's delivery goroutine.
type Handler interface {
	HandleMessage(peer Peer, env Envelope)
	HandlePeerConnect(peer Peer)
	HandlePeerDisconnect(peer Peer)
}
