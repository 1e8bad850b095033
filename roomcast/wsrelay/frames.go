package wsrelay

import "github.com/roomcast/roomcast-go/roomcast"

// Relay frame protocol: newline-independent JSON frames over a single
// websocket. The relay is a dumb fan-out box; it never inspects envelopes.
const (
	// client -> relay
	opBroadcast = "broadcast" // fan envelope out to all other clients
	opSession   = "session"   // replace this client's session metadata
	opSend      = "send"      // deliver envelope to one client by id
	opPeers     = "peers"     // request the peer list

	// relay -> client
	opMessage    = "message"    // envelope from another client
	opConnect    = "connect"    // a client attached to the relay
	opDisconnect = "disconnect" // a client detached from the relay
	// opPeers is reused as the peer-list response
)

// frame is the single wire shape in both directions; Op selects which
// fields are meaningful.
type frame struct {
	Op       string                `json:"op"`
	To       string                `json:"to,omitempty"`
	Envelope *roomcast.Envelope    `json:"envelope,omitempty"`
	Session  *roomcast.SessionData `json:"session,omitempty"`
	Peer     *peerInfo             `json:"peer,omitempty"`
	Peers    []peerInfo            `json:"peers,omitempty"`
}

// peerInfo is the relay's view of one attached client.
type peerInfo struct {
	ID      string                `json:"id"`
	Session *roomcast.SessionData `json:"session,omitempty"`
}
