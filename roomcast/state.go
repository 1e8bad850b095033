package roomcast

// ConnectionState represents the participant's lifecycle state.
type ConnectionState int

const (
	// StateDisconnected means the client is not attached to the transport.
	StateDisconnected ConnectionState = iota

	// StateConnected means the client is attached and its session data is
	// published. Whether the client is in a room is a property of the
	// session, not a separate state.
	StateConnected
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}
