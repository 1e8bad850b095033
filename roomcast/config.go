package roomcast

import "github.com/google/uuid"

// ProtocolVersion is advertised in the published session data. Peers do not
// enforce it; it exists so future revisions can detect each other.
const ProtocolVersion = "1.0.0"

// DefaultNetworkType is the application namespace used when none is set.
const DefaultNetworkType = "janus"

// Config controls the identity a client advertises.
type Config struct {
	// NetworkType is the application namespace. Peers and traffic outside
	// this namespace are invisible.
	NetworkType string

	// UserID is the display identity advertised to peers. Not verified,
	// not guaranteed unique.
	UserID string

	// Version is the advertised protocol version tag.
	Version string

	// PresenceReplay enables the optional connect/disconnect replay
	// extension: unicast our user_enter to newly connected peers, and
	// synthesize a local user_leave when a peer with an active room
	// disconnects. Peers without the extension interoperate unchanged.
	PresenceReplay bool
}

// DefaultConfig returns sensible defaults with a generated guest identity.
func DefaultConfig() Config {
	return Config{
		NetworkType: DefaultNetworkType,
		UserID:      "guest-" + uuid.NewString()[:8],
		Version:     ProtocolVersion,
	}
}

// Validate reports whether the config can produce a publishable identity.
func (c Config) Validate() error {
	if c.NetworkType == "" {
		return NewError(ErrorInvalidConfig, "empty network type")
	}
	if c.UserID == "" {
		return NewError(ErrorInvalidConfig, "empty user id")
	}
	return nil
}
