package roomcast

import "encoding/json"

const (
	methodUserEnter   = "user_enter"
	methodUserLeave   = "user_leave"
	methodUserMoved   = "user_moved"
	methodUserChat    = "user_chat"
	methodUsersOnline = "users_online"
)

// Envelope is the top-level wire unit exchanged over the broadcast transport.
// Type carries the application namespace; traffic with a foreign Type is
// invisible to this client.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Payload is the presence sub-structure inside an Envelope: a method name
// selecting one of the five presence operations, plus its method data.
type Payload struct {
	Method string          `json:"method"`
	Data   json.RawMessage `json:"data"`
}

// SessionData is the identity blob published to the transport's session
// metadata slot. It is always republished in full; the slot is replace-only,
// never merged.
type SessionData struct {
	Type    string `json:"type,omitempty"`
	UserID  string `json:"userId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
	Version string `json:"version,omitempty"`
}

// Position is a world-space sample carried by user_moved.
type Position struct {
	Pos [3]float64 `json:"pos"`
	Dir [3]float64 `json:"dir"`
}

// NewPresenceEnvelope encodes a presence event as a broadcast-ready envelope
// under the given application namespace.
func NewPresenceEnvelope(networkType string, ev Event) (Envelope, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, WrapError(ErrorSerialization, "failed to marshal method data", err)
	}
	payload, err := json.Marshal(Payload{Method: ev.method(), Data: data})
	if err != nil {
		return Envelope{}, WrapError(ErrorSerialization, "failed to marshal payload", err)
	}
	return Envelope{Type: networkType, Data: payload}, nil
}

// UnmarshalData decodes RawMessage into target.
func UnmarshalData(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}
