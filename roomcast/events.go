package roomcast

// Event is the closed set of presence events carried over the wire. Each
// variant maps to exactly one method name; the dispatcher matches the set
// exhaustively so an unrecognized method is reported instead of silently
// mishandled.
type Event interface {
	method() string
}

// UserEnterEvent announces that a user entered a room.
type UserEnterEvent struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

// UserLeaveEvent announces that a user left a room. It may name a room the
// sender was never actively in; receivers treat that as a no-op.
type UserLeaveEvent struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

// UserMovedEvent carries a position sample. RoomID reflects the sender's
// session at send time and may be empty.
type UserMovedEvent struct {
	UserID   string   `json:"userId"`
	RoomID   string   `json:"roomId,omitempty"`
	Position Position `json:"position"`
}

// UserChatEvent carries an opaque chat message.
type UserChatEvent struct {
	UserID  string `json:"userId"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

// UsersOnlineEvent is a local-only snapshot of the visible peers. It is never
// broadcast; ListUsers synthesizes it for the local consumer.
type UsersOnlineEvent struct {
	Users []string `json:"users"`
}

func (UserEnterEvent) method() string   { return methodUserEnter }
func (UserLeaveEvent) method() string   { return methodUserLeave }
func (UserMovedEvent) method() string   { return methodUserMoved }
func (UserChatEvent) method() string    { return methodUserChat }
func (UsersOnlineEvent) method() string { return methodUsersOnline }
