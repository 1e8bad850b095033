package roomcast

import "fmt"

// Dispatcher routes decoded presence payloads to registered callbacks.
type Dispatcher struct {
	onUserEnter   func(UserEnterEvent)
	onUserLeave   func(UserLeaveEvent)
	onUserMoved   func(UserMovedEvent)
	onUserChat    func(UserChatEvent)
	onUsersOnline func(UsersOnlineEvent)
	onError       func(error)
}

func (d *Dispatcher) SetOnUserEnter(fn func(UserEnterEvent))     { d.onUserEnter = fn }
func (d *Dispatcher) SetOnUserLeave(fn func(UserLeaveEvent))     { d.onUserLeave = fn }
func (d *Dispatcher) SetOnUserMoved(fn func(UserMovedEvent))     { d.onUserMoved = fn }
func (d *Dispatcher) SetOnUserChat(fn func(UserChatEvent))       { d.onUserChat = fn }
func (d *Dispatcher) SetOnUsersOnline(fn func(UsersOnlineEvent)) { d.onUsersOnline = fn }
func (d *Dispatcher) SetOnError(fn func(error))                  { d.onError = fn }

// Dispatch decodes a presence payload and fires the matching callback.
// Decode failures and unrecognized methods go to the error callback.
func (d *Dispatcher) Dispatch(p Payload) {
	switch p.Method {
	case methodUserEnter:
		if d.onUserEnter == nil {
			return
		}
		var ev UserEnterEvent
		if err := UnmarshalData(p.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal user_enter data", err))
			return
		}
		d.onUserEnter(ev)
	case methodUserLeave:
		if d.onUserLeave == nil {
			return
		}
		var ev UserLeaveEvent
		if err := UnmarshalData(p.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal user_leave data", err))
			return
		}
		d.onUserLeave(ev)
	case methodUserMoved:
		if d.onUserMoved == nil {
			return
		}
		var ev UserMovedEvent
		if err := UnmarshalData(p.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal user_moved data", err))
			return
		}
		d.onUserMoved(ev)
	case methodUserChat:
		if d.onUserChat == nil {
			return
		}
		var ev UserChatEvent
		if err := UnmarshalData(p.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal user_chat data", err))
			return
		}
		d.onUserChat(ev)
	case methodUsersOnline:
		if d.onUsersOnline == nil {
			return
		}
		var ev UsersOnlineEvent
		if err := UnmarshalData(p.Data, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal users_online data", err))
			return
		}
		d.onUsersOnline(ev)
	default:
		d.fireError(NewError(ErrorUnknownMethod, fmt.Sprintf("unrecognized method %q", p.Method)))
	}
}

// DispatchEvent fires the callback for an already-typed event. Used for
// locally synthesized events that never touch the wire.
func (d *Dispatcher) DispatchEvent(ev Event) {
	switch ev := ev.(type) {
	case UserEnterEvent:
		if d.onUserEnter != nil {
			d.onUserEnter(ev)
		}
	case UserLeaveEvent:
		if d.onUserLeave != nil {
			d.onUserLeave(ev)
		}
	case UserMovedEvent:
		if d.onUserMoved != nil {
			d.onUserMoved(ev)
		}
	case UserChatEvent:
		if d.onUserChat != nil {
			d.onUserChat(ev)
		}
	case UsersOnlineEvent:
		if d.onUsersOnline != nil {
			d.onUsersOnline(ev)
		}
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
