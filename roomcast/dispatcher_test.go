package roomcast

import (
	"encoding/json"
	"testing"
)

func TestDispatcherUserChat(t *testing.T) {
	var got UserChatEvent
	var errCalled bool
	var d Dispatcher
	d.SetOnUserChat(func(ev UserChatEvent) { got = ev })
	d.SetOnError(func(err error) { errCalled = true; _ = err })

	raw, _ := json.Marshal(UserChatEvent{UserID: "alice", RoomID: "lobby", Message: "hi"})
	d.Dispatch(Payload{Method: "user_chat", Data: raw})

	if got.UserID != "alice" || got.RoomID != "lobby" || got.Message != "hi" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if errCalled {
		t.Fatalf("unexpected error callback")
	}
}

func TestDispatcherUnknownMethod(t *testing.T) {
	var errGot error
	var d Dispatcher
	d.SetOnError(func(err error) { errGot = err })

	d.Dispatch(Payload{Method: "user_teleport", Data: json.RawMessage(`{}`)})
	if errGot == nil {
		t.Fatalf("expected error callback")
	}
	if !hasCode(errGot, ErrorUnknownMethod) {
		t.Fatalf("expected unknown_method, got %v", errGot)
	}
}

func TestDispatcherMalformedData(t *testing.T) {
	var errGot error
	var d Dispatcher
	d.SetOnUserEnter(func(UserEnterEvent) { t.Fatalf("unexpected dispatch") })
	d.SetOnError(func(err error) { errGot = err })

	d.Dispatch(Payload{Method: "user_enter", Data: json.RawMessage(`[1,2]`)})
	if errGot == nil {
		t.Fatalf("expected error callback")
	}
	if !hasCode(errGot, ErrorSerialization) {
		t.Fatalf("expected serialization_error, got %v", errGot)
	}
}

func TestDispatcherNilCallbackSkipsDecode(t *testing.T) {
	var d Dispatcher
	d.SetOnError(func(err error) { t.Fatalf("unexpected error: %v", err) })

	// Broken data for a method nobody listens to must stay silent.
	d.Dispatch(Payload{Method: "user_moved", Data: json.RawMessage(`not json`)})
}

func TestDispatchEventLocal(t *testing.T) {
	var got UsersOnlineEvent
	var d Dispatcher
	d.SetOnUsersOnline(func(ev UsersOnlineEvent) { got = ev })

	d.DispatchEvent(UsersOnlineEvent{Users: []string{"a", "b"}})
	if len(got.Users) != 2 || got.Users[0] != "a" || got.Users[1] != "b" {
		t.Fatalf("unexpected event: %+v", got)
	}
}
