// Package roomcast layers a lightweight presence-and-room protocol on an
// opaque broadcast-only peer transport. Participants advertise identity
// through per-peer session metadata, filter inbound traffic to their
// application namespace, and exchange ephemeral room state (enter, leave,
// move, chat, list-users) as typed envelopes. The transport offers no
// addressing, ordering, or delivery guarantees; everything here is
// best-effort and advisory.
package roomcast
