// Package mempeers provides an in-process roomcast Transport: a hub that
// fans broadcasts out to every other joined participant and tracks their
// session metadata. It needs no network and is the minimal binding variant;
// tests and local simulations run several participants in one process.
package mempeers

import (
	"context"
	"sync"

	"github.com/roomcast/roomcast-go/roomcast"
)

// Hub connects a set of in-process participants.
type Hub struct {
	mu      sync.Mutex
	members []*Peers
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Join attaches a new participant. The returned Peers is that participant's
// Transport. Other participants are notified of the connect once the new
// participant binds a handler and can receive replies.
func (h *Hub) Join() *Peers {
	p := &Peers{hub: h}

	h.mu.Lock()
	h.members = append(h.members, p)
	h.mu.Unlock()

	return p
}

func (h *Hub) othersOf(p *Peers) []*Peers {
	h.mu.Lock()
	defer h.mu.Unlock()
	others := make([]*Peers, 0, len(h.members))
	for _, m := range h.members {
		if m != p {
			others = append(others, m)
		}
	}
	return others
}

func (h *Hub) remove(p *Peers) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, m := range h.members {
		if m == p {
			h.members = append(h.members[:i], h.members[i+1:]...)
			return
		}
	}
}

// Peers is one participant's view of the hub. It implements
// roomcast.Transport.
type Peers struct {
	hub *Hub

	mu         sync.Mutex
	handler    roomcast.Handler
	session    roomcast.SessionData
	hasSession bool
	announced  bool
	left       bool
}

var _ roomcast.Transport = (*Peers)(nil)

// Broadcast delivers the envelope to every other joined participant that
// has a bound handler. Delivery is synchronous and in join order.
func (p *Peers) Broadcast(_ context.Context, env roomcast.Envelope) error {
	for _, other := range p.hub.othersOf(p) {
		if handler := other.currentHandler(); handler != nil {
			handler.HandleMessage(&memberView{viewer: other, member: p}, env)
		}
	}
	return nil
}

// SetSessionData replaces this participant's session metadata. The first
// call makes the metadata present, even if empty.
func (p *Peers) SetSessionData(_ context.Context, data roomcast.SessionData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = data
	p.hasSession = true
	return nil
}

// ListPeers returns views of the other joined participants in join order.
func (p *Peers) ListPeers(_ context.Context) ([]roomcast.Peer, error) {
	others := p.hub.othersOf(p)
	peers := make([]roomcast.Peer, 0, len(others))
	for _, other := range others {
		peers = append(peers, &memberView{viewer: p, member: other})
	}
	return peers, nil
}

// Bind registers the single inbound consumer. The first Bind announces this
// participant to the others; rebinding after Unbind does not announce again.
func (p *Peers) Bind(h roomcast.Handler) {
	p.mu.Lock()
	p.handler = h
	announce := !p.announced
	p.announced = true
	p.mu.Unlock()

	if !announce {
		return
	}
	for _, other := range p.hub.othersOf(p) {
		if handler := other.currentHandler(); handler != nil {
			handler.HandlePeerConnect(&memberView{viewer: other, member: p})
		}
	}
}

// Unbind removes the inbound consumer.
func (p *Peers) Unbind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = nil
}

// Leave detaches from the hub and notifies the remaining bound participants
// of the disconnect. The departed participant's last session metadata stays
// visible on the disconnect notification.
func (p *Peers) Leave() {
	p.mu.Lock()
	if p.left {
		p.mu.Unlock()
		return
	}
	p.left = true
	p.mu.Unlock()

	p.hub.remove(p)
	for _, other := range p.hub.othersOf(p) {
		if handler := other.currentHandler(); handler != nil {
			handler.HandlePeerDisconnect(&memberView{viewer: other, member: p})
		}
	}
}

func (p *Peers) currentHandler() roomcast.Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler
}

func (p *Peers) sessionSnapshot() (roomcast.SessionData, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session, p.hasSession
}

// memberView is how one participant sees another. Send delivers an envelope
// to the viewed member only, attributed to the viewer.
type memberView struct {
	viewer *Peers
	member *Peers
}

func (v *memberView) SessionData() (roomcast.SessionData, bool) {
	return v.member.sessionSnapshot()
}

func (v *memberView) Send(_ context.Context, env roomcast.Envelope) error {
	if handler := v.member.currentHandler(); handler != nil {
		handler.HandleMessage(&memberView{viewer: v.member, member: v.viewer}, env)
	}
	return nil
}
