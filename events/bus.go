// Package events carries game notifications between decoupled components.
//
// A Bus is constructed and handed to whoever needs it; there is no
// process-wide instance. Delivery is synchronous on the publishing goroutine,
// which in this game is always the ebiten update loop.
package events

import (
	"github.com/milk9111/tilepath/grid"
)

// Kind names an event.
type Kind string

const (
	CollisionAdded   Kind = "map:collisionAdded"
	PathRecalculated Kind = "path:recalculated"
	PathBlocked      Kind = "path:blocked"
	EntityReachedEnd Kind = "entity:reachedEnd"
	EntityDestroyed  Kind = "entity:destroyed"
)

// Event is a bus payload.
type Event struct {
	Kind Kind
	Data any
}

// Collision is the payload of CollisionAdded.
type Collision struct {
	Cell grid.Cell
}

// PathUpdate is the payload of PathRecalculated.
type PathUpdate struct {
	Path grid.Path
}

// Blocked is the payload of PathBlocked. Initial is set when the very first
// route of a session could not be found.
type Blocked struct {
	Reason  string
	Initial bool
}

// EntityRef identifies an entity in EntityReachedEnd and EntityDestroyed.
type EntityRef struct {
	ID string
}

// Handler receives published events.
type Handler func(Event)

type subscriber struct {
	id   uint64
	fn   Handler
	once bool
}

// Bus is a typed publish/subscribe hub. It is not safe for concurrent use.
type Bus struct {
	nextID   uint64
	handlers map[Kind][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]subscriber)}
}

// Subscription allows removing a registered handler.
type Subscription struct {
	bus  *Bus
	kind Kind
	id   uint64
}

// Unsubscribe removes the handler. Calling it more than once is harmless.
func (s Subscription) Unsubscribe() {
	if s.bus == nil {
		return
	}
	s.bus.off(s.kind, s.id)
}

// Subscribe registers fn for kind. Handlers run in subscription order.
func (b *Bus) Subscribe(kind Kind, fn Handler) Subscription {
	return b.on(kind, fn, false)
}

// Once registers fn to run for the next kind event only.
func (b *Bus) Once(kind Kind, fn Handler) Subscription {
	return b.on(kind, fn, true)
}

func (b *Bus) on(kind Kind, fn Handler, once bool) Subscription {
	if b == nil || fn == nil {
		return Subscription{}
	}
	b.nextID++
	b.handlers[kind] = append(b.handlers[kind], subscriber{id: b.nextID, fn: fn, once: once})
	return Subscription{bus: b, kind: kind, id: b.nextID}
}

func (b *Bus) off(kind Kind, id uint64) {
	subs := b.handlers[kind]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		out := make([]subscriber, 0, len(subs)-1)
		out = append(out, subs[:i]...)
		out = append(out, subs[i+1:]...)
		if len(out) == 0 {
			delete(b.handlers, kind)
		} else {
			b.handlers[kind] = out
		}
		return
	}
}

// Publish delivers data to every current kind handler. Handlers added or
// removed during delivery take effect from the next Publish.
func (b *Bus) Publish(kind Kind, data any) {
	if b == nil {
		return
	}
	subs := b.handlers[kind]
	if len(subs) == 0 {
		return
	}
	evt := Event{Kind: kind, Data: data}
	for _, s := range subs {
		if s.once {
			b.off(kind, s.id)
		}
		s.fn(evt)
	}
}

// Clear removes every handler.
func (b *Bus) Clear() {
	if b == nil {
		return
	}
	b.handlers = make(map[Kind][]subscriber)
}

// ClearKind removes every handler for kind.
func (b *Bus) ClearKind(kind Kind) {
	if b == nil {
		return
	}
	delete(b.handlers, kind)
}

// HasListeners reports whether kind has at least one handler.
func (b *Bus) HasListeners(kind Kind) bool {
	return b.ListenerCount(kind) > 0
}

// ListenerCount returns the number of handlers for kind.
func (b *Bus) ListenerCount(kind Kind) int {
	if b == nil {
		return 0
	}
	return len(b.handlers[kind])
}

// WatchGrid publishes CollisionAdded for every cell g newly blocks.
func (b *Bus) WatchGrid(g *grid.Grid) {
	if b == nil || g == nil {
		return
	}
	g.OnBlocked(func(c grid.Cell) {
		b.Publish(CollisionAdded, Collision{Cell: c})
	})
}
