package scene

// TickFunc receives the elapsed time of one frame, in ticks (1.0 at the
// target frame rate).
type TickFunc func(dt float64)

type tickSub struct {
	id uint64
	fn TickFunc
}

// Ticker fans a frame tick out to registered callbacks in registration order.
type Ticker struct {
	nextID uint64
	subs   []tickSub
	live   map[uint64]struct{}
}

// NewTicker creates an empty ticker.
func NewTicker() *Ticker {
	return &Ticker{live: make(map[uint64]struct{})}
}

// TickHandle removes a callback registered with Add.
type TickHandle struct {
	t  *Ticker
	id uint64
}

// Remove unregisters the callback. It is safe to call from inside a tick and
// more than once.
func (h TickHandle) Remove() {
	if h.t == nil {
		return
	}
	h.t.remove(h.id)
}

// Active reports whether the callback is still registered.
func (h TickHandle) Active() bool {
	if h.t == nil {
		return false
	}
	_, ok := h.t.live[h.id]
	return ok
}

// Add registers fn to run on every Tick.
func (t *Ticker) Add(fn TickFunc) TickHandle {
	if fn == nil {
		return TickHandle{}
	}
	t.nextID++
	t.subs = append(t.subs, tickSub{id: t.nextID, fn: fn})
	t.live[t.nextID] = struct{}{}
	return TickHandle{t: t, id: t.nextID}
}

func (t *Ticker) remove(id uint64) {
	if _, ok := t.live[id]; !ok {
		return
	}
	delete(t.live, id)
	out := make([]tickSub, 0, len(t.subs))
	for _, s := range t.subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	t.subs = out
}

// Tick runs every callback registered before the tick started that has not
// been removed since.
func (t *Ticker) Tick(dt float64) {
	subs := t.subs
	for _, s := range subs {
		if _, ok := t.live[s.id]; !ok {
			continue
		}
		s.fn(dt)
	}
}

// Len returns the number of registered callbacks.
func (t *Ticker) Len() int {
	return len(t.subs)
}
