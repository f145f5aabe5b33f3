package bus

import (
	"sort"
	"time"

	"github.com/Danondso/hyprhold/internal/clock"
	"github.com/Danondso/hyprhold/internal/event"
)

// holdState tracks one hold id while its key is down. gen identifies the
// current arming so fires from replaced timers are ignored.
type holdState struct {
	id        string
	keyboard  string
	code      int
	threshold time.Duration
	fired     bool
	gen       uint64
	deadline  time.Time
	timer     *clock.Timer
}

// fire is queued to the bus loop when a hold timer expires.
type fire struct {
	id  string
	gen uint64
}

// HoldStatus is a snapshot of an active hold.
type HoldStatus struct {
	ID       string
	Keyboard string
	Code     int
	Fired    bool
	Deadline time.Time
}

func (b *Bus) keyDown(kp event.Keypress) {
	b.emit(event.Keydown{Keyboard: kp.Keyboard, Code: kp.Code, Mods: kp.Mods})

	for _, def := range b.registry.Holds() {
		if def.Start == nil || !def.accepts(kp.Keyboard, kp.Code) {
			continue
		}
		b.arm(def, kp.Keyboard, kp.Code)
	}
}

// arm replaces any state for the hold with a fresh pending one.
func (b *Bus) arm(def HoldDefinition, keyboard string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.active[def.ID]; ok {
		prev.timer.Stop()
		delete(b.active, def.ID)
	}
	st := &holdState{
		id:        def.ID,
		keyboard:  keyboard,
		code:      code,
		threshold: def.Threshold,
	}
	b.active[def.ID] = st
	b.scheduleLocked(st)
	b.logger.Printf("hold %s: pending on %s/%d for %s", def.ID, keyboard, code, def.Threshold)
}

func (b *Bus) scheduleLocked(st *holdState) {
	b.gen++
	st.gen = b.gen
	st.deadline = b.clock.Now().Add(st.threshold)
	f := fire{id: st.id, gen: st.gen}
	st.timer = b.clock.AfterFunc(st.threshold, func() { b.post(f) })
}

// post hands a fire to the loop. Timer callbacks never touch hold state.
func (b *Bus) post(f fire) {
	select {
	case b.fires <- f:
	case <-b.done:
	}
}

// handleFire runs on the loop. The state must still exist, be unfired and
// belong to the arming that scheduled this fire.
func (b *Bus) handleFire(f fire) {
	b.mu.Lock()
	st, ok := b.active[f.id]
	if !ok || st.fired || st.gen != f.gen {
		b.mu.Unlock()
		return
	}
	st.fired = true
	keyboard, code := st.keyboard, st.code
	b.mu.Unlock()

	def, ok := b.registry.Hold(f.id)
	if !ok || def.Start == nil {
		return
	}
	b.logger.Printf("hold %s: start on %s/%d", f.id, keyboard, code)
	def.Start(keyboard, code)
}

func (b *Bus) keyUp(kp event.Keypress) {
	b.emit(event.Keyup{Keyboard: kp.Keyboard, Code: kp.Code, Mods: kp.Mods})

	var ended []HoldDefinition
	defs := b.registry.Holds()

	b.mu.Lock()
	for _, def := range defs {
		st, ok := b.active[def.ID]
		if !ok || st.keyboard != kp.Keyboard || st.code != kp.Code {
			continue
		}
		st.timer.Stop()
		delete(b.active, def.ID)
		if st.fired {
			ended = append(ended, def)
		} else {
			b.logger.Printf("hold %s: released early", def.ID)
		}
	}
	b.mu.Unlock()

	for _, def := range ended {
		if def.End == nil {
			continue
		}
		b.logger.Printf("hold %s: end on %s/%d", def.ID, kp.Keyboard, kp.Code)
		def.End(kp.Keyboard, kp.Code)
	}
}

// ExtendHold restarts the countdown of a pending hold using its original
// threshold, measured from now. It reports whether a pending hold was
// found; idle and fired holds are left alone.
func (b *Bus) ExtendHold(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.active[id]
	if !ok || st.fired {
		return false
	}
	st.timer.Stop()
	b.scheduleLocked(st)
	return true
}

// Holds returns the active holds sorted by id.
func (b *Bus) Holds() []HoldStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]HoldStatus, 0, len(b.active))
	for _, st := range b.active {
		out = append(out, HoldStatus{
			ID:       st.id,
			Keyboard: st.keyboard,
			Code:     st.code,
			Fired:    st.fired,
			Deadline: st.deadline,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Bus) stopTimers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, st := range b.active {
		st.timer.Stop()
		delete(b.active, id)
	}
}
