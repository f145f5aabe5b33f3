package bus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Danondso/hyprhold/internal/event"
)

var (
	// ErrInvalidHold is wrapped by every hold registration error.
	ErrInvalidHold = errors.New("invalid hold registration")

	// ErrAlreadyServed is returned when Serve is called on a bus that has
	// already served a connection.
	ErrAlreadyServed = errors.New("bus already served")
)

// Handler receives a dispatched event.
type Handler func(event.Event)

// KeyFilter restricts a hold to certain keyboard and key code pairs.
type KeyFilter func(keyboard string, code int) bool

// HoldFunc is called when a hold starts or ends.
type HoldFunc func(keyboard string, code int)

// HoldDefinition groups the two halves of a press-and-hold behaviour.
type HoldDefinition struct {
	ID        string
	Threshold time.Duration
	Filter    KeyFilter
	Start     HoldFunc
	End       HoldFunc
}

// accepts reports whether the definition applies to the key.
func (d *HoldDefinition) accepts(keyboard string, code int) bool {
	return d.Filter == nil || d.Filter(keyboard, code)
}

// Registry stores event handlers in registration order and hold
// definitions by id.
type Registry struct {
	mu        sync.RWMutex
	handlers  map[string][]Handler
	holds     map[string]*HoldDefinition
	holdOrder []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]Handler),
		holds:    make(map[string]*HoldDefinition),
	}
}

// Register appends h to the handlers for name. Duplicates are kept.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = append(r.handlers[name], h)
}

// HandlersFor returns the handlers for name in registration order.
func (r *Registry) HandlersFor(name string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := r.handlers[name]
	if len(hs) == 0 {
		return nil
	}
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// RegisterHoldStart sets the start half of hold id.
func (r *Registry) RegisterHoldStart(id string, threshold time.Duration, filter KeyFilter, fn HoldFunc) error {
	if id == "" {
		return fmt.Errorf("%w: hold start requires an id", ErrInvalidHold)
	}
	if threshold <= 0 {
		return fmt.Errorf("%w: hold %q requires a positive threshold, got %s", ErrInvalidHold, id, threshold)
	}
	if fn == nil {
		return fmt.Errorf("%w: hold %q start callback is nil", ErrInvalidHold, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.definitionLocked(id)
	d.Threshold = threshold
	d.Filter = filter
	d.Start = fn
	return nil
}

// RegisterHoldEnd sets the end half of hold id.
func (r *Registry) RegisterHoldEnd(id string, fn HoldFunc) error {
	if id == "" {
		return fmt.Errorf("%w: hold end requires an id", ErrInvalidHold)
	}
	if fn == nil {
		return fmt.Errorf("%w: hold %q end callback is nil", ErrInvalidHold, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitionLocked(id).End = fn
	return nil
}

func (r *Registry) definitionLocked(id string) *HoldDefinition {
	d, ok := r.holds[id]
	if !ok {
		d = &HoldDefinition{ID: id}
		r.holds[id] = d
		r.holdOrder = append(r.holdOrder, id)
	}
	return d
}

// Hold returns a copy of the definition for id.
func (r *Registry) Hold(id string) (HoldDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.holds[id]
	if !ok {
		return HoldDefinition{}, false
	}
	return *d, true
}

// Holds returns copies of all definitions in registration order.
func (r *Registry) Holds() []HoldDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]HoldDefinition, 0, len(r.holdOrder))
	for _, id := range r.holdOrder {
		out = append(out, *r.holds[id])
	}
	return out
}
