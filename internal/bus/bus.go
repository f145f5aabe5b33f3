// Package bus dispatches Hyprland socket events to registered handlers and
// detects press-and-hold gestures on keypress events.
//
// All handlers and hold callbacks run on the goroutine that called Serve
// or ServeConn, one at a time, in socket arrival order. Hold timers only
// queue work for that goroutine.
package bus

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Danondso/hyprhold/internal/clock"
	"github.com/Danondso/hyprhold/internal/event"
	"github.com/Danondso/hyprhold/internal/ipc"
)

// AnyEvent is the registry key for handlers that see every event.
const AnyEvent = "*"

const fireQueueSize = 64

// Bus owns the handler registry and the active hold table.
type Bus struct {
	registry *Registry
	clock    clock.Clock
	logger   *log.Logger

	mu     sync.Mutex
	active map[string]*holdState
	gen    uint64

	fires  chan fire
	done   chan struct{}
	served atomic.Bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock sets the clock used for hold timers.
func WithClock(c clock.Clock) Option {
	return func(b *Bus) { b.clock = c }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		registry: NewRegistry(),
		clock:    clock.Real(),
		logger:   log.New(io.Discard, "", 0),
		active:   make(map[string]*holdState),
		fires:    make(chan fire, fireQueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnEvent registers fn for wire events called name.
func (b *Bus) OnEvent(name string, fn func(event.Generic)) {
	b.registry.Register(name, func(e event.Event) {
		if g, ok := e.(event.Generic); ok {
			fn(g)
		}
	})
}

// OnSubmap registers fn for submap changes.
func (b *Bus) OnSubmap(fn func(event.Submap)) {
	b.registry.Register(event.NameSubmap, func(e event.Event) {
		if g, ok := e.(event.Generic); ok {
			fn(event.Submap{Map: g.Payload})
		}
	})
}

// OnKeydown registers fn for key presses.
func (b *Bus) OnKeydown(fn func(event.Keydown)) {
	b.registry.Register(event.NameKeydown, func(e event.Event) {
		if kd, ok := e.(event.Keydown); ok {
			fn(kd)
		}
	})
}

// OnKeyup registers fn for key releases.
func (b *Bus) OnKeyup(fn func(event.Keyup)) {
	b.registry.Register(event.NameKeyup, func(e event.Event) {
		if ku, ok := e.(event.Keyup); ok {
			fn(ku)
		}
	})
}

// OnAny registers fn for every wire and derived event, after the handlers
// registered for that event's name.
func (b *Bus) OnAny(fn func(event.Event)) {
	b.registry.Register(AnyEvent, fn)
}

// OnHoldStart sets the start half of hold id. filter may be nil.
func (b *Bus) OnHoldStart(id string, threshold time.Duration, filter KeyFilter, fn HoldFunc) error {
	return b.registry.RegisterHoldStart(id, threshold, filter, fn)
}

// OnHoldEnd sets the end half of hold id.
func (b *Bus) OnHoldEnd(id string, fn HoldFunc) error {
	return b.registry.RegisterHoldEnd(id, fn)
}

// Serve connects to the event socket at socketPath and runs ServeConn.
func (b *Bus) Serve(ctx context.Context, socketPath string) error {
	conn, err := ipc.Dial(ctx, socketPath)
	if err != nil {
		return err
	}
	b.logger.Printf("socket: connected to %s", socketPath)
	return b.ServeConn(ctx, conn)
}

// ServeConn reads events from conn until it ends or ctx is cancelled.
// Both end the loop without error. conn is closed on return.
func (b *Bus) ServeConn(ctx context.Context, conn io.ReadCloser) error {
	if !b.served.CompareAndSwap(false, true) {
		_ = conn.Close()
		return ErrAlreadyServed
	}
	defer close(b.done)
	defer b.stopTimers()

	lines := make(chan ipc.Line)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		dec := ipc.NewDecoder(conn)
		for {
			line, err := dec.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			for range lines {
			}
			b.logger.Printf("bus: stopped")
			return nil

		case line, ok := <-lines:
			if !ok {
				_ = conn.Close()
				if err := <-readErr; !errors.Is(err, io.EOF) {
					b.logger.Printf("socket: read error: %v", err)
				} else {
					b.logger.Printf("socket: closed by compositor")
				}
				return nil
			}
			b.dispatch(line)

		case f := <-b.fires:
			b.handleFire(f)
		}
	}
}

func (b *Bus) dispatch(line ipc.Line) {
	g := event.NewGeneric(line.Event, line.Payload)
	b.emit(g)

	if line.Event != event.NameKeypress {
		return
	}
	kp, ok := event.ParseKeypress(g.Fields)
	if !ok {
		b.logger.Printf("bus: skipping malformed keypress %q", line.Payload)
		return
	}
	if kp.Down() {
		b.keyDown(kp)
	} else {
		b.keyUp(kp)
	}
}

func (b *Bus) emit(e event.Event) {
	for _, h := range b.registry.HandlersFor(e.Name()) {
		h(e)
	}
	for _, h := range b.registry.HandlersFor(AnyEvent) {
		h(e)
	}
}
