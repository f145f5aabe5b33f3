// Package event defines the typed events dispatched by the bus.
package event

import (
	"strconv"
	"strings"
)

// Names of events the bus treats specially.
const (
	NameKeypress = "keypress"
	NameKeydown  = "keydown"
	NameKeyup    = "keyup"
	NameSubmap   = "submap"
)

// Key states carried by a keypress payload.
const (
	StateDown = "down"
	StateUp   = "up"
)

// Event is implemented by every dispatched event.
type Event interface {
	Name() string
}

// Generic is a wire event as received from the socket.
type Generic struct {
	Event   string
	Payload string
	// Fields is Payload split on commas. Values containing a comma are
	// split too; the protocol has no escaping.
	Fields []string
}

// NewGeneric builds a Generic from a decoded line.
func NewGeneric(name, payload string) Generic {
	return Generic{Event: name, Payload: payload, Fields: strings.Split(payload, ",")}
}

func (g Generic) Name() string { return g.Event }

// Keypress is the decoded payload of a keypress wire event:
// keyboard,mods,state,keycode.
type Keypress struct {
	Keyboard string
	Mods     uint32
	State    string
	Code     int
}

func (Keypress) Name() string { return NameKeypress }

// Down reports whether the key was pressed.
func (k Keypress) Down() bool { return k.State == StateDown }

// ParseKeypress decodes the four fields of a keypress payload. It fails on
// the wrong field count, a non-integer key code or an unknown state. A
// modifier mask that is not a number reads as 0.
func ParseKeypress(fields []string) (Keypress, bool) {
	if len(fields) != 4 {
		return Keypress{}, false
	}
	code, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return Keypress{}, false
	}
	state := fields[2]
	if state != StateDown && state != StateUp {
		return Keypress{}, false
	}
	mods, _ := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
	return Keypress{
		Keyboard: fields[0],
		Mods:     uint32(mods),
		State:    state,
		Code:     code,
	}, true
}

// Keydown is derived from a keypress with state down.
type Keydown struct {
	Keyboard string
	Code     int
	Mods     uint32
}

func (Keydown) Name() string { return NameKeydown }

// Keyup is derived from a keypress with state up.
type Keyup struct {
	Keyboard string
	Code     int
	Mods     uint32
}

func (Keyup) Name() string { return NameKeyup }

// Submap reports the active submap. Map is empty when the default
// keymap is restored.
type Submap struct {
	Map string
}

func (Submap) Name() string { return NameSubmap }
