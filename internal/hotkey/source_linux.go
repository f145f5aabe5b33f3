//go:build linux

package hotkey

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Danondso/hyprhold/internal/event"
	"github.com/Danondso/hyprhold/internal/ipc"
)

// Modifier mask bits as reported by the compositor.
const (
	ModShift uint32 = 1 << 0
	ModCtrl  uint32 = 1 << 2
	ModAlt   uint32 = 1 << 3
	ModSuper uint32 = 1 << 6
)

var modifierBits = map[evdev.EvCode]uint32{
	42:  ModShift, // KEY_LEFTSHIFT
	54:  ModShift, // KEY_RIGHTSHIFT
	29:  ModCtrl,  // KEY_LEFTCTRL
	97:  ModCtrl,  // KEY_RIGHTCTRL
	56:  ModAlt,   // KEY_LEFTALT
	100: ModAlt,   // KEY_RIGHTALT
	125: ModSuper, // KEY_LEFTMETA
	126: ModSuper, // KEY_RIGHTMETA
}

// FindKeyboard opens a specific device path, or auto-detects a keyboard
// when devicePath is empty or "auto" by scanning /dev/input/event* for
// devices that support letter keys (KEY_A through KEY_Z).
func FindKeyboard(devicePath string) (*evdev.InputDevice, error) {
	if devicePath != "" && devicePath != "auto" {
		dev, err := evdev.Open(devicePath)
		if err != nil {
			return nil, fmt.Errorf("open device %s: %w", devicePath, err)
		}
		return dev, nil
	}

	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("glob /dev/input/event*: %w", err)
	}

	// Sort numerically so event7 comes before event10
	sort.Slice(matches, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(matches[i], "/dev/input/event"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(matches[j], "/dev/input/event"))
		return ni < nj
	})

	for _, path := range matches {
		dev, err := evdev.Open(path)
		if err != nil {
			continue
		}
		if isKeyboard(dev) {
			return dev, nil
		}
		_ = dev.Close()
	}

	return nil, fmt.Errorf("no keyboard device found in /dev/input/event*")
}

// isKeyboard rejects devices with relative axes (mice, trackpads) and
// requires KEY_A and KEY_Z.
func isKeyboard(dev *evdev.InputDevice) bool {
	for _, evType := range dev.CapableTypes() {
		if evType == evdev.EV_REL {
			return false
		}
	}

	hasA, hasZ := false, false
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case 30: // KEY_A
			hasA = true
		case 44: // KEY_Z
			hasZ = true
		}
	}
	return hasA && hasZ
}

// KeyboardName converts a device name to the compositor's naming
// (lowercase, spaces replaced by dashes).
func KeyboardName(deviceName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(deviceName)), " ", "-")
}

// modState tracks which modifier keys are held.
type modState struct {
	held map[evdev.EvCode]bool
}

// update records a transition and returns the resulting mask.
func (m *modState) update(code evdev.EvCode, down bool) uint32 {
	if _, ok := modifierBits[code]; ok {
		if m.held == nil {
			m.held = make(map[evdev.EvCode]bool)
		}
		if down {
			m.held[code] = true
		} else {
			delete(m.held, code)
		}
	}
	var mask uint32
	for c := range m.held {
		mask |= modifierBits[c]
	}
	return mask
}

// keypressLine renders an evdev transition as a keypress wire line.
func keypressLine(keyboard string, mods uint32, down bool, code evdev.EvCode) string {
	state := event.StateUp
	if down {
		state = event.StateDown
	}
	payload := fmt.Sprintf("%s,%d,%s,%d", keyboard, mods, state, XKBCode(code))
	return ipc.FormatLine(event.NameKeypress, payload)
}

// Source turns a keyboard device into a stream of keypress wire lines, so
// the bus can run without the compositor's keypress plugin.
type Source struct {
	dev      *evdev.InputDevice
	keyboard string
	pr       *io.PipeReader
	pw       *io.PipeWriter

	mu     sync.Mutex
	closed bool
}

// NewSource starts reading dev. Close stops reading and closes dev.
func NewSource(dev *evdev.InputDevice) *Source {
	name, err := dev.Name()
	if err != nil || name == "" {
		name = filepath.Base(dev.Path())
	}
	pr, pw := io.Pipe()
	s := &Source{dev: dev, keyboard: KeyboardName(name), pr: pr, pw: pw}
	go s.run()
	return s
}

// Keyboard returns the keyboard name used in produced lines.
func (s *Source) Keyboard() string { return s.keyboard }

func (s *Source) Read(p []byte) (int, error) { return s.pr.Read(p) }

// Close closes the device and the stream.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.pr.Close()
	return s.dev.Close()
}

func (s *Source) run() {
	var mods modState
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || os.IsNotExist(err) || strings.Contains(err.Error(), "file already closed") {
				_ = s.pw.Close()
				return
			}
			_ = s.pw.CloseWithError(fmt.Errorf("read event: %w", err))
			return
		}

		if ev.Type != evdev.EV_KEY {
			continue
		}
		var down bool
		switch ev.Value {
		case 1:
			down = true
		case 0:
			down = false
		default: // 2 = key repeat
			continue
		}
		mask := mods.update(ev.Code, down)
		if _, err := io.WriteString(s.pw, keypressLine(s.keyboard, mask, down, ev.Code)); err != nil {
			return
		}
	}
}
