//go:build linux

package hotkey

import (
	"fmt"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/Danondso/hyprhold/internal/bus"
)

// xkbOffset is added by the compositor to evdev codes in keypress events.
const xkbOffset = 8

// KeyCodeFromName maps an evdev key name such as KEY_LEFTMETA to its code,
// using the kernel names go-evdev generates.
func KeyCodeFromName(name string) (evdev.EvCode, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	code, ok := evdev.KEYFromString[upper]
	if !ok {
		return 0, fmt.Errorf("unknown key name: %s", name)
	}
	return code, nil
}

// CodeName returns the evdev name for code, or KEY_<n> when unknown.
func CodeName(code evdev.EvCode) string {
	if name, ok := evdev.KEYToString[code]; ok {
		return name
	}
	return fmt.Sprintf("KEY_%d", code)
}

// XKBCode converts an evdev code to the code reported on the event socket.
func XKBCode(code evdev.EvCode) int {
	return int(code) + xkbOffset
}

// EvdevCode converts a socket key code back to its evdev code.
func EvdevCode(xkb int) evdev.EvCode {
	return evdev.EvCode(xkb - xkbOffset)
}

// XKBCodes resolves key names to socket key codes.
func XKBCodes(names []string) ([]int, error) {
	codes := make([]int, 0, len(names))
	for _, name := range names {
		code, err := KeyCodeFromName(name)
		if err != nil {
			return nil, err
		}
		codes = append(codes, XKBCode(code))
	}
	return codes, nil
}

// Filter accepts the given socket key codes, on any keyboard when keyboard
// is empty. With no codes every key on the keyboard is accepted.
func Filter(keyboard string, codes ...int) bus.KeyFilter {
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(kb string, code int) bool {
		if keyboard != "" && kb != keyboard {
			return false
		}
		if len(set) == 0 {
			return true
		}
		_, ok := set[code]
		return ok
	}
}
