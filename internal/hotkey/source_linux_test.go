//go:build linux

package hotkey

import "testing"

func TestKeyboardName(t *testing.T) {
	if got := KeyboardName("AT Translated Set 2 keyboard"); got != "at-translated-set-2-keyboard" {
		t.Errorf("unexpected name %q", got)
	}
}

func TestModStateTracksHeldModifiers(t *testing.T) {
	var m modState
	if got := m.update(125, true); got != ModSuper {
		t.Errorf("super down: mask %d", got)
	}
	if got := m.update(42, true); got != ModSuper|ModShift {
		t.Errorf("shift down: mask %d", got)
	}
	if got := m.update(30, true); got != ModSuper|ModShift {
		t.Errorf("letter must not change mask: %d", got)
	}
	if got := m.update(125, false); got != ModShift {
		t.Errorf("super up: mask %d", got)
	}
	if got := m.update(42, false); got != 0 {
		t.Errorf("all released: mask %d", got)
	}
}

func TestKeypressLine(t *testing.T) {
	if got := keypressLine("kbd", 64, true, 36); got != "keypress>>kbd,64,down,44\n" {
		t.Errorf("unexpected line %q", got)
	}
	if got := keypressLine("kbd", 0, false, 125); got != "keypress>>kbd,0,up,133\n" {
		t.Errorf("unexpected line %q", got)
	}
}
