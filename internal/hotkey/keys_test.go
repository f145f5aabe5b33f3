//go:build linux

package hotkey

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func TestKeyCodeFromName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected evdev.EvCode
		wantErr  bool
	}{
		{"left meta", "KEY_LEFTMETA", 125, false},
		{"right ctrl", "KEY_RIGHTCTRL", 97, false},
		{"f12", "KEY_F12", 88, false},
		{"space", "KEY_SPACE", 57, false},
		{"media key", "KEY_PLAYPAUSE", 164, false},
		{"mic mute", "KEY_MICMUTE", 248, false},
		{"case insensitive", "key_leftmeta", 125, false},
		{"with whitespace", "  KEY_F12  ", 88, false},
		{"unknown key", "KEY_NONEXISTENT", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := KeyCodeFromName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
				return
			}
			if code != tt.expected {
				t.Errorf("KeyCodeFromName(%q) = %d, want %d", tt.input, code, tt.expected)
			}
		})
	}
}

func TestXKBCodeRoundTrip(t *testing.T) {
	// The compositor reports Super as 133.
	if got := XKBCode(125); got != 133 {
		t.Errorf("XKBCode(125) = %d, want 133", got)
	}
	if got := EvdevCode(133); got != 125 {
		t.Errorf("EvdevCode(133) = %d, want 125", got)
	}
}

func TestCodeName(t *testing.T) {
	if got := CodeName(125); got != "KEY_LEFTMETA" {
		t.Errorf("CodeName(125) = %q", got)
	}
	if got := CodeName(164); got != "KEY_PLAYPAUSE" {
		t.Errorf("CodeName(164) = %q", got)
	}
	if got := CodeName(999); got != "KEY_999" {
		t.Errorf("CodeName(999) = %q", got)
	}
}

func TestXKBCodes(t *testing.T) {
	codes, err := XKBCodes([]string{"KEY_LEFTMETA", "KEY_RIGHTMETA"})
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 || codes[0] != 133 || codes[1] != 134 {
		t.Errorf("unexpected codes %v", codes)
	}
	if _, err := XKBCodes([]string{"KEY_LEFTMETA", "KEY_BOGUS"}); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		keyboard string
		codes    []int
		kb       string
		code     int
		want     bool
	}{
		{"code match any keyboard", "", []int{133}, "kbd1", 133, true},
		{"code mismatch", "", []int{133}, "kbd1", 36, false},
		{"keyboard match", "kbd1", []int{133}, "kbd1", 133, true},
		{"keyboard mismatch", "kbd1", []int{133}, "kbd2", 133, false},
		{"keyboard only", "kbd1", nil, "kbd1", 36, true},
		{"no restriction", "", nil, "anything", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(tt.keyboard, tt.codes...)(tt.kb, tt.code); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
