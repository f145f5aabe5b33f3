package tui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Danondso/hyprhold/internal/bus"
	"github.com/Danondso/hyprhold/internal/config"
	"github.com/Danondso/hyprhold/internal/event"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeHolds struct {
	holds []bus.HoldStatus
}

func (f *fakeHolds) Holds() []bus.HoldStatus {
	return f.holds
}

func newTestModel() Model {
	cfg := config.Default()
	m := NewModel(cfg, &fakeHolds{}, nil, log.New(io.Discard, "", 0), false)
	m.now = func() time.Time { return testNow }
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialState(t *testing.T) {
	m := newTestModel()
	if m.State != StateConnecting {
		t.Errorf("expected StateConnecting, got %d", m.State)
	}
	if len(m.Events) != 0 {
		t.Error("expected no events")
	}
	if m.ThemeName != "Hyprland" {
		t.Errorf("expected Hyprland theme, got %q", m.ThemeName)
	}
	if m.Init() == nil {
		t.Error("expected holds tick command from Init")
	}
}

func TestConnectedTransition(t *testing.T) {
	m := newTestModel()
	m.LastError = "old"
	updated, _ := m.Update(ConnectedMsg{Source: "/run/user/1000/hypr/abc/.socket2.sock"})
	model := updated.(Model)
	if model.State != StateConnected {
		t.Errorf("expected StateConnected, got %d", model.State)
	}
	if model.LastError != "" {
		t.Errorf("expected error cleared, got %q", model.LastError)
	}
	if !strings.Contains(model.View(), "Connected") {
		t.Error("expected view to contain 'Connected'")
	}
}

func TestDisconnectedTransition(t *testing.T) {
	m := newTestModel()
	m.State = StateConnected
	updated, _ := m.Update(DisconnectedMsg{Err: fmt.Errorf("connection refused")})
	model := updated.(Model)
	if model.State != StateDisconnected {
		t.Errorf("expected StateDisconnected, got %d", model.State)
	}
	if model.LastError != "connection refused" {
		t.Errorf("expected 'connection refused', got %q", model.LastError)
	}
	if !strings.Contains(model.View(), "connection refused") {
		t.Error("expected view to show the error")
	}
}

func TestEventMsgAppendsAndCaps(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxEvents+5; i++ {
		updated, _ := m.Update(EventMsg{Time: testNow, Name: "workspace", Line: fmt.Sprintf("workspace>>%d", i)})
		m = updated.(Model)
	}
	if len(m.Events) != maxEvents {
		t.Fatalf("expected %d events, got %d", maxEvents, len(m.Events))
	}
	if m.Events[0].Line != "workspace>>5" {
		t.Errorf("expected oldest event 'workspace>>5', got %q", m.Events[0].Line)
	}
	view := m.View()
	if !strings.Contains(view, fmt.Sprintf("workspace>>%d", maxEvents+4)) {
		t.Error("expected view to show newest event")
	}
	if strings.Contains(view, fmt.Sprintf("workspace>>%d", maxEvents+4-eventsShown)) {
		t.Error("expected old events to be scrolled off")
	}
}

func TestNewEventMsg(t *testing.T) {
	tests := []struct {
		name     string
		ev       event.Event
		wantName string
		wantLine string
	}{
		{"generic", event.NewGeneric("workspace", "2"), "workspace", "workspace>>2"},
		{"keydown", event.Keydown{Keyboard: "kbd", Code: 133, Mods: 64}, "keydown", "keydown kbd code=133 mods=64"},
		{"keyup", event.Keyup{Keyboard: "kbd", Code: 133}, "keyup", "keyup kbd code=133 mods=0"},
		{"submap", event.Submap{Map: "resize"}, "submap", "submap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewEventMsg(tt.ev, testNow)
			if msg.Name != tt.wantName || msg.Line != tt.wantLine {
				t.Errorf("got %q %q, want %q %q", msg.Name, msg.Line, tt.wantName, tt.wantLine)
			}
			if !msg.Time.Equal(testNow) {
				t.Errorf("unexpected time %s", msg.Time)
			}
		})
	}
}

func TestHoldsTickPollsLister(t *testing.T) {
	m := newTestModel()
	m.Holds = &fakeHolds{holds: []bus.HoldStatus{
		{ID: "panel", Keyboard: "kbd", Code: 133, Deadline: testNow.Add(320 * time.Millisecond)},
		{ID: "launcher", Keyboard: "kbd", Code: 65, Fired: true},
	}}
	updated, cmd := m.Update(holdsTickMsg{})
	model := updated.(Model)
	if len(model.Active) != 2 {
		t.Fatalf("expected 2 active holds, got %d", len(model.Active))
	}
	if cmd == nil {
		t.Error("expected another tick command")
	}
	view := model.View()
	if !strings.Contains(view, "panel kbd/133") || !strings.Contains(view, "pending 320ms") {
		t.Error("expected pending hold with remaining time in view")
	}
	if !strings.Contains(view, "held") {
		t.Error("expected fired hold in view")
	}
}

func TestViewNoActiveHolds(t *testing.T) {
	m := newTestModel()
	if !strings.Contains(m.View(), "(none active)") {
		t.Error("expected placeholder for no active holds")
	}
}

func TestCopyLastEvent(t *testing.T) {
	m := newTestModel()
	var copied string
	m.Copy = func(s string) error {
		copied = s
		return nil
	}
	updated, _ := m.Update(EventMsg{Time: testNow, Name: "submap", Line: "submap>>resize"})
	m = updated.(Model)

	updated, cmd := m.Update(keyMsg("y"))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	result := cmd()
	if copied != "submap>>resize" {
		t.Errorf("expected last event copied, got %q", copied)
	}
	updated, cmd = m.Update(result)
	m = updated.(Model)
	if !strings.Contains(m.Notice, "copied") {
		t.Errorf("expected copied notice, got %q", m.Notice)
	}
	if cmd == nil {
		t.Error("expected notice timeout command")
	}

	updated, _ = m.Update(noticeTimeoutMsg{})
	if updated.(Model).Notice != "" {
		t.Error("expected notice cleared")
	}
}

func TestCopyFailureNotice(t *testing.T) {
	m := newTestModel()
	m.Copy = func(string) error { return errors.New("no clipboard") }
	m.Events = []EventMsg{{Time: testNow, Line: "workspace>>1"}}

	_, cmd := m.Update(keyMsg("y"))
	updated, _ := m.Update(cmd())
	if notice := updated.(Model).Notice; !strings.Contains(notice, "no clipboard") {
		t.Errorf("expected failure notice, got %q", notice)
	}
}

func TestCopyWithoutEventsIsNoop(t *testing.T) {
	m := newTestModel()
	m.Copy = func(string) error {
		t.Error("copy must not be called without events")
		return nil
	}
	if _, cmd := m.Update(keyMsg("y")); cmd != nil {
		t.Error("expected no command without events")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyMsg("q"), {Type: tea.KeyCtrlC}} {
		m := newTestModel()
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected QuitMsg for %q", k.String())
		}
	}
}

func TestThemeCycle(t *testing.T) {
	m := newTestModel()
	updated, _ := m.Update(keyMsg("t"))
	model := updated.(Model)
	if model.ThemeName != "Synthwave" {
		t.Errorf("expected Synthwave after one cycle, got %q", model.ThemeName)
	}
	if !strings.Contains(model.View(), "Theme: Synthwave") {
		t.Error("expected theme name in status bar")
	}
	for range len(ThemeNames()) - 1 {
		updated, _ = model.Update(keyMsg("t"))
		model = updated.(Model)
	}
	if model.ThemeName != "Hyprland" {
		t.Errorf("expected cycle back to Hyprland, got %q", model.ThemeName)
	}
	applyTheme(LoadTheme(defaultTheme))
}

func TestLoadTheme(t *testing.T) {
	if got := LoadTheme("GRUVBOX").Name; got != "Gruvbox" {
		t.Errorf("expected case-insensitive lookup, got %q", got)
	}
	if got := LoadTheme("nope").Name; got != "Hyprland" {
		t.Errorf("expected fallback to Hyprland, got %q", got)
	}
	if got := NextTheme("gruvbox").Name; got != "Hyprland" {
		t.Errorf("expected cycle to wrap, got %q", got)
	}
	if len(ThemeNames()) != 3 {
		t.Errorf("expected 3 themes, got %d", len(ThemeNames()))
	}
	for _, name := range ThemeNames() {
		if _, ok := themes[name]; !ok {
			t.Errorf("theme %q in cycle order has no palette", name)
		}
	}
	if got := LoadTheme(config.Default().Theme).Name; got != "Hyprland" {
		t.Errorf("default config theme resolved to %q", got)
	}
}

func TestViewContainsTitle(t *testing.T) {
	m := newTestModel()
	if !strings.Contains(m.View(), "HYPRHOLD") {
		t.Error("expected view to contain 'HYPRHOLD'")
	}
}

func TestDebugLogMsgAddsEntry(t *testing.T) {
	m := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "hold", Message: "hello"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	if len(model.DebugEntries) != 1 {
		t.Fatalf("expected 1 debug entry, got %d", len(model.DebugEntries))
	}
	if model.DebugEntries[0].Message != "hello" {
		t.Errorf("expected 'hello', got %q", model.DebugEntries[0].Message)
	}
}

func TestDebugLogTruncatesToMax(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxDebugLines+10; i++ {
		entry := DebugEntry{Time: "11:00:00", Category: "debug", Message: fmt.Sprintf("line %d", i)}
		updated, _ := m.Update(DebugLogMsg{Entry: entry})
		m = updated.(Model)
	}
	if len(m.DebugEntries) != maxDebugLines {
		t.Errorf("expected %d debug entries, got %d", maxDebugLines, len(m.DebugEntries))
	}
	if m.DebugEntries[0].Message != "line 10" {
		t.Errorf("expected oldest message to be 'line 10', got %q", m.DebugEntries[0].Message)
	}
}

func TestViewShowsDebugPanel(t *testing.T) {
	m := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "hold", Message: "test message"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	view := updated.(Model).View()
	if !strings.Contains(view, "Debug") {
		t.Error("expected view to contain 'Debug' panel title")
	}
	if !strings.Contains(view, "test message") {
		t.Error("expected view to contain debug message")
	}
}

func TestViewHidesDebugPanelWhenEmpty(t *testing.T) {
	m := newTestModel()
	if strings.Contains(m.View(), "Debug") {
		t.Error("expected view to NOT contain 'Debug' panel when no debug lines")
	}
}

func TestParseLineStructured(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53.777842 hold panel: start on kbd/133")
	if entry.Time != "11:27:53.777842" {
		t.Errorf("expected time '11:27:53.777842', got %q", entry.Time)
	}
	if entry.Category != "hold" {
		t.Errorf("expected category 'hold', got %q", entry.Category)
	}
	if entry.Message != "hold panel: start on kbd/133" {
		t.Errorf("unexpected message %q", entry.Message)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		msg      string
		expected string
	}{
		{"hold panel: pending on kbd/133 for 500ms", "hold"},
		{"action panel: start command: astal", "action"},
		{"socket: connected to /tmp/x", "socket"},
		{"bus: stopped", "bus"},
		{"chime: speaker init error", "chime"},
		{"keyboard: AT Translated Set 2", "device"},
		{"something else", "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got, _ := inferCategory(tt.msg); got != tt.expected {
				t.Errorf("inferCategory(%q) = %q, want %q", tt.msg, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Errorf("unexpected %q", got)
	}
}

func TestTruncateMultibyte(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"accents", "submap>>résumé-mode", 10, "submap>..."},
		{"accent at cut", "ééééééééé", 6, "ééé..."},
		{"wide runes", "窓窓窓窓窓", 7, "窓窓..."},
		{"fits", "窓窓", 4, "窓窓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			if !utf8.ValidString(got) {
				t.Fatalf("truncate(%q, %d) produced invalid UTF-8 %q", tt.in, tt.n, got)
			}
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if w := ansi.StringWidth(got); w > tt.n {
				t.Errorf("width %d exceeds %d", w, tt.n)
			}
		})
	}
}

func TestNilLoggerCopyFailure(t *testing.T) {
	copyErr := errors.New("no clipboard")
	m := NewModel(config.Default(), &fakeHolds{}, func(string) error { return copyErr }, nil, false)

	updated, _ := m.Update(EventMsg{Time: testNow, Name: "workspace", Line: "workspace>>2"})
	_, cmd := updated.(Model).Update(keyMsg("y"))
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	msg, ok := cmd().(copyResultMsg)
	if !ok {
		t.Fatalf("expected copyResultMsg, got %T", msg)
	}
	if !errors.Is(msg.Err, copyErr) {
		t.Errorf("expected copy error, got %v", msg.Err)
	}
}
