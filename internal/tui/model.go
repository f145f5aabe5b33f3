package tui

import (
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Danondso/hyprhold/internal/bus"
	"github.com/Danondso/hyprhold/internal/config"
	"github.com/Danondso/hyprhold/internal/event"
	"github.com/Danondso/hyprhold/internal/ipc"
)

// HoldLister reports the holds currently pending or fired.
type HoldLister interface {
	Holds() []bus.HoldStatus
}

// State represents the connection state.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

// Messages sent through the Bubble Tea update loop.

// ConnectedMsg reports that the event source is open.
type ConnectedMsg struct {
	Source string
}

// DisconnectedMsg reports that serving ended. Err is nil on a clean EOF.
type DisconnectedMsg struct {
	Err error
}

// EventMsg carries one dispatched event into the monitor.
type EventMsg struct {
	Time time.Time
	Name string
	Line string
}

type holdsTickMsg struct{}

type copyResultMsg struct {
	Text string
	Err  error
}

type noticeTimeoutMsg struct{}

// DebugEntry is a structured debug log entry.
type DebugEntry struct {
	Time     string // e.g. "11:27:53"
	Category string // e.g. "hold", "action", "socket"
	Message  string // the log message
}

// DebugLogMsg carries a structured debug log entry into the TUI.
type DebugLogMsg struct {
	Entry DebugEntry
}

const (
	maxDebugLines = 50
	maxEvents     = 100
)

// Model is the Bubble Tea model for the hyprhold monitor.
type Model struct {
	State        State
	Source       string
	LastError    string
	Notice       string
	Config       *config.Config
	Holds        HoldLister
	Active       []bus.HoldStatus
	Events       []EventMsg
	Logger       *log.Logger
	DebugMode    bool
	DebugEntries []DebugEntry
	ThemeName    string

	// Copy places text on the clipboard.
	Copy func(string) error
	now  func() time.Time
}

// NewModel creates a new monitor model.
func NewModel(cfg *config.Config, holds HoldLister, copyFn func(string) error, logger *log.Logger, debug bool) Model {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	theme := LoadTheme(cfg.Theme)
	applyTheme(theme)
	return Model{
		State:     StateConnecting,
		Config:    cfg,
		Holds:     holds,
		Copy:      copyFn,
		Logger:    logger,
		DebugMode: debug,
		ThemeName: theme.Name,
		now:       time.Now,
	}
}

// NewEventMsg renders e the way the monitor lists it.
func NewEventMsg(e event.Event, at time.Time) EventMsg {
	var line string
	switch v := e.(type) {
	case event.Generic:
		line = ipc.Line{Event: v.Event, Payload: v.Payload}.String()
	case event.Keydown:
		line = fmt.Sprintf("keydown %s code=%d mods=%d", v.Keyboard, v.Code, v.Mods)
	case event.Keyup:
		line = fmt.Sprintf("keyup %s code=%d mods=%d", v.Keyboard, v.Code, v.Mods)
	default:
		line = e.Name()
	}
	return EventMsg{Time: at, Name: e.Name(), Line: line}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return holdsTickCmd()
}

// Update handles messages and transitions state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "y":
			if len(m.Events) == 0 || m.Copy == nil {
				return m, nil
			}
			return m, m.copyCmd(m.Events[len(m.Events)-1].Line)
		case "t":
			next := NextTheme(m.ThemeName)
			applyTheme(next)
			m.ThemeName = next.Name
		}

	case ConnectedMsg:
		m.State = StateConnected
		m.Source = msg.Source
		m.LastError = ""

	case DisconnectedMsg:
		m.State = StateDisconnected
		if msg.Err != nil {
			m.LastError = msg.Err.Error()
		}

	case EventMsg:
		m.Events = append(m.Events, msg)
		if len(m.Events) > maxEvents {
			m.Events = m.Events[len(m.Events)-maxEvents:]
		}

	case holdsTickMsg:
		if m.Holds != nil {
			m.Active = m.Holds.Holds()
		}
		return m, holdsTickCmd()

	case copyResultMsg:
		if msg.Err != nil {
			m.Notice = "copy failed: " + msg.Err.Error()
		} else {
			m.Notice = "copied: " + msg.Text
		}
		return m, scheduleNoticeTimeout()

	case noticeTimeoutMsg:
		m.Notice = ""

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}

func (m Model) copyCmd(text string) tea.Cmd {
	copyFn := m.Copy
	logger := m.Logger
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			logger.Printf("copy error: %v", err)
			return copyResultMsg{Text: text, Err: err}
		}
		return copyResultMsg{Text: text}
	}
}

const holdsTickInterval = 100 * time.Millisecond

func holdsTickCmd() tea.Cmd {
	return tea.Tick(holdsTickInterval, func(time.Time) tea.Msg {
		return holdsTickMsg{}
	})
}

func scheduleNoticeTimeout() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return noticeTimeoutMsg{}
	})
}
