package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// panelWidth is the total outer width of the main panel.
// borderStyle has: border (1+1) = 2, padding (2+2) = 4, total chrome = 6.
// Width() in lipgloss sets width including padding but excluding border.
// So we pass panelWidth - 2 (border) to Width(), and the actual text area
// is panelWidth - 6 (border + padding).
const panelWidth = 80
const panelWidthForStyle = panelWidth - 2 // passed to borderStyle.Width()
const panelContentWidth = panelWidth - 6  // actual usable text area

const eventsShown = 8

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	// Title, centered with color bars extending to panel edges
	titleText := "  HYPRHOLD  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Status:  "))
	b.WriteString(m.renderBadge())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Holds:"))
	b.WriteString("\n")
	b.WriteString(m.renderHolds())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Recent events:"))
	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	b.WriteString("\n\n")

	if m.Notice != "" {
		b.WriteString(hintStyle.Render(truncate(m.Notice, panelContentWidth)))
		b.WriteString("\n")
	}
	b.WriteString(quitStyle.Render("y copy last event · t theme · q quit"))

	// Debug sub-panel (inside main panel)
	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func (m Model) renderHolds() string {
	if len(m.Active) == 0 {
		return bodyStyle.Render("(none active)")
	}
	now := m.now()
	rows := make([]string, 0, len(m.Active))
	for _, h := range m.Active {
		var badge string
		if h.Fired {
			badge = firedBadge.Render("● held")
		} else {
			left := h.Deadline.Sub(now)
			if left < 0 {
				left = 0
			}
			badge = pendingBadge.Render(fmt.Sprintf("● pending %s", left.Round(10*time.Millisecond)))
		}
		key := fmt.Sprintf("%s %s/%d", h.ID, h.Keyboard, h.Code)
		rows = append(rows, bodyStyle.Render(truncate(key, 40)+"  ")+badge)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderEvents() string {
	if len(m.Events) == 0 {
		return bodyStyle.Render("(none yet)")
	}
	events := m.Events
	if len(events) > eventsShown {
		events = events[len(events)-eventsShown:]
	}
	rows := make([]string, 0, len(events))
	for _, e := range events {
		ts := e.Time.Format("15:04:05.000")
		rows = append(rows, timeStyle.Render(ts+"  ")+eventStyle.Render(truncate(e.Line, panelContentWidth-len(ts)-2)))
	}
	return strings.Join(rows, "\n")
}

const debugPanelMaxLines = 5

// Debug table column widths. Row content must fit within panelContentWidth.
const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3 // " │ "
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder

	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")

	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}

		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}

		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(truncate(entry.Message, colMsgWidth)))
	}

	return db.String()
}

func (m Model) renderStatusBar() string {
	source := m.Source
	if source == "" {
		source = "..."
	}
	holds := 0
	if m.Config != nil {
		holds = len(m.Config.Holds)
	}
	var active string
	if len(m.Active) > 0 {
		active = statusOkStyle.Render(fmt.Sprintf("%d", len(m.Active)))
	} else {
		active = quitStyle.Render("0")
	}
	return quitStyle.Render("Source: "+truncate(source, 40)) +
		quitStyle.Render(fmt.Sprintf("  Holds: %d  Active: ", holds)) + active +
		quitStyle.Render("  Theme: "+m.ThemeName)
}

func (m Model) renderBadge() string {
	switch m.State {
	case StateConnected:
		return connectedBadge.Render("● Connected")
	case StateDisconnected:
		if m.LastError == "" {
			return statusBadStyle.Render("● Disconnected")
		}
		return errorBadge.Render(fmt.Sprintf("● Disconnected: %s", truncate(m.LastError, 50)))
	default:
		return pendingBadge.Render("● Connecting...")
	}
}

func truncate(s string, n int) string {
	if n <= 3 {
		return s
	}
	return ansi.Truncate(s, n, "...")
}
