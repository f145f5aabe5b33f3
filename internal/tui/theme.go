package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// defaultTheme is used when the config names no known theme.
const defaultTheme = "hyprland"

// Theme defines the color palette for the TUI.
type Theme struct {
	Name       string
	Primary    lipgloss.Color // title, fired badge
	Secondary  lipgloss.Color // labels, key hints, border
	Accent     lipgloss.Color // event lines
	Error      lipgloss.Color // error badge, status bad
	Success    lipgloss.Color // connected badge, status ok
	Warning    lipgloss.Color // pending badge, debug category
	Background lipgloss.Color // panel background
	Text       lipgloss.Color // body text
	Dimmed     lipgloss.Color // quit text, debug text, timestamps
	Separator  lipgloss.Color // debug separator
}

var themes = map[string]Theme{
	// Hyprland's default active border gradient on a dark panel.
	"hyprland": {
		Name:       "Hyprland",
		Primary:    lipgloss.Color("#33CCFF"),
		Secondary:  lipgloss.Color("#00FF99"),
		Accent:     lipgloss.Color("#89B4FA"),
		Error:      lipgloss.Color("#F38BA8"),
		Success:    lipgloss.Color("#00FF99"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Background: lipgloss.Color("#11111B"),
		Text:       lipgloss.Color("#CDD6F4"),
		Dimmed:     lipgloss.Color("#595959"),
		Separator:  lipgloss.Color("#313244"),
	},
	"synthwave": {
		Name:       "Synthwave",
		Primary:    lipgloss.Color("#FF6AC1"),
		Secondary:  lipgloss.Color("#00E5FF"),
		Accent:     lipgloss.Color("#B388FF"),
		Error:      lipgloss.Color("#FF8A80"),
		Success:    lipgloss.Color("#64FFDA"),
		Warning:    lipgloss.Color("#FFAB40"),
		Background: lipgloss.Color("#1A1A2E"),
		Text:       lipgloss.Color("#E0E0E0"),
		Dimmed:     lipgloss.Color("#666666"),
		Separator:  lipgloss.Color("#444444"),
	},
	"gruvbox": {
		Name:       "Gruvbox",
		Primary:    lipgloss.Color("#FB4934"),
		Secondary:  lipgloss.Color("#83A598"),
		Accent:     lipgloss.Color("#D3869B"),
		Error:      lipgloss.Color("#FB4934"),
		Success:    lipgloss.Color("#B8BB26"),
		Warning:    lipgloss.Color("#FABD2F"),
		Background: lipgloss.Color("#282828"),
		Text:       lipgloss.Color("#EBDBB2"),
		Dimmed:     lipgloss.Color("#928374"),
		Separator:  lipgloss.Color("#504945"),
	},
}

// themeOrder is the cycle order for the t key.
var themeOrder = []string{"hyprland", "synthwave", "gruvbox"}

// ThemeNames returns the names of all available themes in cycle order.
func ThemeNames() []string {
	return themeOrder
}

// LoadTheme returns the theme with the given name (case-insensitive),
// or the hyprland theme if the name is not recognized.
func LoadTheme(name string) Theme {
	if t, ok := themes[strings.ToLower(name)]; ok {
		return t
	}
	return themes[defaultTheme]
}

// NextTheme returns the theme after the given one in the cycle order.
func NextTheme(current string) Theme {
	current = strings.ToLower(current)
	for i, name := range themeOrder {
		if name == current {
			return themes[themeOrder[(i+1)%len(themeOrder)]]
		}
	}
	return themes[themeOrder[0]]
}

// Styles, set by applyTheme.
var titleStyle, borderStyle, labelStyle, eventStyle, hintStyle, quitStyle, bodyStyle, timeStyle lipgloss.Style
var connectedBadge, firedBadge, pendingBadge, errorBadge, statusOkStyle, statusBadStyle lipgloss.Style
var debugTitleStyle, debugHeaderStyle, debugRuleStyle, debugTimeStyle, debugMsgStyle, debugCategoryStyle, debugSepStyle lipgloss.Style

func init() {
	applyTheme(themes[defaultTheme])
}

// applyTheme rebuilds every style from t. Everything sits on the theme
// background.
func applyTheme(t Theme) {
	fg := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Background(t.Background)
	}

	titleStyle = fg(t.Primary).Bold(true).MarginBottom(1)
	borderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Secondary).
		Padding(1, 2).
		Background(t.Background)
	labelStyle = fg(t.Secondary).Bold(true)
	eventStyle = fg(t.Accent)
	hintStyle = fg(t.Secondary)
	quitStyle = fg(t.Dimmed)
	bodyStyle = fg(t.Text)
	timeStyle = fg(t.Dimmed)

	connectedBadge = fg(t.Success).Bold(true)
	firedBadge = fg(t.Primary).Bold(true)
	pendingBadge = fg(t.Warning).Bold(true)
	errorBadge = fg(t.Error).Bold(true)
	statusOkStyle = fg(t.Success).Bold(true)
	statusBadStyle = fg(t.Error).Bold(true)

	debugTitleStyle = fg(t.Dimmed).Bold(true)
	debugHeaderStyle = fg(t.Dimmed).Bold(true)
	debugRuleStyle = fg(t.Dimmed)
	debugTimeStyle = fg(t.Dimmed)
	debugMsgStyle = fg(t.Dimmed)
	debugCategoryStyle = fg(t.Warning)
	debugSepStyle = fg(t.Separator)
}
