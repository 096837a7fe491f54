package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/routine"
)

// Color palette
var (
	ColorPurple      = lipgloss.Color("#7D56F4")
	ColorGreen       = lipgloss.Color("#25A065")
	ColorBlue        = lipgloss.Color("#4285F4")
	ColorRed         = lipgloss.Color("#E05252")
	ColorYellow      = lipgloss.Color("#E5C07B")
	ColorGray        = lipgloss.Color("#626262")
	ColorGrayDim     = lipgloss.Color("#404040")
	ColorWhite       = lipgloss.Color("#FFFFFF")
	ColorOffWhite    = lipgloss.Color("#D0D0D0")
	ColorMagenta     = lipgloss.Color("#C678DD")
	ColorSelectionBg = lipgloss.Color("#2D3B4D")
	ColorCyan        = lipgloss.Color("#56B6C2")
	ColorOrange      = lipgloss.Color("#D19A66")
	ColorLockBg      = lipgloss.Color("#2A1F33")
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	HeaderCountStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	MutedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOrange)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorPurple).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Padding(0, 1)
)

// Timeline styles
var (
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorSelectionBg)

	CompletedStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorYellow)

	UpcomingStyle = lipgloss.NewStyle().
			Foreground(ColorOffWhite)

	TimeStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(ColorGrayDim)
)

// kindColor maps each block kind to its accent.
func kindColor(k routine.Kind) lipgloss.Color {
	switch k {
	case routine.KindWork:
		return ColorBlue
	case routine.KindSacred:
		return ColorMagenta
	case routine.KindPersonal:
		return ColorCyan
	case routine.KindBreak:
		return ColorGreen
	default:
		return ColorGray
	}
}

// Toast styles
func toastStyle(s engine.Severity) lipgloss.Style {
	switch s {
	case engine.SeverityWarning:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorOrange)
	case engine.SeveritySuccess:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case engine.SeverityInfo:
		return lipgloss.NewStyle().Foreground(ColorCyan)
	default:
		return lipgloss.NewStyle().Foreground(ColorCyan)
	}
}

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPurple).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	LockModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorMagenta).
			Background(ColorLockBg).
			Padding(1, 4)

	LockTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMagenta)
)

// Input styles
var (
	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Bold(true)
)

// Status icons
const (
	IconCompleted = "✓"
	IconActive    = "◐"
	IconUpcoming  = "○"
	IconLock      = "◆"
	IconAlarmOff  = "⊘"
	IconNext      = "›"
	IconFocus     = "◷"
)
