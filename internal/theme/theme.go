package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// MessageStyle renders ordinary chat lines in the console transcript.
var MessageStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// BotStyle renders autoresponder replies and command output.
var BotStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// ErrorStyle renders failure acknowledgments.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// HintStyle renders keyboard hints and secondary text.
var HintStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// TagNameStyle highlights tag names in listings.
var TagNameStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// TriggerStyle highlights autoresponse triggers in listings.
var TriggerStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)
