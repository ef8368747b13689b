// Package styles defines the visual styling for the application.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color definitions for the Tokyo Night theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("#7aa2f7") // Blue
	Secondary = lipgloss.Color("#bb9af7") // Magenta
	Subtle    = lipgloss.Color("#565f89") // Gray

	// Transcript speaker colors
	SpeakerAgent  = lipgloss.Color("#ff9e64") // Orange
	SpeakerCaller = lipgloss.Color("#73daca") // Teal

	// Status colors
	Success = lipgloss.Color("#9ece6a") // Green
	Error   = lipgloss.Color("#f7768e") // Red
	Warning = lipgloss.Color("#e0af68") // Yellow
	Info    = lipgloss.Color("#7dcfff") // Cyan

	// Background colors
	BgDark   = lipgloss.Color("#16161e")
	BgLight  = lipgloss.Color("#292e42")
	BgAccent = lipgloss.Color("#1f2335")

	// Text colors
	TextPrimary   = lipgloss.Color("#c0caf5")
	TextSecondary = lipgloss.Color("#a9b1d6")
	TextMuted     = lipgloss.Color("#565f89")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// ActiveTabStyle styles the currently selected tab.
var ActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(BgDark).
	Background(Primary).
	Padding(0, 2).
	MarginRight(1)

// InactiveTabStyle styles non-selected tabs.
var InactiveTabStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgLight).
	Padding(0, 2).
	MarginRight(1)

// TabNumberStyle styles the tab number indicator.
var TabNumberStyle = lipgloss.NewStyle().
	Foreground(Subtle).
	MarginRight(0)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused input elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// NotificationBaseStyle is the base for all notification types.
var NotificationBaseStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginBottom(1).
	Border(lipgloss.RoundedBorder())

// NotificationSuccessStyle for success notifications.
var NotificationSuccessStyle = NotificationBaseStyle.
	BorderForeground(Success).
	Foreground(Success)

// NotificationErrorStyle for error notifications.
var NotificationErrorStyle = NotificationBaseStyle.
	BorderForeground(Error).
	Foreground(Error)

// NotificationWarningStyle for warning notifications.
var NotificationWarningStyle = NotificationBaseStyle.
	BorderForeground(Warning).
	Foreground(Warning)

// NotificationInfoStyle for info notifications.
var NotificationInfoStyle = NotificationBaseStyle.
	BorderForeground(Info).
	Foreground(Info)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpSeparatorStyle styles separators in help text.
var HelpSeparatorStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgLight).
	Foreground(TextPrimary).
	Bold(true)

// SpeakerAgentStyle styles the agent's lines in a transcript.
var SpeakerAgentStyle = lipgloss.NewStyle().
	Foreground(SpeakerAgent).
	Bold(true)

// SpeakerCallerStyle styles the caller's lines in a transcript.
var SpeakerCallerStyle = lipgloss.NewStyle().
	Foreground(SpeakerCaller).
	Bold(true)

// MaskedValueStyle styles redacted field values.
var MaskedValueStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// EndedCustomerStyle styles calls the customer hung up.
var EndedCustomerStyle = lipgloss.NewStyle().
	Foreground(Success)

// EndedAssistantStyle styles calls the assistant ended.
var EndedAssistantStyle = lipgloss.NewStyle().
	Foreground(Info)

// EndedSystemStyle styles timeouts and duration cutoffs.
var EndedSystemStyle = lipgloss.NewStyle().
	Foreground(Warning)

// EndedErrorStyle styles calls that ended in a pipeline error.
var EndedErrorStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// EndedUnknownStyle styles unrecognized end reasons.
var EndedUnknownStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// StatusBarStyle styles the bottom status line.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgAccent).
	Padding(0, 1)

// StatusBadgeOfflineStyle highlights the offline indicator.
var StatusBadgeOfflineStyle = lipgloss.NewStyle().
	Foreground(BgDark).
	Background(Warning).
	Bold(true).
	Padding(0, 1)

// StatusBadgeMaskedStyle highlights the masking indicator.
var StatusBadgeMaskedStyle = lipgloss.NewStyle().
	Foreground(BgDark).
	Background(Secondary).
	Bold(true).
	Padding(0, 1)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// ModalOverlayStyle creates a modal overlay background.
var ModalOverlayStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("0"))

// ModalContentStyle styles modal content.
var ModalContentStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 2).
	Background(BgDark)

// ButtonStyle is the base button style.
var ButtonStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginRight(1)

// ButtonActiveStyle styles active/focused buttons.
var ButtonActiveStyle = ButtonStyle.
	Background(Primary).
	Foreground(BgDark).
	Bold(true)

var ButtonInactiveStyle = ButtonStyle.
	Background(BgLight).
	Foreground(TextSecondary)

// GetEndedReasonStyle returns the appropriate style for a call end reason.
// Works for both display labels ("Customer Ended") and raw API slugs
// ("customer-ended-call", "silence-timed-out").
func GetEndedReasonStyle(reason string) lipgloss.Style {
	r := strings.ToLower(reason)
	switch {
	case r == "":
		return EndedUnknownStyle
	case strings.Contains(r, "error") || strings.Contains(r, "failed"):
		return EndedErrorStyle
	case strings.HasPrefix(r, "customer"):
		return EndedCustomerStyle
	case strings.HasPrefix(r, "assistant"):
		return EndedAssistantStyle
	case strings.HasPrefix(r, "system"), strings.Contains(r, "silence"), strings.Contains(r, "max-duration"):
		return EndedSystemStyle
	default:
		return EndedUnknownStyle
	}
}

// GetSpeakerStyle returns the style for a transcript speaker label.
func GetSpeakerStyle(speaker string) lipgloss.Style {
	switch speaker {
	case "AI", "Bot", "Assistant":
		return SpeakerAgentStyle
	case "User", "Customer", "Human":
		return SpeakerCallerStyle
	default:
		return BlurredStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
