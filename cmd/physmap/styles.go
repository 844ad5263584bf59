package main

import (
	"github.com/arloliu/physmap/format"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#04B575")
	warningColor = lipgloss.Color("#FFA500")
	mutedColor   = lipgloss.Color("#666666")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	usableStyle   = lipgloss.NewStyle().Foreground(successColor)
	reservedStyle = lipgloss.NewStyle().Foreground(warningColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)

	// numbers groups digits in summaries ("32,512 pages").
	numbers = message.NewPrinter(language.English)
)

// styled renders s with style unless color output is disabled.
func styled(style lipgloss.Style, s string) string {
	if noColor || jsonOut {
		return s
	}

	return style.Render(s)
}

func typeStyle(t format.MemoryType) lipgloss.Style {
	switch {
	case t.IsUsable():
		return usableStyle
	case t == format.TypeReserved, t == format.TypeUnusable, t.IsOSDefined():
		return reservedStyle
	default:
		return mutedStyle
	}
}
