// Package cliutil renders styled terminal status boxes for the CLI.
package cliutil

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Kind selects the style of a status box.
type Kind int

const (
	InfoBox Kind = iota
	SuccessBox
	WarningBox
	ErrorBox
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func (k Kind) style() (lipgloss.Style, string) {
	switch k {
	case SuccessBox:
		return successStyle, "✓"
	case WarningBox:
		return warningStyle, "⚠"
	case ErrorBox:
		return errorStyle, "✗"
	default:
		return infoStyle, "ℹ"
	}
}

// Box renders a rounded-border box with a prefixed title line followed by
// the given content lines, wrapped to the terminal width.
func Box(kind Kind, title string, lines ...string) string {
	style, prefix := kind.style()

	contentWidth := terminalWidth() - 14
	if contentWidth < 20 {
		contentWidth = 20
	}

	wrapped := []string{prefix + " " + title}
	for _, line := range lines {
		wrapped = append(wrapped, wrap(line, contentWidth)...)
	}

	width := 0
	for _, line := range wrapped {
		if n := utf8.RuneCountInString(line); n > width {
			width = n
		}
	}

	var sb strings.Builder
	for i, line := range wrapped {
		pad := width - utf8.RuneCountInString(line)
		sb.WriteString(fmt.Sprintf("%s%s", line, strings.Repeat(" ", pad)))
		if i < len(wrapped)-1 {
			sb.WriteByte('\n')
		}
	}

	return style.
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(sb.String())
}

// Info renders an informational box.
func Info(title string, lines ...string) string {
	return Box(InfoBox, title, lines...)
}

// Success renders a success box.
func Success(title string, lines ...string) string {
	return Box(SuccessBox, title, lines...)
}

// Warning renders a warning box.
func Warning(title string, lines ...string) string {
	return Box(WarningBox, title, lines...)
}

// Error renders an error box.
func Error(title string, lines ...string) string {
	return Box(ErrorBox, title, lines...)
}

// terminalWidth returns the terminal width, defaulting to 80 when stdout is
// not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wrap breaks text into lines no wider than maxWidth.
func wrap(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	width := utf8.RuneCountInString(current)

	for _, word := range words[1:] {
		n := utf8.RuneCountInString(word)
		if width+n+1 <= maxWidth {
			current += " " + word
			width += n + 1
			continue
		}
		lines = append(lines, current)
		current = word
		width = n
	}

	return append(lines, current)
}
