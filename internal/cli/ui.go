package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette. Teal carries structure (titles, numbers), gray tones
// carry secondary detail, yellow and red are reserved for captured read
// errors surfacing in the tree output.
var (
	colorTeal   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorAmber  = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorBright = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorMuted  = lipgloss.Color("240")
)

// Styles shared with command output.
var (
	// StyleTitle renders the table name heading.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)

	// StyleHighlight renders emphasized values such as version labels.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleDim renders secondary detail.
	StyleDim = lipgloss.NewStyle().Foreground(colorMuted)

	// StyleValue renders data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorBright)

	// StyleNumber renders counts and kinds.
	StyleNumber = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleWarning renders captured read errors inline.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// printSuccess prints a checkmarked status line.
func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error line.
func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printInfo prints a neutral status line.
func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output-file line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value with a fixed-width key column.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints node/edge counts and whether the result came from cache,
// on one dim line.
func printStats(nodeCount, edgeCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", nodeCount))
	}
	if edgeCount > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", edgeCount))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// printNextStep suggests the follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
