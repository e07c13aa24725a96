package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives result lines and summary tables. Logs and the spinner go
// to stderr.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorTeal  = lipgloss.Color("36")  // numbers, spinner
	colorGreen = lipgloss.Color("35")  // written artifacts, cache hits
	colorAmber = lipgloss.Color("220") // kept intermediates, warnings
	colorRed   = lipgloss.Color("167") // failed runs
	colorBlue  = lipgloss.Color("75")  // suggested surfviz commands
	colorWhite = lipgloss.Color("255") // paths
	colorGray  = lipgloss.Color("245") // labels, recomputed artifacts
	colorDim   = lipgloss.Color("240") // details
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleDim renders details such as directories and hints.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue renders paths and plain values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber renders vertex counts and timings in summary tables.
	StyleNumber = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleWarning renders warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	// Cache column of the summary tables.
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Output
// =============================================================================

func printStatus(icon lipgloss.Style, mark, msg string) {
	fmt.Fprintln(stdout, icon.Render(mark)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printStatus(styleIconSuccess, iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(styleIconError, iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(styleIconWarning, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(styleIconInfo, iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists an artifact written by a run.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests the surfviz command that resolves a failure, e.g.
// writing a missing projection table.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printTable writes a rendered summary table.
func printTable(table string) {
	fmt.Fprintln(stdout, table)
}
