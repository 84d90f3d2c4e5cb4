package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/math-2025/protected-geo/obfuscate"
	"github.com/math-2025/protected-geo/store"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

var styleStep = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDim).
	Padding(0, 1)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *CLI) printSuccess(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printError(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printWarning(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printInfo(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printDetail(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printFile(from, to string) {
	fmt.Fprintln(c.out, "  "+styleValue.Render(from)+" "+styleDim.Render(iconArrow)+" "+styleValue.Render(to))
}

func (c *CLI) printKeyValue(key, value string) {
	fmt.Fprintln(c.out, styleLabel.Render(key)+" "+styleValue.Render(value))
}

func (c *CLI) printCoordinate(lat, lng float64) {
	c.printKeyValue("latitude", formatFloat(lat))
	c.printKeyValue("longitude", formatFloat(lng))
}

// printTrace renders every derivation step in a box, in pipeline order
func (c *CLI) printTrace(steps []obfuscate.DerivationStep) {
	for i, s := range steps {
		var b strings.Builder
		b.WriteString(styleTitle.Render(fmt.Sprintf("%d. %s", i+1, s.Name)))
		b.WriteString("\n")
		b.WriteString(styleNumber.Render(formatFloat(s.Coordinate.Lat) + ", " + formatFloat(s.Coordinate.Lng)))
		b.WriteString("\n")
		b.WriteString(styleDim.Render(s.Details))
		fmt.Fprintln(c.out, styleStep.Render(b.String()))
	}
}

func (c *CLI) printDecoy(d *store.Decoy) {
	fmt.Fprintln(c.out, styleTitle.Render(d.PublicName))
	c.printKeyValue("id", d.ID)
	c.printKeyValue("target", d.OperationTargetID)
	c.printCoordinate(d.Latitude, d.Longitude)
	c.printKeyValue("created", d.CreatedAt.Format("2006-01-02 15:04:05"))
}
