// Package output formats weatherctl results for the terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

// Printer handles formatted output to the terminal
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// ResolveColors honors NO_COLOR and dumb terminals before the configured preference.
func ResolveColors(configColors bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return configColors
}

// NewPrinter creates a printer writing results to out and diagnostics to errOut.
func NewPrinter(out, errOut io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: errOut, useColors: useColors}
}

// Out exposes the result writer for tables.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Info prints an informational message
func (p *Printer) Info(format string, args ...any) {
	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...any) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.err, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

// Header prints a section header
func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		color.New(color.FgWhite).Fprintf(p.out, "%s\n", repeatChar('─', len([]rune(title))))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, repeatChar('-', len([]rune(title))))
}

// Temperature renders a reading with its unit symbol, tinted by how warm it is.
func (p *Printer) Temperature(value float64, units weather.Units) string {
	text := FormatTemperature(value, units)
	if !p.useColors {
		return text
	}
	switch celsius := toCelsius(value, units); {
	case celsius >= 28:
		return color.RedString(text)
	case celsius >= 18:
		return color.YellowString(text)
	case celsius <= 0:
		return color.CyanString(text)
	default:
		return text
	}
}

// Dim returns dimmed text
func (p *Printer) Dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}
	return text
}

// FormatTemperature rounds to whole degrees the way the dashboard cards do.
func FormatTemperature(value float64, units weather.Units) string {
	return fmt.Sprintf("%.0f%s", value, units.TemperatureSymbol())
}

func toCelsius(value float64, units weather.Units) float64 {
	switch units {
	case weather.UnitsImperial:
		return (value - 32) * 5 / 9
	case weather.UnitsStandard:
		return value - 273.15
	default:
		return value
	}
}

func repeatChar(char rune, count int) string {
	result := make([]rune, count)
	for i := range result {
		result[i] = char
	}
	return string(result)
}
