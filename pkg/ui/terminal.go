package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ASCIILogo is printed at the start of interactive runs
const ASCIILogo = `
  ┌┬┐┌─┐┌─┐┬─┐┌─┐┌─┐
  │││├┤ │ ┬├┬┘├┤ ├─┘
  ┴ ┴└─┘└─┘┴└─└─┘┴    avif + webp bulk converter
`

// NoColor disables ANSI colors, set when NO_COLOR is present
var NoColor = os.Getenv("NO_COLOR") != ""

// ANSI color helpers
var (
	Cyan    = ansi("36")
	Yellow  = ansi("33")
	Red     = ansi("31")
	Green   = ansi("32")
	Magenta = ansi("35")
	Dim     = ansi("2")
)

func ansi(code string) func(string) string {
	return func(text string) string {
		if NoColor {
			return text
		}
		return "\033[" + code + "m" + text + "\033[0m"
	}
}

// Console receives the Print helpers' output
var Console io.Writer = os.Stdout

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of w, or fallback when it is not a
// terminal
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// PrintLogo prints the ASCII logo
func PrintLogo() {
	fmt.Fprint(Console, Magenta(ASCIILogo))
}

// PrintError prints msg, and the first detail if given, in red
func PrintError(msg string, detail ...interface{}) {
	fmt.Fprintln(Console, Red("✗ "+withDetail(msg, detail)))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Console, Green("✓ "+msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Console, "%s %s\n", Cyan(label+":"), value)
}

// PrintWarning prints msg, and the first detail if given, in yellow
func PrintWarning(msg string, detail ...interface{}) {
	fmt.Fprintln(Console, Yellow("! "+withDetail(msg, detail)))
}

// PrintHighlight prints a section heading
func PrintHighlight(msg string) {
	fmt.Fprintln(Console, Magenta(msg))
}

func withDetail(msg string, detail []interface{}) string {
	if len(detail) == 0 || detail[0] == nil || detail[0] == "" {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, detail[0])
}
