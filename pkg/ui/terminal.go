package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Logo is printed above interactive runs
const Logo = `
   ┌─┐┌─┐┬  ┌─┐┬─┐┌┬┐┬─┐┌─┐┬ ┬┬
   │  │ ││  │ │├┬┘ │ ├┬┘├─┤││││
   └─┘└─┘┴─┘└─┘┴└─ ┴ ┴└─┴ ┴└┴┘┴─┘
   every color, ranked by interactions
`

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	colored           = isTerminal(os.Stdout)
	quiet   bool
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// Configure sets the output writer. Color is used only when w is a terminal
// and noColor is false. Quiet suppresses everything except errors.
func Configure(w io.Writer, noColor, silent bool) {
	mu.Lock()
	defer mu.Unlock()

	out = w
	colored = !noColor && isTerminal(w)
	quiet = silent
}

// Output returns the current writer
func Output() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// IsQuiet reports whether non-error output is suppressed
func IsQuiet() bool {
	mu.Lock()
	defer mu.Unlock()
	return quiet
}

// IsInteractive reports whether output goes to a terminal
func IsInteractive() bool {
	mu.Lock()
	defer mu.Unlock()
	return isTerminal(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorize returns a function that wraps text with ANSI color codes while
// color output is enabled
func colorize(colorString string) func(string) string {
	return func(text string) string {
		mu.Lock()
		enabled := colored
		mu.Unlock()

		if !enabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func printf(format string, args ...interface{}) {
	if IsQuiet() {
		return
	}
	fmt.Fprintf(Output(), format, args...)
}

// PrintLogo prints the logo with color
func PrintLogo() {
	printf("%s", Cyan(Logo))
}

// PrintError prints an error message in red. Errors are shown in quiet mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output(), Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printf("%s\n", Green(msg))
}

// PrintInfo prints a labelled value
func PrintInfo(label string, value string) {
	printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	printf("%s\n", Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printf("%s\n", Magenta(msg))
}
