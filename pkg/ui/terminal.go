package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ASCII logo for the application
const ASCIILogo = `
    ╔══════════════════════════════════════════════╗
    ║ ████████╗██╗    ██╗███████╗ ██████╗ ██╗      ║
    ║ ╚══██╔══╝██║    ██║██╔════╝██╔═══██╗██║      ║
    ║    ██║   ██║ █╗ ██║█████╗  ██║   ██║██║      ║
    ║    ██║   ██║███╗██║██╔══╝  ██║   ██║██║      ║
    ║    ██║   ╚███╔███╔╝██║     ╚██████╔╝███████╗ ║
    ║    ╚═╝    ╚══╝╚══╝ ╚═╝      ╚═════╝ ╚══════╝ ║
    ║          twitter follow automation           ║
    ╚══════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// Printer writes colored CLI output. Colors are dropped when the output is
// not a terminal.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a printer on out
func NewPrinter(out io.Writer) *Printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{out: out, color: color}
}

func (p *Printer) paint(c func(string) string, s string) string {
	if !p.color {
		return s
	}
	return c(s)
}

// Logo prints the ASCII logo
func (p *Printer) Logo() {
	fmt.Fprint(p.out, p.paint(Cyan, ASCIILogo))
}

// Error prints an error message in red, followed by err when given
func (p *Printer) Error(msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	fmt.Fprintln(p.out, p.paint(Red, msg))
}

// Success prints a success message in green
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, p.paint(Green, msg))
}

// Info prints a label and value
func (p *Printer) Info(label, value string) {
	fmt.Fprintf(p.out, "%s: %s\n", p.paint(Cyan, label), p.paint(Yellow, value))
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(msg string) {
	fmt.Fprintln(p.out, p.paint(Yellow, msg))
}

// Highlight prints a highlighted message in magenta
func (p *Printer) Highlight(msg string) {
	fmt.Fprintln(p.out, p.paint(Magenta, msg))
}

// Plain prints msg unchanged
func (p *Printer) Plain(msg string) {
	fmt.Fprintln(p.out, msg)
}
