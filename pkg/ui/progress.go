package ui

import (
	"fmt"
	"strings"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// QuotaBar renders used against peak, e.g. "[██████░░...] 12/48".
// A zero peak is unlimited.
func QuotaBar(used, peak int) string {
	if peak <= 0 {
		return fmt.Sprintf("%d/unlimited", used)
	}

	filled := used * barWidth / peak
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, used, peak)
}

// Counts is a labelled tally printed in order
type Counts []struct {
	Label string
	Value int
}

// Summary prints a title followed by the non-zero counts
func (p *Printer) Summary(title string, counts Counts) {
	fmt.Fprintln(p.out, p.paint(Magenta, title))
	for _, c := range counts {
		if c.Value == 0 {
			continue
		}
		fmt.Fprintf(p.out, "  %-18s %d\n", p.paint(Cyan, c.Label), c.Value)
	}
}
