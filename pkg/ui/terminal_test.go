package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinterWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Error("follow failed", errors.New("not logged in"))
	p.Success("done")
	p.Info("Account", "me")
	p.Warning("careful")

	assert.Equal(t, "follow failed: not logged in\ndone\nAccount: me\ncareful\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[32mok\033[0m", Green("ok"))

	var buf bytes.Buffer
	p := &Printer{out: &buf, color: true}
	p.Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", buf.String())
}

func TestQuotaBar(t *testing.T) {
	assert.Equal(t, "[██████████░░░░░░░░░░] 24/48", QuotaBar(24, 48))
	assert.Equal(t, "[████████████████████] 60/48", QuotaBar(60, 48))
	assert.Equal(t, "[░░░░░░░░░░░░░░░░░░░░] 0/10", QuotaBar(0, 10))
	assert.Equal(t, "3/unlimited", QuotaBar(3, 0))
}

func TestSummarySkipsZeroCounts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Summary("Run finished", Counts{
		{"followed", 2},
		{"restricted", 0},
	})

	assert.Contains(t, buf.String(), "Run finished")
	assert.Contains(t, buf.String(), "followed")
	assert.NotContains(t, buf.String(), "restricted")
}
