package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Terminal prints toast-style messages to a terminal writer.
// Colours are dropped automatically when the writer is not a TTY.
type Terminal struct {
	out     io.Writer
	success lipgloss.Style
	failure lipgloss.Style
}

// NewTerminal creates a notifier writing to out.
func NewTerminal(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:     out,
		success: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Success reports a completed action.
func (t *Terminal) Success(msg string) {
	fmt.Fprintln(t.out, t.success.Render("✓ "+msg))
}

// Error reports a failed action.
func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.out, t.failure.Render("✗ "+msg))
}
