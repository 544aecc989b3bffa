// Package controller provides output adapters for displaying conversion
// results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "github.com/mouse-blink/scopefix/internal/model"
)

// UI defines the interface for presenting conversion results.
// Implementations can use different output methods (simple text, TUI).
type UI interface {
	// DisplayEstimation shows per-file edit counts for a list run.
	DisplayEstimation(ctx context.Context, reports []m.FileReport, err error) error

	// DisplayConversion shows the outcome of a conversion run.
	DisplayConversion(ctx context.Context, reports []m.FileReport, err error) error

	// DisplayDiff prints one file's dry-run diff.
	DisplayDiff(ctx context.Context, path m.Path, diff string) error
}

// NewUI selects the UI implementation for the environment: an interactive
// terminal gets the paginated TUI, everything else plain text.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
