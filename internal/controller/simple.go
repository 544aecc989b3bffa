package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/scopefix/internal/model"
)

// SimpleUI implements UI using cobra Command's Println.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayEstimation prints the per-file edit counts or the error.
func (s *SimpleUI) DisplayEstimation(ctx context.Context, reports []m.FileReport, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("estimation error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderReportTable(reports, false))

	return nil
}

// DisplayConversion prints the conversion outcome or the error.
func (s *SimpleUI) DisplayConversion(ctx context.Context, reports []m.FileReport, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("conversion error: %v\n", err)
	}

	if len(reports) > 0 {
		s.printf("\n%s", renderReportTable(reports, true))
	}

	return nil
}

// DisplayDiff prints one dry-run diff verbatim.
func (s *SimpleUI) DisplayDiff(ctx context.Context, _ m.Path, diff string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.printf("%s", diff)

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Print(fmt.Sprintf(format, args...))
}

func renderReportTable(reports []m.FileReport, conversion bool) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)

	header := []string{"File", "Scope Inserts", "This Ranges"}
	if conversion {
		header = append(header, "Status")
	}

	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	totalInserts, totalRanges := 0, 0

	for _, r := range reports {
		row := []string{string(r.Path), strconv.Itoa(r.ScopeInserts), strconv.Itoa(r.ThisRanges)}
		if conversion {
			row = append(row, reportStatus(r))
		}

		table.Append(row)

		totalInserts += r.ScopeInserts
		totalRanges += r.ThisRanges
	}

	footer := []string{"Total", strconv.Itoa(totalInserts), strconv.Itoa(totalRanges)}
	if conversion {
		footer = append(footer, "")
	}

	table.SetFooter(footer)
	table.Render()

	return buf.String()
}

func reportStatus(r m.FileReport) string {
	switch {
	case r.Error != "":
		return "failed: " + r.Error
	case r.Written:
		return "written"
	case r.Changed:
		return "needs conversion"
	default:
		return "clean"
	}
}
