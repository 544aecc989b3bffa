package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/mouse-blink/scopefix/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// TUI implements UI using Bubble Tea for interactive display. Short listings
// are printed directly; long ones open a scrollable pager.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayEstimation shows per-file edit counts.
func (p *TUI) DisplayEstimation(ctx context.Context, reports []m.FileReport, err error) error {
	return p.display(ctx, reports, err, "scopefix: estimated edits")
}

// DisplayConversion shows the conversion outcome.
func (p *TUI) DisplayConversion(ctx context.Context, reports []m.FileReport, err error) error {
	return p.display(ctx, reports, err, "scopefix: conversion results")
}

// DisplayDiff prints one dry-run diff verbatim; diffs are not paginated.
func (p *TUI) DisplayDiff(ctx context.Context, _ m.Path, diff string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	_, err := fmt.Fprint(p.output, diff)

	return err
}

func (p *TUI) display(ctx context.Context, reports []m.FileReport, err error, title string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		_, werr := fmt.Fprintln(p.output, errorStyle.Render(fmt.Sprintf("error: %v", err)))
		if werr != nil {
			return werr
		}
	}

	if len(reports) == 0 {
		return nil
	}

	sorted := make([]m.FileReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	model := newReportModel(title, sorted)

	if f, ok := p.output.(*os.File); ok {
		width, height, sizeErr := term.GetSize(int(f.Fd()))
		if sizeErr == nil {
			model.width = width
			model.height = height
		}
	}

	if !model.needsPagination() {
		_, werr := fmt.Fprint(p.output, model.View())
		return werr
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, runErr := program.Run(); runErr != nil {
		return runErr
	}

	return nil
}

// chromeLines is the number of non-list lines in the pager view (title,
// totals, key help).
const chromeLines = 4

// reportModel is the Bubble Tea model for the file-report pager.
type reportModel struct {
	title    string
	reports  []m.FileReport
	width    int
	height   int
	offset   int
	quitting bool
}

func newReportModel(title string, reports []m.FileReport) reportModel {
	return reportModel{title: title, reports: reports}
}

func (rm reportModel) Init() tea.Cmd {
	return nil
}

func (rm reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.width = msg.Width
		rm.height = msg.Height

		return rm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			rm.quitting = true
			return rm, tea.Quit

		case "up", "k":
			if rm.offset > 0 {
				rm.offset--
			}

		case "down", "j":
			if rm.offset < len(rm.reports)-rm.pageSize() {
				rm.offset++
			}

		case "pgup":
			rm.offset -= rm.pageSize()
			if rm.offset < 0 {
				rm.offset = 0
			}

		case "pgdown":
			rm.offset += rm.pageSize()
			if max := len(rm.reports) - rm.pageSize(); rm.offset > max {
				rm.offset = max
			}
		}
	}

	return rm, nil
}

func (rm reportModel) View() string {
	if rm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(rm.title))
	b.WriteString("\n\n")

	start, end := rm.offset, len(rm.reports)
	if rm.needsPagination() {
		end = start + rm.pageSize()
		if end > len(rm.reports) {
			end = len(rm.reports)
		}
	} else {
		start = 0
	}

	totalInserts, totalRewrites := 0, 0

	for _, r := range rm.reports {
		totalInserts += r.ScopeInserts
		totalRewrites += r.ThisRanges
	}

	for _, r := range rm.reports[start:end] {
		b.WriteString(renderReportLine(r))
		b.WriteByte('\n')
	}

	b.WriteString(fmt.Sprintf("\n%d file(s), %d scope insert(s), %d this range(s)\n",
		len(rm.reports), totalInserts, totalRewrites))

	if rm.needsPagination() {
		b.WriteString(faintStyle.Render("↑/↓ scroll · q quit"))
		b.WriteByte('\n')
	}

	return b.String()
}

func renderReportLine(r m.FileReport) string {
	counts := fmt.Sprintf("%3d scope  %3d this", r.ScopeInserts, r.ThisRanges)
	if r.ScopeInserts == 0 && r.ThisRanges == 0 {
		counts = faintStyle.Render(counts)
	}

	line := fmt.Sprintf("  %s  %s", counts, r.Path)

	switch {
	case r.Error != "":
		return errorStyle.Render(line + "  (" + r.Error + ")")
	case r.Written:
		return okStyle.Render(line)
	default:
		return line
	}
}

func (rm reportModel) pageSize() int {
	size := rm.height - chromeLines
	if size < 1 {
		return 1
	}

	return size
}

func (rm reportModel) needsPagination() bool {
	return rm.height > 0 && len(rm.reports)+chromeLines > rm.height
}
