package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	m "github.com/mouse-blink/scopefix/internal/model"
)

func newBufferedCmd() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	return cmd, buf
}

func TestSimpleUIDisplayEstimation(t *testing.T) {
	cmd, buf := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	reports := []m.FileReport{
		{Path: "src/app.d", ScopeInserts: 2, ThisRanges: 1},
		{Path: "src/lib.d"},
	}

	if err := ui.DisplayEstimation(context.Background(), reports, nil); err != nil {
		t.Fatalf("DisplayEstimation failed: %v", err)
	}

	out := buf.String()

	for _, want := range []string{"src/app.d", "src/lib.d", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if !strings.Contains(strings.ToUpper(out), "TOTAL") {
		t.Errorf("output missing the totals footer:\n%s", out)
	}
}

func TestSimpleUIDisplayConversion(t *testing.T) {
	t.Run("statuses per file", func(t *testing.T) {
		cmd, buf := newBufferedCmd()
		ui := NewSimpleUI(cmd)

		reports := []m.FileReport{
			{Path: "written.d", Changed: true, Written: true},
			{Path: "pending.d", Changed: true},
			{Path: "clean.d"},
			{Path: "broken.d", Error: "parse failed"},
		}

		if err := ui.DisplayConversion(context.Background(), reports, nil); err != nil {
			t.Fatalf("DisplayConversion failed: %v", err)
		}

		out := buf.String()

		for _, want := range []string{"written", "needs conversion", "clean", "failed: parse failed"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("run error is printed", func(t *testing.T) {
		cmd, buf := newBufferedCmd()
		ui := NewSimpleUI(cmd)

		if err := ui.DisplayConversion(context.Background(), nil, errors.New("boom")); err != nil {
			t.Fatalf("DisplayConversion failed: %v", err)
		}

		if !strings.Contains(buf.String(), "conversion error: boom") {
			t.Errorf("output missing the error:\n%s", buf.String())
		}
	})
}

func TestSimpleUIDisplayDiff(t *testing.T) {
	cmd, buf := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	if err := ui.DisplayDiff(context.Background(), "app.d", "-old\n+new\n"); err != nil {
		t.Fatalf("DisplayDiff failed: %v", err)
	}

	if buf.String() != "-old\n+new\n" {
		t.Errorf("diff not passed through verbatim: %q", buf.String())
	}
}

func TestSimpleUICanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd, _ := newBufferedCmd()
	ui := NewSimpleUI(cmd)

	if err := ui.DisplayEstimation(ctx, nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestReportStatus(t *testing.T) {
	tests := []struct {
		name   string
		report m.FileReport
		want   string
	}{
		{"failed wins", m.FileReport{Error: "x", Written: true, Changed: true}, "failed: x"},
		{"written", m.FileReport{Written: true, Changed: true}, "written"},
		{"needs conversion", m.FileReport{Changed: true}, "needs conversion"},
		{"clean", m.FileReport{}, "clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reportStatus(tt.report); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewUISelectsImplementation(t *testing.T) {
	cmd, _ := newBufferedCmd()

	if _, ok := NewUI(cmd, false).(*SimpleUI); !ok {
		t.Error("non-TTY output must use the plain UI")
	}

	if _, ok := NewUI(cmd, true).(*TUI); !ok {
		t.Error("TTY output must use the paginated UI")
	}
}
