package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mouse-blink/scopefix/internal/adapter"
	m "github.com/mouse-blink/scopefix/internal/model"
)

// captureUI records everything the workflow hands to the presentation layer.
type captureUI struct {
	estimation []m.FileReport
	conversion []m.FileReport
	runErr     error
	diffs      []string
}

func (u *captureUI) DisplayEstimation(_ context.Context, reports []m.FileReport, err error) error {
	u.estimation = reports
	return err
}

func (u *captureUI) DisplayConversion(_ context.Context, reports []m.FileReport, err error) error {
	u.conversion = reports
	u.runErr = err

	return nil
}

func (u *captureUI) DisplayDiff(_ context.Context, _ m.Path, diff string) error {
	u.diffs = append(u.diffs, diff)
	return nil
}

func newTestWorkflow(t *testing.T, dbPath string) (Workflow, *captureUI) {
	t.Helper()

	ui := &captureUI{}
	wf := NewWorkflow(
		adapter.NewLocalSourceFSAdapter(),
		adapter.NewLocalDFileAdapter(),
		adapter.NewTokenRewriter(),
		adapter.NewYAMLReportStore(),
		adapter.NewBoltSymbolStore(m.Path(dbPath)),
		ui,
	)

	return wf, ui
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func reportFor(t *testing.T, reports []m.FileReport, name string) m.FileReport {
	t.Helper()

	for _, r := range reports {
		if strings.HasSuffix(string(r.Path), name) {
			return r
		}
	}

	t.Fatalf("no report for %s in %v", name, reports)

	return m.FileReport{}
}

const appSource = `alias void delegate(int) Handler;

struct App {
	static this() {}
	void register(Handler h) {}
}
`

const widgetSource = `class Widget {
	void onClick(void delegate() cb) {}
}
`

func TestWorkflowEstimate(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "app.d", appSource)
	writeSource(t, dir, "widget.d", widgetSource)

	wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

	err := wf.Estimate(context.Background(), ScanArgs{Paths: []m.Path{m.Path(dir + "/...")}})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if len(ui.estimation) != 2 {
		t.Fatalf("got %d reports, want 2", len(ui.estimation))
	}

	app := reportFor(t, ui.estimation, "app.d")
	if app.ScopeInserts != 1 || !app.Changed {
		t.Errorf("app.d: got %+v, want one scope insert", app)
	}

	// struct body minus the static constructor span leaves two ranges
	if app.ThisRanges != 2 {
		t.Errorf("app.d: got %d this-ranges, want 2", app.ThisRanges)
	}

	widget := reportFor(t, ui.estimation, "widget.d")
	if widget.ScopeInserts != 1 || widget.ThisRanges != 0 {
		t.Errorf("widget.d: got %+v, want one insert and no ranges", widget)
	}
}

func TestWorkflowConvertWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "point.d", "struct Point {\n\tint x;\n\tthis(int x) { this.x = x; }\n}\n")

	wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

	err := wf.Convert(context.Background(), ConvertArgs{
		ScanArgs: ScanArgs{Paths: []m.Path{m.Path(path)}},
		Threads:  2,
		Write:    true,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	patched, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	want := "struct Point {\n\tint x;\n\tthis(int x) { (&this).x = x; }\n}\n"
	if string(patched) != want {
		t.Errorf("got:\n%s\nwant:\n%s", patched, want)
	}

	report := reportFor(t, ui.conversion, "point.d")
	if !report.Written || report.ThisRewrites != 1 {
		t.Errorf("got report %+v, want written with one rewrite", report)
	}
}

func TestWorkflowConvertDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "widget.d", widgetSource)

	wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

	err := wf.Convert(context.Background(), ConvertArgs{
		ScanArgs: ScanArgs{Paths: []m.Path{m.Path(path)}},
		DryRun:   true,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(ui.diffs) != 1 {
		t.Fatalf("got %d diffs, want 1", len(ui.diffs))
	}

	if !strings.Contains(ui.diffs[0], "scope void delegate()") {
		t.Errorf("diff does not show the insertion:\n%s", ui.diffs[0])
	}

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if string(original) != widgetSource {
		t.Error("dry run must not touch the file")
	}
}

func TestWorkflowConvertFailures(t *testing.T) {
	brokenSource := "struct Broken {\n"

	t.Run("first failure aborts by default", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "broken.d", brokenSource)

		wf, _ := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

		err := wf.Convert(context.Background(), ConvertArgs{
			ScanArgs: ScanArgs{Paths: []m.Path{m.Path(dir)}},
		})
		if err == nil {
			t.Fatal("expected the parse failure to surface")
		}
	})

	t.Run("keep-going records the failure and continues", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "broken.d", brokenSource)
		writeSource(t, dir, "widget.d", widgetSource)

		wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

		err := wf.Convert(context.Background(), ConvertArgs{
			ScanArgs:  ScanArgs{Paths: []m.Path{m.Path(dir)}},
			KeepGoing: true,
		})
		if err != nil {
			t.Fatalf("Convert failed despite keep-going: %v", err)
		}

		broken := reportFor(t, ui.conversion, "broken.d")
		if broken.Error == "" {
			t.Error("broken.d report should carry the error")
		}

		widget := reportFor(t, ui.conversion, "widget.d")
		if widget.Error != "" || widget.ScopeInserts != 1 {
			t.Errorf("widget.d: got %+v, want a clean report", widget)
		}
	})
}

func TestWorkflowConvertReportFile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "widget.d", widgetSource)
	reportPath := filepath.Join(dir, "report.yaml")

	wf, _ := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

	err := wf.Convert(context.Background(), ConvertArgs{
		ScanArgs: ScanArgs{Paths: []m.Path{m.Path(dir)}},
		Report:   m.Path(reportPath),
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	summary, err := adapter.NewYAMLReportStore().Load(m.Path(reportPath))
	if err != nil {
		t.Fatalf("load report: %v", err)
	}

	if len(summary.Files) != 1 || summary.Changed != 1 || summary.Failed != 0 {
		t.Errorf("got summary %+v", summary)
	}
}

func TestWorkflowIndex(t *testing.T) {
	libDir := t.TempDir()
	writeSource(t, libDir, "lib.d", "alias void delegate(int) Handler;\n")

	appDir := t.TempDir()
	appPath := writeSource(t, appDir, "app.d", "void register(Handler h) {}\n")

	dbPath := filepath.Join(libDir, "symbols.db")

	wf, _ := newTestWorkflow(t, dbPath)

	count, err := wf.Index(context.Background(), ScanArgs{Paths: []m.Path{m.Path(libDir)}})
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	if count != 1 {
		t.Errorf("got %d indexed aliases, want 1", count)
	}

	// a later run over a different tree resolves Handler from the store
	wf2, ui := newTestWorkflow(t, dbPath)

	if err := wf2.Estimate(context.Background(), ScanArgs{Paths: []m.Path{m.Path(appPath)}}); err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	app := reportFor(t, ui.estimation, "app.d")
	if app.ScopeInserts != 1 {
		t.Errorf("got %d scope inserts, want 1 via the persisted table", app.ScopeInserts)
	}
}

func TestWorkflowDiscovery(t *testing.T) {
	t.Run("exclude patterns filter paths", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "keep.d", widgetSource)
		writeSource(t, dir, "skip_gen.d", widgetSource)

		wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

		err := wf.Estimate(context.Background(), ScanArgs{
			Paths:   []m.Path{m.Path(dir)},
			Exclude: []string{`_gen\.d$`},
		})
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}

		if len(ui.estimation) != 1 || !strings.HasSuffix(string(ui.estimation[0].Path), "keep.d") {
			t.Errorf("got reports %+v, want keep.d only", ui.estimation)
		}
	})

	t.Run("invalid exclude pattern fails", func(t *testing.T) {
		wf, _ := newTestWorkflow(t, filepath.Join(t.TempDir(), "symbols.db"))

		err := wf.Estimate(context.Background(), ScanArgs{Exclude: []string{"("}})
		if err == nil {
			t.Fatal("expected an error for the invalid pattern")
		}
	})

	t.Run("non-recursive scan ignores subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "top.d", widgetSource)

		sub := filepath.Join(dir, "sub")
		if err := os.Mkdir(sub, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}

		writeSource(t, sub, "nested.d", widgetSource)

		wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

		if err := wf.Estimate(context.Background(), ScanArgs{Paths: []m.Path{m.Path(dir)}}); err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}

		if len(ui.estimation) != 1 || !strings.HasSuffix(string(ui.estimation[0].Path), "top.d") {
			t.Errorf("got reports %+v, want top.d only", ui.estimation)
		}
	})

	t.Run("non-source files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		writeSource(t, dir, "app.d", widgetSource)
		writeSource(t, dir, "iface.di", widgetSource)
		writeSource(t, dir, "notes.txt", "not D")

		wf, ui := newTestWorkflow(t, filepath.Join(dir, "symbols.db"))

		if err := wf.Estimate(context.Background(), ScanArgs{Paths: []m.Path{m.Path(dir + "/...")}}); err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}

		if len(ui.estimation) != 2 {
			t.Errorf("got %d reports, want app.d and iface.di", len(ui.estimation))
		}
	})
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern   m.Path
		root      m.Path
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"src/...", "src", true},
		{"/...", ".", true},
		{"./src", "./src", false},
		{"main.d", "main.d", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			root, recursive := splitPattern(tt.pattern)
			if root != tt.root || recursive != tt.recursive {
				t.Errorf("splitPattern(%q) = %q, %v; want %q, %v", tt.pattern, root, recursive, tt.root, tt.recursive)
			}
		})
	}
}
