package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/scopefix/internal/adapter"
	"github.com/mouse-blink/scopefix/internal/controller"
	"github.com/mouse-blink/scopefix/internal/dlang"
	m "github.com/mouse-blink/scopefix/internal/model"
)

// ScanArgs selects the source files a command operates on.
type ScanArgs struct {
	// Paths accepts Go-style path patterns: `./...` walks recursively, a
	// directory is scanned non-recursively, a file is taken as-is. Empty
	// means `./...`.
	Paths []m.Path

	// Exclude holds regular expressions filtering out matching paths.
	Exclude []string
}

// ConvertArgs parameterizes a conversion run.
type ConvertArgs struct {
	ScanArgs

	// Threads is the number of parallel per-file workers.
	Threads int

	// Write applies the conversion in place. Without it (and without
	// DryRun) the run only reports what would change.
	Write bool

	// DryRun prints unified diffs instead of writing.
	DryRun bool

	// KeepGoing records per-file failures and continues with the rest of
	// the batch instead of aborting on the first fatal error.
	KeepGoing bool

	// Report, when set, receives a YAML summary of the run.
	Report m.Path
}

// Workflow orchestrates the conversion pipeline: file discovery, the
// alias-indexing pre-pass, the per-file traversal, and the rewrite.
type Workflow interface {
	// Estimate lists the per-file edit counts without touching anything.
	Estimate(ctx context.Context, args ScanArgs) error

	// Convert runs the full pipeline.
	Convert(ctx context.Context, args ConvertArgs) error

	// Index scans the given paths and persists the alias table, returning
	// the number of indexed names.
	Index(ctx context.Context, args ScanArgs) (int, error)
}

type workflow struct {
	fs       adapter.SourceFSAdapter
	dfiles   adapter.DFileAdapter
	rewriter adapter.Rewriter
	reports  adapter.ReportStore
	symbols  adapter.SymbolStore
	ui       controller.UI
}

// NewWorkflow wires a Workflow from its collaborators.
func NewWorkflow(
	fs adapter.SourceFSAdapter,
	dfiles adapter.DFileAdapter,
	rewriter adapter.Rewriter,
	reports adapter.ReportStore,
	symbols adapter.SymbolStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		fs:       fs,
		dfiles:   dfiles,
		rewriter: rewriter,
		reports:  reports,
		symbols:  symbols,
		ui:       ui,
	}
}

// parsedSource caches one file's lex/parse result between the indexing
// pre-pass and the traversal phase.
type parsedSource struct {
	path   m.Path
	src    []byte
	tokens []dlang.Token
	mod    *dlang.Module
	err    error
}

func (w *workflow) Estimate(ctx context.Context, args ScanArgs) error {
	parsed, table, err := w.prepare(args, true)
	if err != nil {
		return w.ui.DisplayEstimation(ctx, nil, err)
	}

	reports := make([]m.FileReport, len(parsed))

	for i, ps := range parsed {
		reports[i] = w.estimateFile(ps, table)
	}

	return w.ui.DisplayEstimation(ctx, reports, nil)
}

func (w *workflow) Convert(ctx context.Context, args ConvertArgs) error {
	parsed, table, err := w.prepare(args.ScanArgs, true)
	if err != nil {
		return w.ui.DisplayConversion(ctx, nil, err)
	}

	threads := args.Threads
	if threads < 1 {
		threads = 1
	}

	reports := make([]m.FileReport, len(parsed))
	diffs := make([]string, len(parsed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for i, ps := range parsed {
		i, ps := i, ps
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			report, diff, err := w.convertFile(ps, table, args)
			reports[i] = report
			diffs[i] = diff

			if err != nil && !args.KeepGoing {
				return err
			}

			return nil
		})
	}

	runErr := g.Wait()

	if args.DryRun {
		for i, diff := range diffs {
			if diff == "" {
				continue
			}

			if err := w.ui.DisplayDiff(ctx, reports[i].Path, diff); err != nil {
				return err
			}
		}
	}

	if err := w.ui.DisplayConversion(ctx, reports, runErr); err != nil {
		return err
	}

	if args.Report != "" {
		if err := w.reports.Save(args.Report, m.Summarize(reports)); err != nil {
			return err
		}
	}

	return runErr
}

func (w *workflow) Index(ctx context.Context, args ScanArgs) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	_, table, err := w.prepare(args, false)
	if err != nil {
		return 0, err
	}

	if err := w.symbols.Save(table.Entries()); err != nil {
		return 0, err
	}

	return table.Len(), nil
}

// prepare discovers the input files, lexes and parses them once, and builds
// the alias table. Table population completes before any visitor runs, so
// the table is strictly read-only during the traversal phase.
func (w *workflow) prepare(args ScanArgs, seed bool) ([]*parsedSource, *AliasTable, error) {
	files, err := w.discover(args)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("discovered source files", "count", len(files))

	indexer := NewAliasIndexer()

	if seed {
		persisted, err := w.symbols.Load()
		if err != nil {
			return nil, nil, err
		}

		indexer.Seed(persisted)
	}

	parsed := make([]*parsedSource, 0, len(files))

	for _, path := range files {
		ps := w.parseFile(path)
		parsed = append(parsed, ps)

		if ps.err == nil {
			indexer.Collect(ps.mod)
		}
	}

	table := indexer.Finish()
	slog.Debug("alias table built", "entries", table.Len())

	return parsed, table, nil
}

func (w *workflow) parseFile(path m.Path) *parsedSource {
	ps := &parsedSource{path: path}

	ps.src, ps.err = w.fs.ReadFile(path)
	if ps.err != nil {
		return ps
	}

	ps.tokens, ps.err = w.dfiles.Lex(path, ps.src)
	if ps.err != nil {
		return ps
	}

	ps.mod, ps.err = w.dfiles.Parse(path, ps.tokens)

	return ps
}

func (w *workflow) estimateFile(ps *parsedSource, table *AliasTable) m.FileReport {
	report := m.FileReport{Path: ps.path}

	mappings, err := w.mapFile(ps, table)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	report.ScopeInserts = mappings.ScopeDelegates.Len()
	report.ThisRanges = mappings.ValueAggregates.Len()
	report.Changed = report.ScopeInserts > 0 || report.ThisRanges > 0

	return report
}

func (w *workflow) convertFile(ps *parsedSource, table *AliasTable, args ConvertArgs) (m.FileReport, string, error) {
	report := m.FileReport{Path: ps.path}

	mappings, err := w.mapFile(ps, table)
	if err != nil {
		report.Error = err.Error()
		return report, "", err
	}

	report.ScopeInserts = mappings.ScopeDelegates.Len()
	report.ThisRanges = mappings.ValueAggregates.Len()

	patched, rewrites := w.rewriter.Apply(
		ps.src, ps.tokens,
		mappings.ScopeDelegates.Intervals(),
		mappings.ValueAggregates.Intervals(),
	)

	report.ThisRewrites = rewrites
	report.Changed = report.ScopeInserts > 0 || rewrites > 0

	if !report.Changed {
		return report, "", nil
	}

	if args.DryRun {
		diff, err := w.rewriter.Diff(ps.path, ps.src, patched)
		if err != nil {
			report.Error = err.Error()
			return report, "", err
		}

		return report, diff, nil
	}

	if args.Write {
		perm := os.FileMode(0o644)
		if info, err := w.fs.FileInfo(ps.path); err == nil {
			perm = info.Mode().Perm()
		}

		if err := w.fs.WriteFile(ps.path, patched, perm); err != nil {
			report.Error = err.Error()
			return report, "", err
		}

		report.Written = true
		slog.Info("converted file", "path", ps.path, "scope_inserts", report.ScopeInserts, "this_rewrites", rewrites)
	}

	return report, "", nil
}

// mapFile runs the single-pass traversal for one file. A fresh Visitor is
// created per file; instances are single-use.
func (w *workflow) mapFile(ps *parsedSource, table *AliasTable) (*TokenMappings, error) {
	if ps.err != nil {
		return nil, ps.err
	}

	visitor := NewVisitor(string(ps.path), ps.tokens, table)

	return visitor.Walk(ps.mod)
}

func (w *workflow) discover(args ScanArgs) ([]m.Path, error) {
	patterns := args.Paths
	if len(patterns) == 0 {
		patterns = []m.Path{"./..."}
	}

	exclude, err := compilePatterns(args.Exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[m.Path]bool)

	var files []m.Path

	collect := func(path m.Path) {
		if seen[path] || excluded(exclude, path) {
			return
		}

		seen[path] = true
		files = append(files, path)
	}

	for _, pattern := range patterns {
		root, recursive := splitPattern(pattern)

		info, err := w.fs.FileInfo(root)
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", root, err)
		}

		if !info.IsDir() {
			if isDSource(string(root)) {
				collect(root)
			}

			continue
		}

		err = w.fs.Walk(root, recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() && isDSource(path) {
				collect(m.Path(path))
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	return files, nil
}

// splitPattern peels the Go-style `/...` recursion marker off a path.
func splitPattern(pattern m.Path) (m.Path, bool) {
	s := string(pattern)

	if s == "..." {
		return ".", true
	}

	if strings.HasSuffix(s, "/...") {
		root := strings.TrimSuffix(s, "/...")
		if root == "" {
			root = "."
		}

		return m.Path(root), true
	}

	return pattern, false
}

func isDSource(path string) bool {
	return strings.HasSuffix(path, ".d") || strings.HasSuffix(path, ".di")
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		out = append(out, re)
	}

	return out, nil
}

func excluded(patterns []*regexp.Regexp, path m.Path) bool {
	for _, re := range patterns {
		if re.MatchString(string(path)) {
			return true
		}
	}

	return false
}
