package model

// FileReport holds the conversion outcome for a single source file.
type FileReport struct {
	Path         Path   `yaml:"path"`
	ScopeInserts int    `yaml:"scope_inserts"`
	ThisRanges   int    `yaml:"this_ranges"`
	ThisRewrites int    `yaml:"this_rewrites"`
	Changed      bool   `yaml:"changed"`
	Written      bool   `yaml:"written"`
	Error        string `yaml:"error,omitempty"`
}

// Summary aggregates reports for an entire run.
type Summary struct {
	Files   []FileReport `yaml:"files"`
	Failed  int          `yaml:"failed"`
	Changed int          `yaml:"changed"`
}

// Summarize builds a Summary from per-file reports.
func Summarize(reports []FileReport) Summary {
	s := Summary{Files: reports}

	for _, r := range reports {
		if r.Error != "" {
			s.Failed++
		}

		if r.Changed {
			s.Changed++
		}
	}

	return s
}
