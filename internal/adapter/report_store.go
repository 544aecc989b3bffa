package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/scopefix/internal/model"
)

// ReportStore persists conversion summaries.
type ReportStore interface {
	Save(path m.Path, summary m.Summary) error
	Load(path m.Path) (m.Summary, error)
}

// YAMLReportStore implements ReportStore with YAML files.
type YAMLReportStore struct{}

// NewYAMLReportStore constructs a YAMLReportStore.
func NewYAMLReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// Save writes the summary to path as YAML.
func (s *YAMLReportStore) Save(path m.Path, summary m.Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// Load reads a previously saved summary.
func (s *YAMLReportStore) Load(path m.Path) (m.Summary, error) {
	var summary m.Summary

	data, err := os.ReadFile(string(path))
	if err != nil {
		return summary, fmt.Errorf("read report %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("unmarshal report %s: %w", path, err)
	}

	return summary, nil
}
