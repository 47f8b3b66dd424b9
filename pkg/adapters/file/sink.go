package file

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
)

// Sink implements ports.ReportSink using the local filesystem.
// It stores reports as JSON files in a configured directory.
type Sink struct {
	BasePath string
}

// NewSink creates a new Sink with the given base path.
// If basePath is empty, it defaults to ".typeguard/reports".
func NewSink(basePath string) *Sink {
	if basePath == "" {
		basePath = filepath.Join(".typeguard", "reports")
	}
	return &Sink{BasePath: basePath}
}

func (s *Sink) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid report id %q", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Record persists the report to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Sink) Record(ctx context.Context, report violation.Report) error {
	destPath, err := s.path(report.ID)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+report.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing report file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to report: %w", err)
	}
	return nil
}

// Load retrieves a report from its JSON file.
func (s *Sink) Load(ctx context.Context, id string) (violation.Report, error) {
	filePath, err := s.path(id)
	if err != nil {
		return violation.Report{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return violation.Report{}, ports.ErrReportNotFound
		}
		return violation.Report{}, fmt.Errorf("failed to read report file: %w", err)
	}

	var report violation.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return violation.Report{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report, nil
}

// Recent returns up to limit reports, newest first.
func (s *Sink) Recent(ctx context.Context, limit int) ([]violation.Report, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []violation.Report{}, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]violation.Report, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		report, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	slices.SortFunc(reports, func(a, b violation.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// Delete removes the report file.
func (s *Sink) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete report file: %w", err)
	}
	return nil
}
