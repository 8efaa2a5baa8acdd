package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReportArchive keeps rendered reports on disk under a base directory.
type ReportArchive struct {
	baseDir string
	now     func() time.Time
}

// StoredReport describes one archived file.
type StoredReport struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// NewReportArchive creates the base directory when missing.
func NewReportArchive(baseDir string) (*ReportArchive, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &ReportArchive{baseDir: baseDir, now: time.Now}, nil
}

// Save writes data under name and returns the full path. Names may not leave the archive.
func (a *ReportArchive) Save(name string, data []byte) (string, error) {
	path, err := a.resolve(name)
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalise report: %w", err)
	}
	return path, nil
}

// List returns archived reports, newest first.
func (a *ReportArchive) List() ([]StoredReport, error) {
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read report directory: %w", err)
	}
	out := make([]StoredReport, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat report: %w", err)
		}
		out = append(out, StoredReport{
			Name:    e.Name(),
			Path:    filepath.Join(a.baseDir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].Name > out[j].Name
		}
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// CleanupOlderThan removes reports older than ttl and returns their names.
func (a *ReportArchive) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	reports, err := a.List()
	if err != nil {
		return nil, err
	}
	cutoff := a.now().Add(-ttl)
	deleted := make([]string, 0)
	for _, r := range reports {
		if r.ModTime.After(cutoff) {
			continue
		}
		if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("cleanup reports: %w", err)
		}
		deleted = append(deleted, r.Name)
	}
	return deleted, nil
}

func (a *ReportArchive) resolve(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if clean == "." || clean == string(filepath.Separator) || clean != name {
		return "", fmt.Errorf("invalid report name %q", name)
	}
	return filepath.Join(a.baseDir, clean), nil
}
