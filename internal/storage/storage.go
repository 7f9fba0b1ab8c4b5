package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vipteryx/centretracker/internal/schedule"
	"github.com/vipteryx/centretracker/internal/scraper"
)

// DebugHTMLName is the file written when extraction finds nothing
const DebugHTMLName = "debug-page.html"

// Publisher delivers a finished schedule and returns where it went
type Publisher interface {
	Publish(ctx context.Context, name string, result *schedule.Result) (string, error)
}

// Storage handles persistence of schedules and snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// ExpandHome expands a leading ~/ to the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// Path resolves name against the data directory. Absolute names are returned unchanged.
func (s *Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}

// LoadResult loads a previously written schedule. A missing file yields an empty result
// with no lastUpdated stamp.
func (s *Storage) LoadResult(name string) (*schedule.Result, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return &schedule.Result{Days: []schedule.Day{}}, nil
		}
		return nil, fmt.Errorf("reading result: %w", err)
	}

	var result schedule.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}
	if result.Days == nil {
		result.Days = []schedule.Day{}
	}
	return &result, nil
}

// SaveResult writes result as indented JSON
func (s *Storage) SaveResult(name string, result *schedule.Result) error {
	data, err := MarshalResult(result)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// Publish saves the result locally and returns its path
func (s *Storage) Publish(_ context.Context, name string, result *schedule.Result) (string, error) {
	if err := s.SaveResult(name, result); err != nil {
		return "", err
	}
	return s.Path(name), nil
}

// MarshalResult encodes a result the way it is written to disk: two-space indent with a
// trailing newline.
func MarshalResult(result *schedule.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("encoding result: nil result")
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveJSON writes any value as indented JSON, e.g. a page summary
func (s *Storage) SaveJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := writeFileAtomic(s.Path(name), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// SaveDebugHTML writes the rendered page markup for inspection and returns its path
func (s *Storage) SaveDebugHTML(name, html string) (string, error) {
	if name == "" {
		name = DebugHTMLName
	}
	path := s.Path(name)
	if err := writeFileAtomic(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("writing debug HTML: %w", err)
	}
	return path, nil
}

// SaveSnapshot writes a captured snapshot so it can be replayed offline
func (s *Storage) SaveSnapshot(name string, snap *scraper.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := writeFileAtomic(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot
func (s *Storage) LoadSnapshot(name string) (*scraper.Snapshot, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	return scraper.ReadSnapshot(f)
}

// writeFileAtomic writes to a temp file in the target directory and renames it into place
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
