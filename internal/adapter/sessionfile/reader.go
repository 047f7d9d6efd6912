// Package sessionfile reads session logs from, and writes session templates
// to, a directory of YAML files.
package sessionfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climbr-etl/internal/domain"
)

// ReadError reports a session file that could not be read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// SourcePath returns the file that failed.
func (e *ReadError) SourcePath() string { return e.Path }

// Reader loads every session log in a directory.
// It implements pipeline.SessionSource.
type Reader struct {
	dir    string
	logger *slog.Logger
}

// NewReader creates a Reader over dir. Subdirectories are not searched.
func NewReader(dir string, logger *slog.Logger) *Reader {
	return &Reader{dir: dir, logger: logger}
}

// Paths lists the session files in dir sorted by name.
func (r *Reader) Paths() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list session logs: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isSessionFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(r.dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// ReadSessions decodes every session file. Files that cannot be decoded are
// returned as *ReadError values alongside the logs that could, so the caller
// decides whether a bad file aborts the run.
func (r *Reader) ReadSessions(ctx context.Context) ([]domain.RawSessionLog, []error, error) {
	paths, err := r.Paths()
	if err != nil {
		return nil, nil, err
	}

	logs := make([]domain.RawSessionLog, 0, len(paths))
	var failures []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		fields, err := ReadFile(path)
		if err != nil {
			failures = append(failures, &ReadError{Path: path, Err: err})
			continue
		}
		r.logger.Debug("session log read", "path", path)
		logs = append(logs, domain.RawSessionLog{Path: path, Fields: fields})
	}
	return logs, failures, nil
}

// ReadFile decodes one YAML session log into a generic mapping.
func ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if fields == nil {
		return nil, errors.New("empty session log")
	}
	return fields, nil
}

func isSessionFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
