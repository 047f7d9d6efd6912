// Package bulkfile writes document streams as bulk API files that can be
// replayed against a search backend with a single _bulk request.
package bulkfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/climbr-etl/internal/adapter/elasticsearch"
	"github.com/couchcryptid/climbr-etl/internal/domain"
)

// Writer writes each stream to <dir>/<index>.json, replacing the previous file.
// It implements pipeline.StreamLoader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "file" }

// Path returns the file a stream for index is written to.
func (w *Writer) Path(index string) string {
	return filepath.Join(w.dir, index+".json")
}

// LoadStream writes the stream to a temporary file and renames it into
// place, so readers never observe a partial file.
func (w *Writer) LoadStream(_ context.Context, stream domain.Stream) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, "."+stream.Index+"-*.json")
	if err != nil {
		return fmt.Errorf("create bulk file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := elasticsearch.WriteBulk(tmp, stream.Documents); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write bulk file: %w", err)
	}

	path := w.Path(stream.Index)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace bulk file: %w", err)
	}
	w.logger.Debug("bulk file written", "path", path, "documents", len(stream.Documents))
	return nil
}
