// Package elasticsearch loads document streams through the Elasticsearch
// bulk API.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/climbr-etl/internal/domain"
)

// ItemFailure is one document the bulk API rejected.
type ItemFailure struct {
	ID     string
	Status int
	Type   string
	Reason string
}

// BulkError lists every rejected document of a bulk request.
type BulkError struct {
	Index    string
	Failures []ItemFailure
}

func (e *BulkError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%d %s: %s)", f.ID, f.Status, f.Type, f.Reason))
	}
	return fmt.Sprintf("bulk load %s: %d documents rejected: %s", e.Index, len(e.Failures), strings.Join(parts, "; "))
}

// Permanent reports that resending the same documents cannot succeed.
func (e *BulkError) Permanent() bool { return true }

// Client writes document streams to Elasticsearch.
// It implements pipeline.StreamLoader.
type Client struct {
	baseURL    string
	httpClient *http.Client
	batchSize  int
	logger     *slog.Logger
}

// NewClient creates a bulk client. Streams are sent in requests of at most
// batchSize documents.
func NewClient(baseURL string, timeout time.Duration, batchSize int, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		batchSize: batchSize,
		logger:    logger,
	}
}

// Name identifies the sink in logs and metrics.
func (c *Client) Name() string { return "elasticsearch" }

// LoadStream bulk-indexes the stream. Documents keep their stream IDs, so a
// rerun overwrites the previous run's documents.
func (c *Client) LoadStream(ctx context.Context, stream domain.Stream) error {
	docs := stream.Documents
	size := c.batchSize
	if size <= 0 {
		size = len(docs)
	}
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		if err := c.bulk(ctx, stream.Index, docs[start:end]); err != nil {
			return err
		}
		c.logger.Debug("bulk request indexed", "index", stream.Index, "from", start, "count", end-start)
	}
	return nil
}

func (c *Client) bulk(ctx context.Context, index string, docs []domain.Document) error {
	var body bytes.Buffer
	if err := WriteBulk(&body, docs); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/_bulk", &body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bulk request %s: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elasticsearch API error: status %d: %s", resp.StatusCode, msg)
	}

	var bulkResp bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !bulkResp.Errors {
		return nil
	}

	bulkErr := &BulkError{Index: index}
	for _, item := range bulkResp.Items {
		for _, result := range item {
			if result.Error == nil {
				continue
			}
			bulkErr.Failures = append(bulkErr.Failures, ItemFailure{
				ID:     result.ID,
				Status: result.Status,
				Type:   result.Error.Type,
				Reason: result.Error.Reason,
			})
		}
	}
	return bulkErr
}

// Bulk API response types.

type bulkResponse struct {
	Errors bool                        `json:"errors"`
	Items  []map[string]bulkItemResult `json:"items"` // keyed by action, e.g. "index"
}

type bulkItemResult struct {
	Index  string     `json:"_index"`
	ID     string     `json:"_id"`
	Status int        `json:"status"`
	Error  *itemError `json:"error,omitempty"`
}

type itemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
