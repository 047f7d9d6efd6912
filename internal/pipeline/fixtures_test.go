package pipeline_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climbr-etl/internal/adapter/bulkfile"
	"github.com/couchcryptid/climbr-etl/internal/adapter/sessionfile"
	"github.com/couchcryptid/climbr-etl/internal/adapter/tz"
	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
	"github.com/couchcryptid/climbr-etl/internal/pipeline"
)

// TestPipeline_WithSessionFixtures runs the logs under testdata/sessions
// through the real reader, timezone resolver and bulk file writer.
func TestPipeline_WithSessionFixtures(t *testing.T) {
	out := t.TempDir()
	logger := discardLogger()

	p := pipeline.New(
		sessionfile.NewReader(filepath.Join("testdata", "sessions"), logger),
		pipeline.NewTransformer(tz.NewResolver(), nil, logger),
		[]pipeline.StreamLoader{bulkfile.NewWriter(out, logger)},
		logger,
		observability.NewMetricsForTesting(),
		pipeline.Options{},
	)
	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Read)
	assert.Equal(t, 3, summary.Indexed)

	sessions := readBulkFile(t, filepath.Join(out, "sessions.json"), domain.IndexSessions)
	require.Len(t, sessions, 3)

	t.Run("sessions are ordered by date", func(t *testing.T) {
		for i, want := range []string{"2022-01-08", "2022-01-15", "2022-06-18"} {
			assert.True(t, strings.HasPrefix(sessions[i]["date"].(string), want), "session %d date %v", i, sessions[i]["date"])
		}
	})

	t.Run("indoor session with age groups", func(t *testing.T) {
		s := sessions[1]
		assert.Equal(t, "Altitude Kanata", s["location"])
		assert.Equal(t, "America/Toronto", s["timezone"])
		assert.Equal(t, "2:30:00", s["duration"])
		assert.NotContains(t, s, "onsight")
		assert.EqualValues(t, 5, s["flash"])
		assert.EqualValues(t, 3, s["flash_kids"])
		assert.EqualValues(t, 2, s["flash_adult"])
		injury := s["injury"].(map[string]any)
		assert.Equal(t, false, injury["isTrue"])
		assert.Nil(t, injury["description"], "template placeholder is dropped")
	})

	t.Run("outdoor session", func(t *testing.T) {
		s := sessions[2]
		assert.Equal(t, "Hog's Back Falls", s["location"])
		assert.EqualValues(t, 1, s["onsight"])
		assert.EqualValues(t, 2, s["completed"])
		assert.Equal(t, "Evening session by the falls", s["description"])
		assert.Equal(t, []any{"Sam", "Alex"}, s["climbers"])
		assert.NotContains(t, s, "flash_kids")
	})

	t.Run("projects accumulate across sessions", func(t *testing.T) {
		projects := readBulkFile(t, filepath.Join(out, "projects.json"), domain.IndexProjects)
		require.Len(t, projects, 2)

		first, last := projects[0], projects[1]
		assert.EqualValues(t, 4, first["cumulative_attempts"])
		assert.Equal(t, false, first["is_completed"])
		assert.Equal(t, false, first["is_last"])

		assert.EqualValues(t, 6, last["cumulative_attempts"])
		assert.EqualValues(t, 1, last["cumulative_redpoint"])
		assert.EqualValues(t, 1, last["cumulative_completed"])
		assert.Equal(t, true, last["is_completed"])
		assert.Equal(t, true, last["is_last"])
		assert.Equal(t, []any{"crimp", "overhang"}, last["style"])
	})

	t.Run("counters carry the session summary", func(t *testing.T) {
		counters := readBulkFile(t, filepath.Join(out, "counters.json"), domain.IndexCounters)
		kanata, err := domain.FindLocation("Altitude Kanata")
		require.NoError(t, err)
		hogsBack, err := domain.FindLocation("Hog's Back Falls")
		require.NoError(t, err)
		require.Len(t, counters, 2*len(kanata.Grading)+len(hogsBack.Grading))

		last := counters[len(counters)-1]
		session := last["session"].(map[string]any)
		assert.Equal(t, "Hog's Back Falls", session["location"])
		assert.Equal(t, true, session["is_outdoor"])
		assert.Contains(t, last, "onsight")
	})
}

// readBulkFile decodes the document lines of a bulk file, checking that every
// action line targets index with sequential IDs.
func readBulkFile(t *testing.T, path, index string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var docs []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var action struct {
			Index struct {
				Index string `json:"_index"`
				ID    string `json:"_id"`
			} `json:"index"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &action))
		assert.Equal(t, index, action.Index.Index)

		require.True(t, scanner.Scan(), "action line without document")
		var doc map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc))
		docs = append(docs, doc)
	}
	require.NoError(t, scanner.Err())
	return docs
}
