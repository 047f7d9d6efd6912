package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
	"github.com/couchcryptid/climbr-etl/internal/pipeline"
)

// --- fakes ---

type fakeSource struct {
	logs     []domain.RawSessionLog
	failures []error
	err      error
}

func (f *fakeSource) ReadSessions(context.Context) ([]domain.RawSessionLog, []error, error) {
	return f.logs, f.failures, f.err
}

type pathError struct {
	path string
}

func (e *pathError) Error() string      { return "decode yaml: mapping values are not allowed" }
func (e *pathError) SourcePath() string { return e.path }

type recordingLoader struct {
	name     string
	mu       sync.Mutex
	streams  []domain.Stream
	failures int // calls to fail before succeeding
	err      error
	calls    int
	onCall   func()
}

func (l *recordingLoader) Name() string { return l.name }

func (l *recordingLoader) LoadStream(_ context.Context, s domain.Stream) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.onCall != nil {
		l.onCall()
	}
	if l.failures > 0 {
		l.failures--
		return l.err
	}
	l.streams = append(l.streams, s)
	return nil
}

func (l *recordingLoader) stream(index string) domain.Stream {
	for _, s := range l.streams {
		if s.Index == index {
			return s
		}
	}
	return domain.Stream{}
}

type permanentError struct{}

func (permanentError) Error() string   { return "2 documents rejected" }
func (permanentError) Permanent() bool { return true }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTransformer() *pipeline.SessionTransformer {
	return pipeline.NewTransformer(domain.FixedZone(time.UTC), nil, discardLogger())
}

func kanataSession(path, date string, flash, attempts int) domain.RawSessionLog {
	return domain.RawSessionLog{Path: path, Fields: map[string]any{
		"location": "Altitude Kanata",
		"style":    "indoor bouldering",
		"date":     date,
		"time":     map[string]any{"start": "6:00 PM", "end": "8:00 PM"},
		"counter": []any{
			map[string]any{"grade": "V3/V4", "flash": 1, "redpoint": 0, "repeat": 0, "attempts": 1},
		},
		"projects": []any{map[string]any{
			"name":     "The Crimp Problem",
			"location": "cave",
			"style":    []any{"crimp"},
			"grade":    "V4/V5",
			"flash":    flash,
			"redpoint": 0,
			"repeat":   0,
			"attempts": attempts,
		}},
	}}
}

func invalidSession(path string) domain.RawSessionLog {
	return domain.RawSessionLog{Path: path, Fields: map[string]any{
		"location": "Altitude Kanata",
		"style":    "indoor bouldering",
		"date":     "2022-01-15",
	}}
}

// --- tests ---

func TestPipeline_Run_FoldsProjectsInDateOrder(t *testing.T) {
	src := &fakeSource{logs: []domain.RawSessionLog{
		kanataSession("b.yaml", "2022-01-15", 0, 2),
		kanataSession("a.yaml", "2022-01-08", 0, 3),
	}}
	file := &recordingLoader{name: "file"}
	sqlite := &recordingLoader{name: "sqlite"}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{file, sqlite}, discardLogger(), metrics, pipeline.Options{})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Read)
	assert.Equal(t, 2, summary.Indexed)
	assert.Empty(t, summary.Failures)
	kanata, err := domain.FindLocation("Altitude Kanata")
	require.NoError(t, err)
	want := map[string]int{"sessions": 2, "counters": 2 * len(kanata.Grading), "projects": 2}
	if diff := cmp.Diff(want, summary.Documents); diff != "" {
		t.Fatalf("document counts mismatch (-want +got):\n%s", diff)
	}

	projects := file.stream(domain.IndexProjects).Documents
	require.Len(t, projects, 2)
	first := projects[0].Body.(domain.ProjectDocument)
	second := projects[1].Body.(domain.ProjectDocument)
	assert.Equal(t, 3, first.CumulativeAttempts, "earliest session folds first")
	assert.False(t, first.IsLast)
	assert.Equal(t, 5, second.CumulativeAttempts)
	assert.True(t, second.IsLast)

	sessions := file.stream(domain.IndexSessions).Documents
	assert.Equal(t, 0, sessions[0].ID)
	assert.Equal(t, "2022-01-08", sessions[0].Body.(domain.SessionDocument).Date.Format(domain.DateLayout))

	assert.Equal(t, file.streams, sqlite.streams, "every loader receives the same streams")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SessionsIndexed))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DocumentsLoaded.WithLabelValues("file", "projects")))
}

func TestPipeline_Run_AbortsOnInvalidSession(t *testing.T) {
	src := &fakeSource{logs: []domain.RawSessionLog{
		kanataSession("a.yaml", "2022-01-08", 0, 3),
		invalidSession("broken.yaml"),
	}}
	loader := &recordingLoader{name: "file"}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(), metrics, pipeline.Options{})
	_, err := p.Run(context.Background())

	var srcErr *pipeline.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "broken.yaml", srcErr.Path)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, loader.calls, "nothing is loaded after a failure")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionErrors.WithLabelValues("validation")))
}

func TestPipeline_Run_SkipInvalid(t *testing.T) {
	src := &fakeSource{
		logs: []domain.RawSessionLog{
			invalidSession("broken.yaml"),
			kanataSession("a.yaml", "2022-01-08", 1, 0),
		},
		failures: []error{&pathError{path: "garbled.yaml"}},
	}
	loader := &recordingLoader{name: "file"}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(), metrics,
		pipeline.Options{SkipInvalid: true})
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Read)
	assert.Equal(t, 1, summary.Indexed)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "garbled.yaml", summary.Failures[0].Path)
	assert.Equal(t, "broken.yaml", summary.Failures[1].Path)
	assert.Len(t, loader.stream(domain.IndexSessions).Documents, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionErrors.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionErrors.WithLabelValues("validation")))
}

func TestPipeline_Run_ErrorKinds(t *testing.T) {
	noZone := domain.ZoneFunc(func(float64, float64) (*time.Location, error) {
		return nil, errors.New("no zone at coordinates")
	})
	tests := []struct {
		name  string
		raw   domain.RawSessionLog
		zones domain.TimezoneResolver
		kind  string
	}{
		{
			name:  "validation",
			raw:   invalidSession("x.yaml"),
			zones: domain.FixedZone(time.UTC),
			kind:  "validation",
		},
		{
			name: "unknown location",
			raw: domain.RawSessionLog{Path: "x.yaml", Fields: map[string]any{
				"location": "Bloc Shop", "style": "indoor bouldering", "date": "2022-01-08",
				"time": map[string]any{"start": "6 PM", "end": "8 PM"},
			}},
			zones: domain.FixedZone(time.UTC),
			kind:  "location",
		},
		{
			name:  "timezone",
			raw:   kanataSession("x.yaml", "2022-01-08", 0, 1),
			zones: noZone,
			kind:  "timezone",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			src := &fakeSource{logs: []domain.RawSessionLog{tc.raw}}
			tfm := pipeline.NewTransformer(tc.zones, nil, discardLogger())
			p := pipeline.New(src, tfm, nil, discardLogger(), metrics, pipeline.Options{SkipInvalid: true})

			summary, err := p.Run(context.Background())
			require.NoError(t, err)
			require.Len(t, summary.Failures, 1)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionErrors.WithLabelValues(tc.kind)))
		})
	}
}

func TestPipeline_Run_SourceFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("list session logs: no such directory")}
	p := pipeline.New(src, newTransformer(), nil, discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read sessions")
}

func TestPipeline_Run_RetriesTransientLoadFailure(t *testing.T) {
	src := &fakeSource{logs: []domain.RawSessionLog{kanataSession("a.yaml", "2022-01-08", 0, 1)}}
	loader := &recordingLoader{name: "elasticsearch", failures: 1, err: errors.New("connection refused")}

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(),
		observability.NewMetricsForTesting(), pipeline.Options{LoadAttempts: 3, RetryBackoff: time.Millisecond})
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, loader.calls, "one retry plus the three streams")
	assert.Len(t, loader.streams, 3)
}

func TestPipeline_Run_LoadFailureAborts(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{name: "transient exhausts attempts", err: errors.New("connection refused"), wantCalls: 2},
		{name: "permanent is not retried", err: permanentError{}, wantCalls: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{logs: []domain.RawSessionLog{kanataSession("a.yaml", "2022-01-08", 0, 1)}}
			loader := &recordingLoader{name: "elasticsearch", failures: 10, err: tc.err}

			p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(),
				observability.NewMetricsForTesting(), pipeline.Options{LoadAttempts: 2})
			_, err := p.Run(context.Background())

			require.ErrorIs(t, err, tc.err)
			assert.Contains(t, err.Error(), "load sessions to elasticsearch")
			assert.Equal(t, tc.wantCalls, loader.calls)
		})
	}
}

func TestPipeline_Run_CancelledDuringBackoff(t *testing.T) {
	src := &fakeSource{logs: []domain.RawSessionLog{kanataSession("a.yaml", "2022-01-08", 0, 1)}}
	loader := &recordingLoader{name: "kafka", failures: 10, err: errors.New("leader not available")}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(),
		observability.NewMetricsForTesting(), pipeline.Options{LoadAttempts: 5, RetryBackoff: time.Second})
	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, loader.calls)
}

func TestPipeline_Run_CancelledWithoutBackoff(t *testing.T) {
	src := &fakeSource{logs: []domain.RawSessionLog{kanataSession("a.yaml", "2022-01-08", 0, 1)}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader := &recordingLoader{name: "sqlite", failures: 10, err: errors.New("database is locked"), onCall: cancel}

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(),
		observability.NewMetricsForTesting(), pipeline.Options{LoadAttempts: 5})
	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, loader.calls, "a zero backoff still stops on cancellation")
}

func TestPipeline_Validate(t *testing.T) {
	src := &fakeSource{
		logs: []domain.RawSessionLog{
			kanataSession("a.yaml", "2022-01-08", 0, 3),
			invalidSession("broken.yaml"),
			invalidSession("also-broken.yaml"),
		},
		failures: []error{&pathError{path: "garbled.yaml"}},
	}
	loader := &recordingLoader{name: "file"}

	p := pipeline.New(src, newTransformer(), []pipeline.StreamLoader{loader}, discardLogger(),
		observability.NewMetricsForTesting(), pipeline.Options{})
	summary, err := p.Validate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Read)
	assert.Equal(t, 1, summary.Indexed)
	assert.Len(t, summary.Failures, 3, "every failing file is reported")
	assert.Zero(t, loader.calls)
}

type stubWeather struct{}

func (stubWeather) DailyWeather(context.Context, float64, float64, time.Time) (domain.Weather, error) {
	return domain.Weather{Conditions: "Clear", TempMax: 24.5}, nil
}

func TestSessionTransformer_Transform(t *testing.T) {
	raw := kanataSession("sessions/2022-01-08.yaml", "2022-01-08", 1, 0)

	t.Run("without weather", func(t *testing.T) {
		s, err := newTransformer().Transform(context.Background(), raw)
		require.NoError(t, err)
		assert.Equal(t, "sessions/2022-01-08.yaml", s.Source)
		assert.Nil(t, s.Weather)
		assert.Empty(t, s.WeatherSource)
	})

	t.Run("with weather", func(t *testing.T) {
		tfm := pipeline.NewTransformer(domain.FixedZone(time.UTC), stubWeather{}, discardLogger())
		s, err := tfm.Transform(context.Background(), raw)
		require.NoError(t, err)
		require.NotNil(t, s.Weather)
		assert.Equal(t, "Clear", s.Weather.Conditions)
		assert.Equal(t, domain.WeatherSourceProvider, s.WeatherSource)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := newTransformer().Transform(context.Background(), invalidSession("broken.yaml"))
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
