package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/climbr-etl/internal/domain"
	"github.com/couchcryptid/climbr-etl/internal/observability"
)

// SessionSource reads every raw session log of a run. Per-file failures come
// back in the second return value; the third is reserved for failures that
// make the whole source unusable.
type SessionSource interface {
	ReadSessions(ctx context.Context) ([]domain.RawSessionLog, []error, error)
}

// Transformer converts a raw session log into an enhanced session.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawSessionLog) (*domain.Session, error)
}

// StreamLoader writes one document stream to a destination.
type StreamLoader interface {
	Name() string
	LoadStream(ctx context.Context, stream domain.Stream) error
}

// SourceError ties a failure to the session file that caused it.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Summary describes a finished run.
type Summary struct {
	Read      int
	Indexed   int
	Failures  []*SourceError
	Documents map[string]int // by index
}

// Options tune a Pipeline. The zero value aborts on the first bad session
// and tries each sink load once.
type Options struct {
	// SkipInvalid logs and counts bad session files instead of aborting.
	SkipInvalid bool
	// LoadAttempts bounds how often a failing stream load is tried.
	LoadAttempts int
	// RetryBackoff is the first wait between load attempts; it doubles up
	// to maxBackoff.
	RetryBackoff time.Duration
}

const maxBackoff = 5 * time.Second

// Pipeline orchestrates one read-transform-fold-load run.
type Pipeline struct {
	source      SessionSource
	transformer Transformer
	loaders     []StreamLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options
}

// New creates a Pipeline with the given stages and observability. A pipeline
// without loaders only validates.
func New(s SessionSource, t Transformer, loaders []StreamLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.LoadAttempts < 1 {
		opts.LoadAttempts = 1
	}
	return &Pipeline{
		source:      s,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
	}
}

// Run reads and transforms every session, folds project totals across
// sessions in date order and writes the three document streams to every
// loader.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	p.logger.Info("run started", "loaders", len(p.loaders), "skip_invalid", p.opts.SkipInvalid)

	sessions, summary, err := p.extract(ctx, !p.opts.SkipInvalid)
	if err != nil {
		return summary, err
	}

	sessions = domain.NewLedger().Fold(sessions)
	summary.Documents = make(map[string]int)
	for _, stream := range domain.BuildStreams(sessions) {
		summary.Documents[stream.Index] = len(stream.Documents)
		for _, l := range p.loaders {
			if err := p.load(ctx, l, stream); err != nil {
				return summary, fmt.Errorf("load %s to %s: %w", stream.Index, l.Name(), err)
			}
		}
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("run finished",
		"read", summary.Read,
		"indexed", summary.Indexed,
		"skipped", len(summary.Failures),
		"sessions", summary.Documents[domain.IndexSessions],
		"counters", summary.Documents[domain.IndexCounters],
		"projects", summary.Documents[domain.IndexProjects],
		"duration", time.Since(start),
	)
	return summary, nil
}

// Validate reads and transforms every session without loading anything and
// reports every failing file.
func (p *Pipeline) Validate(ctx context.Context) (Summary, error) {
	_, summary, err := p.extract(ctx, false)
	return summary, err
}

// extract reads and transforms the source. With abort set the first failing
// file ends the run with its *SourceError.
func (p *Pipeline) extract(ctx context.Context, abort bool) ([]*domain.Session, Summary, error) {
	var summary Summary

	raws, readFailures, err := p.source.ReadSessions(ctx)
	if err != nil {
		return nil, summary, fmt.Errorf("read sessions: %w", err)
	}
	summary.Read = len(raws) + len(readFailures)
	p.metrics.SessionsRead.Add(float64(summary.Read))

	for _, err := range readFailures {
		srcErr := &SourceError{Path: sourcePath(err), Err: err}
		if abort {
			p.metrics.SessionErrors.WithLabelValues("read").Inc()
			return nil, summary, srcErr
		}
		p.reject(&summary, srcErr, "read")
	}

	sessions := make([]*domain.Session, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}
		s, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			srcErr := &SourceError{Path: raw.Path, Err: err}
			if abort {
				p.metrics.SessionErrors.WithLabelValues(errorKind(err)).Inc()
				return nil, summary, srcErr
			}
			p.reject(&summary, srcErr, errorKind(err))
			continue
		}
		sessions = append(sessions, s)
	}

	summary.Indexed = len(sessions)
	p.metrics.SessionsIndexed.Add(float64(len(sessions)))
	return sessions, summary, nil
}

func (p *Pipeline) reject(summary *Summary, err *SourceError, kind string) {
	p.logger.Warn("session rejected", "path", err.Path, "kind", kind, "error", err.Err)
	p.metrics.SessionErrors.WithLabelValues(kind).Inc()
	summary.Failures = append(summary.Failures, err)
}

// load writes a stream, retrying with exponential backoff. Loads are
// idempotent because document IDs are stable within a run.
func (p *Pipeline) load(ctx context.Context, l StreamLoader, stream domain.Stream) error {
	backoff := p.opts.RetryBackoff
	var err error
	for attempt := 1; attempt <= p.opts.LoadAttempts; attempt++ {
		start := time.Now()
		err = l.LoadStream(ctx, stream)
		p.metrics.LoadDuration.WithLabelValues(l.Name()).Observe(time.Since(start).Seconds())
		if err == nil {
			p.metrics.DocumentsLoaded.WithLabelValues(l.Name(), stream.Index).Add(float64(len(stream.Documents)))
			p.logger.Info("stream loaded", "sink", l.Name(), "index", stream.Index, "documents", len(stream.Documents))
			return nil
		}
		if isPermanent(err) || attempt == p.opts.LoadAttempts {
			break
		}
		p.logger.Warn("load failed, retrying",
			"sink", l.Name(),
			"index", stream.Index,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if err := ctx.Err(); err != nil {
			return err
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return err
}

// errorKind labels a session failure for the session_errors_total metric.
func errorKind(err error) string {
	var (
		validationErr *domain.ValidationError
		locationErr   *domain.LocationNotFoundError
		timeErr       *domain.TimeFormatError
		dateErr       *domain.DateFormatError
		zoneErr       *domain.TimezoneError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &locationErr):
		return "location"
	case errors.As(err, &timeErr):
		return "time"
	case errors.As(err, &dateErr):
		return "date"
	case errors.As(err, &zoneErr):
		return "timezone"
	default:
		return "other"
	}
}

func sourcePath(err error) string {
	var src interface{ SourcePath() string }
	if errors.As(err, &src) {
		return src.SourcePath()
	}
	return ""
}

// isPermanent reports whether retrying a load cannot help, such as documents
// the destination rejected.
func isPermanent(err error) bool {
	var p interface{ Permanent() bool }
	return errors.As(err, &p) && p.Permanent()
}
