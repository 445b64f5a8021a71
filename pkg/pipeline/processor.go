package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/tradescan/pkg/rop/core"
	"github.com/ib-77/tradescan/pkg/source"
	"github.com/ib-77/tradescan/pkg/trade"
	"go.uber.org/zap"
)

var ErrInvalidWorkers = errors.New("worker count must be at least 1")

// Predicate decides whether a day is counted. It is called from several
// goroutines at once and must not touch unsynchronized shared state. An
// error or a panic counts as a PredicateFailure and the day is not counted.
type Predicate func(ctx context.Context, day trade.Day) (bool, error)

// Match adapts a plain boolean test.
func Match(test func(trade.Day) bool) Predicate {
	if test == nil {
		return nil
	}
	return func(_ context.Context, day trade.Day) (bool, error) {
		return test(day), nil
	}
}

// Processor runs one producer and a fixed pool of consumers over a single
// source and counts the days accepted by the predicate.
type Processor struct {
	id         uuid.UUID
	name       string
	workers    int
	source     string
	predicate  Predicate
	open       source.Opener
	sourceOpts []source.Option
	logger     *zap.Logger
	metrics    *Metrics
	onFailure  func(Failure)

	queue *core.Queue[trade.Day]
	bound *boundMetrics

	matches           atomic.Int64
	lines             atomic.Int64
	records           atomic.Int64
	parseFailures     atomic.Int64
	predicateFailures atomic.Int64
	sourceFailed      atomic.Bool
	cancelled         atomic.Bool

	startOnce sync.Once
	done      chan struct{}
	startedAt time.Time
	report    Report
}

// New validates the worker count and prepares a Processor. A nil predicate
// is allowed and matches nothing.
func New(workers int, src string, predicate Predicate, opts ...Option) (*Processor, error) {
	if workers < 1 {
		return nil, ErrInvalidWorkers
	}

	p := &Processor{
		id:        uuid.New(),
		workers:   workers,
		source:    src,
		predicate: predicate,
		logger:    zap.NewNop(),
		queue:     core.NewQueue[trade.Day](),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.open == nil {
		p.open = source.For(src, p.sourceOpts...)
	}
	p.bound = p.metrics.bind(p.name)
	p.logger = p.logger.With(
		zap.String("run_id", p.id.String()),
		zap.String("source", source.Describe(src)),
	)
	if p.name != "" {
		p.logger = p.logger.With(zap.String("screen", p.name))
	}

	return p, nil
}

func (p *Processor) ID() uuid.UUID {
	return p.id
}

// Start launches the producer and the consumers and returns immediately.
// Only the first call has an effect. Cancelling ctx stops production; the
// consumers then leave, evaluating what is already queued first when ctx
// carries core.WithProcessOptions(ctx, true).
func (p *Processor) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.startedAt = time.Now()
		p.logger.Info("pipeline started", zap.Int("workers", p.workers))

		produced := make(chan struct{})
		go func() {
			defer close(produced)
			p.produce(ctx)
		}()

		consumed := core.Lines(ctx, p.queue, p.engine(), p.handlers(), p.workers)

		go func() {
			<-produced
			<-consumed
			p.finish()
			close(p.done)
		}()
	})
}

// Wait blocks until the producer and every consumer have returned and
// reports the number of matches. It may be called any number of times; if
// Start was never called the run starts with context.Background.
func (p *Processor) Wait() int64 {
	p.Start(context.Background())
	<-p.done
	return p.matches.Load()
}

// Done is closed once the run is over.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

// Report waits for the run and returns its summary.
func (p *Processor) Report() Report {
	p.Wait()
	return p.report
}

func (p *Processor) finish() {
	elapsed := time.Since(p.startedAt)
	// only a cancelled run can leave days behind
	unprocessed := len(core.Drain(p.queue))

	p.report = Report{
		ID:                p.id,
		Name:              p.name,
		Source:            source.Describe(p.source),
		Workers:           p.workers,
		Lines:             p.lines.Load(),
		Records:           p.records.Load(),
		Matches:           p.matches.Load(),
		ParseFailures:     p.parseFailures.Load(),
		PredicateFailures: p.predicateFailures.Load(),
		SourceFailed:      p.sourceFailed.Load(),
		Unprocessed:       int64(unprocessed),
		Cancelled:         p.cancelled.Load(),
		StartedAt:         p.startedAt,
		Duration:          elapsed,
	}
	p.bound.observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.Int64("records", p.report.Records),
		zap.Int64("matches", p.report.Matches),
		zap.Duration("elapsed", elapsed),
	}
	if p.report.Failures() > 0 || p.report.Cancelled {
		p.logger.Warn("pipeline finished with failures", append(fields,
			zap.Int64("parse_failures", p.report.ParseFailures),
			zap.Int64("predicate_failures", p.report.PredicateFailures),
			zap.Bool("source_failed", p.report.SourceFailed),
			zap.Bool("cancelled", p.report.Cancelled),
			zap.Int64("unprocessed", p.report.Unprocessed),
		)...)
		return
	}
	p.logger.Info("pipeline finished", fields...)
}

// fail records a recovered failure; it never stops the run.
func (p *Processor) fail(f Failure) {
	switch f.Kind {
	case SourceUnavailable:
		p.sourceFailed.Store(true)
		p.logger.Warn("source unavailable", zap.Error(f.Err))
	case LineParse:
		p.parseFailures.Add(1)
		p.logger.Debug("line skipped", zap.Int("line", f.Line), zap.Error(f.Err))
	case PredicateFailure:
		p.predicateFailures.Add(1)
		p.logger.Debug("predicate failed", zap.String("date", trade.FormatDate(f.Day.Date)), zap.Error(f.Err))
	}
	p.bound.failure(f.Kind)

	if p.onFailure != nil {
		p.onFailure(f)
	}
}

// Run builds a Processor, runs it to completion and returns its report.
func Run(ctx context.Context, workers int, src string, predicate Predicate, opts ...Option) (Report, error) {
	p, err := New(workers, src, predicate, opts...)
	if err != nil {
		return Report{}, err
	}
	p.Start(ctx)
	return p.Report(), nil
}
