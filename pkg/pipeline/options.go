package pipeline

import (
	"github.com/ib-77/tradescan/pkg/source"
	"go.uber.org/zap"
)

type Option func(*Processor)

// WithOpener replaces the opener derived from the source identifier.
func WithOpener(open source.Opener) Option {
	return func(p *Processor) {
		p.open = open
	}
}

// WithSourceOptions are passed to source.Open when no opener is set.
func WithSourceOptions(opts ...source.Option) Option {
	return func(p *Processor) {
		p.sourceOpts = append(p.sourceOpts, opts...)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithFailureHandler receives every recovered failure. It is called from the
// producer and from consumer goroutines concurrently.
func WithFailureHandler(onFailure func(Failure)) Option {
	return func(p *Processor) {
		p.onFailure = onFailure
	}
}

// WithName labels reports, logs and metrics, typically with a screen name.
func WithName(name string) Option {
	return func(p *Processor) {
		p.name = name
	}
}
