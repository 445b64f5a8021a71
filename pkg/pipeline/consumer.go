package pipeline

import (
	"context"

	"github.com/ib-77/tradescan/pkg/rop"
	"github.com/ib-77/tradescan/pkg/rop/core"
	"github.com/ib-77/tradescan/pkg/rop/solo"
	"github.com/ib-77/tradescan/pkg/trade"
	"go.uber.org/zap"
)

// engine isolates every predicate call; nil when there is no predicate so
// the consumers only drain the queue.
func (p *Processor) engine() func(ctx context.Context, day trade.Day) rop.Result[bool] {
	if p.predicate == nil {
		return nil
	}

	predicate := p.predicate
	return func(ctx context.Context, day trade.Day) rop.Result[bool] {
		return solo.Guard[trade.Day, bool](ctx, day, predicate)
	}
}

func (p *Processor) handlers() core.Handlers[trade.Day] {
	return core.Handlers[trade.Day]{
		OnMatch: func(_ context.Context, _ trade.Day) {
			p.matches.Add(1)
			p.bound.match()
		},
		OnFailure: func(_ context.Context, day trade.Day, err error) {
			p.fail(Failure{Kind: PredicateFailure, Day: day, Err: err})
		},
		OnCancel: func(_ context.Context, remaining int) {
			// a worker leaving an empty, finished queue lost nothing
			if remaining > 0 || !p.queue.Finished() {
				p.cancelled.Store(true)
			}
			p.logger.Debug("consumer cancelled", zap.Int("queued", remaining))
		},
	}
}
