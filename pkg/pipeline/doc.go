// Package pipeline counts the trading days of a source that satisfy a
// predicate.
//
// A Processor runs a single producer, which parses the source line by line
// into trade.Day values and pushes them onto a shared core.Queue, and a
// fixed number of consumers, which pop days, evaluate the predicate and
// bump an atomic match counter. The queue is unbounded and consumption
// order across consumers is unspecified; the count does not depend on it.
//
// Failures never abort a run. A source that cannot be opened yields zero
// records, malformed lines are skipped, and a predicate that errors or
// panics simply does not count the day. Each of them is reported through
// WithFailureHandler, the logger and the metrics, and summarised in Report.
//
//	p, err := pipeline.New(4, "DowJones.csv", pipeline.Match(func(d trade.Day) bool {
//		return d.Close > d.Open
//	}))
//	if err != nil {
//		return err
//	}
//	p.Start(ctx)
//	matches := p.Wait()
package pipeline
