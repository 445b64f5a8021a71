package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ib-77/tradescan/pkg/rop/solo"
	"github.com/ib-77/tradescan/pkg/trade"
)

const (
	maxLineSize = 1 << 20
	bom         = "\ufeff"
)

// ErrLineTooLong reports a line over maxLineSize bytes. The line is skipped.
var ErrLineTooLong = fmt.Errorf("line exceeds %d bytes", maxLineSize)

func parse(_ context.Context, line string) (trade.Day, error) {
	return trade.ParseLine(line)
}

// readLine returns the next line with its terminator. A line longer than
// maxLineSize is read to its end and discarded; tooLong is then set.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > maxLineSize+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLong, err
	}
}

// produce reads the source line by line and queues every parsed day as soon
// as it is available. The queue is marked finished exactly once on return,
// whatever the reason.
func (p *Processor) produce(ctx context.Context) {
	defer p.queue.MarkFinished()

	rc, err := p.open(ctx)
	if err != nil {
		p.fail(Failure{Kind: SourceUnavailable, Err: err})
		return
	}
	closeSource := sync.OnceFunc(func() { rc.Close() })
	defer closeSource()
	// unblocks a read stuck on a slow source
	stop := context.AfterFunc(ctx, closeSource)
	defer stop()

	r := bufio.NewReaderSize(rc, 64*1024)

	lineNo := 0
	first := true
	for {
		if ctx.Err() != nil {
			p.cancelled.Store(true)
			return
		}

		raw, tooLong, err := readLine(r)
		if len(raw) > 0 || tooLong {
			lineNo++
			if tooLong {
				first = false
				p.lines.Add(1)
				p.fail(Failure{Kind: LineParse, Line: lineNo, Err: ErrLineTooLong})
			} else {
				p.handleLine(ctx, lineNo, string(raw), &first)
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return
		case ctx.Err() != nil:
			p.cancelled.Store(true)
			return
		default:
			p.fail(Failure{Kind: SourceUnavailable, Line: lineNo, Err: fmt.Errorf("read: %w", err)})
			return
		}
	}
}

func (p *Processor) handleLine(ctx context.Context, lineNo int, raw string, first *bool) {
	if lineNo == 1 {
		raw = strings.TrimPrefix(raw, bom)
	}
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	if *first {
		*first = false
		if trade.IsHeader(line) {
			return
		}
	}
	p.lines.Add(1)

	res := solo.Try(ctx, solo.Succeed(line), parse)
	if res.IsFailure() {
		p.fail(Failure{Kind: LineParse, Line: lineNo, Text: line, Err: res.Err()})
		return
	}

	if p.queue.Push(res.Result()) {
		p.records.Add(1)
		p.bound.record()
	}
}
