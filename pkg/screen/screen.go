package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/ib-77/tradescan/pkg/pipeline"
	"github.com/ib-77/tradescan/pkg/trade"
)

var (
	ErrEmpty      = errors.New("empty screen expression")
	ErrNotBoolean = errors.New("screen did not evaluate to a boolean")
)

// Screen is a compiled JavaScript expression over one trading day. The
// expression sees date (YYYY-MM-DD string), open, high, low, close, volume
// and adjClose, and must evaluate to true or false.
type Screen struct {
	Name        string
	Where       string
	Description string

	program  *goja.Program
	runtimes sync.Pool
}

// Compile checks the expression once; evaluation reuses the program.
func Compile(name, where string) (*Screen, error) {
	if strings.TrimSpace(where) == "" {
		return nil, fmt.Errorf("screen %q: %w", name, ErrEmpty)
	}

	program, err := goja.Compile(name, where, true)
	if err != nil {
		return nil, fmt.Errorf("screen %q: %w", name, err)
	}

	s := &Screen{
		Name:    name,
		Where:   where,
		program: program,
	}
	s.runtimes.New = func() any {
		return goja.New()
	}
	return s, nil
}

// Eval runs the expression against day. A goja runtime is not safe for
// concurrent use, so each call borrows one from a pool. Cancelling ctx
// interrupts a running expression.
func (s *Screen) Eval(ctx context.Context, day trade.Day) (bool, error) {
	vm := s.runtimes.Get().(*goja.Runtime)

	reusable := true
	defer func() {
		if reusable {
			s.runtimes.Put(vm)
		}
	}()

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			vm.Interrupt(ctx.Err())
		})
		defer func() {
			// an interrupt that already fired may still be pending on vm
			reusable = stop()
		}()
	}

	for name, v := range map[string]any{
		"date":     trade.FormatDate(day.Date),
		"open":     day.Open,
		"high":     day.High,
		"low":      day.Low,
		"close":    day.Close,
		"volume":   day.Volume,
		"adjClose": day.AdjClose,
	} {
		if err := vm.Set(name, v); err != nil {
			return false, err
		}
	}

	v, err := vm.RunProgram(s.program)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := ctx.Err(); cause != nil {
				return false, cause
			}
		}
		return false, fmt.Errorf("screen %q: %w", s.Name, err)
	}

	b, ok := v.Export().(bool)
	if !ok {
		return false, fmt.Errorf("screen %q: %w: got %s", s.Name, ErrNotBoolean, v.String())
	}
	return b, nil
}

// Predicate exposes the screen to the pipeline.
func (s *Screen) Predicate() pipeline.Predicate {
	return s.Eval
}
