package screen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ib-77/tradescan/pkg/pipeline"
	"github.com/ib-77/tradescan/pkg/source"
	"github.com/ib-77/tradescan/pkg/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const days = `Date,Open,High,Low,Close,Volume,Adj Close
2024-01-02,10,11.5,9.5,11,1000,11
2024-01-03,20,20.5,18,19,2000,19
2024-01-04,5,5.5,4.9,5.3,1500,5.3
`

func day(t *testing.T, line string) trade.Day {
	t.Helper()
	d, err := trade.ParseLine(line)
	require.NoError(t, err)
	return d
}

func TestEval(t *testing.T) {
	t.Parallel()

	d := day(t, "2024-01-02,10,11.5,9.5,11,1000,10.5")

	tests := []struct {
		where string
		want  bool
	}{
		{where: "close > open", want: true},
		{where: "close < open", want: false},
		{where: "high - low == 2", want: true},
		{where: "volume === 1000 && adjClose < close", want: true},
		{where: "date === '2024-01-02'", want: true},
		{where: "date.startsWith('2023')", want: false},
		{where: "open != 0 && (close - open) / open > 0.05", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			t.Parallel()

			s, err := Compile("test", tt.where)
			require.NoError(t, err)

			got, err := s.Eval(context.Background(), d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	_, err := Compile("blank", "  ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Compile("broken", "close >")
	assert.Error(t, err)
}

func TestEvalFailures(t *testing.T) {
	t.Parallel()

	d := day(t, "2024-01-02,10,11.5,9.5,11,1000,10.5")

	s, err := Compile("number", "close - open")
	require.NoError(t, err)
	_, err = s.Eval(context.Background(), d)
	assert.ErrorIs(t, err, ErrNotBoolean)

	s, err = Compile("reference", "price > 1")
	require.NoError(t, err)
	_, err = s.Eval(context.Background(), d)
	assert.Error(t, err)

	s, err = Compile("throw", "(function() { throw new Error('nope') })()")
	require.NoError(t, err)
	_, err = s.Eval(context.Background(), d)
	assert.ErrorContains(t, err, "nope")

	// the pooled runtime is still usable afterwards
	s, err = Compile("after", "close > open")
	require.NoError(t, err)
	ok, err := s.Eval(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalInterruptedByContext(t *testing.T) {
	t.Parallel()

	s, err := Compile("spin", "(function() { while (true) {} })()")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.Eval(ctx, trade.Day{})
		done <- err
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("expression was not interrupted")
	}
}

func TestPredicateInPipeline(t *testing.T) {
	t.Parallel()

	s, err := Compile("up", "close > open")
	require.NoError(t, err)

	for _, workers := range []int{1, 3, 10} {
		r, err := pipeline.Run(context.Background(), workers, "inline", s.Predicate(),
			pipeline.WithOpener(source.Text(days)))
		require.NoError(t, err)
		assert.Equal(t, int64(2), r.Matches, "workers=%d", workers)
	}
}

func TestPredicateFailuresInPipeline(t *testing.T) {
	t.Parallel()

	s, err := Compile("odd", "volume > 1200 ? undefinedThing : true")
	require.NoError(t, err)

	r, err := pipeline.Run(context.Background(), 3, "inline", s.Predicate(),
		pipeline.WithOpener(source.Text(days)))
	require.NoError(t, err)

	assert.Equal(t, int64(1), r.Matches)
	assert.Equal(t, int64(2), r.PredicateFailures)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	screens, err := LoadFile("testdata/screens.yaml")
	require.NoError(t, err)
	require.Len(t, screens, 3)

	assert.Equal(t, "up", screens[0].Name)
	assert.Equal(t, "closed above the open", screens[0].Description)
	assert.Equal(t, "volume >= 2000", screens[2].Where)

	want := map[string]int64{"up": 2, "big-gain": 2, "heavy": 1}
	for _, s := range screens {
		r, err := pipeline.Run(context.Background(), 2, "inline", s.Predicate(),
			pipeline.WithOpener(source.Text(days)), pipeline.WithName(s.Name))
		require.NoError(t, err)
		assert.Equal(t, want[s.Name], r.Matches, s.Name)
		assert.Equal(t, s.Name, r.Name)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":     "screens: []\n",
		"no name":   "screens:\n  - where: close > open\n",
		"duplicate": "screens:\n  - name: a\n    where: close > open\n  - name: a\n    where: open > close\n",
		"bad js":    "screens:\n  - name: a\n    where: close >\n",
		"bad yaml":  "screens: [\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
