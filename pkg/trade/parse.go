package trade

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Fields is the number of comma separated columns in a data line.
const Fields = 7

var (
	ErrEmptyLine  = errors.New("empty line")
	ErrFieldCount = errors.New("unexpected field count")
)

var columns = [Fields]string{"date", "open", "high", "low", "close", "volume", "adj_close"}

// ParseLine reads date,open,high,low,close,volume,adj_close.
func ParseLine(line string) (Day, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Day{}, ErrEmptyLine
	}

	parts := strings.Split(line, ",")
	if len(parts) != Fields {
		return Day{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(parts), Fields)
	}

	var (
		d   Day
		err error
	)

	if d.Date, err = ParseDate(parts[0]); err != nil {
		return Day{}, fieldError(0, parts[0], err)
	}

	prices := []*float64{&d.Open, &d.High, &d.Low, &d.Close}
	for i, p := range prices {
		if *p, err = parseFloat(parts[i+1]); err != nil {
			return Day{}, fieldError(i+1, parts[i+1], err)
		}
	}

	if d.Volume, err = parseVolume(parts[5]); err != nil {
		return Day{}, fieldError(5, parts[5], err)
	}

	if d.AdjClose, err = parseFloat(parts[6]); err != nil {
		return Day{}, fieldError(6, parts[6], err)
	}

	return d, nil
}

// IsHeader reports whether line is a column header rather than data: it
// does not parse and its first column carries no digits (e.g. "Date").
func IsHeader(line string) bool {
	if _, err := ParseLine(line); err == nil {
		return false
	}
	first, _, _ := strings.Cut(strings.TrimSpace(line), ",")
	return first != "" && !strings.ContainsFunc(first, unicode.IsDigit)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// parseVolume accepts integers and integral decimals such as "1200.0".
func parseVolume(s string) (int64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return v, nil
	}

	f, ferr := parseFloat(s)
	if ferr != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, err
	}
	return int64(f), nil
}

func fieldError(i int, value string, err error) error {
	return fmt.Errorf("parse %s %q: %w", columns[i], value, err)
}
