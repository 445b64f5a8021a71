package trade

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar format of the date column.
const DateLayout = "2006-01-02"

// Day is one trading session parsed from a single input line.
type Day struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// Gain is the relative change from open to close, 0 when open is 0.
func (d Day) Gain() float64 {
	if d.Open == 0 {
		return 0
	}
	return (d.Close - d.Open) / d.Open
}

func (d Day) String() string {
	return fmt.Sprintf("%s: %v - %v", FormatDate(d.Date), d.Open, d.Close)
}

// CSV renders d as an input line that ParseLine reads back unchanged.
func (d Day) CSV() string {
	var b strings.Builder
	b.WriteString(FormatDate(d.Date))
	for _, v := range []float64{d.Open, d.High, d.Low, d.Close} {
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(d.Volume, 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(d.AdjClose, 'f', -1, 64))
	return b.String()
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
