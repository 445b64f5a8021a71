package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ib-77/tradescan/pkg/trade"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const DefaultTable = "trade_days"

var ErrBadTable = errors.New("invalid table name")

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type dayRow struct {
	Date     time.Time `db:"date"`
	Open     float64   `db:"open"`
	High     float64   `db:"high"`
	Low      float64   `db:"low"`
	Close    float64   `db:"close"`
	Volume   int64     `db:"volume"`
	AdjClose float64   `db:"adj_close"`
}

func (r dayRow) day() trade.Day {
	y, m, d := r.Date.Date()
	return trade.Day{
		Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Open:     r.Open,
		High:     r.High,
		Low:      r.Low,
		Close:    r.Close,
		Volume:   r.Volume,
		AdjClose: r.AdjClose,
	}
}

func IsPostgres(id string) bool {
	return strings.HasPrefix(id, "postgres://") || strings.HasPrefix(id, "postgresql://")
}

func selectQuery(table string) (string, error) {
	if !tablePattern.MatchString(table) {
		return "", fmt.Errorf("%w: %q", ErrBadTable, table)
	}
	return fmt.Sprintf(`SELECT date, open, high, low, close, volume, adj_close FROM %s ORDER BY date`, table), nil
}

// openPostgres streams the table as CSV lines in date order. The returned
// reader must be closed to release the connection.
func openPostgres(ctx context.Context, dsn, table string) (io.ReadCloser, error) {
	query, err := selectQuery(table)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", redactDSN(dsn), err)
	}

	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	pr, pw := io.Pipe()

	go func() {
		defer db.Close()
		defer rows.Close()

		w := bufio.NewWriter(pw)
		var r dayRow
		for rows.Next() {
			if err := rows.StructScan(&r); err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := w.WriteString(r.day().CSV() + "\n"); err != nil {
				// reader went away
				return
			}
		}

		err := rows.Err()
		if err == nil {
			err = w.Flush()
		}
		pw.CloseWithError(err)
	}()

	return pr, nil
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres://"
	}
	return u.Redacted()
}
