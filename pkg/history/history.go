package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/tradescan/pkg/pipeline"
	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("run not found")

var (
	runsBucket = []byte("runs")
	// idsBucket maps a run id to its key in runsBucket.
	idsBucket = []byte("ids")
)

// Store keeps finished pipeline reports in a bbolt file, ordered by start
// time.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{runsBucket, idsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// key sorts by start time; the id breaks ties.
func key(r pipeline.Report) []byte {
	return []byte(r.StartedAt.UTC().Format("20060102T150405.000000000Z") + "/" + r.ID.String())
}

func (s *Store) Save(ctx context.Context, r pipeline.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bs, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		k := key(r)
		if err := tx.Bucket(runsBucket).Put(k, bs); err != nil {
			return err
		}
		return tx.Bucket(idsBucket).Put([]byte(r.ID.String()), k)
	})
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (pipeline.Report, error) {
	var r pipeline.Report
	if err := ctx.Err(); err != nil {
		return r, err
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		k := tx.Bucket(idsBucket).Get([]byte(id.String()))
		if k == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		bs := tx.Bucket(runsBucket).Get(k)
		if bs == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(bs, &r)
	})
	return r, err
}

// List returns up to limit reports, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]pipeline.Report, error) {
	var reports []pipeline.Report

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, bs := c.Last(); k != nil; k, bs = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if limit > 0 && len(reports) == limit {
				break
			}

			var r pipeline.Report
			if err := json.Unmarshal(bs, &r); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			reports = append(reports, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}
