package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Stdin is the identifier that reads from standard input.
const Stdin = "-"

// Opener produces a fresh line stream each time it is called.
type Opener func(ctx context.Context) (io.ReadCloser, error)

type options struct {
	table string
	stdin io.Reader
}

type Option func(*options)

// WithTable selects the table read from a PostgreSQL source.
func WithTable(name string) Option {
	return func(o *options) {
		o.table = name
	}
}

// WithStdin replaces os.Stdin for the "-" identifier.
func WithStdin(r io.Reader) Option {
	return func(o *options) {
		o.stdin = r
	}
}

// Open resolves id into a stream of CSV lines:
//
//	"-"                          standard input
//	postgres://..., postgresql:// rows of a trade table
//	*.gz                         gzip compressed file
//	anything else                plain file
func Open(ctx context.Context, id string, opts ...Option) (io.ReadCloser, error) {
	o := options{table: DefaultTable, stdin: os.Stdin}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case id == Stdin:
		return io.NopCloser(o.stdin), nil
	case IsPostgres(id):
		return openPostgres(ctx, id, o.table)
	case strings.HasSuffix(id, ".gz"):
		return openGzip(id)
	default:
		return os.Open(id)
	}
}

// For binds id and opts into an Opener.
func For(id string, opts ...Option) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return Open(ctx, id, opts...)
	}
}

// Text serves a fixed document, mostly useful in tests and examples.
func Text(s string) Opener {
	return func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

// Describe returns id with any password removed, suitable for logs.
func Describe(id string) string {
	if IsPostgres(id) {
		return redactDSN(id)
	}
	return id
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return zerr
}

func openGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}

	return &gzipFile{Reader: zr, f: f}, nil
}
