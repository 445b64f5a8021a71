package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/ib-77/tradescan/internal/config"
	"github.com/ib-77/tradescan/internal/logging"
	"github.com/ib-77/tradescan/pkg/history"
	"github.com/ib-77/tradescan/pkg/pipeline"
	"github.com/ib-77/tradescan/pkg/rop/core"
	"github.com/ib-77/tradescan/pkg/screen"
	"github.com/ib-77/tradescan/pkg/source"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "history" {
		return runHistory(ctx, args[1:], stdout, stderr)
	}
	return runScan(ctx, args, stdin, stdout, stderr)
}

func runScan(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tradescan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tradescan [flags] [source]")
		fmt.Fprintln(stderr, "       tradescan history [flags]")
		fs.PrintDefaults()
	}

	envFile := fs.String("env", ".env", "environment file")
	workers := fs.Int("workers", 1, "number of consumer workers")
	where := fs.String("where", config.DefaultWhere, "JavaScript predicate over date, open, high, low, close, volume, adjClose")
	screens := fs.String("screens", "", "YAML file of named screens, overrides -where")
	table := fs.String("table", source.DefaultTable, "table read from a postgres source")
	timeout := fs.Duration("timeout", 0, "stop the scan after this long")
	drain := fs.Bool("drain", false, "evaluate already queued days when stopped")
	historyPath := fs.String("history", "", "bbolt file recording every run")
	metricsFile := fs.String("metrics", "", "write prometheus metrics to this file")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	// explicit flags win over the environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Pipeline.Workers = *workers
		case "where":
			cfg.Pipeline.Where = *where
		case "screens":
			cfg.Pipeline.Screens = *screens
		case "table":
			cfg.Pipeline.Table = *table
		case "timeout":
			cfg.Pipeline.Timeout = *timeout
		case "drain":
			cfg.Pipeline.Drain = *drain
		case "history":
			cfg.History.Path = *historyPath
		case "metrics":
			cfg.Metrics.File = *metricsFile
		}
	})
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if fs.NArg() == 1 {
		cfg.Pipeline.Source = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer logger.Sync()

	list, err := loadScreens(cfg.Pipeline)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			logger.Error("history unavailable", zap.Error(err))
			return exitError
		}
		defer store.Close()
	}

	var (
		reg     *prometheus.Registry
		metrics *pipeline.Metrics
	)
	if cfg.Metrics.File != "" {
		reg = prometheus.NewRegistry()
		metrics = pipeline.NewMetrics(reg)
	}

	if cfg.Pipeline.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.Timeout)
		defer cancel()
	}
	ctx = core.WithProcessOptions(ctx, cfg.Pipeline.Drain)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithSourceOptions(source.WithTable(cfg.Pipeline.Table), source.WithStdin(stdin)),
	}
	// standard input can be read once, keep it for every screen
	if cfg.Pipeline.Source == source.Stdin && len(list) > 1 {
		bs, err := io.ReadAll(stdin)
		if err != nil {
			logger.Error("read stdin", zap.Error(err))
			return exitError
		}
		opts = append(opts, pipeline.WithOpener(source.Text(string(bs))))
	}

	for _, s := range list {
		report, err := pipeline.Run(ctx, cfg.Pipeline.Workers, cfg.Pipeline.Source, s.Predicate(),
			append(opts, pipeline.WithName(s.Name))...)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}

		prefix := ""
		if len(list) > 1 {
			prefix = s.Name + ": "
		}
		fmt.Fprintf(stdout, "%sTotal processing time %d ms\n", prefix, report.Duration.Milliseconds())
		fmt.Fprintf(stdout, "%sTotal matches %d\n", prefix, report.Matches)

		if store != nil {
			if err := store.Save(context.WithoutCancel(ctx), report); err != nil {
				logger.Warn("run not recorded", zap.String("run_id", report.ID.String()), zap.Error(err))
			}
		}
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(cfg.Metrics.File, reg); err != nil {
			logger.Warn("metrics not written", zap.String("file", cfg.Metrics.File), zap.Error(err))
		}
	}
	return exitOK
}

func loadScreens(cfg config.PipelineConfig) ([]*screen.Screen, error) {
	if cfg.Screens != "" {
		return screen.LoadFile(cfg.Screens)
	}
	s, err := screen.Compile("where", cfg.Where)
	if err != nil {
		return nil, err
	}
	return []*screen.Screen{s}, nil
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tradescan history", flag.ContinueOnError)
	fs.SetOutput(stderr)

	envFile := fs.String("env", ".env", "environment file")
	historyPath := fs.String("history", "", "bbolt file recording every run")
	limit := fs.Int("n", 10, "number of runs to list, 0 for all")
	id := fs.String("id", "", "print one run as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	path := cfg.History.Path
	if *historyPath != "" {
		path = *historyPath
	}
	if path == "" {
		fmt.Fprintln(stderr, "no history file, set -history or TRADESCAN_HISTORY")
		return exitUsage
	}

	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer store.Close()

	if *id != "" {
		runID, err := uuid.Parse(*id)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		report, err := store.Get(ctx, runID)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		return exitOK
	}

	reports, err := store.List(ctx, *limit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSCREEN\tSOURCE\tWORKERS\tRECORDS\tMATCHES\tFAILURES\tDURATION")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Name, r.Source,
			r.Workers, r.Records, r.Matches, r.Failures(), r.Duration.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	return exitOK
}
