package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/config"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/data"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/metrics"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/reconcile"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/utils"
)

type options struct {
	Database    string
	Out         string
	Save        bool
	Redis       string
	ConfigPath  string
	MetricsFile string
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("time-sort", flag.ContinueOnError)
	fs.StringVar(&opts.Database, "database", "", "SQLite file or postgres:// URL holding the traindata table")
	fs.StringVar(&opts.Database, "d", "", "shorthand for -database")
	fs.StringVar(&opts.Out, "out", "", "write the reconciled rows to this CSV file")
	fs.StringVar(&opts.Out, "o", "", "shorthand for -out")
	fs.BoolVar(&opts.Save, "save", false, "replace the train_out table with the reconciled rows")
	fs.StringVar(&opts.Redis, "redis", "", "cache punctuality per service in Redis at this address")
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	fs.StringVar(&opts.MetricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func resolveConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Out != "" {
		cfg.OutputFile = opts.Out
	}
	if opts.Redis != "" {
		cfg.Redis.Addr = opts.Redis
	}
	if opts.MetricsFile != "" {
		cfg.MetricsFile = opts.MetricsFile
	}

	if cfg.Database == "" {
		return nil, errors.New("no database given: set -database, TRAINDATA_DATABASE or POSTGRES_HOST")
	}
	return cfg, nil
}

func run(ctx context.Context, opts options, cfg *config.Config, logger *zap.SugaredLogger, m *metrics.Metrics) error {
	dc := data.NewDataClient(logger)
	defer func() {
		if err := dc.Close(); err != nil {
			logger.Warnw("error closing sinks", "error", err)
		}
	}()

	if err := dc.OpenExistingStore(ctx, cfg.Database); err != nil {
		return err
	}

	rows, err := dc.Store.LoadTrainData(ctx)
	if err != nil {
		return err
	}
	logger.Infow("data loaded", "store", dc.Store.Kind(), "rows", len(rows))

	reconciled := reconcile.Reconcile(rows)
	summary := m.ObserveReconciled(reconciled)
	logger.Infow("data reconciled",
		"rows", summary.Rows,
		"missingDate", summary.MissingDate,
		"missingBooked", summary.MissingBooked,
		"missingRealtime", summary.MissingRealtime,
		"nextDay", summary.NextDay,
		"late", summary.LateDepartures,
		"early", summary.EarlyDepartures,
		"onTime", summary.OnTimeDepartures,
	)

	for _, r := range reconciled {
		dumpRow(logger, r)
	}

	if cfg.OutputFile != "" {
		if err := data.WriteReconciledCSV(cfg.OutputFile, reconciled); err != nil {
			return err
		}
		m.ObserveStored("csv", len(reconciled))
		logger.Infow("output to csv file complete", "path", cfg.OutputFile, "rows", len(reconciled))
	}

	if opts.Save {
		if err := dc.Store.ReplaceReconciled(ctx, reconciled); err != nil {
			return err
		}
		m.ObserveStored(dc.Store.Kind(), len(reconciled))
		logger.Infow("output to database complete", "table", data.ReconciledTable, "rows", len(reconciled))
	}

	if cfg.Redis.Addr != "" {
		dc.ConnectCache(cfg.Redis)
		cached, err := dc.Cache.Store(ctx, reconciled)
		if err != nil {
			return fmt.Errorf("cache punctuality: %w", err)
		}
		m.ObserveStored("redis", cached)
		logger.Infow("punctuality cached", "addr", cfg.Redis.Addr, "keys", cached, "ttl", cfg.Redis.TTL)
	}

	return nil
}

func dumpRow(logger *zap.SugaredLogger, r types.ReconciledTrainData) {
	derived := r.DerivedValues()
	logger.Debugw("row",
		"serviceUid", utils.Deref(r.ServiceUid),
		types.ColDateAsDate, utils.Deref(derived[0]),
		types.ColBookedTime, utils.Deref(derived[1]),
		types.ColRealtimeDepartureTime, utils.Deref(derived[2]),
		types.ColTimeDifference, utils.Deref(derived[3]),
	)
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, cfgErr := resolveConfig(opts)
	level := ""
	if cfgErr == nil {
		level = cfg.LogLevel
	}

	utils.InitLogger(level)
	defer utils.SyncLogger()
	logger := utils.GetLogger()

	if cfgErr != nil {
		logger.Fatalw("failed to load config", "error", cfgErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("time-sort")

	err = run(ctx, opts, cfg, logger, m)
	if err == nil {
		m.MarkSuccess()
	}
	if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
		logger.Warnw("failed to write metrics", "path", cfg.MetricsFile, "error", werr)
	}
	if err != nil {
		logger.Fatalw("time-sort failed", "error", err)
	}
}
