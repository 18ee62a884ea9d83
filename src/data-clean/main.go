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
	"github.com/jack-barr3tt/gbr-punctuality/src/common/normalize"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/utils"
)

type options struct {
	File        string
	Out         string
	Database    string
	Publish     string
	ConfigPath  string
	MetricsFile string
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("data-clean", flag.ContinueOnError)
	fs.StringVar(&opts.File, "file", "", "RealTimeTrains location search document, plain or gzipped JSON")
	fs.StringVar(&opts.File, "f", "", "shorthand for -file")
	fs.StringVar(&opts.Out, "out", "", "write the flattened records to this CSV file")
	fs.StringVar(&opts.Out, "o", "", "shorthand for -out")
	fs.StringVar(&opts.Database, "database", "", "append to traindata in this SQLite file or postgres:// URL")
	fs.StringVar(&opts.Database, "d", "", "shorthand for -database")
	fs.StringVar(&opts.Publish, "publish", "", "publish each record to this RabbitMQ queue")
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	fs.StringVar(&opts.MetricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.File == "" {
		return opts, errors.New("-file is required")
	}
	return opts, nil
}

// resolveConfig layers the flags over the config file and environment.
func resolveConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Out != "" {
		cfg.OutputFile = opts.Out
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Publish != "" {
		cfg.Rabbit.Queue = opts.Publish
	}
	if opts.MetricsFile != "" {
		cfg.MetricsFile = opts.MetricsFile
	}
	return cfg, nil
}

func run(ctx context.Context, opts options, cfg *config.Config, logger *zap.SugaredLogger, m *metrics.Metrics) error {
	raw, err := utils.ReadDocument(opts.File)
	if err != nil {
		return err
	}

	doc, err := normalize.DecodeDocument(raw)
	if err != nil {
		return err
	}
	location := normalize.LocationName(doc)
	logger.Infow("data loaded", "file", opts.File, "location", location)

	records, err := normalize.Normalize(doc)
	if err != nil {
		return err
	}
	m.ServicesNormalized.Add(float64(len(records)))
	logger.Infow("data transformed", "services", len(records), "location", location)

	for _, r := range records {
		dumpRecord(logger, r)
	}

	// the CSV goes first so a store failure still leaves a usable file
	if cfg.OutputFile != "" {
		if err := data.WriteTrainDataCSV(cfg.OutputFile, records); err != nil {
			return err
		}
		m.ObserveStored("csv", len(records))
		logger.Infow("output to csv file complete", "path", cfg.OutputFile, "records", len(records))
	}

	if cfg.Database == "" && cfg.Rabbit.Queue == "" {
		return nil
	}

	dc := data.NewDataClient(logger)
	defer func() {
		if err := dc.Close(); err != nil {
			logger.Warnw("error closing sinks", "error", err)
		}
	}()

	if cfg.Database != "" {
		if err := dc.OpenStore(ctx, cfg.Database); err != nil {
			return err
		}
		if err := dc.Store.AppendTrainData(ctx, records); err != nil {
			return err
		}
		m.ObserveStored(dc.Store.Kind(), len(records))
		logger.Infow("output to database complete", "store", dc.Store.Kind(), "records", len(records))

		total, err := dc.Store.CountTrainData(ctx)
		if err != nil {
			return err
		}
		logger.Infow("traindata table checked", "rows", total)
	}

	if cfg.Rabbit.Queue != "" {
		if err := dc.ConnectPublisher(cfg.Rabbit); err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		published, err := dc.Publisher.Publish(ctx, records)
		m.ObserveStored("rabbitmq", published)
		if err != nil {
			return err
		}
		logger.Infow("records published", "queue", cfg.Rabbit.Queue, "records", published)
	}

	return nil
}

func dumpRecord(logger *zap.SugaredLogger, r types.TrainData) {
	logger.Debugw("record",
		"trainIdentity", utils.Deref(r.TrainIdentity),
		"serviceUid", utils.Deref(r.ServiceUid),
		"gbttBookedDeparture", utils.Deref(r.GbttBookedDeparture),
		"origin", fmt.Sprintf("%s %s %s %s",
			utils.Deref(r.OriginTiploc), utils.Deref(r.OriginDescription),
			utils.Deref(r.OriginWorkingTime), utils.Deref(r.OriginPublicTime)),
		"destination", fmt.Sprintf("%s %s %s %s",
			utils.Deref(r.DestinationTiploc), utils.Deref(r.DestinationDescription),
			utils.Deref(r.DestinationWorkingTime), utils.Deref(r.DestinationPublicTime)),
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

	m := metrics.New("data-clean")

	err = run(ctx, opts, cfg, logger, m)
	if err == nil {
		m.MarkSuccess()
	}
	if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
		logger.Warnw("failed to write metrics", "path", cfg.MetricsFile, "error", werr)
	}
	if err != nil {
		logger.Fatalw("data-clean failed", "file", opts.File, "error", err)
	}
}
