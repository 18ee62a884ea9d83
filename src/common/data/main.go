// Package data holds the sinks that traindata rows are written to and read
// back from: the relational store, CSV files, a Redis punctuality cache and
// a RabbitMQ queue.
package data

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/config"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/utils"
)

// DataClient owns the optional sinks of one command run. Any of Store,
// Cache and Publisher may be nil when the run does not use it.
type DataClient struct {
	Store     Store
	Cache     *PunctualityCache
	Publisher *RecordPublisher
	logger    *zap.SugaredLogger
}

func NewDataClient(logger *zap.SugaredLogger) *DataClient {
	return &DataClient{
		logger: logger,
	}
}

// OpenStore opens location for writing, creating traindata if needed.
func (dc *DataClient) OpenStore(ctx context.Context, location string) error {
	return dc.openStore(ctx, location, OpenStore)
}

// OpenExistingStore opens location for reading an existing traindata table.
func (dc *DataClient) OpenExistingStore(ctx context.Context, location string) error {
	return dc.openStore(ctx, location, OpenExistingStore)
}

func (dc *DataClient) openStore(ctx context.Context, location string, open func(context.Context, string, *zap.SugaredLogger) (Store, error)) error {
	if location == "" {
		return &StoreError{Kind: "store", Op: "open", Err: errors.New("no store location given")}
	}

	store, err := open(ctx, location, dc.logger)
	if err != nil {
		return err
	}
	dc.Store = store
	return nil
}

func (dc *DataClient) ConnectCache(cfg config.RedisConfig) {
	dc.Cache = NewPunctualityCache(utils.NewRedisClient(cfg.Addr), cfg)
}

func (dc *DataClient) ConnectPublisher(cfg config.RabbitConfig) error {
	conn, channel, err := utils.NewRabbitConnection(cfg)
	if err != nil {
		return err
	}

	publisher, err := NewRecordPublisher(conn, channel, cfg.Queue)
	if err != nil {
		return err
	}
	dc.Publisher = publisher
	return nil
}

// Close releases every sink that was opened and reports all failures.
func (dc *DataClient) Close() error {
	var err error
	if dc.Store != nil {
		err = multierr.Append(err, dc.Store.Close())
	}
	if dc.Cache != nil {
		err = multierr.Append(err, dc.Cache.Close())
	}
	if dc.Publisher != nil {
		err = multierr.Append(err, dc.Publisher.Close())
	}
	return err
}
