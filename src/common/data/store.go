package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

const (
	TrainDataTable  = "traindata"
	ReconciledTable = "train_out"
)

var ErrStore = errors.New("store error")

// StoreError wraps any failure to open, write or query a relational store.
type StoreError struct {
	Kind string
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStore, e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

// Store is a relational home for the traindata table. Appends never
// deduplicate, so repeated runs accumulate rows.
type Store interface {
	Kind() string
	AppendTrainData(ctx context.Context, records []types.TrainData) error
	LoadTrainData(ctx context.Context) ([]types.TrainData, error)
	CountTrainData(ctx context.Context) (int, error)
	ReplaceReconciled(ctx context.Context, records []types.ReconciledTrainData) error
	Close() error
}

// IsPostgres reports whether location is a PostgreSQL connection URL rather
// than a SQLite file path.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// OpenStore opens PostgreSQL for postgres:// URLs and SQLite for anything else.
func OpenStore(ctx context.Context, location string, logger *zap.SugaredLogger) (Store, error) {
	if IsPostgres(location) {
		return OpenPostgres(ctx, location, logger)
	}
	return OpenSQLite(ctx, location, logger)
}

// OpenExistingStore is OpenStore for readers: nothing is created, so a
// mistyped location fails instead of yielding an empty table.
func OpenExistingStore(ctx context.Context, location string, logger *zap.SugaredLogger) (Store, error) {
	if IsPostgres(location) {
		return OpenExistingPostgres(ctx, location, logger)
	}
	return OpenExistingSQLite(ctx, location, logger)
}
