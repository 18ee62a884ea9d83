package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/utils"
)

// PostgresStore keeps traindata in PostgreSQL. A serial id column records
// insertion order.
type PostgresStore struct {
	pg     *pgxpool.Pool
	logger *zap.SugaredLogger
}

func OpenPostgres(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	return openPostgres(ctx, dsn, true, logger)
}

// OpenExistingPostgres connects without creating traindata.
func OpenExistingPostgres(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*PostgresStore, error) {
	return openPostgres(ctx, dsn, false, logger)
}

func openPostgres(ctx context.Context, dsn string, migrate bool, logger *zap.SugaredLogger) (*PostgresStore, error) {
	pg, err := utils.NewPostgresConnection(ctx, dsn)
	if err != nil {
		return nil, &StoreError{Kind: "postgres", Op: "open", Err: err}
	}

	s := &PostgresStore{pg: pg, logger: logger}
	if migrate {
		if _, err := pg.Exec(ctx, createTrainDataSQL("id BIGSERIAL PRIMARY KEY")); err != nil {
			pg.Close()
			return nil, &StoreError{Kind: "postgres", Op: "migrate", Err: err}
		}
	}

	logger.Debugw("postgres store opened", "host", pg.Config().ConnConfig.Host)
	return s, nil
}

func (s *PostgresStore) Kind() string {
	return "postgres"
}

func (s *PostgresStore) AppendTrainData(ctx context.Context, records []types.TrainData) error {
	err := pgx.BeginFunc(ctx, s.pg, func(tx pgx.Tx) error {
		query := insertTrainDataSQL(true)
		for i, r := range records {
			if _, err := tx.Exec(ctx, query, trainDataArgs(r)...); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return &StoreError{Kind: s.Kind(), Op: "append", Err: err}
	}
	return nil
}

func (s *PostgresStore) LoadTrainData(ctx context.Context) ([]types.TrainData, error) {
	rows, err := s.pg.Query(ctx, selectTrainDataSQL("id"))
	if err != nil {
		return nil, &StoreError{Kind: s.Kind(), Op: "load", Err: err}
	}
	defer rows.Close()

	records, err := scanTrainData(rows)
	if err != nil {
		return nil, &StoreError{Kind: s.Kind(), Op: "load", Err: err}
	}
	return records, nil
}

func (s *PostgresStore) CountTrainData(ctx context.Context) (int, error) {
	var count int
	if err := s.pg.QueryRow(ctx, "SELECT COUNT(*) FROM "+TrainDataTable).Scan(&count); err != nil {
		return 0, &StoreError{Kind: s.Kind(), Op: "count", Err: err}
	}
	return count, nil
}

func (s *PostgresStore) ReplaceReconciled(ctx context.Context, records []types.ReconciledTrainData) error {
	err := pgx.BeginFunc(ctx, s.pg, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ReconciledTable); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, createReconciledSQL("DOUBLE PRECISION")); err != nil {
			return err
		}

		query := insertReconciledSQL(true)
		for i, r := range records {
			if _, err := tx.Exec(ctx, query, reconciledArgs(r)...); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return &StoreError{Kind: s.Kind(), Op: "replace", Err: err}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pg.Close()
	return nil
}
