package data

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/utils"
)

// SQLiteStore keeps traindata in a local SQLite file. Rows are read back in
// rowid order, which is insertion order.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
}

// OpenSQLite opens path, creating the file and the traindata table when
// they are missing.
func OpenSQLite(ctx context.Context, path string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	return openSQLite(ctx, path, utils.SQLiteReadWriteCreate, true, logger)
}

// OpenExistingSQLite opens a file that must already exist. The schema is left
// alone, so reading from a file without traindata fails on load.
func OpenExistingSQLite(ctx context.Context, path string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	return openSQLite(ctx, path, utils.SQLiteReadWrite, false, logger)
}

func openSQLite(ctx context.Context, path, mode string, migrate bool, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	db, err := utils.NewSQLiteConnection(ctx, path, mode)
	if err != nil {
		return nil, &StoreError{Kind: "sqlite", Op: "open", Err: err}
	}

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if migrate {
		if err := s.migrate(ctx); err != nil {
			db.Close()
			return nil, &StoreError{Kind: "sqlite", Op: "migrate", Err: err}
		}
	}

	logger.Debugw("sqlite store opened", "path", path, "mode", mode)
	return s, nil
}

func (s *SQLiteStore) Kind() string {
	return "sqlite"
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTrainDataSQL(""))
	return err
}

func (s *SQLiteStore) AppendTrainData(ctx context.Context, records []types.TrainData) error {
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertTrainDataSQL(false))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.ExecContext(ctx, trainDataArgs(r)...); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	}); err != nil {
		return &StoreError{Kind: s.Kind(), Op: "append", Err: err}
	}

	return nil
}

func (s *SQLiteStore) LoadTrainData(ctx context.Context) ([]types.TrainData, error) {
	rows, err := s.db.QueryContext(ctx, selectTrainDataSQL("rowid"))
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

func (s *SQLiteStore) CountTrainData(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TrainDataTable).Scan(&count); err != nil {
		return 0, &StoreError{Kind: s.Kind(), Op: "count", Err: err}
	}
	return count, nil
}

func (s *SQLiteStore) ReplaceReconciled(ctx context.Context, records []types.ReconciledTrainData) error {
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ReconciledTable); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, createReconciledSQL("REAL")); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, insertReconciledSQL(false))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.ExecContext(ctx, reconciledArgs(r)...); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	}); err != nil {
		return &StoreError{Kind: s.Kind(), Op: "replace", Err: err}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
