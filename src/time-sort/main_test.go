package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/config"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/data"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/metrics"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/utils"
)

func ptr(s string) *string { return &s }

func row(uid, runDate, booked, nextDay, realtime string) types.TrainData {
	var r types.TrainData
	for _, f := range r.Fields() {
		*f = ptr("")
	}
	r.ServiceUid = ptr(uid)
	r.RunDate = ptr(runDate)
	r.GbttBookedDeparture = ptr(booked)
	r.GbttBookedDepartureNextDay = ptr(nextDay)
	r.RealtimeDeparture = ptr(realtime)
	return r
}

func seedStore(t *testing.T, rows ...types.TrainData) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trains.sqlite")

	store, err := data.OpenSQLite(ctx, path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.AppendTrainData(ctx, rows))
	return path
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-d", "trains.sqlite", "-save", "-redis", "localhost:6379"})
	require.NoError(t, err)
	assert.Equal(t, options{Database: "trains.sqlite", Save: true, Redis: "localhost:6379"}, opts)
}

func TestResolveConfig_RequiresDatabase(t *testing.T) {
	t.Setenv("TRAINDATA_DATABASE", "")
	t.Setenv("POSTGRES_HOST", "")

	_, err := resolveConfig(options{})
	assert.Error(t, err)

	cfg, err := resolveConfig(options{Database: "trains.sqlite", Redis: "localhost:6379"})
	require.NoError(t, err)
	assert.Equal(t, "trains.sqlite", cfg.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestRun_ReconcileAndSave(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t).Sugar()

	cfg := config.Default()
	cfg.Database = seedStore(t,
		row("A1", "2023-10-01", "1000", "0", "1005"),
		row("B2", "2023-10-01", "2350", "None", "0010"),
		row("C3", "2023-10-03", "0010", "1", "None"),
	)
	cfg.OutputFile = filepath.Join(t.TempDir(), "reconciled.csv")
	m := metrics.New("time-sort")

	require.NoError(t, run(ctx, options{Save: true}, cfg, logger, m))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsReconciled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NextDayDepartures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsStored.WithLabelValues("sqlite")))

	f, err := os.Open(cfg.OutputFile)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"2023-10-01", "10:00:00", "10:05:00", "300.0"}, rows[1][23:])
	assert.Equal(t, []string{"2023-10-01", "23:50:00", "00:10:00", "-85200.0"}, rows[2][23:])
	assert.Equal(t, []string{"2023-10-04", "00:10:00", "", ""}, rows[3][23:])

	db, err := utils.NewSQLiteConnection(ctx, cfg.Database, utils.SQLiteReadWrite)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM train_out").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestRun_WithoutSaveLeavesNoTable(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Database = seedStore(t, row("A1", "2023-10-01", "1000", "0", "1005"))

	require.NoError(t, run(ctx, options{}, cfg, zaptest.NewLogger(t).Sugar(), metrics.New("time-sort")))

	db, err := utils.NewSQLiteConnection(ctx, cfg.Database, utils.SQLiteReadWrite)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'train_out'").Scan(&count))
	assert.Zero(t, count)
}

func TestRun_EmptyTraindata(t *testing.T) {
	cfg := config.Default()
	cfg.Database = seedStore(t)
	cfg.OutputFile = filepath.Join(t.TempDir(), "reconciled.csv")

	require.NoError(t, run(context.Background(), options{}, cfg, zaptest.NewLogger(t).Sugar(), metrics.New("time-sort")))

	f, err := os.Open(cfg.OutputFile)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRun_MissingDatabaseIsNotCreated(t *testing.T) {
	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "typo.sqlite")

	err := run(context.Background(), options{}, cfg, zaptest.NewLogger(t).Sugar(), metrics.New("time-sort"))
	assert.ErrorIs(t, err, data.ErrStore)

	_, statErr := os.Stat(cfg.Database)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRun_DatabaseWithoutTraindata(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "other.sqlite")

	db, err := utils.NewSQLiteConnection(ctx, path, utils.SQLiteReadWriteCreate)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "CREATE TABLE stations (tiploc TEXT)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := config.Default()
	cfg.Database = path

	err = run(ctx, options{}, cfg, zaptest.NewLogger(t).Sugar(), metrics.New("time-sort"))
	assert.ErrorIs(t, err, data.ErrStore)

	var storeErr *data.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "load", storeErr.Op)
}
