package utils

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/config"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func NewRabbitConnection(cfg config.RabbitConfig) (*amqp.Connection, *amqp.Channel, error) {
	amqpConfig := amqp.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	}

	connection, err := amqp.DialConfig(fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Password, cfg.Host, cfg.Port), amqpConfig)
	if err != nil {
		return nil, nil, err
	}
	channel, err := connection.Channel()
	if err != nil {
		connection.Close()
		return nil, nil, err
	}

	return connection, channel, nil
}

func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		// default to the redis service in the cluster
		addr = "redis:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	return rdb
}

func NewPostgresConnection(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	connection, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := connection.Ping(ctx); err != nil {
		connection.Close()
		return nil, err
	}

	return connection, nil
}

// SQLite open modes. SQLiteReadWrite fails when the file does not exist.
const (
	SQLiteReadWriteCreate = "rwc"
	SQLiteReadWrite       = "rw"
)

var sqlitePathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// SQLiteDSN builds a file: URI for path. Characters that would end the path
// part of the URI are percent-encoded.
func SQLiteDSN(path, mode string) string {
	return fmt.Sprintf("file:%s?mode=%s&_busy_timeout=5000", sqlitePathEscaper.Replace(path), mode)
}

func NewSQLiteConnection(ctx context.Context, path, mode string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", SQLiteDSN(path, mode))
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
