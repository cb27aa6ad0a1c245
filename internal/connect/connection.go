package connect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	postgresPingAttempts = 30
	postgresPingInterval = time.Second
)

var (
	MongoDBClient *mongo.Client
	PostgresPool  *pgxpool.Pool
)

// MongoDBConnect connects and pings. A "<password>" placeholder in uri is
// replaced with password.
func MongoDBConnect(ctx context.Context, uri, password string) (*mongo.Client, error) {
	fullUri := strings.Replace(uri, "<password>", password, 1)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	clientOptions := options.Client().ApplyURI(fullUri)

	var err error
	MongoDBClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := MongoDBClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return MongoDBClient, nil
}

func MongoDBDisconnect() error {
	if MongoDBClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := MongoDBClient.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	MongoDBClient = nil
	return nil
}

// PostgresConnect opens a pool and waits for the database to accept
// connections.
func PostgresConnect(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_DSN: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Postgres pool: %w", err)
	}

	for i := 0; i < postgresPingAttempts; i++ {
		if err = pool.Ping(ctx); err == nil {
			PostgresPool = pool
			return pool, nil
		}
		logger.Info("waiting for Postgres", "attempt", i+1, "of", postgresPingAttempts)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(postgresPingInterval):
		}
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to Postgres after %d attempts: %w", postgresPingAttempts, err)
}

func PostgresDisconnect() {
	if PostgresPool == nil {
		return
	}
	PostgresPool.Close()
	PostgresPool = nil
}
