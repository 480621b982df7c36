// Package main provides the Logistix administration CLI.
//
//	logistix-admin schema apply
//	logistix-admin tenant create --slug acme --name "ACME Freight"
//	logistix-admin user create --tenant <id> --email ops@acme.io --password ... --role admin
//	logistix-admin numbering next --tenant <id> --kind invoice --trip <trip-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"logistix/internal/config"
	corenum "logistix/internal/core/numbering"
	infranum "logistix/internal/infrastructure/numbering"
	"logistix/internal/infrastructure/storage/postgres"
	"logistix/internal/infrastructure/storage/postgres/numbering_repo"
	"logistix/pkg/logger"
)

var version = "dev"

// options are shared by every sub-command.
type options struct {
	databaseURL    string
	counterBackend string
	redisAddr      string
	redisPassword  string
	redisDB        int
}

func main() {
	_ = config.LoadDotEnv()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "logistix-admin",
		Short:        "Logistix administration tool",
		Long:         "Provision tenants and users, manage numbering counters and apply the reference schema.",
		Version:      version,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (env DATABASE_URL)")
	flags.StringVar(&opts.counterBackend, "counter-backend", envOr("COUNTER_BACKEND", string(config.CounterPostgres)), "Counter store: postgres or redis (env COUNTER_BACKEND)")
	flags.StringVar(&opts.redisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "Redis address (env REDIS_ADDR)")
	flags.StringVar(&opts.redisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password (env REDIS_PASSWORD)")
	flags.IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")

	root.AddCommand(
		newSchemaCmd(opts),
		newTenantCmd(opts),
		newUserCmd(opts),
		newNumberingCmd(opts),
	)
	return root
}

// connect opens a small pool for one CLI invocation.
func (o *options) connect(ctx context.Context) (*postgres.Pool, error) {
	if o.databaseURL == "" {
		return nil, errors.New("database url is required (--database-url or DATABASE_URL)")
	}
	cfg := postgres.DefaultPoolConfig(o.databaseURL)
	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.ApplicationName = "logistix-admin"

	ctx = logger.WithLogger(ctx, logger.Nop())
	return postgres.NewPool(ctx, cfg)
}

// counterStore returns the configured counter backend together with a
// function that releases it.
func (o *options) counterStore(ctx context.Context, txm *postgres.TxManager) (counterAdmin, func(), error) {
	switch config.CounterBackend(o.counterBackend) {
	case config.CounterPostgres:
		return numbering_repo.NewCounterRepo(txm), func() {}, nil
	case config.CounterRedis:
		client, err := infranum.NewClient(ctx, infranum.Options{
			Addr:     o.redisAddr,
			Password: o.redisPassword,
			DB:       o.redisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return infranum.NewRedisCounter(client, ""), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown counter backend %q", o.counterBackend)
	}
}

// counterAdmin is implemented by both counter stores.
type counterAdmin interface {
	corenum.CounterStore
	Set(ctx context.Context, key string, value int64) error
	Get(ctx context.Context, key string) (int64, error)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
