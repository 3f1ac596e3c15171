package schoolstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-arrower/schoolstore/postgres"
	"github.com/go-arrower/schoolstore/repository"
)

// openStore connects to the store selected by Config.Storage.Driver.
func (c *Container) openStore(ctx context.Context) error {
	conf := c.Config.Storage

	switch conf.Driver {
	case MemoryDriver:
		c.Store = repository.NewMemoryStore()
	case FileDriver, "":
		codec, err := repository.CodecByName(conf.Codec)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		store, err := repository.NewFileStore(conf.Dir, codec.Ext())
		if err != nil {
			return fmt.Errorf("could not open file store: %w", err)
		}

		c.Store = store
	case SQLiteDriver:
		store, err := repository.NewSQLiteStore(ctx, conf.SQLitePath)
		if err != nil {
			return fmt.Errorf("could not open sqlite store: %w", err)
		}

		c.Store = store
		c.closeStore = func(context.Context) error { return store.Close() }
	case PostgresDriver:
		pg, err := postgres.ConnectAndMigrate(ctx, postgres.Config{
			User:     conf.Postgres.User,
			Password: conf.Postgres.Password,
			Database: conf.Postgres.Database,
			Host:     conf.Postgres.Host,
			Port:     conf.Postgres.Port,
			SSLMode:  conf.Postgres.SSLMode,
			MaxConns: conf.Postgres.MaxConns,
		}, c.TraceProvider)
		if err != nil {
			return fmt.Errorf("could not connect to postgres: %w", err)
		}

		c.PG = pg
		c.Store = repository.NewPostgresStore(pg.PGx)
		c.closeStore = pg.Shutdown
	case S3Driver:
		store, err := repository.NewS3Store(ctx, repository.S3Config{
			Bucket:          conf.S3.Bucket,
			Region:          conf.S3.Region,
			Endpoint:        conf.S3.Endpoint,
			Prefix:          conf.S3.Prefix,
			AccessKeyID:     conf.S3.AccessKeyID,
			SecretAccessKey: conf.S3.SecretAccessKey,
			PathStyle:       conf.S3.PathStyle,
		})
		if err != nil {
			return fmt.Errorf("could not open s3 store: %w", err)
		}

		if conf.S3.CreateBucket {
			if err := store.CreateBucket(ctx); err != nil {
				return fmt.Errorf("could not open s3 store: %w", err)
			}
		}

		c.Store = store
	default:
		return fmt.Errorf("%w: storage driver %q", ErrInvalidConfig, conf.Driver)
	}

	c.Logger.DebugContext(ctx, "store opened",
		slog.String("driver", conf.Driver),
		slog.String("codec", conf.Codec),
	)

	return nil
}
