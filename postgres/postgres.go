// Package postgres connects to PostgreSQL and keeps the schema of the slot store up to date.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/schoolstore/secret"
)

// Migrations create the slots table used by repository.PostgresStore.
//
//go:embed migrations/*.sql
var Migrations embed.FS

var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrMigrationFailed  = errors.New("migration failed")
)

// Config holds all values used to configure and connect to a postgres database.
type Config struct {
	// Migrations has to contain a folder "migrations". If nil, Migrations of this package are used.
	Migrations fs.FS
	User       string
	Password   secret.Secret
	Database   string
	SSLMode    string
	Host       string
	Port       int
	MaxConns   int
}

func (c Config) toURL() string {
	if c.MaxConns == 0 { // prevent error: pool_max_conns too small
		c.MaxConns = 10
	}

	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	query.Set("pool_max_conns", strconv.Itoa(c.MaxConns))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password.Secret()),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}

	return u.String()
}

// Connect connects to a PostgreSQL database.
func Connect(ctx context.Context, pgConf Config, tracerProvider trace.TracerProvider) (*Handler, error) {
	config, err := pgxpool.ParseConfig(pgConf.toURL())
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse config: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	// to list all runtime settings: SHOW ALL;
	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "schoolstore",
	}
	config.ConnConfig.Tracer = &pgxTraceAdapter{
		tracer: tracerProvider.Tracer("schoolstore.pgx"),
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: could not connect: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("%w: could not ping db: %v", ErrConnectionFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	// migrate works on database/sql only
	db := stdlib.OpenDBFromPool(dbpool)

	return &Handler{
		PGx:    dbpool,
		DB:     db,
		Config: pgConf,
	}, nil
}

// ConnectAndMigrate connects to a PostgreSQL database and
// runs all migrations to ensure that the schema is on the latest version.
func ConnectAndMigrate(ctx context.Context, conf Config, tracerProvider trace.TracerProvider) (*Handler, error) {
	if conf.Migrations == nil {
		conf.Migrations = Migrations
	}

	handler, err := Connect(ctx, conf, tracerProvider)
	if err != nil {
		return nil, err
	}

	if err = migrateUp(handler.DB, conf.Database, conf.Migrations); err != nil {
		_ = handler.Shutdown(ctx)
		return nil, err
	}

	return handler, nil
}

func migrateUp(db *sql.DB, dbName string, migrationsFS fs.FS) error {
	fsDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: could not create migration file driver: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{}) //nolint:exhaustruct // use default config
	if err != nil {
		return fmt.Errorf("%w: could not get database driver: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	m, err := migrate.NewWithInstance("iofs", fsDriver, dbName, driver)
	if err != nil {
		return fmt.Errorf("%w: could not create new migration instance: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: could not migrate up: %v", ErrMigrationFailed, err) //nolint:errorlint,lll // prevent err in api
	}

	return nil
}

type Handler struct {
	PGx *pgxpool.Pool
	// DB is kept for migrations & integration tests, e.g. setting up test fixtures.
	DB     *sql.DB
	Config Config
}

// Shutdown waits & closes all connections to PostgreSQL.
func (h *Handler) Shutdown(_ context.Context) error {
	err := h.DB.Close()
	h.PGx.Close()

	return err //nolint:wrapcheck // export the underlying error
}
