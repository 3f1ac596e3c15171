//go:build integration

package tests

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-testfixtures/testfixtures/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khaiql/dbcleaner"
	"github.com/khaiql/dbcleaner/engine"
	"github.com/ory/dockertest/v3"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/go-arrower/schoolstore/postgres"
	"github.com/go-arrower/schoolstore/secret"
)

//nolint:gochecknoglobals // singleton, so all tests of a package share one container
var (
	muPostgres        = &sync.Mutex{}
	singletonPostgres *PostgresDocker
)

//nolint:gochecknoglobals,exhaustruct // only set required configuration
var (
	defaultPGConf = postgres.Config{
		User:     "schoolstore",
		Password: secret.New("secret"),
		Database: "schoolstore_test",
		Host:     "localhost",
		Port:     5432, //nolint:mnd
		MaxConns: 10,   //nolint:mnd
	}

	defaultPGRunOptions = dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=" + defaultPGConf.User,
			"POSTGRES_PASSWORD=" + defaultPGConf.Password.Secret(),
			"POSTGRES_DB=" + defaultPGConf.Database,
			"listen_addresses = '*'",
		},
		Cmd: []string{"-c", "max_connections=500"},
	}
)

// PostgresDocker is a PostgreSQL server running in docker, with the slots schema migrated.
type PostgresDocker struct {
	pg            *postgres.Handler
	cleanupDocker func() error
}

// GetPostgresDockerForIntegrationTestingInstance returns a fully connected handler.
// Subsequent calls return the same handler, so all parallel tests share one container.
// If called in a CI environment, the pipeline needs access to a docker socket.
// In case of an issue, it panics.
func GetPostgresDockerForIntegrationTestingInstance() *PostgresDocker {
	muPostgres.Lock()
	defer muPostgres.Unlock()

	if singletonPostgres != nil {
		return singletonPostgres
	}

	var pgHandler *postgres.Handler

	retryFunc := func(resource *dockertest.Resource) func() error {
		port, _ := strconv.Atoi(resource.GetPort("5432/tcp"))
		conf := defaultPGConf
		conf.Port = port

		return func() error {
			handler, err := postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())
			if err != nil {
				return err //nolint:wrapcheck
			}

			pgHandler = handler

			return nil
		}
	}

	options := defaultPGRunOptions
	options.Name = fmt.Sprintf("schoolstore-testing-postgres-%d", rand.Intn(1000)) //nolint:gosec,mnd // prevent collisions only

	cleanup, err := StartDockerContainer(&options, retryFunc)
	if err != nil {
		panic(err)
	}

	singletonPostgres = &PostgresDocker{
		pg:            pgHandler,
		cleanupDocker: cleanup,
	}

	return singletonPostgres
}

// NewTestDatabase creates a new database, connects to it, applies all migrations, and loads the fixture files.
// Use it to give each test its own database, so tests can run in parallel.
// In case of an issue, it panics.
func (pd *PostgresDocker) NewTestDatabase(files ...string) *pgxpool.Pool {
	pgHandler := createAndConnectToNewRandomDatabase(pd.pg)

	loadFixtures(pgHandler, files...)

	return pgHandler.PGx
}

// PrepareDatabase truncates all tables of the shared database and loads the fixture files.
func (pd *PostgresDocker) PrepareDatabase(files ...string) {
	c := pd.pg.Config
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password.Secret(), net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)

	cleaner := dbcleaner.New()
	cleaner.SetEngine(engine.NewPostgresEngine(dsn))

	var tables []string
	_ = pgxscan.Select(context.Background(), pd.PGx(), &tables,
		`SELECT table_schema || '.' || table_name
				FROM information_schema.tables
				WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
				  AND table_type = 'BASE TABLE'
				  AND table_name <> 'schema_migrations'`,
	)

	cleaner.Clean(tables...)
	_ = cleaner.Close()

	loadFixtures(pd.pg, files...)
}

// Cleanup shuts the database connection down and removes the docker container.
// It cannot be deferred in TestMain, if it exits with os.Exit(code), as that does not execute the defer stack.
// In case of an issue, it panics.
func (pd *PostgresDocker) Cleanup() {
	if err := pd.pg.Shutdown(context.Background()); err != nil {
		panic(err)
	}

	if err := pd.cleanupDocker(); err != nil {
		panic(err)
	}
}

// PGx returns the pool of the shared database.
func (pd *PostgresDocker) PGx() *pgxpool.Pool {
	return pd.pg.PGx
}

func loadFixtures(pg *postgres.Handler, files ...string) {
	if len(files) == 0 {
		return
	}

	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			panic(fmt.Errorf("fixture %s: %w", file, err))
		}
	}

	fixtures, err := testfixtures.New(
		testfixtures.Database(pg.DB),
		testfixtures.Dialect("postgres"),
		testfixtures.FilesMultiTables(files...),
	)
	if err != nil {
		panic(err)
	}

	if err := fixtures.Load(); err != nil {
		panic(err)
	}
}

func createAndConnectToNewRandomDatabase(pg *postgres.Handler) *postgres.Handler {
	newDB := randomDatabaseName()

	_, err := pg.PGx.Exec(context.Background(), fmt.Sprintf("CREATE DATABASE %s;", newDB))
	if err != nil {
		panic(err)
	}

	newConfig := pg.Config
	newConfig.Database = newDB

	newHandler, err := postgres.ConnectAndMigrate(context.Background(), newConfig, noop.NewTracerProvider())
	if err != nil {
		panic(err)
	}

	return newHandler
}

func randomDatabaseName() string {
	letters := []rune("abcdefghijklmnopqrstuvwxyz")
	rnd := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // used for name, not security

	const n = 16
	b := make([]rune, n)

	for i := range b {
		b[i] = letters[rnd.Intn(len(letters))]
	}

	return string(b) + "_test"
}
