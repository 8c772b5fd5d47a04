package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/FACorreiaa/sosohaeng-api/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	uuid "github.com/vgarvardt/pgx-google-uuid/v5"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	pingAttempts = 5
	pingBackoff  = 200 * time.Millisecond
)

// DB is the subset of *pgxpool.Pool the repositories use. pgxmock pools satisfy it too.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ DB     = (*pgxpool.Pool)(nil)
	_ Pinger = (*pgxpool.Pool)(nil)
)

type DatabaseConfig struct {
	ConnectionURL  string
	MaxConns       int32
	ConnectTimeout time.Duration
}

// WaitForDB pings with a linear backoff until the catalog database answers.
func WaitForDB(ctx context.Context, db Pinger, logger *slog.Logger) bool {
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		err := db.Ping(ctx)
		if err == nil {
			logger.InfoContext(ctx, "Catalog database reachable", slog.Int("attempt", attempt))
			return true
		}
		if attempt == pingAttempts {
			logger.ErrorContext(ctx, "Catalog database unreachable", slog.Int("attempts", attempt), slog.Any("error", err))
			break
		}
		wait := time.Duration(attempt) * pingBackoff
		logger.WarnContext(ctx, "Catalog database ping failed",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", wait),
			slog.Any("error", err))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
	return false
}

// RunMigrations brings the catalog schema up to the newest embedded version.
func RunMigrations(databaseURL string, logger *slog.Logger) (err error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported migration scheme %q", u.Scheme)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			logger.Warn("Closing migrator failed", slog.Any("error", closeErr))
		}
	}()

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Warn("Migration version unknown", slog.Any("error", err))
		return nil
	}
	if dirty {
		return fmt.Errorf("migration %d left the schema dirty", version)
	}
	logger.Info("Catalog schema ready",
		slog.Uint64("version", uint64(version)),
		slog.Bool("changed", upErr == nil))
	return nil
}

// NewDatabaseConfig builds the postgresql:// URL that both pgx and migrate accept.
func NewDatabaseConfig(cfg *config.Config, logger *slog.Logger) (*DatabaseConfig, error) {
	if cfg == nil || cfg.Repositories.Postgres.Host == "" {
		return nil, errors.New("postgres host is not configured")
	}
	pg := cfg.Repositories.Postgres

	sslMode := pg.SSLMODE
	if sslMode == "" {
		sslMode = "disable"
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	query.Set("timezone", "Asia/Seoul")

	connURL := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(pg.Username, pg.Password),
		Host:     pg.Host + ":" + pg.Port,
		Path:     pg.DB,
		RawQuery: query.Encode(),
	}
	logger.Info("Catalog database configured", slog.String("host", connURL.Host), slog.String("database", pg.DB))

	return &DatabaseConfig{
		ConnectionURL:  connURL.String(),
		MaxConns:       pg.MaxConns,
		ConnectTimeout: time.Duration(pg.MAXCONWAITINGTIME) * time.Second,
	}, nil
}

// Init opens the pool with uuid.UUID registered on every connection.
func Init(ctx context.Context, dbConfig *DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbConfig.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing db config: %w", err)
	}

	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		uuid.Register(conn.TypeMap())
		return nil
	}
	if dbConfig.MaxConns > 0 {
		cfg.MaxConns = dbConfig.MaxConns
	}
	if dbConfig.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = dbConfig.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed creating db pool: %w", err)
	}
	logger.Info("Catalog pool ready", slog.Int("max_conns", int(cfg.MaxConns)))
	return pool, nil
}
