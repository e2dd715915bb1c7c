package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var ErrEmptyDSN = errors.New("DATABASE_URL is empty")

// Handle is the process-wide persistence handle. It is built once in main and
// handed to whatever needs it; there is no package-level engine.
type Handle struct {
	DB      *gorm.DB
	Dialect string
}

func configurePool(sqlDB *sql.DB, dialect string) {
	if dialect == DialectSQLite {
		// every connection to ":memory:" is a separate database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}

	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// dialector picks the gorm dialector from the DSN. Postgres goes through the
// lib/pq driver; "sqlite://<path>" opens a sqlite file or ":memory:".
func dialector(dsn string) (gorm.Dialector, string, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return nil, "", fmt.Errorf("sqlite DSN has no path: %q", dsn)
		}
		return sqlite.Open(path), DialectSQLite, nil
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), DialectPostgres, nil
	default:
		return nil, "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", dsn)
	}
}

func Open(ctx context.Context, dsn string) (*Handle, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	d, dialect, err := dialector(dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(d, &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB, dialect)

	h := &Handle{DB: gdb, Dialect: dialect}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.Ping(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if dialect == DialectSQLite {
		if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	return h, nil
}

func (h *Handle) Migrate(ctx context.Context, dst ...any) error {
	if err := h.DB.WithContext(ctx).AutoMigrate(dst...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (h *Handle) Ping(ctx context.Context) error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}

func (h *Handle) Close() error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
