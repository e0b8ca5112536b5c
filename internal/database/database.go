// Package database opens the credential store connection and runs statements inside
// the caller's transaction.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Connect opens and pings the database. MySQL connections always parse DATETIME
// columns into UTC time.Time values regardless of the DSN.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
		db, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	case DriverMySQL:
		mysqlCfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mysql connection string: %w", err)
		}
		mysqlCfg.ParseTime = true
		mysqlCfg.Loc = time.UTC
		connector, err := mysql.NewConnector(mysqlCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return sql.OpenDB(connector), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// MigrationURLs returns the golang-migrate source and database URLs for driver.
func MigrationURLs(driver, dsn string) (sourceURL, databaseURL string, err error) {
	switch driver {
	case DriverPostgres:
		return "file://migrations/postgresql", dsn, nil
	case DriverMySQL:
		if !strings.HasPrefix(dsn, "mysql://") {
			dsn = "mysql://" + dsn
		}
		return "file://migrations/mysql", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}
