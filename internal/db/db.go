package db

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Params holds the connection settings for DSN.
type Params struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	Connection string // full DSN, wins over the other fields
}

// DSN assembles a driver specific connection string from the parts.
func DSN(p Params) (string, error) {
	if p.Connection != "" {
		return p.Connection, nil
	}

	switch p.Driver {
	case "mysql":
		port := p.Port
		if port == "" {
			port = "3306"
		}
		c := mysql.NewConfig()
		c.User = p.User
		c.Passwd = p.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(p.Host, port)
		c.DBName = p.Name
		c.ParseTime = true
		return c.FormatDSN(), nil
	case "pgx":
		port := p.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.User, p.Password),
			Host:     net.JoinHostPort(p.Host, port),
			Path:     "/" + p.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	case "sqlite":
		return "", fmt.Errorf("sqlite requires DB_CONNECTION to point at a database file")
	default:
		return "", fmt.Errorf("unsupported database driver %q", p.Driver)
	}
}

// Init opens the shared connection pool and verifies it with a ping.
// Open errors are fatal; a failed ping is returned alongside a usable pool so
// callers can keep serving and let each statement fail on its own.
func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == "sqlite" {
		dir := filepath.Dir(connection)
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Open(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}

	// Connection pool configuration (good defaults for all drivers)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return db, &UnavailableError{Err: err}
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// UnavailableError reports a pool that was created but could not reach the datastore.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return "failed to ping database: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
