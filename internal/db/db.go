package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
)

// Params describes one database endpoint.
type Params struct {
	Driver   string // "sqlserver" or "postgres"
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// AccessToken authenticates to Fabric SQL endpoints instead of a
	// user/password pair.
	AccessToken string
}

// DSN builds the driver-specific connection string.
func (p Params) DSN() (string, error) {
	switch p.Driver {
	case "sqlserver":
		q := url.Values{}
		q.Set("database", p.Database)
		q.Set("encrypt", "true")
		q.Set("TrustServerCertificate", "false")
		if p.AccessToken != "" {
			q.Set("fedauth", "ActiveDirectoryServicePrincipalAccessToken")
			q.Set("password", p.AccessToken)
		}
		u := url.URL{
			Scheme:   "sqlserver",
			Host:     hostPort(p.Host, p.Port, 1433),
			RawQuery: q.Encode(),
		}
		if p.User != "" {
			u.User = url.UserPassword(p.User, p.Password)
		}
		return u.String(), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=require",
			p.Host, portOrDefault(p.Port, 5432), p.Database, p.User, p.Password), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", p.Driver)
	}
}

// Open opens and pings the endpoint.
func Open(ctx context.Context, p Params) (*sql.DB, error) {
	dsn, err := p.DSN()
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(p.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", p.Driver, err)
	}
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetMaxOpenConns(16)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach %s: %w", p.Host, err)
	}
	return conn, nil
}

func hostPort(host string, port, def int) string {
	return fmt.Sprintf("%s:%d", host, portOrDefault(port, def))
}

func portOrDefault(port, def int) int {
	if port == 0 {
		return def
	}
	return port
}
