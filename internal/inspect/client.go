package inspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// Config describes one database connection.
type Config struct {
	Driver string
	DSN    string
	// Schema is the PostgreSQL schema, "public" when empty. MySQL uses the
	// database of the DSN.
	Schema string
	// SkipAutoIncrementSeed leaves the AUTO_INCREMENT counter out of MySQL
	// table options.
	SkipAutoIncrementSeed bool
}

// Client is an open connection with its inspector.
type Client struct {
	DB        *sql.DB
	Driver    string
	Inspector Inspector
}

// Open connects to the database described by cfg and returns an inspector
// for it.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Driver == "mysql" {
		parsed, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		if parsed.DBName == "" {
			return nil, fmt.Errorf("no database selected in DSN")
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	var in Inspector
	switch cfg.Driver {
	case "mysql":
		in, err = NewMySQL(ctx, db, cfg.SkipAutoIncrementSeed)
	case "postgres", "pgx":
		in = NewPostgres(db, cfg.Schema)
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Client{DB: db, Driver: cfg.Driver, Inspector: in}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.DB.Close()
}
