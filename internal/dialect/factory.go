package dialect

import (
	"fmt"

	"db-sync/internal/schema"
)

// GetDialect returns the renderer for a database/sql driver name. version is
// the server version, used by dialects that gate features on it.
func GetDialect(driver, version string) (schema.Dialect, error) {
	switch driver {
	case "mysql":
		return &MysqlDialect{Version: version}, nil
	case "postgres", "pgx":
		return &PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Transactional reports whether DDL statements of the dialect can be
// wrapped in a transaction.
func Transactional(d schema.Dialect) bool {
	return d.Name() == "postgres"
}

// Ensure interface implementation
var _ schema.Dialect = (*MysqlDialect)(nil)
var _ schema.Dialect = (*PostgresDialect)(nil)
var _ schema.InlineAutoIncrement = (*PostgresDialect)(nil)
