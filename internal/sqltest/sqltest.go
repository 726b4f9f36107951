// Package sqltest holds helpers for tests running against sqlmock.
package sqltest

import (
	"database/sql/driver"
	"regexp"
	"strings"

	"github.com/DATA-DOG/go-sqlmock"
)

// Rows builds mock rows from a table printed the way the mysql and psql
// clients print results. The first row holds the column names. Empty cells
// and the NULL keyword become NULL values; everything else is text.
//
//	+-------------+-------------+
//	| COLUMN_NAME | IS_NULLABLE |
//	+-------------+-------------+
//	| id          | NO          |
//	| note        | NULL        |
//	+-------------+-------------+
func Rows(table string) *sqlmock.Rows {
	var rows *sqlmock.Rows
	for _, line := range strings.Split(table, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "+") {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if rows == nil {
			rows = sqlmock.NewRows(cells)
			continue
		}
		values := make([]driver.Value, len(cells))
		for i, c := range cells {
			if c != "" && c != "NULL" {
				values[i] = c
			}
		}
		rows.AddRow(values...)
	}
	return rows
}

// Escape turns a query into an anchored pattern matching it literally.
func Escape(query string) string {
	return "^" + regexp.QuoteMeta(strings.TrimSpace(query)) + "$"
}
