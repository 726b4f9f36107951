package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
)

const (
	mysqlSchemaQuery = `SELECT DATABASE(), VERSION()`

	mysqlTablesQuery = `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`

	mysqlTableQuery = `SELECT ENGINE, TABLE_COLLATION, TABLE_COMMENT, AUTO_INCREMENT FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`

	mysqlColumnsQuery = `SELECT COLUMN_NAME, COLUMN_TYPE, CHARACTER_SET_NAME, COLLATION_NAME, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, COLUMN_COMMENT FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`

	mysqlIndexesQuery = `SELECT INDEX_NAME, NON_UNIQUE, SEQ_IN_INDEX, COLUMN_NAME, SUB_PART, COLLATION, INDEX_TYPE, INDEX_COMMENT FROM information_schema.STATISTICS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY INDEX_NAME = 'PRIMARY' DESC, INDEX_NAME, SEQ_IN_INDEX`

	mysqlForeignKeysQuery = `SELECT k.CONSTRAINT_NAME, k.COLUMN_NAME, k.ORDINAL_POSITION, k.POSITION_IN_UNIQUE_CONSTRAINT, k.REFERENCED_TABLE_NAME, k.REFERENCED_COLUMN_NAME, r.UPDATE_RULE, r.DELETE_RULE FROM information_schema.KEY_COLUMN_USAGE k JOIN information_schema.REFERENTIAL_CONSTRAINTS r ON r.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND r.TABLE_NAME = k.TABLE_NAME WHERE k.TABLE_SCHEMA = ? AND k.TABLE_NAME = ? AND k.REFERENCED_TABLE_NAME IS NOT NULL ORDER BY k.CONSTRAINT_NAME, k.ORDINAL_POSITION`
)

// MySQL inspects a MySQL database.
type MySQL struct {
	db                    Querier
	schemaName            string
	dialect               *dialect.MysqlDialect
	skipAutoIncrementSeed bool
}

// NewMySQL reads the current database and server version of db.
func NewMySQL(ctx context.Context, db Querier, skipAutoIncrementSeed bool) (*MySQL, error) {
	var name, version sql.NullString
	if err := db.QueryRowContext(ctx, mysqlSchemaQuery).Scan(&name, &version); err != nil {
		return nil, fmt.Errorf("failed to get database name: %w", err)
	}
	if name.String == "" {
		return nil, fmt.Errorf("no database selected in DSN")
	}
	return &MySQL{
		db:                    db,
		schemaName:            name.String,
		dialect:               &dialect.MysqlDialect{Version: version.String},
		skipAutoIncrementSeed: skipAutoIncrementSeed,
	}, nil
}

func (m *MySQL) Dialect() schema.Dialect { return m.dialect }

// SchemaName returns the inspected database.
func (m *MySQL) SchemaName() string { return m.schemaName }

func (m *MySQL) ListTableNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, m.db, mysqlTablesQuery, m.schemaName)
}

func (m *MySQL) LoadTable(ctx context.Context, name string) (*schema.Table, error) {
	t := schema.NewTable(name)
	if err := m.loadOptions(ctx, t); err != nil {
		return nil, err
	}
	if err := m.loadColumns(ctx, t); err != nil {
		return nil, err
	}
	if err := m.loadIndexes(ctx, t); err != nil {
		return nil, err
	}
	if err := m.loadForeignKeys(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *MySQL) loadOptions(ctx context.Context, t *schema.Table) error {
	var engine, collation, comment sql.NullString
	var seed sql.NullInt64
	err := m.db.QueryRowContext(ctx, mysqlTableQuery, m.schemaName, t.Name).Scan(&engine, &collation, &comment, &seed)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("table %s not found in %s", t.Name, m.schemaName)
	}
	if err != nil {
		return fmt.Errorf("failed to query table status: %w", err)
	}
	if engine.String != "" {
		t.AddOption(schema.NewOption(schema.OptionEngine, engine.String))
	}
	if collation.String != "" {
		t.AddOption(schema.NewOption(schema.OptionCollation, collation.String))
	}
	if comment.String != "" {
		t.AddOption(schema.NewOption(schema.OptionComment, comment.String))
	}
	if seed.Valid && !m.skipAutoIncrementSeed {
		t.AddOption(schema.AutoIncrementSeed(seed.Int64))
	}
	return nil
}

var (
	onUpdateExtra    = regexp.MustCompile(`(?i)on update (\S+)`)
	currentTimestamp = regexp.MustCompile(`(?i)^current_timestamp(\(\d*\))?$`)
)

func (m *MySQL) loadColumns(ctx context.Context, t *schema.Table) error {
	rows, err := m.db.QueryContext(ctx, mysqlColumnsQuery, m.schemaName, t.Name)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, columnType, charset, collation, nullable, def, extra, comment sql.NullString
		if err := rows.Scan(&name, &columnType, &charset, &collation, &nullable, &def, &extra, &comment); err != nil {
			return fmt.Errorf("failed to scan column (table: %s): %w", t.Name, err)
		}
		typ, err := parseMySQLType(columnType.String, charset.String, collation.String)
		if err != nil {
			return &TypeError{Table: t.Name, Column: name.String, Raw: columnType.String, Err: err}
		}

		isNull := strings.EqualFold(nullable.String, "YES")
		c := schema.NewColumn(name.String, typ, &schema.Nullable{Null: isNull})
		switch {
		case def.Valid && currentTimestamp.MatchString(def.String):
			c.SetDefinition(schema.DefaultExpr(def.String))
		case def.Valid && strings.Contains(strings.ToUpper(extra.String), "DEFAULT_GENERATED"):
			// Expression defaults come back without the parentheses MySQL
			// requires around them.
			expr := def.String
			if !strings.HasPrefix(expr, "(") {
				expr = "(" + expr + ")"
			}
			c.SetDefinition(schema.DefaultExpr(expr))
		case def.Valid:
			c.SetDefinition(schema.DefaultValue(def.String))
		case isNull:
			c.SetDefinition(schema.DefaultNull())
		}
		if strings.Contains(strings.ToLower(extra.String), "auto_increment") {
			c.SetDefinition(&schema.AutoIncrement{})
		}
		if match := onUpdateExtra.FindStringSubmatch(extra.String); match != nil {
			c.SetDefinition(&schema.OnUpdate{Expr: match[1]})
		}
		c.SetDefinition(&schema.Comment{Text: comment.String})
		t.AddColumn(c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating columns: %w", err)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.Name)
	}
	return nil
}

func (m *MySQL) loadIndexes(ctx context.Context, t *schema.Table) error {
	rows, err := m.db.QueryContext(ctx, mysqlIndexesQuery, m.schemaName, t.Name)
	if err != nil {
		return fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, column, order, indexType, comment sql.NullString
			nonUnique, seq, subPart                 sql.NullInt64
		)
		if err := rows.Scan(&name, &nonUnique, &seq, &column, &subPart, &order, &indexType, &comment); err != nil {
			return fmt.Errorf("failed to scan index (table: %s): %w", t.Name, err)
		}
		if !column.Valid {
			return &MetadataError{Table: t.Name, Index: name.String, Reason: "functional key parts are not supported"}
		}
		if seq.Int64 < 1 {
			return &MetadataError{Table: t.Name, Index: name.String, Reason: fmt.Sprintf("invalid column position %d", seq.Int64)}
		}

		idx, ok := t.Index(name.String)
		if !ok {
			if idx, err = newMySQLIndex(name.String, nonUnique.Int64 == 0, indexType.String); err != nil {
				return &MetadataError{Table: t.Name, Index: name.String, Reason: err.Error()}
			}
			idx.Comment = comment.String
			t.AddIndex(idx)
		}
		part := schema.IndexColumn{Name: column.String, Length: int(subPart.Int64)}
		if order.String == "D" {
			part.Order = schema.SortDesc
		}
		idx.AddColumn(part, int(seq.Int64-1))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating indexes: %w", err)
	}
	return nil
}

func newMySQLIndex(name string, unique bool, indexType string) (*schema.Index, error) {
	var idx *schema.Index
	switch {
	case name == "PRIMARY":
		idx = schema.NewIndex(schema.IndexPrimary, name)
	case indexType == "FULLTEXT":
		return schema.NewIndex(schema.IndexFulltext, name), nil
	case indexType == "SPATIAL":
		return schema.NewIndex(schema.IndexSpatial, name), nil
	case unique:
		idx = schema.NewIndex(schema.IndexUnique, name)
	default:
		idx = schema.NewIndex(schema.IndexKey, name)
	}
	switch indexType {
	case "BTREE":
		idx.Storage = schema.StorageBTree
	case "HASH":
		idx.Storage = schema.StorageHash
	default:
		return nil, fmt.Errorf("unknown index type %q", indexType)
	}
	return idx, nil
}

func (m *MySQL) loadForeignKeys(ctx context.Context, t *schema.Table) error {
	rows, err := m.db.QueryContext(ctx, mysqlForeignKeysQuery, m.schemaName, t.Name)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, column, refTable, refColumn, updateRule, deleteRule sql.NullString
			position, refPosition                                     sql.NullInt64
		)
		if err := rows.Scan(&name, &column, &position, &refPosition, &refTable, &refColumn, &updateRule, &deleteRule); err != nil {
			return fmt.Errorf("failed to scan foreign key (table: %s): %w", t.Name, err)
		}
		if !position.Valid || !refPosition.Valid || position.Int64 < 1 || refPosition.Int64 < 1 {
			return &MetadataError{Table: t.Name, Index: name.String, Reason: "missing column position"}
		}

		fk, ok := t.ForeignKey(name.String)
		if !ok {
			fk = schema.NewForeignKey(name.String, refTable.String)
			if fk.OnUpdate, err = parseReferenceOption(updateRule.String); err != nil {
				return &MetadataError{Table: t.Name, Index: name.String, Reason: err.Error()}
			}
			if fk.OnDelete, err = parseReferenceOption(deleteRule.String); err != nil {
				return &MetadataError{Table: t.Name, Index: name.String, Reason: err.Error()}
			}
			t.AddIndex(fk)
		}
		fk.AddColumn(schema.IndexColumn{Name: column.String}, int(position.Int64-1))
		fk.AddReferenceColumn(refColumn.String, int(refPosition.Int64-1))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating foreign keys: %w", err)
	}
	return nil
}

// parseReferenceOption maps an information_schema rule.
func parseReferenceOption(rule string) (schema.ReferenceOption, error) {
	switch strings.ToUpper(rule) {
	case "":
		return schema.ActionNone, nil
	case "NO ACTION":
		return schema.ActionNoAction, nil
	case "CASCADE":
		return schema.ActionCascade, nil
	case "SET NULL":
		return schema.ActionSetNull, nil
	case "RESTRICT":
		return schema.ActionRestrict, nil
	default:
		return schema.ActionNone, fmt.Errorf("unsupported referential action %q", rule)
	}
}
