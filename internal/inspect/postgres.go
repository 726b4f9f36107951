package inspect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"db-sync/internal/dialect"
	"db-sync/internal/schema"
)

const (
	pgTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`

	pgTableQuery = `SELECT COALESCE(obj_description(c.oid, 'pg_class'), '') FROM pg_class c JOIN pg_namespace n ON n.oid = c.relnamespace WHERE n.nspname = $1 AND c.relname = $2 AND c.relkind = 'r'`

	pgColumnsQuery = `SELECT column_name, udt_name, character_maximum_length, numeric_precision, numeric_scale, datetime_precision, is_nullable, column_default, is_identity, collation_name FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`

	pgIndexesQuery = `SELECT i.relname, ix.indisprimary, ix.indisunique, am.amname, a.attname, k.ord, (ix.indoption[k.ord - 1] & 1) = 1 FROM pg_index ix JOIN pg_class t ON t.oid = ix.indrelid JOIN pg_class i ON i.oid = ix.indexrelid JOIN pg_namespace n ON n.oid = t.relnamespace JOIN pg_am am ON am.oid = i.relam CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum WHERE n.nspname = $1 AND t.relname = $2 ORDER BY ix.indisprimary DESC, i.relname, k.ord`

	pgForeignKeysQuery = `SELECT con.conname, a.attname, rt.relname, ra.attname, con.confupdtype, con.confdeltype, k.ord FROM pg_constraint con JOIN pg_class t ON t.oid = con.conrelid JOIN pg_namespace n ON n.oid = t.relnamespace JOIN pg_class rt ON rt.oid = con.confrelid CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, refattnum, ord) JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum JOIN pg_attribute ra ON ra.attrelid = con.confrelid AND ra.attnum = k.refattnum WHERE con.contype = 'f' AND n.nspname = $1 AND t.relname = $2 ORDER BY con.conname, k.ord`
)

// Postgres inspects one schema of a PostgreSQL database.
type Postgres struct {
	db         Querier
	schemaName string
	dialect    *dialect.PostgresDialect
}

// NewPostgres returns an inspector for schemaName, "public" when empty.
func NewPostgres(db Querier, schemaName string) *Postgres {
	if schemaName == "" {
		schemaName = "public"
	}
	return &Postgres{db: db, schemaName: schemaName, dialect: &dialect.PostgresDialect{}}
}

func (p *Postgres) Dialect() schema.Dialect { return p.dialect }

func (p *Postgres) SchemaName() string { return p.schemaName }

func (p *Postgres) ListTableNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, p.db, pgTablesQuery, p.schemaName)
}

func (p *Postgres) LoadTable(ctx context.Context, name string) (*schema.Table, error) {
	t := schema.NewTable(name)

	var comment sql.NullString
	err := p.db.QueryRowContext(ctx, pgTableQuery, p.schemaName, name).Scan(&comment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s not found in %s", name, p.schemaName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table: %w", err)
	}
	if comment.String != "" {
		t.AddOption(schema.NewOption(schema.OptionComment, comment.String))
	}

	if err := p.loadColumns(ctx, t); err != nil {
		return nil, err
	}
	if err := p.loadIndexes(ctx, t); err != nil {
		return nil, err
	}
	if err := p.loadForeignKeys(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Postgres) loadColumns(ctx context.Context, t *schema.Table) error {
	rows, err := p.db.QueryContext(ctx, pgColumnsQuery, p.schemaName, t.Name)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, udt, nullable, def, identity, collation sql.NullString
			length, precision, scale, timePrecision       sql.NullInt64
		)
		if err := rows.Scan(&name, &udt, &length, &precision, &scale, &timePrecision, &nullable, &def, &identity, &collation); err != nil {
			return fmt.Errorf("failed to scan column (table: %s): %w", t.Name, err)
		}
		typ, err := postgresType(udt.String, int(length.Int64), int(precision.Int64), int(scale.Int64), int(timePrecision.Int64), collation.String)
		if err != nil {
			return &TypeError{Table: t.Name, Column: name.String, Raw: udt.String, Err: err}
		}

		c := schema.NewColumn(name.String, typ, &schema.Nullable{Null: nullable.String == "YES"})
		switch {
		case identity.String == "YES", strings.HasPrefix(def.String, "nextval("):
			c.SetDefinition(&schema.AutoIncrement{})
		case def.Valid:
			c.SetDefinition(schema.DefaultExpr(def.String))
		}
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

func postgresType(udt string, length, precision, scale, timePrecision int, collation string) (schema.Type, error) {
	switch udt {
	case "int2":
		return &schema.IntegerType{T: schema.TypeSmallint}, nil
	case "int4":
		return &schema.IntegerType{T: schema.TypeInt}, nil
	case "int8":
		return &schema.IntegerType{T: schema.TypeBigint}, nil
	case "numeric":
		return &schema.FloatingType{T: schema.TypeDecimal, Precision: precision, Scale: scale}, nil
	case "float4":
		return &schema.FloatingType{T: schema.TypeFloat}, nil
	case "float8":
		return &schema.FloatingType{T: schema.TypeDouble}, nil
	case "bpchar":
		return &schema.CharType{T: schema.TypeChar, Length: length, Collation: collation}, nil
	case "varchar":
		return &schema.CharType{T: schema.TypeVarchar, Length: length, Collation: collation}, nil
	case "text":
		return &schema.TextType{T: schema.TypeText, Collation: collation}, nil
	case "bytea":
		return &schema.BinaryType{T: schema.TypeBlob}, nil
	case "bool":
		return &schema.BoolType{}, nil
	case "date":
		return &schema.TimeType{T: schema.TypeDate}, nil
	case "time", "timetz":
		return &schema.TimeType{T: schema.TypeTime, Precision: timePrecision, TimeZone: udt == "timetz"}, nil
	case "timestamp", "timestamptz":
		return &schema.TimeType{T: schema.TypeTimestamp, Precision: timePrecision, TimeZone: udt == "timestamptz"}, nil
	case "bit":
		return &schema.BitType{Length: length}, nil
	case "json":
		return &schema.JSONType{}, nil
	case "jsonb":
		return &schema.JSONType{Binary: true}, nil
	}
	return nil, fmt.Errorf("unknown type %q", udt)
}

func (p *Postgres) loadIndexes(ctx context.Context, t *schema.Table) error {
	rows, err := p.db.QueryContext(ctx, pgIndexesQuery, p.schemaName, t.Name)
	if err != nil {
		return fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, method, column  string
			primary, unique, desc bool
			position              int
		)
		if err := rows.Scan(&name, &primary, &unique, &method, &column, &position, &desc); err != nil {
			return fmt.Errorf("failed to scan index (table: %s): %w", t.Name, err)
		}
		idx, ok := t.Index(name)
		if !ok {
			switch {
			case primary:
				idx = schema.NewIndex(schema.IndexPrimary, name)
			case unique:
				idx = schema.NewIndex(schema.IndexUnique, name)
			default:
				idx = schema.NewIndex(schema.IndexKey, name)
			}
			switch method {
			case "btree":
				idx.Storage = schema.StorageBTree
			case "hash":
				idx.Storage = schema.StorageHash
			default:
				return &MetadataError{Table: t.Name, Index: name, Reason: fmt.Sprintf("unsupported access method %q", method)}
			}
			t.AddIndex(idx)
		}
		part := schema.IndexColumn{Name: column}
		if desc {
			part.Order = schema.SortDesc
		}
		idx.AddColumn(part, position-1)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating indexes: %w", err)
	}
	return nil
}

func (p *Postgres) loadForeignKeys(ctx context.Context, t *schema.Table) error {
	rows, err := p.db.QueryContext(ctx, pgForeignKeysQuery, p.schemaName, t.Name)
	if err != nil {
		return fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name, column, refTable, refColumn, onUpdate, onDelete string
			position                                              int
		)
		if err := rows.Scan(&name, &column, &refTable, &refColumn, &onUpdate, &onDelete, &position); err != nil {
			return fmt.Errorf("failed to scan foreign key (table: %s): %w", t.Name, err)
		}
		fk, ok := t.ForeignKey(name)
		if !ok {
			fk = schema.NewForeignKey(name, refTable)
			if fk.OnUpdate, err = pgReferenceOption(onUpdate); err != nil {
				return &MetadataError{Table: t.Name, Index: name, Reason: err.Error()}
			}
			if fk.OnDelete, err = pgReferenceOption(onDelete); err != nil {
				return &MetadataError{Table: t.Name, Index: name, Reason: err.Error()}
			}
			t.AddIndex(fk)
		}
		fk.AddColumn(schema.IndexColumn{Name: column}, position-1)
		fk.AddReferenceColumn(refColumn, position-1)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating foreign keys: %w", err)
	}
	return nil
}

// pgReferenceOption maps pg_constraint.confupdtype and confdeltype.
func pgReferenceOption(code string) (schema.ReferenceOption, error) {
	switch code {
	case "a":
		return schema.ActionNoAction, nil
	case "r":
		return schema.ActionRestrict, nil
	case "c":
		return schema.ActionCascade, nil
	case "n":
		return schema.ActionSetNull, nil
	default:
		return schema.ActionNone, fmt.Errorf("unsupported referential action %q", code)
	}
}
