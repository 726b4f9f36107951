package dialect

import (
	"fmt"
	"strings"

	"db-sync/internal/schema"

	"github.com/lib/pq"
)

// PostgresDialect renders PostgreSQL statements. It covers the subset of the
// model PostgreSQL can express; column positions are not supported and
// everything MySQL specific reports unavailable.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Quote(ident string) string {
	return pq.QuoteIdentifier(ident)
}

func (d *PostgresDialect) Available(e schema.Element) bool {
	switch e := e.(type) {
	case *schema.IntegerType:
		return !e.Unsigned && !e.Zerofill
	case *schema.FloatingType:
		return !e.Unsigned && !e.Zerofill
	case *schema.CharType:
		return !e.Binary && e.Charset == ""
	case *schema.TextType:
		return !e.Binary && e.Charset == ""
	case *schema.SetType:
		return false
	case *schema.TimeType:
		return e.T != schema.TypeYear
	case *schema.Comment:
		return e.Text == ""
	case *schema.OnUpdate:
		return false
	case schema.IndexColumn:
		return e.Length == 0
	case *schema.Index:
		return e.Kind != schema.IndexFulltext && e.Kind != schema.IndexSpatial && e.Comment == ""
	case *schema.Option:
		return e.Kind == schema.OptionComment
	}
	return true
}

func (d *PostgresDialect) RenderType(t schema.Type) string {
	var b strings.Builder
	switch t := t.(type) {
	case *schema.IntegerType:
		switch t.T {
		case schema.TypeTinyint, schema.TypeSmallint:
			return "SMALLINT"
		case schema.TypeBigint:
			return "BIGINT"
		default:
			return "INTEGER"
		}
	case *schema.FloatingType:
		switch t.T {
		case schema.TypeFloat:
			return "REAL"
		case schema.TypeDouble:
			return "DOUBLE PRECISION"
		}
		b.WriteString("NUMERIC")
		if t.Precision > 0 {
			fmt.Fprintf(&b, "(%d,%d)", t.Precision, t.Scale)
		}
	case *schema.CharType:
		if t.T == schema.TypeChar {
			b.WriteString("CHAR")
		} else {
			b.WriteString("VARCHAR")
		}
		writeLength(&b, t.Size())
		d.writeCollation(&b, t.Collation)
	case *schema.TextType:
		b.WriteString("TEXT")
		d.writeCollation(&b, t.Collation)
	case *schema.BinaryType:
		return "BYTEA"
	case *schema.TimeType:
		switch t.T {
		case schema.TypeDate:
			return "DATE"
		case schema.TypeTime:
			b.WriteString("TIME")
		default:
			b.WriteString("TIMESTAMP")
		}
		writeLength(&b, t.Precision)
		if t.TimeZone {
			b.WriteString(" WITH TIME ZONE")
		}
	case *schema.BitType:
		b.WriteString("BIT")
		writeLength(&b, t.Length)
	case *schema.BoolType:
		return "BOOLEAN"
	case *schema.JSONType:
		if t.Binary {
			return "JSONB"
		}
		return "JSON"
	}
	return b.String()
}

func (d *PostgresDialect) writeCollation(b *strings.Builder, collation string) {
	if collation != "" {
		b.WriteString(" COLLATE " + d.Quote(collation))
	}
}

func (d *PostgresDialect) RenderDefinition(def schema.Definition) string {
	switch def := def.(type) {
	case *schema.Nullable:
		if def.Null {
			return "NULL"
		}
		return "NOT NULL"
	case *schema.Default:
		return "DEFAULT " + d.defaultValue(def)
	case *schema.AutoIncrement:
		return "GENERATED BY DEFAULT AS IDENTITY"
	}
	return ""
}

func (d *PostgresDialect) defaultValue(def *schema.Default) string {
	switch {
	case def.Value == nil:
		return "NULL"
	case def.Raw || isExpression(*def.Value):
		return *def.Value
	default:
		return pq.QuoteLiteral(*def.Value)
	}
}

func (d *PostgresDialect) RenderIndexColumn(c schema.IndexColumn) string {
	s := d.Quote(c.Name)
	switch c.Order {
	case schema.SortAsc:
		s += " ASC"
	case schema.SortDesc:
		s += " DESC"
	}
	return s
}

// CreateOption renders nothing: Table.Create emits the table comment through
// AlterOption.
func (d *PostgresDialect) CreateOption(o *schema.Option) string {
	return ""
}

func (d *PostgresDialect) AlterOption(o *schema.Option) string {
	if o.Kind != schema.OptionComment {
		return ""
	}
	return "COMMENT ON TABLE " + d.Quote(o.Table) + " IS " + pq.QuoteLiteral(o.Value)
}

func (d *PostgresDialect) DropOption(o *schema.Option) string {
	if o.Kind != schema.OptionComment {
		return ""
	}
	return "COMMENT ON TABLE " + d.Quote(o.Table) + " IS NULL"
}

func (d *PostgresDialect) OptionValue(o *schema.Option) string {
	return o.Value
}

func (d *PostgresDialect) AddColumn(c *schema.Column) string {
	return d.alterTable(c.Table, "ADD COLUMN "+c.Fragment(d, true))
}

// ChangeColumn sets type, nullability and default of an existing column.
// Identity is only declared when a column is created.
func (d *PostgresDialect) ChangeColumn(c *schema.Column) string {
	name := d.Quote(c.Name)
	var clauses []string
	if c.Type != nil {
		if typ := c.Type.Render(d); typ != "" {
			clauses = append(clauses, "ALTER COLUMN "+name+" TYPE "+typ)
		}
	}
	if def, ok := c.Definition(schema.DefNullable); ok {
		if def.(*schema.Nullable).Null {
			clauses = append(clauses, "ALTER COLUMN "+name+" DROP NOT NULL")
		} else {
			clauses = append(clauses, "ALTER COLUMN "+name+" SET NOT NULL")
		}
	}
	if def, ok := c.Definition(schema.DefDefault); ok {
		clauses = append(clauses, "ALTER COLUMN "+name+" SET DEFAULT "+d.defaultValue(def.(*schema.Default)))
	} else if !c.HasAutoIncrement() {
		clauses = append(clauses, "ALTER COLUMN "+name+" DROP DEFAULT")
	}
	return d.alterTable(c.Table, strings.Join(clauses, ", "))
}

func (d *PostgresDialect) DropColumn(c *schema.Column) string {
	return d.alterTable(c.Table, "DROP COLUMN "+d.Quote(c.Name))
}

func (d *PostgresDialect) AddIndex(i *schema.Index) string {
	parts := make([]string, len(i.Columns))
	for k, c := range i.Columns {
		parts[k] = c.Render(d)
	}
	columns := "(" + strings.Join(parts, ", ") + ")"

	switch i.Kind {
	case schema.IndexPrimary:
		if i.Name == "" {
			return d.alterTable(i.Table, "ADD PRIMARY KEY "+columns)
		}
		return d.alterTable(i.Table, "ADD CONSTRAINT "+d.Quote(i.Name)+" PRIMARY KEY "+columns)
	case schema.IndexForeign:
		stmt := "ADD CONSTRAINT " + d.Quote(i.Name) + " FOREIGN KEY (" + quoteList(i.ColumnNames(), d.Quote) + ")"
		if ref := i.Reference; ref != nil {
			stmt += " REFERENCES " + d.Quote(ref.Table) + " (" + quoteList(ref.Columns, d.Quote) + ")"
		}
		if i.OnDelete != schema.ActionNone {
			stmt += " ON DELETE " + i.OnDelete.String()
		}
		if i.OnUpdate != schema.ActionNone {
			stmt += " ON UPDATE " + i.OnUpdate.String()
		}
		return d.alterTable(i.Table, stmt)
	}

	stmt := "CREATE INDEX "
	if i.Kind == schema.IndexUnique {
		stmt = "CREATE UNIQUE INDEX "
	}
	stmt += d.Quote(i.Name) + " ON " + d.Quote(i.Table)
	if i.Storage == schema.StorageHash {
		stmt += " USING hash"
	}
	return stmt + " " + columns
}

func (d *PostgresDialect) DropIndex(i *schema.Index) string {
	switch i.Kind {
	case schema.IndexPrimary, schema.IndexForeign:
		return d.alterTable(i.Table, "DROP CONSTRAINT "+d.Quote(i.Name))
	default:
		return "DROP INDEX " + d.Quote(i.Name)
	}
}

// CreateTable declares identity inline; PostgreSQL cannot add it to an
// existing column through ChangeColumn.
func (d *PostgresDialect) CreateTable(t *schema.Table) string {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.Fragment(d, true)
	}
	return "CREATE TABLE " + d.Quote(t.Name) + " (" + strings.Join(columns, ", ") + ")"
}

func (d *PostgresDialect) InlineAutoIncrement() bool { return true }

func (d *PostgresDialect) DropTable(t *schema.Table) string {
	return "DROP TABLE " + d.Quote(t.Name)
}

func (d *PostgresDialect) RenameTable(from, to string) string {
	return d.alterTable(from, "RENAME TO "+d.Quote(to))
}

func (d *PostgresDialect) alterTable(table, clause string) string {
	return "ALTER TABLE " + d.Quote(table) + " " + clause
}
