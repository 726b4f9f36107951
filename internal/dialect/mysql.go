package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"db-sync/internal/schema"
)

// MysqlDialect renders MySQL statements. Version is the server version as
// reported by VERSION(); empty means a current server.
type MysqlDialect struct {
	Version string
}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d *MysqlDialect) Available(e schema.Element) bool {
	switch e := e.(type) {
	case *schema.TimeType:
		return !e.TimeZone
	case *schema.JSONType:
		return !e.Binary
	case schema.IndexColumn:
		// Descending parts are parsed but ignored before 8.0.
		return e.Order != schema.SortDesc || versionAtLeast(d.Version, "8.0.0")
	}
	return true
}

func (d *MysqlDialect) RenderType(t schema.Type) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(t.Kind())))
	switch t := t.(type) {
	case *schema.IntegerType:
		writeLength(&b, t.Length)
		writeFlag(&b, t.Unsigned, "UNSIGNED")
		writeFlag(&b, t.Zerofill, "ZEROFILL")
	case *schema.FloatingType:
		if t.Precision > 0 {
			if t.Scale > 0 || t.T == schema.TypeDecimal {
				fmt.Fprintf(&b, "(%d,%d)", t.Precision, t.Scale)
			} else {
				fmt.Fprintf(&b, "(%d)", t.Precision)
			}
		}
		writeFlag(&b, t.Unsigned, "UNSIGNED")
		writeFlag(&b, t.Zerofill, "ZEROFILL")
	case *schema.CharType:
		writeLength(&b, t.Size())
		d.writeCharset(&b, t.Binary, t.Charset, t.Collation)
	case *schema.TextType:
		d.writeCharset(&b, t.Binary, t.Charset, t.Collation)
	case *schema.SetType:
		values := make([]string, len(t.Values))
		for i, v := range t.Values {
			values[i] = d.quoteString(v)
		}
		b.WriteString("(" + strings.Join(values, ",") + ")")
		d.writeCharset(&b, false, t.Charset, t.Collation)
	case *schema.BinaryType:
		writeLength(&b, t.Length)
	case *schema.TimeType:
		if t.T != schema.TypeYear && t.T != schema.TypeDate {
			writeLength(&b, t.Precision)
		}
	case *schema.BitType:
		writeLength(&b, t.Length)
	case *schema.BoolType:
		return "TINYINT(1)"
	}
	return b.String()
}

func (d *MysqlDialect) writeCharset(b *strings.Builder, binary bool, charset, collation string) {
	writeFlag(b, binary, "BINARY")
	if charset != "" {
		b.WriteString(" CHARACTER SET " + charset)
	}
	if collation != "" {
		b.WriteString(" COLLATE " + collation)
	}
}

func (d *MysqlDialect) RenderDefinition(def schema.Definition) string {
	switch def := def.(type) {
	case *schema.Nullable:
		if def.Null {
			return "NULL"
		}
		return "NOT NULL"
	case *schema.Default:
		if def.Value == nil {
			return "DEFAULT NULL"
		}
		if def.Raw || isExpression(*def.Value) {
			return "DEFAULT " + *def.Value
		}
		return "DEFAULT " + d.quoteString(*def.Value)
	case *schema.AutoIncrement:
		return "AUTO_INCREMENT"
	case *schema.Comment:
		if def.Text == "" {
			return ""
		}
		return "COMMENT " + d.quoteString(def.Text)
	case *schema.OnUpdate:
		return "ON UPDATE " + def.Expr
	}
	return ""
}

func (d *MysqlDialect) RenderIndexColumn(c schema.IndexColumn) string {
	s := d.Quote(c.Name)
	if c.Length > 0 {
		s += "(" + strconv.Itoa(c.Length) + ")"
	}
	switch {
	case c.Order == schema.SortAsc:
		s += " ASC"
	case c.Order == schema.SortDesc && d.Available(c):
		s += " DESC"
	}
	return s
}

func (d *MysqlDialect) CreateOption(o *schema.Option) string {
	switch o.Kind {
	case schema.OptionEngine:
		return "ENGINE=" + o.Value
	case schema.OptionCollation:
		return "COLLATE=" + o.Value
	case schema.OptionComment:
		return "COMMENT=" + d.quoteString(o.Value)
	case schema.OptionAutoIncrement:
		return "AUTO_INCREMENT=" + o.Value
	}
	return ""
}

func (d *MysqlDialect) AlterOption(o *schema.Option) string {
	value := o.Value
	switch o.Kind {
	case schema.OptionEngine:
		return d.alterTable(o.Table, "ENGINE = "+value)
	case schema.OptionCollation:
		return d.alterTable(o.Table, "COLLATE = "+value)
	case schema.OptionComment:
		return d.alterTable(o.Table, "COMMENT = "+d.quoteString(value))
	case schema.OptionAutoIncrement:
		return d.alterTable(o.Table, "AUTO_INCREMENT = "+value)
	}
	return ""
}

// DropOption only resets the comment. Engine, collation and counter cannot
// be removed from a MySQL table.
func (d *MysqlDialect) DropOption(o *schema.Option) string {
	if o.Kind == schema.OptionComment {
		return d.alterTable(o.Table, "COMMENT = ''")
	}
	return ""
}

func (d *MysqlDialect) OptionValue(o *schema.Option) string {
	return o.Value
}

func (d *MysqlDialect) AddColumn(c *schema.Column) string {
	return d.alterTable(c.Table, "ADD "+c.Fragment(d, true)+d.position(c))
}

func (d *MysqlDialect) ChangeColumn(c *schema.Column) string {
	return d.alterTable(c.Table, "CHANGE "+d.Quote(c.Name)+" "+c.Fragment(d, true)+d.position(c))
}

func (d *MysqlDialect) DropColumn(c *schema.Column) string {
	return d.alterTable(c.Table, "DROP "+d.Quote(c.Name))
}

func (d *MysqlDialect) position(c *schema.Column) string {
	if c.Previous == "" {
		return " FIRST"
	}
	return " AFTER " + d.Quote(c.Previous)
}

func (d *MysqlDialect) AddIndex(i *schema.Index) string {
	var b strings.Builder
	switch i.Kind {
	case schema.IndexPrimary:
		b.WriteString("ADD PRIMARY KEY")
	case schema.IndexUnique:
		b.WriteString("ADD UNIQUE KEY " + d.Quote(i.Name))
	case schema.IndexKey:
		b.WriteString("ADD KEY " + d.Quote(i.Name))
	case schema.IndexFulltext:
		b.WriteString("ADD FULLTEXT KEY " + d.Quote(i.Name))
	case schema.IndexSpatial:
		b.WriteString("ADD SPATIAL KEY " + d.Quote(i.Name))
	case schema.IndexForeign:
		return d.alterTable(i.Table, d.foreignKey(i))
	}
	if i.Kind != schema.IndexFulltext && i.Kind != schema.IndexSpatial {
		switch i.Storage {
		case schema.StorageBTree:
			b.WriteString(" USING BTREE")
		case schema.StorageHash:
			b.WriteString(" USING HASH")
		}
	}
	parts := make([]string, len(i.Columns))
	for k, c := range i.Columns {
		parts[k] = c.Render(d)
	}
	b.WriteString(" (" + strings.Join(parts, ",") + ")")
	if i.Comment != "" {
		b.WriteString(" COMMENT " + d.quoteString(i.Comment))
	}
	return d.alterTable(i.Table, b.String())
}

func (d *MysqlDialect) foreignKey(i *schema.Index) string {
	var b strings.Builder
	b.WriteString("ADD CONSTRAINT " + d.Quote(i.Name) + " FOREIGN KEY (" + quoteList(i.ColumnNames(), d.Quote) + ")")
	if ref := i.Reference; ref != nil {
		b.WriteString(" REFERENCES " + d.Quote(ref.Table) + "(" + quoteList(ref.Columns, d.Quote) + ")")
	}
	if i.OnDelete != schema.ActionNone {
		b.WriteString(" ON DELETE " + i.OnDelete.String())
	}
	if i.OnUpdate != schema.ActionNone {
		b.WriteString(" ON UPDATE " + i.OnUpdate.String())
	}
	return b.String()
}

func (d *MysqlDialect) DropIndex(i *schema.Index) string {
	switch i.Kind {
	case schema.IndexPrimary:
		return d.alterTable(i.Table, "DROP PRIMARY KEY")
	case schema.IndexForeign:
		return d.alterTable(i.Table, "DROP FOREIGN KEY "+d.Quote(i.Name))
	default:
		return d.alterTable(i.Table, "DROP INDEX "+d.Quote(i.Name))
	}
}

func (d *MysqlDialect) CreateTable(t *schema.Table) string {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.Create(d)
	}
	options := make([]string, len(t.Options))
	for i, o := range t.Options {
		options[i] = o.Create(d)
	}
	stmt := "CREATE TABLE " + d.Quote(t.Name) + " (" + strings.Join(columns, ",") + ")"
	if opts := schema.JoinNonEmpty(" ", options...); opts != "" {
		stmt += " " + opts
	}
	return stmt
}

func (d *MysqlDialect) DropTable(t *schema.Table) string {
	return "DROP TABLE " + d.Quote(t.Name)
}

func (d *MysqlDialect) RenameTable(from, to string) string {
	return "RENAME TABLE " + d.Quote(from) + " TO " + d.Quote(to)
}

func (d *MysqlDialect) alterTable(table, clause string) string {
	return "ALTER TABLE " + d.Quote(table) + " " + clause
}

func (d *MysqlDialect) quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
