package schema

// Element is implemented by every schema entity whose availability depends on
// the target dialect.
type Element interface {
	element()
}

// Dialect renders schema entities for one SQL flavor.
//
// Every hook returns an empty string when it has nothing to emit. Callers go
// through the entity methods (Column.Add, Index.Drop, ...), which check
// Available first.
type Dialect interface {
	// Name returns the dialect tag, e.g. "mysql".
	Name() string
	// Quote quotes an identifier.
	Quote(ident string) string
	// Available reports whether the dialect can express e.
	Available(e Element) bool

	RenderType(t Type) string
	RenderDefinition(d Definition) string
	RenderIndexColumn(c IndexColumn) string

	CreateOption(o *Option) string
	AlterOption(o *Option) string
	DropOption(o *Option) string
	OptionValue(o *Option) string

	AddColumn(c *Column) string
	ChangeColumn(c *Column) string
	DropColumn(c *Column) string

	AddIndex(i *Index) string
	DropIndex(i *Index) string

	CreateTable(t *Table) string
	DropTable(t *Table) string
	RenameTable(from, to string) string
}

// InlineAutoIncrement is implemented by dialects whose CreateTable already
// declares auto-increment columns. Table.Create then skips the follow-up
// column changes.
type InlineAutoIncrement interface {
	InlineAutoIncrement() bool
}
