package schema

import "fmt"

// Table is the structure of one table. Children carry the table name in
// their Table field; Rename keeps them in sync.
type Table struct {
	Name    string
	Columns []*Column
	Indexes []*Index
	Options []*Option
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends c and links it to the current last column.
func (t *Table) AddColumn(c *Column) *Table {
	c.Table = t.Name
	c.Previous = ""
	if n := len(t.Columns); n > 0 {
		c.Previous = t.Columns[n-1].Name
	}
	t.Columns = append(t.Columns, c)
	return t
}

// AddIndex appends idx. An index with the same name is replaced in place.
// Foreign keys are named separately from the other indexes.
func (t *Table) AddIndex(idx *Index) *Table {
	idx.Table = t.Name
	for i, existing := range t.Indexes {
		if existing.Name == idx.Name && (existing.Kind == IndexForeign) == (idx.Kind == IndexForeign) {
			t.Indexes[i] = idx
			return t
		}
	}
	t.Indexes = append(t.Indexes, idx)
	return t
}

// AddOption sets o, replacing the option of the same kind.
func (t *Table) AddOption(o *Option) *Table {
	o.Table = t.Name
	for i, existing := range t.Options {
		if existing.Kind == o.Kind {
			t.Options[i] = o
			return t
		}
	}
	t.Options = append(t.Options, o)
	return t
}

func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Index looks up a non-foreign index by name.
func (t *Table) Index(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name && idx.Kind != IndexForeign {
			return idx, true
		}
	}
	return nil, false
}

func (t *Table) ForeignKey(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name && idx.Kind == IndexForeign {
			return idx, true
		}
	}
	return nil, false
}

func (t *Table) Option(k OptionKind) (*Option, bool) {
	for _, o := range t.Options {
		if o.Kind == k {
			return o, true
		}
	}
	return nil, false
}

// Dependencies returns the distinct tables referenced by foreign keys,
// excluding t itself.
func (t *Table) Dependencies() []string {
	var deps []string
	seen := map[string]bool{t.Name: true}
	for _, idx := range t.Indexes {
		if idx.Kind != IndexForeign || idx.Reference == nil || seen[idx.Reference.Table] {
			continue
		}
		seen[idx.Reference.Table] = true
		deps = append(deps, idx.Reference.Table)
	}
	return deps
}

// Rename changes the table name on the table and all of its children.
func (t *Table) Rename(name string) {
	t.Name = name
	for _, c := range t.Columns {
		c.Table = name
	}
	for _, idx := range t.Indexes {
		idx.Table = name
	}
	for _, o := range t.Options {
		o.Table = name
	}
}

// Create returns the statements creating the table: CREATE TABLE without
// auto-increment, one statement per option CREATE TABLE cannot carry, one
// statement per index, then one change per auto-increment column.
func (t *Table) Create(d Dialect) []string {
	stmts := []string{d.CreateTable(t)}
	for _, o := range t.Options {
		if o.Create(d) == "" {
			stmts = append(stmts, o.Alter(d))
		}
	}
	for _, idx := range t.Indexes {
		stmts = append(stmts, idx.Add(d))
	}
	if inline, ok := d.(InlineAutoIncrement); ok && inline.InlineAutoIncrement() {
		return nonEmpty(stmts)
	}
	for _, c := range t.Columns {
		if c.HasAutoIncrement() {
			stmts = append(stmts, c.Alter(d))
		}
	}
	return nonEmpty(stmts)
}

func (t *Table) Drop(d Dialect) []string {
	return nonEmpty([]string{d.DropTable(t)})
}

// Alter returns the statements turning t into target, in order: rename,
// options, columns, index drops, index adds. A rename updates t in place.
func (t *Table) Alter(d Dialect, target *Table) []string {
	var stmts []string
	if t.Name != target.Name {
		stmts = append(stmts, d.RenameTable(t.Name, target.Name))
		t.Rename(target.Name)
	}
	stmts = append(stmts, t.alterOptions(d, target)...)
	stmts = append(stmts, t.alterColumns(d, target)...)
	stmts = append(stmts, t.alterIndexes(d, target)...)
	return nonEmpty(stmts)
}

func (t *Table) alterOptions(d Dialect, target *Table) []string {
	var stmts []string
	matched := make([]bool, len(t.Options))
	for _, want := range target.Options {
		found := false
		for i, have := range t.Options {
			if matched[i] || have.Kind != want.Kind {
				continue
			}
			matched[i], found = true, true
			if have.ValueFor(d) != want.ValueFor(d) {
				stmts = append(stmts, want.Alter(d))
			}
			break
		}
		if !found {
			stmts = append(stmts, want.Alter(d))
		}
	}
	for i, have := range t.Options {
		if !matched[i] {
			stmts = append(stmts, have.Drop(d))
		}
	}
	return stmts
}

func (t *Table) alterColumns(d Dialect, target *Table) []string {
	var stmts []string
	matched := make([]bool, len(t.Columns))
	for _, want := range target.Columns {
		found := false
		for i, have := range t.Columns {
			if matched[i] || have.Name != want.Name {
				continue
			}
			matched[i], found = true, true
			if !have.Equal(want) {
				stmts = append(stmts, want.Alter(d))
			}
			break
		}
		if !found {
			stmts = append(stmts, want.Add(d))
		}
	}
	for i, have := range t.Columns {
		if !matched[i] {
			stmts = append(stmts, have.Drop(d))
		}
	}
	return stmts
}

// alterIndexes drops foreign keys before the keys backing them, then adds
// the missing indexes in target order.
func (t *Table) alterIndexes(d Dialect, target *Table) []string {
	var adds, foreignDrops, drops []string
	matched := make([]bool, len(t.Indexes))
	for _, want := range target.Indexes {
		found := false
		for i, have := range t.Indexes {
			if !matched[i] && have.Equal(want) {
				matched[i], found = true, true
				break
			}
		}
		if !found {
			adds = append(adds, want.Add(d))
		}
	}
	for i, have := range t.Indexes {
		switch {
		case matched[i]:
		case have.Kind == IndexForeign:
			foreignDrops = append(foreignDrops, have.Drop(d))
		default:
			drops = append(drops, have.Drop(d))
		}
	}
	return append(append(foreignDrops, drops...), adds...)
}

// Unavailable describes every element of t the dialect cannot express.
// Statements rendered for such a table are incomplete.
func Unavailable(d Dialect, t *Table) []string {
	var out []string
	for _, c := range t.Columns {
		if c.Type != nil && !c.Type.IsAvailable(d) {
			out = append(out, fmt.Sprintf("column %s.%s: type %s", t.Name, c.Name, c.Type.Kind()))
		}
		for _, def := range c.Definitions {
			if !def.IsAvailable(d) {
				out = append(out, fmt.Sprintf("column %s.%s: %s", t.Name, c.Name, def.Kind()))
			}
		}
	}
	for _, idx := range t.Indexes {
		if !idx.IsAvailable(d) {
			out = append(out, fmt.Sprintf("index %s.%s: %s", t.Name, idx.Name, idx.Kind))
			continue
		}
		for _, part := range idx.Columns {
			if !d.Available(part) {
				out = append(out, fmt.Sprintf("index %s.%s: column part %s", t.Name, idx.Name, part.Name))
			}
		}
	}
	for _, o := range t.Options {
		if !o.IsAvailable(d) {
			out = append(out, fmt.Sprintf("table %s: option %s", t.Name, o.Kind))
		}
	}
	return out
}

func nonEmpty(stmts []string) []string {
	out := stmts[:0]
	for _, s := range stmts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
