package schema

import "slices"

// IndexKind identifies the variant of an Index.
type IndexKind int

const (
	IndexPrimary IndexKind = iota
	IndexUnique
	IndexKey
	IndexFulltext
	IndexSpatial
	IndexForeign
)

func (k IndexKind) String() string {
	switch k {
	case IndexPrimary:
		return "primary key"
	case IndexUnique:
		return "unique key"
	case IndexKey:
		return "key"
	case IndexFulltext:
		return "fulltext key"
	case IndexSpatial:
		return "spatial key"
	case IndexForeign:
		return "foreign key"
	default:
		return "unknown"
	}
}

// StorageType is the index structure.
type StorageType int

const (
	StorageNone StorageType = iota
	StorageBTree
	StorageHash
)

// SortOrder of an index column. SortNone renders nothing.
type SortOrder int

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

// ReferenceOption is a foreign key ON DELETE / ON UPDATE action.
type ReferenceOption int

const (
	ActionNone ReferenceOption = iota
	ActionNoAction
	ActionCascade
	ActionSetNull
	ActionRestrict
)

func (o ReferenceOption) String() string {
	switch o {
	case ActionNoAction:
		return "NO ACTION"
	case ActionCascade:
		return "CASCADE"
	case ActionSetNull:
		return "SET NULL"
	case ActionRestrict:
		return "RESTRICT"
	default:
		return ""
	}
}

// IndexColumn is one part of an index. Length is the prefix length, zero for
// the whole column.
type IndexColumn struct {
	Name   string
	Length int
	Order  SortOrder
}

func (c IndexColumn) element() {}

// Render renders the column part, e.g. "`name`(10) DESC".
func (c IndexColumn) Render(d Dialect) string {
	return d.RenderIndexColumn(c)
}

// Reference is the target of a foreign key.
type Reference struct {
	Table   string
	Columns []string
}

// Index is a primary, unique, regular, fulltext, spatial or foreign key.
// Reference, OnDelete and OnUpdate are only meaningful for IndexForeign.
type Index struct {
	Kind      IndexKind
	Name      string
	Columns   []IndexColumn
	Storage   StorageType
	Comment   string
	Reference *Reference
	OnDelete  ReferenceOption
	OnUpdate  ReferenceOption
	Table     string
}

// NewIndex returns an empty index of kind k.
func NewIndex(k IndexKind, name string) *Index {
	idx := &Index{Kind: k, Name: name}
	if k == IndexForeign {
		idx.Reference = &Reference{}
	}
	return idx
}

// NewForeignKey returns a foreign key referencing table.
func NewForeignKey(name, table string) *Index {
	return &Index{Kind: IndexForeign, Name: name, Reference: &Reference{Table: table}}
}

func (i *Index) element() {}

// AddColumn inserts c at position pos. A column with the same name is removed
// first, so a column never appears twice. Positions past the end append.
func (i *Index) AddColumn(c IndexColumn, pos int) *Index {
	i.Columns = slices.DeleteFunc(i.Columns, func(existing IndexColumn) bool {
		return existing.Name == c.Name
	})
	i.Columns = slices.Insert(i.Columns, clampPosition(pos, len(i.Columns)), c)
	return i
}

// AddReferenceColumn inserts a referenced column name at position pos.
func (i *Index) AddReferenceColumn(name string, pos int) *Index {
	if i.Reference == nil {
		i.Reference = &Reference{}
	}
	cols := i.Reference.Columns
	i.Reference.Columns = slices.Insert(cols, clampPosition(pos, len(cols)), name)
	return i
}

func clampPosition(pos, n int) int {
	return max(0, min(pos, n))
}

// ColumnNames returns the names of the index columns in order.
func (i *Index) ColumnNames() []string {
	names := make([]string, len(i.Columns))
	for k, c := range i.Columns {
		names[k] = c.Name
	}
	return names
}

// Equal reports structural equality: same kind, name, storage, comment and
// column parts position for position. Foreign keys also compare their
// reference and both actions.
func (i *Index) Equal(o *Index) bool {
	if i.Kind != o.Kind || i.Name != o.Name || i.Storage != o.Storage || i.Comment != o.Comment {
		return false
	}
	if !slices.Equal(i.Columns, o.Columns) {
		return false
	}
	if i.Kind != IndexForeign {
		return true
	}
	if i.OnDelete != o.OnDelete || i.OnUpdate != o.OnUpdate {
		return false
	}
	a, b := i.Reference, o.Reference
	if a == nil || b == nil {
		return a == b
	}
	return a.Table == b.Table && slices.Equal(a.Columns, b.Columns)
}

func (i *Index) IsAvailable(d Dialect) bool {
	return d.Available(i)
}

// Add renders the statement creating the index.
func (i *Index) Add(d Dialect) string {
	if !i.IsAvailable(d) {
		return ""
	}
	return d.AddIndex(i)
}

// Drop renders the statement removing the index.
func (i *Index) Drop(d Dialect) string {
	if !i.IsAvailable(d) {
		return ""
	}
	return d.DropIndex(i)
}
