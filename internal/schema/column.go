package schema

import "strings"

// Column is a table column. Previous holds the name of the column right
// before it in table order, empty when the column comes first.
type Column struct {
	Name        string
	Type        Type
	Definitions []Definition
	Previous    string
	Table       string
}

// NewColumn returns a column of the given type. Definitions are added in
// order with SetDefinition.
func NewColumn(name string, t Type, defs ...Definition) *Column {
	c := &Column{Name: name, Type: t}
	for _, def := range defs {
		c.SetDefinition(def)
	}
	return c
}

// SetDefinition appends def, or replaces the definition of the same kind in
// place.
func (c *Column) SetDefinition(def Definition) *Column {
	for i, existing := range c.Definitions {
		if existing.Kind() == def.Kind() {
			c.Definitions[i] = def
			return c
		}
	}
	c.Definitions = append(c.Definitions, def)
	return c
}

// Definition returns the definition of kind k.
func (c *Column) Definition(k DefinitionKind) (Definition, bool) {
	for _, def := range c.Definitions {
		if def.Kind() == k {
			return def, true
		}
	}
	return nil, false
}

// HasAutoIncrement reports whether the column is auto-incremented.
func (c *Column) HasAutoIncrement() bool {
	_, ok := c.Definition(DefAutoIncrement)
	return ok
}

// Fragment renders "<name> <type> [<definition>...]". The auto-increment
// definition is only rendered when autoIncrement is set.
func (c *Column) Fragment(d Dialect, autoIncrement bool) string {
	parts := make([]string, 0, len(c.Definitions)+2)
	parts = append(parts, d.Quote(c.Name))
	if c.Type != nil {
		parts = append(parts, c.Type.Render(d))
	}
	for _, def := range c.Definitions {
		if def.Kind() == DefAutoIncrement && !autoIncrement {
			continue
		}
		parts = append(parts, def.Render(d))
	}
	return JoinNonEmpty(" ", parts...)
}

// Create renders the column as it appears inside CREATE TABLE, without
// auto-increment.
func (c *Column) Create(d Dialect) string {
	return c.Fragment(d, false)
}

// Add renders the statement adding the column at its position.
func (c *Column) Add(d Dialect) string {
	return d.AddColumn(c)
}

// Alter renders the statement changing an existing column into c.
func (c *Column) Alter(d Dialect) string {
	return d.ChangeColumn(c)
}

func (c *Column) Drop(d Dialect) string {
	return d.DropColumn(c)
}

// Equal reports whether both columns have the same position, type and
// definitions. Names are not compared; columns are matched by name first.
// Positions only count when both columns have a predecessor.
func (c *Column) Equal(o *Column) bool {
	if c.Previous != "" && o.Previous != "" && c.Previous != o.Previous {
		return false
	}
	if (c.Type == nil) != (o.Type == nil) || (c.Type != nil && !c.Type.Equal(o.Type)) {
		return false
	}
	if len(c.Definitions) != len(o.Definitions) {
		return false
	}
	for _, def := range c.Definitions {
		other, ok := o.Definition(def.Kind())
		if !ok || !def.Equal(other) {
			return false
		}
	}
	return true
}

// JoinNonEmpty joins the non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
