package schema

// DefinitionKind identifies a column modifier. A column carries at most one
// definition of each kind.
type DefinitionKind int

const (
	DefNullable DefinitionKind = iota
	DefDefault
	DefAutoIncrement
	DefComment
	DefOnUpdate
)

func (k DefinitionKind) String() string {
	switch k {
	case DefNullable:
		return "nullable"
	case DefDefault:
		return "default"
	case DefAutoIncrement:
		return "auto_increment"
	case DefComment:
		return "comment"
	case DefOnUpdate:
		return "on_update"
	default:
		return "unknown"
	}
}

// Definition is a column modifier orthogonal to its type.
type Definition interface {
	Element
	Kind() DefinitionKind
	Equal(other Definition) bool
	IsAvailable(d Dialect) bool
	Render(d Dialect) string
}

type (
	// Nullable tells whether the column accepts NULL.
	Nullable struct {
		Null bool
	}

	// Default is the column default. A nil Value is DEFAULT NULL. Raw marks
	// an expression that is rendered verbatim instead of as a literal.
	Default struct {
		Value *string
		Raw   bool
	}

	AutoIncrement struct{}

	Comment struct {
		Text string
	}

	// OnUpdate is the expression assigned when the row is updated.
	OnUpdate struct {
		Expr string
	}
)

// DefaultValue returns a Default holding v.
func DefaultValue(v string) *Default {
	return &Default{Value: &v}
}

// DefaultExpr returns a Default holding the expression expr.
func DefaultExpr(expr string) *Default {
	return &Default{Value: &expr, Raw: true}
}

// DefaultNull returns a DEFAULT NULL definition.
func DefaultNull() *Default {
	return &Default{}
}

func renderDefinition(d Dialect, def Definition) string {
	if !d.Available(def) {
		return ""
	}
	return d.RenderDefinition(def)
}

func (n *Nullable) Kind() DefinitionKind { return DefNullable }
func (n *Nullable) Equal(other Definition) bool {
	o, ok := other.(*Nullable)
	return ok && n.Null == o.Null
}
func (n *Nullable) IsAvailable(d Dialect) bool { return d.Available(n) }
func (n *Nullable) Render(d Dialect) string    { return renderDefinition(d, n) }

func (v *Default) Kind() DefinitionKind { return DefDefault }
func (v *Default) Equal(other Definition) bool {
	o, ok := other.(*Default)
	if !ok || v.Raw != o.Raw || (v.Value == nil) != (o.Value == nil) {
		return false
	}
	return v.Value == nil || *v.Value == *o.Value
}
func (v *Default) IsAvailable(d Dialect) bool { return d.Available(v) }
func (v *Default) Render(d Dialect) string    { return renderDefinition(d, v) }

func (a *AutoIncrement) Kind() DefinitionKind { return DefAutoIncrement }
func (a *AutoIncrement) Equal(other Definition) bool {
	_, ok := other.(*AutoIncrement)
	return ok
}
func (a *AutoIncrement) IsAvailable(d Dialect) bool { return d.Available(a) }
func (a *AutoIncrement) Render(d Dialect) string    { return renderDefinition(d, a) }

func (c *Comment) Kind() DefinitionKind { return DefComment }
func (c *Comment) Equal(other Definition) bool {
	o, ok := other.(*Comment)
	return ok && c.Text == o.Text
}
func (c *Comment) IsAvailable(d Dialect) bool { return d.Available(c) }
func (c *Comment) Render(d Dialect) string    { return renderDefinition(d, c) }

func (u *OnUpdate) Kind() DefinitionKind { return DefOnUpdate }
func (u *OnUpdate) Equal(other Definition) bool {
	o, ok := other.(*OnUpdate)
	return ok && u.Expr == o.Expr
}
func (u *OnUpdate) IsAvailable(d Dialect) bool { return d.Available(u) }
func (u *OnUpdate) Render(d Dialect) string    { return renderDefinition(d, u) }

func (*Nullable) element()      {}
func (*Default) element()       {}
func (*AutoIncrement) element() {}
func (*Comment) element()       {}
func (*OnUpdate) element()      {}
