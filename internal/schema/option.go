package schema

import "strconv"

// OptionKind identifies a table option. A table has at most one option of
// each kind.
type OptionKind int

const (
	OptionEngine OptionKind = iota
	OptionCollation
	OptionComment
	OptionAutoIncrement
)

func (k OptionKind) String() string {
	switch k {
	case OptionEngine:
		return "engine"
	case OptionCollation:
		return "collation"
	case OptionComment:
		return "comment"
	case OptionAutoIncrement:
		return "auto_increment"
	default:
		return "unknown"
	}
}

// Option is a table-level storage attribute.
type Option struct {
	Kind  OptionKind
	Value string
	Table string
}

func NewOption(k OptionKind, value string) *Option {
	return &Option{Kind: k, Value: value}
}

// AutoIncrementSeed returns the option setting the next auto-increment value.
func AutoIncrementSeed(n int64) *Option {
	return &Option{Kind: OptionAutoIncrement, Value: strconv.FormatInt(n, 10)}
}

func (o *Option) element() {}

// Equal compares kind and raw value.
func (o *Option) Equal(other *Option) bool {
	return o.Kind == other.Kind && o.Value == other.Value
}

func (o *Option) IsAvailable(d Dialect) bool {
	return d.Available(o)
}

// ValueFor returns the value as the dialect sees it, empty when the option
// is unavailable.
func (o *Option) ValueFor(d Dialect) string {
	if !o.IsAvailable(d) {
		return ""
	}
	return d.OptionValue(o)
}

// Create renders the option as part of CREATE TABLE.
func (o *Option) Create(d Dialect) string {
	if !o.IsAvailable(d) {
		return ""
	}
	return d.CreateOption(o)
}

// Alter renders the statement setting the option on an existing table.
func (o *Option) Alter(d Dialect) string {
	if !o.IsAvailable(d) {
		return ""
	}
	return d.AlterOption(o)
}

// Drop renders the statement resetting the option. Options that cannot be
// removed render empty.
func (o *Option) Drop(d Dialect) string {
	if !o.IsAvailable(d) {
		return ""
	}
	return d.DropOption(o)
}
