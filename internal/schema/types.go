package schema

import "slices"

// TypeKind names a concrete column type.
type TypeKind string

const (
	TypeTinyint   TypeKind = "tinyint"
	TypeSmallint  TypeKind = "smallint"
	TypeMediumint TypeKind = "mediumint"
	TypeInt       TypeKind = "int"
	TypeBigint    TypeKind = "bigint"

	TypeDecimal TypeKind = "decimal"
	TypeFloat   TypeKind = "float"
	TypeDouble  TypeKind = "double"

	TypeChar    TypeKind = "char"
	TypeVarchar TypeKind = "varchar"

	TypeTinytext   TypeKind = "tinytext"
	TypeText       TypeKind = "text"
	TypeMediumtext TypeKind = "mediumtext"
	TypeLongtext   TypeKind = "longtext"

	TypeEnum TypeKind = "enum"
	TypeSet  TypeKind = "set"

	TypeBinary     TypeKind = "binary"
	TypeVarbinary  TypeKind = "varbinary"
	TypeTinyblob   TypeKind = "tinyblob"
	TypeBlob       TypeKind = "blob"
	TypeMediumblob TypeKind = "mediumblob"
	TypeLongblob   TypeKind = "longblob"

	TypeDate      TypeKind = "date"
	TypeTime      TypeKind = "time"
	TypeDatetime  TypeKind = "datetime"
	TypeTimestamp TypeKind = "timestamp"
	TypeYear      TypeKind = "year"

	TypeBit  TypeKind = "bit"
	TypeBool TypeKind = "bool"
	TypeJSON TypeKind = "json"
)

// Type is the data type of a column. The set of implementations is closed.
type Type interface {
	Element
	Kind() TypeKind
	Equal(other Type) bool
	IsAvailable(d Dialect) bool
	Render(d Dialect) string
}

type (
	// IntegerType covers tinyint through bigint.
	IntegerType struct {
		T        TypeKind
		Length   int // display width
		Unsigned bool
		Zerofill bool
	}

	// FloatingType covers decimal, float and double.
	FloatingType struct {
		T         TypeKind
		Precision int
		Scale     int
		Unsigned  bool
		Zerofill  bool
	}

	// CharType covers char and varchar.
	CharType struct {
		T         TypeKind
		Length    int
		Binary    bool
		Charset   string
		Collation string
	}

	// TextType covers the tinytext to longtext family.
	TextType struct {
		T         TypeKind
		Binary    bool
		Charset   string
		Collation string
	}

	// SetType covers enum and set.
	SetType struct {
		T         TypeKind
		Values    []string
		Charset   string
		Collation string
	}

	// BinaryType covers binary, varbinary and the blob family.
	BinaryType struct {
		T      TypeKind
		Length int
	}

	// TimeType covers date and time types. Precision is the fractional
	// seconds precision.
	TimeType struct {
		T         TypeKind
		Precision int
		TimeZone  bool
	}

	BitType struct {
		Length int
	}

	BoolType struct{}

	// JSONType is a JSON document column. Binary marks the decomposed
	// representation (jsonb).
	JSONType struct {
		Binary bool
	}
)

func renderType(d Dialect, t Type) string {
	if !d.Available(t) {
		return ""
	}
	return d.RenderType(t)
}

func (t *IntegerType) Kind() TypeKind { return t.T }
func (t *IntegerType) Equal(other Type) bool {
	o, ok := other.(*IntegerType)
	return ok && *t == *o
}
func (t *IntegerType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *IntegerType) Render(d Dialect) string    { return renderType(d, t) }

func (t *FloatingType) Kind() TypeKind { return t.T }
func (t *FloatingType) Equal(other Type) bool {
	o, ok := other.(*FloatingType)
	return ok && *t == *o
}
func (t *FloatingType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *FloatingType) Render(d Dialect) string    { return renderType(d, t) }

func (t *CharType) Kind() TypeKind { return t.T }

// Size returns the declared length. A char without length holds one character.
func (t *CharType) Size() int {
	if t.Length == 0 && t.T == TypeChar {
		return 1
	}
	return t.Length
}
func (t *CharType) Equal(other Type) bool {
	o, ok := other.(*CharType)
	return ok && t.T == o.T && t.Size() == o.Size() && t.Binary == o.Binary &&
		t.Charset == o.Charset && t.Collation == o.Collation
}
func (t *CharType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *CharType) Render(d Dialect) string    { return renderType(d, t) }

func (t *TextType) Kind() TypeKind { return t.T }
func (t *TextType) Equal(other Type) bool {
	o, ok := other.(*TextType)
	return ok && *t == *o
}
func (t *TextType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *TextType) Render(d Dialect) string    { return renderType(d, t) }

func (t *SetType) Kind() TypeKind { return t.T }

// Equal compares values position by position; enum members are stored by
// index so reordering them is a change.
func (t *SetType) Equal(other Type) bool {
	o, ok := other.(*SetType)
	return ok && t.T == o.T && slices.Equal(t.Values, o.Values) &&
		t.Charset == o.Charset && t.Collation == o.Collation
}
func (t *SetType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *SetType) Render(d Dialect) string    { return renderType(d, t) }

func (t *BinaryType) Kind() TypeKind { return t.T }
func (t *BinaryType) Equal(other Type) bool {
	o, ok := other.(*BinaryType)
	return ok && *t == *o
}
func (t *BinaryType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *BinaryType) Render(d Dialect) string    { return renderType(d, t) }

func (t *TimeType) Kind() TypeKind { return t.T }
func (t *TimeType) Equal(other Type) bool {
	o, ok := other.(*TimeType)
	return ok && *t == *o
}
func (t *TimeType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *TimeType) Render(d Dialect) string    { return renderType(d, t) }

func (t *BitType) Kind() TypeKind { return TypeBit }
func (t *BitType) Equal(other Type) bool {
	o, ok := other.(*BitType)
	return ok && *t == *o
}
func (t *BitType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *BitType) Render(d Dialect) string    { return renderType(d, t) }

func (t *BoolType) Kind() TypeKind { return TypeBool }
func (t *BoolType) Equal(other Type) bool {
	_, ok := other.(*BoolType)
	return ok
}
func (t *BoolType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *BoolType) Render(d Dialect) string    { return renderType(d, t) }

func (t *JSONType) Kind() TypeKind { return TypeJSON }
func (t *JSONType) Equal(other Type) bool {
	o, ok := other.(*JSONType)
	return ok && *t == *o
}
func (t *JSONType) IsAvailable(d Dialect) bool { return d.Available(t) }
func (t *JSONType) Render(d Dialect) string    { return renderType(d, t) }

func (*IntegerType) element()  {}
func (*FloatingType) element() {}
func (*CharType) element()     {}
func (*TextType) element()     {}
func (*SetType) element()      {}
func (*BinaryType) element()   {}
func (*TimeType) element()     {}
func (*BitType) element()      {}
func (*BoolType) element()     {}
func (*JSONType) element()     {}
