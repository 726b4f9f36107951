package inspect

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"db-sync/internal/schema"
)

var mysqlColumnType = regexp.MustCompile(`(?i)^([a-z]+)(?:\((.*)\))?((?:\s+(?:unsigned|zerofill|binary))*)$`)

// parseMySQLType maps an information_schema COLUMN_TYPE such as
// "int(10) unsigned" or "enum('a','b')" to a schema type.
func parseMySQLType(raw, charset, collation string) (schema.Type, error) {
	m := mysqlColumnType.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, errors.New("unrecognized syntax")
	}
	kind, args := schema.TypeKind(strings.ToLower(m[1])), m[2]
	var unsigned, zerofill, binary bool
	for _, attr := range strings.Fields(strings.ToLower(m[3])) {
		switch attr {
		case "unsigned":
			unsigned = true
		case "zerofill":
			zerofill = true
		case "binary":
			binary = true
		}
	}

	switch kind {
	case "integer":
		kind = schema.TypeInt
		fallthrough
	case schema.TypeTinyint, schema.TypeSmallint, schema.TypeMediumint, schema.TypeInt, schema.TypeBigint:
		n, err := optionalInt(args)
		if err != nil {
			return nil, err
		}
		return &schema.IntegerType{T: kind, Length: n, Unsigned: unsigned, Zerofill: zerofill}, nil

	case "numeric", "real":
		if kind == "numeric" {
			kind = schema.TypeDecimal
		} else {
			kind = schema.TypeDouble
		}
		fallthrough
	case schema.TypeDecimal, schema.TypeFloat, schema.TypeDouble:
		p, s, err := precisionScale(args)
		if err != nil {
			return nil, err
		}
		return &schema.FloatingType{T: kind, Precision: p, Scale: s, Unsigned: unsigned, Zerofill: zerofill}, nil

	case schema.TypeChar, schema.TypeVarchar:
		n, err := optionalInt(args)
		if err != nil {
			return nil, err
		}
		return &schema.CharType{T: kind, Length: n, Binary: binary, Charset: charset, Collation: collation}, nil

	case schema.TypeTinytext, schema.TypeText, schema.TypeMediumtext, schema.TypeLongtext:
		return &schema.TextType{T: kind, Binary: binary, Charset: charset, Collation: collation}, nil

	case schema.TypeEnum, schema.TypeSet:
		values, err := parseValues(args)
		if err != nil {
			return nil, err
		}
		return &schema.SetType{T: kind, Values: values, Charset: charset, Collation: collation}, nil

	case schema.TypeBinary, schema.TypeVarbinary, schema.TypeTinyblob, schema.TypeBlob, schema.TypeMediumblob, schema.TypeLongblob:
		n, err := optionalInt(args)
		if err != nil {
			return nil, err
		}
		return &schema.BinaryType{T: kind, Length: n}, nil

	case schema.TypeYear, schema.TypeDate:
		return &schema.TimeType{T: kind}, nil

	case schema.TypeTime, schema.TypeDatetime, schema.TypeTimestamp:
		n, err := optionalInt(args)
		if err != nil {
			return nil, err
		}
		return &schema.TimeType{T: kind, Precision: n}, nil

	case schema.TypeBit:
		n, err := optionalInt(args)
		if err != nil {
			return nil, err
		}
		return &schema.BitType{Length: n}, nil

	case schema.TypeJSON:
		return &schema.JSONType{}, nil
	}
	return nil, fmt.Errorf("unknown type %q", kind)
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

func precisionScale(args string) (int, int, error) {
	if args == "" {
		return 0, 0, nil
	}
	p, s, found := strings.Cut(args, ",")
	precision, err := optionalInt(p)
	if err != nil || !found {
		return precision, 0, err
	}
	scale, err := optionalInt(s)
	return precision, scale, err
}

// parseValues splits a quoted list such as 'a','it''s'.
func parseValues(s string) ([]string, error) {
	var (
		values []string
		cur    strings.Builder
	)
	for i := 0; i < len(s); {
		if s[i] != '\'' {
			return nil, fmt.Errorf("expected quote at offset %d", i)
		}
		i++
		closed := false
		for i < len(s) && !closed {
			switch {
			case s[i] == '\'' && i+1 < len(s) && s[i+1] == '\'':
				cur.WriteByte('\'')
				i += 2
			case s[i] == '\'':
				closed = true
				i++
			case s[i] == '\\' && i+1 < len(s):
				cur.WriteByte(s[i+1])
				i += 2
			default:
				cur.WriteByte(s[i])
				i++
			}
		}
		if !closed {
			return nil, errors.New("unterminated value")
		}
		values = append(values, cur.String())
		cur.Reset()
		if i < len(s) {
			if s[i] != ',' {
				return nil, fmt.Errorf("expected comma at offset %d", i)
			}
			i++
		}
	}
	return values, nil
}
