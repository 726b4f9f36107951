package inspect

import "fmt"

// TypeError is returned when a column type cannot be mapped to a schema type.
type TypeError struct {
	Table  string
	Column string
	Raw    string
	Err    error
}

func (e *TypeError) Error() string {
	msg := fmt.Sprintf("unsupported type %q for column %s.%s", e.Raw, e.Table, e.Column)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeError) Unwrap() error { return e.Err }

// MetadataError is returned when index or constraint rows are malformed.
type MetadataError struct {
	Table  string
	Index  string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("invalid metadata for %s on table %s: %s", e.Index, e.Table, e.Reason)
}
