package pgbin

import "fmt"

// ShapeMismatchError reports that a Go type and a wire shape cannot be
// reconciled. It is only produced at registration or shape-derivation time,
// before any bytes are encoded.
type ShapeMismatchError struct {
	GoType string
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	if e.GoType == "" {
		return "shape mismatch: " + e.Reason
	}
	return fmt.Sprintf("shape mismatch for %s: %s", e.GoType, e.Reason)
}

// DecodeError wraps a decode failure with the position and name of the
// offending column.
type DecodeError struct {
	ColumnIndex int
	ColumnName  string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode column %d (%s): %v", e.ColumnIndex, e.ColumnName, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnexpectedNullError reports a NULL received for a column or field declared
// non-null.
type UnexpectedNullError struct {
	TypeName string
}

func (e *UnexpectedNullError) Error() string {
	return fmt.Sprintf("%s: null where non-null expected", e.TypeName)
}

// LengthError reports a value whose byte span is shorter or longer than its
// layout requires. Expected is -1 when the type is variable length and only
// the lower bound was violated.
type LengthError struct {
	TypeName string
	Expected int
	Actual   int
}

func (e *LengthError) Error() string {
	if e.Expected < 0 {
		return fmt.Sprintf("%s: malformed length, received %d bytes", e.TypeName, e.Actual)
	}
	return fmt.Sprintf("%s: expected %d bytes, received %d", e.TypeName, e.Expected, e.Actual)
}

// UnknownEnumLabelError reports a received enum label that is not in the
// registered case list.
type UnknownEnumLabelError struct {
	TypeName string
	Label    string
}

func (e *UnknownEnumLabelError) Error() string {
	return fmt.Sprintf("invalid label for enum %s: %q", e.TypeName, e.Label)
}

// FieldCountMismatchError reports a composite value whose wire field count
// differs from the registered field count.
type FieldCountMismatchError struct {
	TypeName string
	Expected int
	Actual   int
}

func (e *FieldCountMismatchError) Error() string {
	return fmt.Sprintf("composite %s: expected %d fields, received %d", e.TypeName, e.Expected, e.Actual)
}

// MalformedJSONError reports bytes that could not be parsed as JSON or a JSON
// document that could not be mapped onto the target shape.
type MalformedJSONError struct {
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed json: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// DimensionMismatchError reports a wire array whose declared dimensions
// differ from the dimensions fixed at registration time.
type DimensionMismatchError struct {
	Expected []int32
	Actual   []int32
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("array dimensions %v do not match expected %v", e.Actual, e.Expected)
}
