package pgbin

import "fmt"

// Column is one named slot of a RowShape.
type Column struct {
	Name     string
	Type     *Type
	Nullable bool
}

// RowShape is the ordered, name-keyed list of columns for one parameter list
// or result row. Shapes are immutable once built.
type RowShape struct {
	Columns []Column

	// parts records the arity of each joined component so a joined shape can
	// be split back apart positionally on decode.
	parts []int
}

// NewRowShape builds a shape from explicit columns. Column names must be
// unique within one shape.
func NewRowShape(columns ...Column) (*RowShape, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if col.Type == nil {
			return nil, &ShapeMismatchError{Reason: fmt.Sprintf("column %q has no type", col.Name)}
		}
		if _, ok := seen[col.Name]; ok {
			return nil, &ShapeMismatchError{Reason: fmt.Sprintf("duplicate column name %q", col.Name)}
		}
		seen[col.Name] = struct{}{}
	}

	// The shape owns its column list; later mutation of the caller's slice
	// must not leak in.
	cols := make([]Column, len(columns))
	copy(cols, columns)

	return &RowShape{Columns: cols}, nil
}

// Arity returns the number of columns in the shape.
func (s *RowShape) Arity() int { return len(s.Columns) }

func (s *RowShape) componentParts() []int {
	if len(s.parts) == 0 {
		return []int{len(s.Columns)}
	}
	return s.parts
}

// Join concatenates s and other into a wider shape that decodes into one
// value per joined component: the first columns belong to s, the remainder to
// other. Shapes that share a column name cannot be joined; there is no
// precedence rule.
func (s *RowShape) Join(other *RowShape) (*RowShape, error) {
	seen := make(map[string]struct{}, len(s.Columns)+len(other.Columns))
	for _, col := range s.Columns {
		seen[col.Name] = struct{}{}
	}
	for _, col := range other.Columns {
		if _, ok := seen[col.Name]; ok {
			return nil, &ShapeMismatchError{Reason: fmt.Sprintf("duplicate column name %q in join", col.Name)}
		}
		seen[col.Name] = struct{}{}
	}

	columns := make([]Column, 0, len(s.Columns)+len(other.Columns))
	columns = append(columns, s.Columns...)
	columns = append(columns, other.Columns...)

	parts := make([]int, 0, len(s.componentParts())+len(other.componentParts()))
	parts = append(parts, s.componentParts()...)
	parts = append(parts, other.componentParts()...)

	return &RowShape{Columns: columns, parts: parts}, nil
}
