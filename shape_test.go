package pgbin_test

import (
	"testing"

	"github.com/pgkit/pgbin"
	"github.com/stretchr/testify/require"
)

type account struct {
	UserID    int64   `db:"user_id"`
	Email     string  `db:"email"`
	Nickname  *string `db:"nickname"`
	Balance   string  `pgtype:"numeric"`
	CreatedAt int64   `db:"-"`
	secret    string
}

func TestDeriveRowShape(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(account{})
	require.NoError(t, err)
	require.Equal(t, 4, shape.Arity())

	require.Equal(t, "user_id", shape.Columns[0].Name)
	require.Equal(t, "int8", shape.Columns[0].Type.Name)
	require.False(t, shape.Columns[0].Nullable)

	require.Equal(t, "email", shape.Columns[1].Name)
	require.Equal(t, "text", shape.Columns[1].Type.Name)

	require.Equal(t, "nickname", shape.Columns[2].Name)
	require.True(t, shape.Columns[2].Nullable)

	// The pgtype tag overrides the kind-based mapping.
	require.Equal(t, "balance", shape.Columns[3].Name)
	require.Equal(t, "numeric", shape.Columns[3].Type.Name)
}

func TestDeriveRowShapeIdempotent(t *testing.T) {
	m := pgbin.NewMap()

	first, err := m.DeriveRowShape(account{})
	require.NoError(t, err)

	second, err := m.DeriveRowShape(&account{})
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestDeriveRowShapeSnakeCase(t *testing.T) {
	m := pgbin.NewMap()

	shape, err := m.DeriveRowShape(struct {
		OrderID   int64
		HTTPCode  int32
		CreatedAt string
		X         bool
	}{})
	require.NoError(t, err)

	require.Equal(t, "order_id", shape.Columns[0].Name)
	require.Equal(t, "http_code", shape.Columns[1].Name)
	require.Equal(t, "created_at", shape.Columns[2].Name)
	require.Equal(t, "x", shape.Columns[3].Name)
}

func TestDeriveRowShapeErrors(t *testing.T) {
	m := pgbin.NewMap()
	var shapeErr *pgbin.ShapeMismatchError

	_, err := m.DeriveRowShape(42)
	require.ErrorAs(t, err, &shapeErr)

	_, err = m.DeriveRowShape(struct{ secret string }{})
	require.ErrorAs(t, err, &shapeErr)

	_, err = m.DeriveRowShape(struct {
		V string `pgtype:"no_such_type"`
	}{})
	require.ErrorAs(t, err, &shapeErr)

	_, err = m.DeriveRowShape(struct{ P **int32 }{})
	require.ErrorAs(t, err, &shapeErr)
}

func TestNewRowShapeRejectsDuplicateNames(t *testing.T) {
	m := pgbin.NewMap()
	text, _ := m.TypeForName("text")

	_, err := pgbin.NewRowShape(
		pgbin.Column{Name: "a", Type: text},
		pgbin.Column{Name: "a", Type: text},
	)
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}

func TestNewRowShapeCopiesColumns(t *testing.T) {
	m := pgbin.NewMap()
	text, _ := m.TypeForName("text")
	int8Type, _ := m.TypeForName("int8")

	columns := []pgbin.Column{{Name: "a", Type: text}}
	shape, err := pgbin.NewRowShape(columns...)
	require.NoError(t, err)

	columns[0] = pgbin.Column{Name: "b", Type: int8Type, Nullable: true}

	require.Equal(t, "a", shape.Columns[0].Name)
	require.Same(t, text, shape.Columns[0].Type)
	require.False(t, shape.Columns[0].Nullable)
}

func TestJoin(t *testing.T) {
	m := pgbin.NewMap()

	left, err := m.DeriveRowShape(struct {
		ID   int64
		Name string
	}{})
	require.NoError(t, err)

	right, err := m.DeriveRowShape(struct {
		Score float64
	}{})
	require.NoError(t, err)

	joined, err := left.Join(right)
	require.NoError(t, err)
	require.Equal(t, 3, joined.Arity())
	require.Equal(t, "id", joined.Columns[0].Name)
	require.Equal(t, "score", joined.Columns[2].Name)

	// Joining is left-to-right associative over components.
	wider, err := joined.Join(left)
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	require.Nil(t, wider)
}

func TestJoinRejectsDuplicateNames(t *testing.T) {
	m := pgbin.NewMap()

	left, err := m.DeriveRowShape(struct{ ID int64 }{})
	require.NoError(t, err)

	right, err := m.DeriveRowShape(struct{ ID int32 }{})
	require.NoError(t, err)

	_, err = left.Join(right)
	var shapeErr *pgbin.ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
}
