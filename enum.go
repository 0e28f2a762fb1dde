package pgbin

import (
	"fmt"
	"reflect"
)

// EnumCodec implements the enum wire format: the UTF-8 bytes of the case
// label, looked up against the case list fixed at registration.
type EnumCodec struct {
	typeName string
	labels   []string
	members  map[string]string // interns the registration-time label strings
	goType   reflect.Type
}

// RegisterEnum registers a PostgreSQL enum type backed by the string-kinded
// Go type E. The ~string constraint is what limits enums to bare cases;
// there is no way to smuggle a data-carrying variant through it. The case
// list and its order are fixed here and never re-derived. oid and arrayOID
// are the catalog-assigned identifiers.
func RegisterEnum[E ~string](m *Map, name string, oid, arrayOID uint32, cases ...E) (*Type, error) {
	goType := reflect.TypeOf(cases).Elem()

	if len(cases) == 0 {
		return nil, &ShapeMismatchError{GoType: goType.String(), Reason: "enum must have at least one case"}
	}

	labels := make([]string, 0, len(cases))
	members := make(map[string]string, len(cases))
	for _, c := range cases {
		label := string(c)
		if _, ok := members[label]; ok {
			return nil, &ShapeMismatchError{GoType: goType.String(), Reason: fmt.Sprintf("duplicate enum case %q", label)}
		}
		labels = append(labels, label)
		members[label] = label
	}

	t := &Type{
		Name:     name,
		OID:      oid,
		ArrayOID: arrayOID,
		Kind:     KindEnum,
		Labels:   labels,
		goType:   goType,
	}
	t.codec = &EnumCodec{typeName: name, labels: labels, members: members, goType: goType}
	m.registerType(t)

	m.log(LogLevelDebug, "registered enum type", map[string]any{"name": name, "oid": oid, "cases": len(labels)})

	return t, nil
}

func (c *EnumCodec) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	s, err := convertToString(value)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to enum %s", value, c.typeName)
	}

	if _, ok := c.members[s]; !ok {
		return nil, fmt.Errorf("%q is not a case of enum %s", s, c.typeName)
	}

	return append(buf, s...), nil
}

func (c *EnumCodec) Decode(m *Map, src []byte) (any, error) {
	label, ok := c.members[string(src)]
	if !ok {
		return nil, &UnknownEnumLabelError{TypeName: c.typeName, Label: string(src)}
	}

	rv := reflect.New(c.goType).Elem()
	rv.SetString(label)
	return rv.Interface(), nil
}
