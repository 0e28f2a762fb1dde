package pgbin

import (
	"context"
	"encoding/json"
	"net/netip"
	"reflect"
	"time"

	"github.com/cockroachdb/apd"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// PostgreSQL OIDs for the built-in types the codec speaks natively. Custom
// enum and composite OIDs come from the schema catalog at registration time.
const (
	BoolOID             = 16
	ByteaOID            = 17
	QCharOID            = 18
	Int8OID             = 20
	Int2OID             = 21
	Int4OID             = 23
	TextOID             = 25
	JSONOID             = 114
	JSONArrayOID        = 199
	Float4OID           = 700
	Float8OID           = 701
	MoneyOID            = 790
	MoneyArrayOID       = 791
	InetOID             = 869
	BoolArrayOID        = 1000
	ByteaArrayOID       = 1001
	QCharArrayOID       = 1002
	Int2ArrayOID        = 1005
	Int4ArrayOID        = 1007
	TextArrayOID        = 1009
	Int8ArrayOID        = 1016
	Float4ArrayOID      = 1021
	Float8ArrayOID      = 1022
	InetArrayOID        = 1041
	DateOID             = 1082
	TimeOID             = 1083
	TimestampOID        = 1114
	TimestampArrayOID   = 1115
	DateArrayOID        = 1182
	TimeArrayOID        = 1183
	TimestamptzOID      = 1184
	TimestamptzArrayOID = 1185
	IntervalOID         = 1186
	IntervalArrayOID    = 1187
	NumericArrayOID     = 1231
	TimetzOID           = 1266
	TimetzArrayOID      = 1270
	NumericOID          = 1700
	UUIDOID             = 2950
	UUIDArrayOID        = 2951
	JSONBOID            = 3802
	JSONBArrayOID       = 3807
)

// Kind identifies the physical wire layout of one column value.
type Kind uint8

const (
	KindBool Kind = iota
	KindBytea
	KindQChar
	KindInt2
	KindInt4
	KindInt8
	KindFloat4
	KindFloat8
	KindText
	KindJSON
	KindJSONB
	KindMoney
	KindNumeric
	KindUUID
	KindInet
	KindDate
	KindTime
	KindTimetz
	KindTimestamp
	KindTimestamptz
	KindInterval
	KindVarArray
	KindFixedArray
	KindEnum
	KindComposite
)

type InfinityModifier int8

const (
	Infinity         InfinityModifier = 1
	None             InfinityModifier = 0
	NegativeInfinity InfinityModifier = -Infinity
)

func (im InfinityModifier) String() string {
	switch im {
	case None:
		return "none"
	case Infinity:
		return "infinity"
	case NegativeInfinity:
		return "-infinity"
	default:
		return "invalid"
	}
}

// Field is one named member of a composite type.
type Field struct {
	Name     string
	Type     *Type
	Nullable bool
}

// Type describes the on-the-wire binary layout of one value as a finite tree.
// Composite field types and array element types are resolved fully at
// registration; a Type never references itself.
type Type struct {
	Name     string
	OID      uint32
	ArrayOID uint32
	Kind     Kind

	// Array kinds.
	Elem         *Type
	ElemNullable bool
	Dims         []int32 // fixed arrays only, outermost first

	// Enum kinds.
	Labels []string

	// Composite kinds.
	Fields []Field

	codec  Codec
	goType reflect.Type
}

// Codec encodes and decodes the PostgreSQL binary representation of one Type.
type Codec interface {
	// Encode appends the binary representation of value to buf and returns the
	// extended buffer. value is never nil; NULL handling happens in the column
	// plumbing before the codec is reached.
	Encode(m *Map, value any, buf []byte) ([]byte, error)

	// Decode reconstructs a value from src. src is never nil, must be consumed
	// exactly, and is only valid for the duration of the call; implementations
	// return freshly owned values.
	Decode(m *Map, src []byte) (any, error)
}

// Encode appends the binary representation of value to buf. value must not
// be nil; a NULL column is represented by a nil span, which the row codec
// produces before any type codec runs.
func (t *Type) Encode(m *Map, value any, buf []byte) ([]byte, error) {
	v := derefValue(value)
	if isNilValue(v) {
		return nil, &UnexpectedNullError{TypeName: t.Name}
	}
	return t.codec.Encode(m, v, buf)
}

// Decode reconstructs a value of t's Go representation from src, which must
// be consumed exactly.
func (t *Type) Decode(m *Map, src []byte) (any, error) {
	return t.codec.Decode(m, src)
}

// Map is the registry of wire types and derived structural descriptions. All
// registration must happen before concurrent use; afterwards a Map is
// read-only and safe for concurrent encode/decode.
type Map struct {
	nameToType        map[string]*Type
	oidToType         map[uint32]*Type
	reflectTypeToType map[reflect.Type]*Type
	structDescs       map[reflect.Type]*StructuralDescription

	logger   Logger
	logLevel LogLevel
}

func NewMap() *Map {
	m := &Map{
		nameToType:        make(map[string]*Type, 64),
		oidToType:         make(map[uint32]*Type, 64),
		reflectTypeToType: make(map[reflect.Type]*Type, 64),
		structDescs:       make(map[reflect.Type]*StructuralDescription, 16),
		logLevel:          LogLevelDebug,
	}

	for _, t := range []*Type{
		{Name: "bool", Kind: KindBool, OID: BoolOID, ArrayOID: BoolArrayOID, codec: BoolCodec{}, goType: reflect.TypeOf(false)},
		{Name: "bytea", Kind: KindBytea, OID: ByteaOID, ArrayOID: ByteaArrayOID, codec: ByteaCodec{}, goType: reflect.TypeOf([]byte(nil))},
		{Name: "char", Kind: KindQChar, OID: QCharOID, ArrayOID: QCharArrayOID, codec: QCharCodec{}, goType: reflect.TypeOf(byte(0))},
		{Name: "int2", Kind: KindInt2, OID: Int2OID, ArrayOID: Int2ArrayOID, codec: Int2Codec{}, goType: reflect.TypeOf(int16(0))},
		{Name: "int4", Kind: KindInt4, OID: Int4OID, ArrayOID: Int4ArrayOID, codec: Int4Codec{}, goType: reflect.TypeOf(int32(0))},
		{Name: "int8", Kind: KindInt8, OID: Int8OID, ArrayOID: Int8ArrayOID, codec: Int8Codec{}, goType: reflect.TypeOf(int64(0))},
		{Name: "float4", Kind: KindFloat4, OID: Float4OID, ArrayOID: Float4ArrayOID, codec: Float4Codec{}, goType: reflect.TypeOf(float32(0))},
		{Name: "float8", Kind: KindFloat8, OID: Float8OID, ArrayOID: Float8ArrayOID, codec: Float8Codec{}, goType: reflect.TypeOf(float64(0))},
		{Name: "text", Kind: KindText, OID: TextOID, ArrayOID: TextArrayOID, codec: TextCodec{}, goType: reflect.TypeOf("")},
		{Name: "json", Kind: KindJSON, OID: JSONOID, ArrayOID: JSONArrayOID, codec: JSONCodec{}, goType: reflect.TypeOf(json.RawMessage(nil))},
		{Name: "jsonb", Kind: KindJSONB, OID: JSONBOID, ArrayOID: JSONBArrayOID, codec: JSONBCodec{}, goType: reflect.TypeOf(json.RawMessage(nil))},
		{Name: "money", Kind: KindMoney, OID: MoneyOID, ArrayOID: MoneyArrayOID, codec: MoneyCodec{}, goType: reflect.TypeOf(Money(0))},
		{Name: "numeric", Kind: KindNumeric, OID: NumericOID, ArrayOID: NumericArrayOID, codec: NumericCodec{}, goType: reflect.TypeOf(Numeric{})},
		{Name: "uuid", Kind: KindUUID, OID: UUIDOID, ArrayOID: UUIDArrayOID, codec: UUIDCodec{}, goType: reflect.TypeOf(uuid.UUID{})},
		{Name: "inet", Kind: KindInet, OID: InetOID, ArrayOID: InetArrayOID, codec: InetCodec{}, goType: reflect.TypeOf(netip.Prefix{})},
		{Name: "date", Kind: KindDate, OID: DateOID, ArrayOID: DateArrayOID, codec: DateCodec{}, goType: reflect.TypeOf(time.Time{})},
		{Name: "time", Kind: KindTime, OID: TimeOID, ArrayOID: TimeArrayOID, codec: TimeCodec{}, goType: reflect.TypeOf(time.Duration(0))},
		{Name: "timetz", Kind: KindTimetz, OID: TimetzOID, ArrayOID: TimetzArrayOID, codec: TimetzCodec{}, goType: reflect.TypeOf(Timetz{})},
		{Name: "timestamp", Kind: KindTimestamp, OID: TimestampOID, ArrayOID: TimestampArrayOID, codec: TimestampCodec{}, goType: reflect.TypeOf(time.Time{})},
		{Name: "timestamptz", Kind: KindTimestamptz, OID: TimestamptzOID, ArrayOID: TimestamptzArrayOID, codec: TimestamptzCodec{}, goType: reflect.TypeOf(time.Time{})},
		{Name: "interval", Kind: KindInterval, OID: IntervalOID, ArrayOID: IntervalArrayOID, codec: IntervalCodec{}, goType: reflect.TypeOf(Interval{})},
	} {
		m.nameToType[t.Name] = t
		m.oidToType[t.OID] = t
	}

	// Well-known Go types resolve to a wire type without a struct tag. A
	// db-assigned OID is not needed for these; they are already built in.
	for goType, name := range map[reflect.Type]string{
		reflect.TypeOf(Numeric{}):         "numeric",
		reflect.TypeOf(decimal.Decimal{}): "numeric",
		reflect.TypeOf(apd.Decimal{}):     "numeric",
		reflect.TypeOf(Money(0)):          "money",
		reflect.TypeOf(uuid.UUID{}):       "uuid",
		reflect.TypeOf(netip.Prefix{}):    "inet",
		reflect.TypeOf(netip.Addr{}):      "inet",
		reflect.TypeOf(time.Time{}):       "timestamptz",
		reflect.TypeOf(time.Duration(0)):  "interval",
		reflect.TypeOf(Interval{}):        "interval",
		reflect.TypeOf(Timetz{}):          "timetz",
		reflect.TypeOf(json.RawMessage(nil)): "jsonb",
	} {
		m.reflectTypeToType[goType] = m.nameToType[name]
	}

	return m
}

// SetLogger installs a logger for registration-time events. Encode and decode
// paths never log.
func (m *Map) SetLogger(logger Logger, level LogLevel) {
	m.logger = logger
	m.logLevel = level
}

func (m *Map) log(level LogLevel, msg string, data map[string]any) {
	if m.logger == nil || level > m.logLevel {
		return
	}
	m.logger.Log(context.Background(), level, msg, data)
}

// TypeForName returns the registered type with the given name.
func (m *Map) TypeForName(name string) (*Type, bool) {
	t, ok := m.nameToType[name]
	return t, ok
}

// TypeForOID returns the registered type with the given OID.
func (m *Map) TypeForOID(oid uint32) (*Type, bool) {
	t, ok := m.oidToType[oid]
	return t, ok
}

func (m *Map) registerType(t *Type) {
	m.nameToType[t.Name] = t
	if t.OID != 0 {
		m.oidToType[t.OID] = t
	}
	if t.goType != nil {
		m.reflectTypeToType[t.goType] = t
	}
}
