// Package value implements the CQL value codec: the primitive wire formats
// (spec.md §4.2) and the recursive complex-type decoder for collections,
// tuples, and user-defined types (spec.md §4.3). Value is a tagged union
// realized as a struct with a Kind discriminant, per the redesign note in
// spec.md §9 favoring a sum type over trait-object polymorphism.
package value

// Kind identifies which CQL type a Value holds.
type Kind uint8

const (
	KindBool Kind = iota
	KindTinyInt
	KindSmallInt
	KindInt
	KindBigInt
	KindCounter
	KindVarint
	KindFloat
	KindDouble
	KindAscii
	KindText // covers both `text` and `varchar`
	KindBlob
	KindUUID
	KindTimeUUID
	KindTimestamp
	KindDate
	KindTime
	KindDecimal
	KindDuration
	KindInet
	KindList
	KindSet
	KindMap
	KindTuple
	KindUDT
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindTinyInt:
		return "tinyint"
	case KindSmallInt:
		return "smallint"
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindCounter:
		return "counter"
	case KindVarint:
		return "varint"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindAscii:
		return "ascii"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindUUID:
		return "uuid"
	case KindTimeUUID:
		return "timeuuid"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDecimal:
		return "decimal"
	case KindDuration:
		return "duration"
	case KindInet:
		return "inet"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindTuple:
		return "tuple"
	case KindUDT:
		return "udt"
	default:
		return "unknown"
	}
}

var kindNames = map[string]Kind{
	"boolean":   KindBool,
	"bool":      KindBool,
	"tinyint":   KindTinyInt,
	"smallint":  KindSmallInt,
	"int":       KindInt,
	"bigint":    KindBigInt,
	"counter":   KindCounter,
	"varint":    KindVarint,
	"float":     KindFloat,
	"double":    KindDouble,
	"ascii":     KindAscii,
	"text":      KindText,
	"varchar":   KindText,
	"blob":      KindBlob,
	"uuid":      KindUUID,
	"timeuuid":  KindTimeUUID,
	"timestamp": KindTimestamp,
	"date":      KindDate,
	"time":      KindTime,
	"decimal":   KindDecimal,
	"duration":  KindDuration,
	"inet":      KindInet,
	"list":      KindList,
	"set":       KindSet,
	"map":       KindMap,
	"tuple":     KindTuple,
	"udt":       KindUDT,
}

// ParseKind resolves a CQL type name (as it appears in CREATE TABLE text,
// lowercased) to its Kind. It resolves the primitive names and the bare
// names list, set, map, tuple, and udt; parameterized complex types
// (list<int>, map<text,int>, ...) are not parsed, and the caller builds their
// structure by composing ColumnType.Elem/Key/Val/Fields directly.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindNames[name]
	return k, ok
}

// DecimalValue holds a CQL decimal: an arbitrary-scale unscaled integer plus
// a base-10 scale. Per spec.md §3 the unscaled value is represented as an
// int64 with overflow surfaced as an error; a decoder may additionally
// degrade the value to a float64 approximation, recording that it did so.
type DecimalValue struct {
	Scale    int32
	Unscaled int64
	// Degraded is set when the unscaled value could not be represented
	// exactly as an int64 and AsFloat holds a float64 approximation instead.
	Degraded bool
	AsFloat  float64
}

// DurationValue holds a CQL duration's three independent components. Months
// and days are not reducible to a fixed number of microseconds in general
// (months vary in length), so TotalMicros uses the conventional 30-day month
// / 24-hour day approximation documented on the method; callers that need
// exact calendar semantics should use the components directly.
type DurationValue struct {
	Months int32
	Days   int32
	Nanos  int64
}

const approxDayMicros = int64(86400) * 1_000_000
const approxMonthMicros = approxDayMicros * 30

// TotalMicros approximates the duration's total length in microseconds,
// treating a month as 30 days. This is the "coerced to total microseconds"
// value spec.md §3 describes; it is an approximation and is documented as
// such rather than silently assumed exact.
func (d DurationValue) TotalMicros() int64 {
	return int64(d.Months)*approxMonthMicros + int64(d.Days)*approxDayMicros + d.Nanos/1000
}

// MapEntry is one key/value pair of a decoded map, in wire (insertion)
// order.
type MapEntry struct {
	Key Value
	Val Value
}

// UDTField is one named field of a decoded user-defined type, in schema
// order.
type UDTField struct {
	Name  string
	Value Value
}

// UDTValue holds a decoded user-defined-type instance.
type UDTValue struct {
	TypeName string
	Keyspace string
	Fields   []UDTField
}

// Value is a single decoded CQL value. Only the fields relevant to Kind are
// meaningful; Null, when true, means the value is absent regardless of Kind.
// Frozen marks that this value (of any Kind) was wrapped in frozen<T> on the
// wire; frozen decodes identically to its inner type and compares/hashes as
// transparent, so it is carried as a flag rather than a distinct Kind.
type Value struct {
	Kind   Kind
	Null   bool
	Frozen bool

	Bool    bool
	Int64   int64 // tinyint/smallint/int/bigint/counter/varint, widened
	Float32 float32
	Float64 float64
	Text    string // ascii/text
	Blob    []byte // blob/inet raw bytes
	UUID    [16]byte
	Micros  int64 // timestamp/date/time, normalized to microseconds

	Decimal  DecimalValue
	Duration DurationValue

	List  []Value
	Map   []MapEntry
	Tuple []Value
	UDT   *UDTValue
}

// NullValue returns a null Value of the given declared kind.
func NullValue(k Kind) Value { return Value{Kind: k, Null: true} }
