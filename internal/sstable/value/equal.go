package value

import "math"

const floatEpsilon = 1e-12

// Equal compares two Values treating frozen<T> as transparent (spec.md §3)
// and comparing floating point with a small epsilon (spec.md §8).
func Equal(a, b Value) bool {
	if a.Null != b.Null {
		return false
	}
	if a.Null {
		return a.Kind == b.Kind
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBool:
		return a.Bool == b.Bool
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt, KindCounter, KindVarint:
		return a.Int64 == b.Int64
	case KindFloat:
		return math.Abs(float64(a.Float32-b.Float32)) <= floatEpsilon
	case KindDouble:
		return math.Abs(a.Float64-b.Float64) <= floatEpsilon
	case KindAscii, KindText:
		return a.Text == b.Text
	case KindBlob, KindInet:
		return bytesEqual(a.Blob, b.Blob)
	case KindUUID, KindTimeUUID:
		return a.UUID == b.UUID
	case KindTimestamp, KindDate, KindTime:
		return a.Micros == b.Micros
	case KindDecimal:
		if a.Decimal.Degraded || b.Decimal.Degraded {
			return math.Abs(a.Decimal.AsFloat-b.Decimal.AsFloat) <= floatEpsilon
		}
		return a.Decimal.Scale == b.Decimal.Scale && a.Decimal.Unscaled == b.Decimal.Unscaled
	case KindDuration:
		return a.Duration == b.Duration
	case KindList, KindSet:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if !Equal(a.Map[i].Key, b.Map[i].Key) || !Equal(a.Map[i].Val, b.Map[i].Val) {
				return false
			}
		}
		return true
	case KindTuple:
		if len(a.Tuple) != len(b.Tuple) {
			return false
		}
		for i := range a.Tuple {
			if !Equal(a.Tuple[i], b.Tuple[i]) {
				return false
			}
		}
		return true
	case KindUDT:
		if (a.UDT == nil) != (b.UDT == nil) {
			return false
		}
		if a.UDT == nil {
			return true
		}
		if a.UDT.TypeName != b.UDT.TypeName || len(a.UDT.Fields) != len(b.UDT.Fields) {
			return false
		}
		for i := range a.UDT.Fields {
			if a.UDT.Fields[i].Name != b.UDT.Fields[i].Name {
				return false
			}
			if !Equal(a.UDT.Fields[i].Value, b.UDT.Fields[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
