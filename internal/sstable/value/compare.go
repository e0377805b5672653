package value

import "bytes"

// Compare orders two Values of the same declared Kind, returning -1, 0, or 1.
// Null orders before any non-null value. Compare applies no direction; the
// executor's Sort step places nulls itself (last for ASC, first for DESC,
// per spec.md §4.11) and negates only the non-null comparison for DESC.
func Compare(a, b Value) int {
	if a.Null || b.Null {
		switch {
		case a.Null && b.Null:
			return 0
		case a.Null:
			return -1
		default:
			return 1
		}
	}
	switch a.Kind {
	case KindBool:
		return compareBool(a.Bool, b.Bool)
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt, KindCounter, KindVarint:
		return compareInt64(a.Int64, b.Int64)
	case KindFloat:
		return compareFloat64(float64(a.Float32), float64(b.Float32))
	case KindDouble:
		return compareFloat64(a.Float64, b.Float64)
	case KindAscii, KindText:
		return compareStrings(a.Text, b.Text)
	case KindBlob, KindInet:
		return bytes.Compare(a.Blob, b.Blob)
	case KindUUID, KindTimeUUID:
		return bytes.Compare(a.UUID[:], b.UUID[:])
	case KindTimestamp, KindDate, KindTime:
		return compareInt64(a.Micros, b.Micros)
	case KindDecimal:
		return compareDecimal(a.Decimal, b.Decimal)
	default:
		// Collections, tuples, and UDTs have no natural total order in CQL;
		// callers must not sort or range-compare on them (spec.md §4.10
		// only accepts clustering-column predicates, which are always
		// primitive types). Reporting equal rather than panicking keeps a
		// stray sort over such a value a no-op instead of a crash.
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b-floatEpsilon:
		return -1
	case a > b+floatEpsilon:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareDecimal(a, b DecimalValue) int {
	if a.Degraded || b.Degraded {
		return compareFloat64(a.AsFloat, b.AsFloat)
	}
	if a.Scale != b.Scale {
		// Different scales without a big-integer rescale available here;
		// fall back to a float approximation for ordering purposes only.
		return compareFloat64(float64(a.Unscaled)/pow10(a.Scale), float64(b.Unscaled)/pow10(b.Scale))
	}
	return compareInt64(a.Unscaled, b.Unscaled)
}

func pow10(scale int32) float64 {
	result := 1.0
	if scale >= 0 {
		for i := int32(0); i < scale; i++ {
			result *= 10
		}
		return result
	}
	for i := int32(0); i > scale; i-- {
		result /= 10
	}
	return result
}
