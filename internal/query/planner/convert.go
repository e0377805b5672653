package planner

import (
	"fmt"

	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/errs"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// literalToValue converts a parsed literal into a typed Value matching the
// target column's declared Kind, rejecting shapes that cannot coerce
// (spec.md §4.9's "semantic validation... happens in the planner").
func literalToValue(lit ast.Literal, kind value.Kind) (value.Value, error) {
	if lit.Kind == ast.LitNull {
		return value.NullValue(kind), nil
	}
	switch kind {
	case value.KindBool:
		if lit.Kind != ast.LitBool {
			return value.Value{}, typeMismatch(kind, lit)
		}
		return value.Value{Kind: kind, Bool: lit.Bool}, nil
	case value.KindTinyInt, value.KindSmallInt, value.KindInt, value.KindBigInt, value.KindCounter, value.KindVarint:
		if lit.Kind != ast.LitInt {
			return value.Value{}, typeMismatch(kind, lit)
		}
		return value.Value{Kind: kind, Int64: lit.Int}, nil
	case value.KindFloat:
		f, err := asFloat(lit)
		if err != nil {
			return value.Value{}, err
		}
		return value.Value{Kind: kind, Float32: float32(f)}, nil
	case value.KindDouble:
		f, err := asFloat(lit)
		if err != nil {
			return value.Value{}, err
		}
		return value.Value{Kind: kind, Float64: f}, nil
	case value.KindAscii, value.KindText:
		if lit.Kind != ast.LitString {
			return value.Value{}, typeMismatch(kind, lit)
		}
		return value.Value{Kind: kind, Text: lit.Str}, nil
	case value.KindUUID, value.KindTimeUUID:
		if lit.Kind != ast.LitUUID {
			return value.Value{}, typeMismatch(kind, lit)
		}
		return value.Value{Kind: kind, UUID: lit.UUID}, nil
	case value.KindTimestamp, value.KindDate, value.KindTime:
		if lit.Kind != ast.LitInt {
			return value.Value{}, typeMismatch(kind, lit)
		}
		return value.Value{Kind: kind, Micros: lit.Int}, nil
	default:
		return value.Value{}, &errs.QuerySemantic{Message: fmt.Sprintf("predicate literal not supported against column type %s", kind)}
	}
}

func asFloat(lit ast.Literal) (float64, error) {
	switch lit.Kind {
	case ast.LitFloat:
		return lit.Flt, nil
	case ast.LitInt:
		return float64(lit.Int), nil
	default:
		return 0, &errs.QuerySemantic{Message: "expected numeric literal"}
	}
}

func typeMismatch(kind value.Kind, lit ast.Literal) error {
	return &errs.QuerySemantic{Message: fmt.Sprintf("literal does not match column type %s", kind)}
}
