package executor

import (
	"sort"

	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/query/planner"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// runSort stable-sorts rows by the ORDER BY term list, applying each term
// in sequence as a tie-breaker for the ones before it (spec.md §4.11's
// Sort step). Nulls sort last under ASC and first under DESC.
func (e *Executor) runSort(rows []execRow, s *planner.SortStep) []execRow {
	out := make([]execRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		for _, term := range s.Terms {
			vi, oki := e.getValue(out[i], term.Column)
			vj, okj := e.getValue(out[j], term.Column)
			if !oki {
				vi = value.NullValue(value.KindText)
			}
			if !okj {
				vj = value.NullValue(value.KindText)
			}
			c := compareWithNullOrdering(vi, vj, term.Direction)
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return out
}

func compareWithNullOrdering(a, b value.Value, dir ast.OrderDirection) int {
	switch {
	case a.Null && b.Null:
		return 0
	case a.Null:
		if dir == ast.OrderAsc {
			return 1
		}
		return -1
	case b.Null:
		if dir == ast.OrderAsc {
			return -1
		}
		return 1
	}
	c := value.Compare(a, b)
	if dir == ast.OrderDesc {
		c = -c
	}
	return c
}
