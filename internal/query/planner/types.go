// Package planner turns a parsed SELECT AST, a table schema, and a
// statistics record into an ordered list of execution steps (spec.md
// §4.10). It performs the semantic validation the parser (C9) defers:
// column existence and the predicate-shape rules that decide access path.
package planner

import (
	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// PredicateClass tags how a WHERE comparison was classified against the
// table's key structure.
type PredicateClass int

const (
	PartitionEq PredicateClass = iota
	PartitionIn
	ClusteringEq
	ClusteringIn
	ClusteringRange
	Residual
)

func (c PredicateClass) String() string {
	switch c {
	case PartitionEq:
		return "PartitionEq"
	case PartitionIn:
		return "PartitionIn"
	case ClusteringEq:
		return "ClusteringEq"
	case ClusteringIn:
		return "ClusteringIn"
	case ClusteringRange:
		return "ClusteringRange"
	case Residual:
		return "Residual"
	default:
		return "?"
	}
}

// ClassifiedPredicate pairs a parsed comparison with its classification and,
// for key predicates, the decoded literal values ready to drive a lookup.
type ClassifiedPredicate struct {
	Cmp    ast.Cmp
	Class  PredicateClass
	Column string

	// Values holds the decoded comparison value(s): one entry for Eq and
	// single-sided range bounds, two (low, high) for BETWEEN, many for In.
	// Populated only for non-Residual classes.
	Values []value.Value
}

// AccessPath is the chosen strategy for locating candidate rows.
type AccessPath int

const (
	PointLookup AccessPath = iota
	RangeScan
	TableScan
)

func (a AccessPath) String() string {
	switch a {
	case PointLookup:
		return "PointLookup"
	case RangeScan:
		return "RangeScan"
	case TableScan:
		return "TableScan"
	default:
		return "?"
	}
}

// GroupStrategy is how the Aggregate step accumulates per-group state.
type GroupStrategy int

const (
	NoGrouping GroupStrategy = iota
	SortGrouping
	HashGrouping
)

// ScanStep drives the SSTable reader (spec.md §4.11's Scan step).
type ScanStep struct {
	Path AccessPath

	// PartitionKeyTuples holds the partition key column value tuple(s) to
	// look up, one tuple per partition (more than one when a partition
	// column predicate was PartitionIn). Encoding the tuple into the wire
	// partition key bytes is the executor's job, since it owns the value
	// codec.
	PartitionKeyTuples [][]value.Value

	// ClusteringLow/ClusteringHigh bound a RangeScan within a partition;
	// nil means unbounded on that side. Only meaningful when Path is
	// RangeScan.
	ClusteringLow, ClusteringHigh []value.Value
	LowInclusive, HighInclusive   bool

	// ClusteringPredicates carries the classified clustering predicates
	// verbatim (including ClusteringIn, which a Low/High bound pair cannot
	// express) so the executor can test each decoded clustering key of the
	// partition against them, IN lists included.
	ClusteringPredicates []ClassifiedPredicate
}

// FilterStep evaluates residual predicates row by row.
type FilterStep struct {
	Residual []ClassifiedPredicate
}

// AggregateStep accumulates per-group state for aggregate projections
// and/or GROUP BY.
type AggregateStep struct {
	GroupBy    []string
	Strategy   GroupStrategy
	Aggregates []ast.Expr // the ExprAggregate / ExprAlias(ExprAggregate) projections
}

// SortStep orders buffered rows by a key tuple.
type SortStep struct {
	Terms []ast.OrderTerm
}

// LimitStep caps the number of rows the pipeline emits.
type LimitStep struct {
	N int
}

// ProjectStep evaluates the final projection expressions.
type ProjectStep struct {
	Exprs []ast.Expr
	Star  bool
}

// Step is one stage of a Plan. Exactly one of the typed fields is set.
type Step struct {
	Scan      *ScanStep
	Filter    *FilterStep
	Aggregate *AggregateStep
	Sort      *SortStep
	Limit     *LimitStep
	Project   *ProjectStep
}

// Plan is the ordered list of steps the executor runs, per spec.md §4.10's
// seven-step construction.
type Plan struct {
	Steps          []Step
	EstimatedCost  float64
	AllowFiltering bool
}
