package planner

import "math"

// CostModel holds the constants spec.md §4.10 uses to choose between access
// paths and grouping strategies. The field values are the specification's
// own defaults; callers needing different tuning construct their own
// CostModel rather than mutating DefaultCostModel's result in place.
type CostModel struct {
	RowScanCost         float64
	IndexLookupCost     float64
	SortCostPerRow      float64
	AggregateCostPerRow float64

	EqSelectivity    float64
	RangeSelectivity float64
	NotEqSelectivity float64

	// HashGroupThreshold is the estimated distinct group count above which
	// grouping switches from sort-based to hash-based.
	HashGroupThreshold int64
}

// DefaultCostModel returns the constants spec.md §4.10 specifies.
func DefaultCostModel() CostModel {
	return CostModel{
		RowScanCost:         1.0,
		IndexLookupCost:     0.1,
		SortCostPerRow:      0.01,
		AggregateCostPerRow: 0.005,
		EqSelectivity:       0.1,
		RangeSelectivity:    0.3,
		NotEqSelectivity:    0.9,
		HashGroupThreshold:  1024,
	}
}

// InSelectivity is the selectivity of an `IN (v1..vk)` predicate:
// min(0.01*k, 1), per spec.md §4.10.
func (c CostModel) InSelectivity(k int) float64 {
	return math.Min(0.01*float64(k), 1.0)
}
