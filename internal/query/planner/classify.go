package planner

import (
	"github.com/pmcfadin/cqlite-sub003/internal/query/ast"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/schema"
	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// classifyPredicates tags every WHERE comparison per spec.md §4.10 rule 1,
// then enforces the clustering-range contiguity rule across the set.
func classifyPredicates(where []ast.Cmp, s *schema.TableSchema) ([]ClassifiedPredicate, error) {
	partitionPos := make(map[string]int, len(s.PartitionKeyColumns()))
	for i, c := range s.PartitionKeyColumns() {
		partitionPos[c.Name] = i
	}
	clustering := s.ClusteringKeyColumns()
	clusterPos := make(map[string]int, len(clustering))
	for i, c := range clustering {
		clusterPos[c.Name] = i
	}

	out := make([]ClassifiedPredicate, len(where))
	for i, cmp := range where {
		col := s.ColumnByName(cmp.Column)
		cp := ClassifiedPredicate{Cmp: cmp, Column: cmp.Column, Class: Residual}

		if _, ok := partitionPos[cmp.Column]; ok {
			classified, err := classifyKeyPredicate(cmp, col.Type.Kind, true)
			if err != nil {
				return nil, err
			}
			out[i] = classified
			continue
		}
		if _, ok := clusterPos[cmp.Column]; ok {
			classified, err := classifyKeyPredicate(cmp, col.Type.Kind, false)
			if err != nil {
				return nil, err
			}
			out[i] = classified
			continue
		}
		out[i] = cp
	}

	enforceClusteringContiguity(out, clusterPos)
	return out, nil
}

func classifyKeyPredicate(cmp ast.Cmp, kind value.Kind, partitionKey bool) (ClassifiedPredicate, error) {
	cp := ClassifiedPredicate{Cmp: cmp, Column: cmp.Column}
	switch cmp.Op {
	case ast.OpEq:
		v, err := literalToValue(cmp.Value, kind)
		if err != nil {
			return ClassifiedPredicate{}, err
		}
		cp.Values = []value.Value{v}
		if partitionKey {
			cp.Class = PartitionEq
		} else {
			cp.Class = ClusteringEq
		}
	case ast.OpIn:
		vs, err := literalsToValues(cmp.Values, kind)
		if err != nil {
			return ClassifiedPredicate{}, err
		}
		cp.Values = vs
		if partitionKey {
			cp.Class = PartitionIn
		} else {
			cp.Class = ClusteringIn
		}
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if partitionKey {
			cp.Class = Residual
			return cp, nil
		}
		v, err := literalToValue(cmp.Value, kind)
		if err != nil {
			return ClassifiedPredicate{}, err
		}
		cp.Values = []value.Value{v}
		cp.Class = ClusteringRange
	case ast.OpBetween:
		if partitionKey {
			cp.Class = Residual
			return cp, nil
		}
		lo, err := literalToValue(cmp.Low, kind)
		if err != nil {
			return ClassifiedPredicate{}, err
		}
		hi, err := literalToValue(cmp.High, kind)
		if err != nil {
			return ClassifiedPredicate{}, err
		}
		cp.Values = []value.Value{lo, hi}
		cp.Class = ClusteringRange
	default:
		cp.Class = Residual
	}
	return cp, nil
}

func literalsToValues(lits []ast.Literal, kind value.Kind) ([]value.Value, error) {
	out := make([]value.Value, 0, len(lits))
	for _, l := range lits {
		v, err := literalToValue(l, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// enforceClusteringContiguity demotes clustering predicates that fall
// outside the longest contiguous prefix of clustering columns, with at
// most one trailing range predicate, per spec.md §4.10 rule 1.
func enforceClusteringContiguity(out []ClassifiedPredicate, clusterPos map[string]int) {
	posToIdx := make(map[int]int, len(clusterPos))
	for i, cp := range out {
		switch cp.Class {
		case ClusteringEq, ClusteringIn, ClusteringRange:
			posToIdx[clusterPos[cp.Column]] = i
		}
	}

	maxPrefix := -1
	for pos := 0; ; pos++ {
		idx, ok := posToIdx[pos]
		if !ok {
			break
		}
		maxPrefix = pos
		if out[idx].Class == ClusteringRange {
			break // a range predicate must be the last element of the accepted prefix
		}
	}

	for pos, idx := range posToIdx {
		if pos > maxPrefix {
			out[idx].Class = Residual
			out[idx].Values = nil
		}
	}
}

// selectAccessPath implements spec.md §4.10 rule 2. RangeScan covers a
// partition whose key is fully resolved but whose clustering columns are
// only partially pinned down (an Eq/In prefix with an optional trailing
// range); PointLookup requires every clustering column to be pinned to a
// single value as well.
func selectAccessPath(classified []ClassifiedPredicate, s *schema.TableSchema) (AccessPath, []ClassifiedPredicate, []ClassifiedPredicate) {
	partitionByName := make(map[string]ClassifiedPredicate)
	for _, c := range classified {
		if c.Class == PartitionEq || c.Class == PartitionIn {
			partitionByName[c.Column] = c
		}
	}

	var partitionPreds []ClassifiedPredicate
	for _, pc := range s.PartitionKeyColumns() {
		cp, ok := partitionByName[pc.Name]
		if !ok {
			return TableScan, nil, nil
		}
		partitionPreds = append(partitionPreds, cp)
	}

	clusteringPreds := clusteringKeyPredicates(classified)
	clustering := s.ClusteringKeyColumns()
	if len(clusteringPreds) == len(clustering) && allClusteringEq(clusteringPreds) {
		return PointLookup, partitionPreds, clusteringPreds
	}
	return RangeScan, partitionPreds, clusteringPreds
}

func clusteringKeyPredicates(classified []ClassifiedPredicate) []ClassifiedPredicate {
	var out []ClassifiedPredicate
	for _, c := range classified {
		switch c.Class {
		case ClusteringEq, ClusteringIn, ClusteringRange:
			out = append(out, c)
		}
	}
	return out
}

func allClusteringEq(preds []ClassifiedPredicate) bool {
	for _, p := range preds {
		if p.Class != ClusteringEq {
			return false
		}
	}
	return true
}

// buildScanStep materializes the access path and its predicates into a
// ScanStep, computing the partition key tuple cross-product (spec.md §4.10
// treats PartitionIn as expanding to one lookup per value) and the
// clustering range bounds.
func buildScanStep(path AccessPath, partitionPreds, clusteringPreds []ClassifiedPredicate, s *schema.TableSchema) *ScanStep {
	step := &ScanStep{Path: path}
	if path == TableScan {
		return step
	}

	step.PartitionKeyTuples = cartesianProduct(partitionPreds)
	step.ClusteringPredicates = clusteringPreds

	for _, cp := range clusteringPreds {
		switch cp.Class {
		case ClusteringEq:
			step.ClusteringLow = append(step.ClusteringLow, cp.Values[0])
			step.ClusteringHigh = append(step.ClusteringHigh, cp.Values[0])
		case ClusteringRange:
			setRangeBound(step, cp)
		}
	}
	if len(clusteringPreds) > 0 {
		step.LowInclusive = true
		step.HighInclusive = true
		for _, cp := range clusteringPreds {
			if cp.Class != ClusteringRange {
				continue
			}
			switch cp.Cmp.Op {
			case ast.OpLt:
				step.HighInclusive = false
			case ast.OpGt:
				step.LowInclusive = false
			}
		}
	}
	return step
}

func setRangeBound(step *ScanStep, cp ClassifiedPredicate) {
	switch cp.Cmp.Op {
	case ast.OpLt, ast.OpLe:
		step.ClusteringHigh = append(step.ClusteringHigh, cp.Values[0])
	case ast.OpGt, ast.OpGe:
		step.ClusteringLow = append(step.ClusteringLow, cp.Values[0])
	case ast.OpBetween:
		step.ClusteringLow = append(step.ClusteringLow, cp.Values[0])
		step.ClusteringHigh = append(step.ClusteringHigh, cp.Values[1])
	}
}

// cartesianProduct expands a set of PartitionEq/PartitionIn predicates
// (one per partition column) into the full list of partition key tuples to
// look up.
func cartesianProduct(preds []ClassifiedPredicate) [][]value.Value {
	if len(preds) == 0 {
		return nil
	}
	tuples := [][]value.Value{{}}
	for _, p := range preds {
		var next [][]value.Value
		for _, t := range tuples {
			for _, v := range p.Values {
				tuple := make([]value.Value, len(t), len(t)+1)
				copy(tuple, t)
				tuple = append(tuple, v)
				next = append(next, tuple)
			}
		}
		tuples = next
	}
	return tuples
}
