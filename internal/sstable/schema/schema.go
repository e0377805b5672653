// Package schema holds the in-memory description of a table: partition and
// clustering key columns, regular columns, and the keyspace-scoped UDT
// registry (spec.md §4.4). A TableSchema is built once per open table and
// shared read-only by all readers (spec.md §3, "Ownership and lifecycle").
package schema

import (
	"fmt"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// Direction is a clustering column's sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ColumnType describes a column's CQL type: a Kind plus, for collections,
// tuples, and UDTs, the nested structure needed to interpret it.
type ColumnType struct {
	Kind     value.Kind
	Frozen   bool
	Elem     *ColumnType   // list<T>, set<T>
	Key, Val *ColumnType   // map<K,V>
	Fields   []ColumnType  // tuple<T1..Tn>
	UDTName  string        // udt{type_name}
	UDTKS    string        // keyspace the UDT is registered under
}

// Column is one named, typed column in a table.
type Column struct {
	Name string
	Type ColumnType
}

// ClusteringColumn is a clustering key column with its sort direction.
type ClusteringColumn struct {
	Column
	Direction Direction
}

// UDTDef is a user-defined type's field list, in declaration order.
type UDTDef struct {
	Keyspace string
	Name     string
	Fields   []Column
}

// TableSchema is the full description of one table (spec.md §3).
type TableSchema struct {
	Keyspace   string
	Table      string
	Partition  []Column
	Clustering []ClusteringColumn
	Regular    []Column

	// UDTRegistry maps "keyspace.type_name" to its definition. UDT
	// definitions are held in this arena owned by the schema, with columns
	// referring to them by name rather than by reference, per the redesign
	// note in spec.md §9 on cyclic/shared UDT definitions.
	UDTRegistry map[string]*UDTDef

	byName map[string]*Column
}

func udtKey(keyspace, name string) string { return keyspace + "." + name }

// Validate checks the structural invariants spec.md §3 and §4.4 require:
// at least one partition key column and no duplicate column names across
// partition/clustering/regular. It neither builds nor checks the name index
// (see Index).
func (s *TableSchema) Validate() error {
	if len(s.Partition) == 0 {
		return fmt.Errorf("schema: table %s.%s has no partition key columns", s.Keyspace, s.Table)
	}
	seen := make(map[string]struct{})
	check := func(name string) error {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("schema: duplicate column name %q", name)
		}
		seen[name] = struct{}{}
		return nil
	}
	for _, c := range s.Partition {
		if err := check(c.Name); err != nil {
			return err
		}
	}
	for _, c := range s.Clustering {
		if err := check(c.Name); err != nil {
			return err
		}
	}
	for _, c := range s.Regular {
		if err := check(c.Name); err != nil {
			return err
		}
	}
	return nil
}

// Index builds the byName lookup table. Called once after construction.
func (s *TableSchema) Index() {
	s.byName = make(map[string]*Column, len(s.Partition)+len(s.Clustering)+len(s.Regular))
	for i := range s.Partition {
		s.byName[s.Partition[i].Name] = &s.Partition[i]
	}
	for i := range s.Clustering {
		s.byName[s.Clustering[i].Name] = &s.Clustering[i].Column
	}
	for i := range s.Regular {
		s.byName[s.Regular[i].Name] = &s.Regular[i]
	}
}

// ColumnByName returns the named column, or nil if no such column exists.
func (s *TableSchema) ColumnByName(name string) *Column {
	if s.byName == nil {
		s.Index()
	}
	return s.byName[name]
}

// PartitionKeyColumns returns the partition key columns in declared order.
func (s *TableSchema) PartitionKeyColumns() []Column { return s.Partition }

// ClusteringKeyColumns returns the clustering key columns, with direction,
// in declared order.
func (s *TableSchema) ClusteringKeyColumns() []ClusteringColumn { return s.Clustering }

// ResolveUDT looks up a user-defined type by keyspace and name.
func (s *TableSchema) ResolveUDT(keyspace, name string) *UDTDef {
	return s.UDTRegistry[udtKey(keyspace, name)]
}

// RegisterUDT adds a user-defined type definition to the registry.
func (s *TableSchema) RegisterUDT(def *UDTDef) {
	if s.UDTRegistry == nil {
		s.UDTRegistry = make(map[string]*UDTDef)
	}
	s.UDTRegistry[udtKey(def.Keyspace, def.Name)] = def
}
