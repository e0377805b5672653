package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
)

// jsonColumn is the on-disk shape of one column in a schema description
// file. Type names are CQL primitive type names (spec.md §4.2); the CLI's
// schema source is a sidecar file rather than a CREATE TABLE parser, since
// DDL parsing is outside this engine's read-only scope (spec.md §1).
type jsonColumn struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
}

type jsonSchema struct {
	Keyspace   string       `json:"keyspace"`
	Table      string       `json:"table"`
	Partition  []jsonColumn `json:"partition"`
	Clustering []jsonColumn `json:"clustering"`
	Regular    []jsonColumn `json:"regular"`
}

// LoadJSON reads a schema description file (the CLI's `schema.json`
// sidecar alongside an SSTable generation) and builds a validated,
// indexed TableSchema from it.
func LoadJSON(path string) (*TableSchema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	var js jsonSchema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", path, err)
	}

	s := &TableSchema{Keyspace: js.Keyspace, Table: js.Table}
	for _, c := range js.Partition {
		col, err := toColumn(c)
		if err != nil {
			return nil, err
		}
		s.Partition = append(s.Partition, col)
	}
	for _, c := range js.Clustering {
		col, err := toColumn(c)
		if err != nil {
			return nil, err
		}
		dir := Asc
		if c.Direction == "DESC" {
			dir = Desc
		}
		s.Clustering = append(s.Clustering, ClusteringColumn{Column: col, Direction: dir})
	}
	for _, c := range js.Regular {
		col, err := toColumn(c)
		if err != nil {
			return nil, err
		}
		s.Regular = append(s.Regular, col)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.Index()
	return s, nil
}

func toColumn(c jsonColumn) (Column, error) {
	kind, ok := value.ParseKind(c.Type)
	if !ok {
		return Column{}, fmt.Errorf("schema: column %q has unrecognized type %q", c.Name, c.Type)
	}
	return Column{Name: c.Name, Type: ColumnType{Kind: kind}}, nil
}
