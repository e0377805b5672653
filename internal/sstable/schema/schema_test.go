package schema

import (
	"testing"

	"github.com/pmcfadin/cqlite-sub003/internal/sstable/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleSchema() *TableSchema {
	return &TableSchema{
		Keyspace:  "ks",
		Table:     "users",
		Partition: []Column{{Name: "id", Type: ColumnType{Kind: value.KindUUID}}},
		Clustering: []ClusteringColumn{
			{Column: Column{Name: "ts", Type: ColumnType{Kind: value.KindTimestamp}}, Direction: Desc},
		},
		Regular: []Column{
			{Name: "name", Type: ColumnType{Kind: value.KindText}},
			{Name: "tags", Type: ColumnType{Kind: value.KindSet, Elem: &ColumnType{Kind: value.KindText}}},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	s := simpleSchema()
	require.NoError(t, s.Validate())
}

func TestValidate_NoPartitionKey(t *testing.T) {
	s := simpleSchema()
	s.Partition = nil
	require.Error(t, s.Validate())
}

func TestValidate_DuplicateColumnName(t *testing.T) {
	s := simpleSchema()
	s.Regular = append(s.Regular, Column{Name: "id", Type: ColumnType{Kind: value.KindInt}})
	require.Error(t, s.Validate())
}

func TestColumnByName(t *testing.T) {
	s := simpleSchema()
	require.NoError(t, s.Validate())
	c := s.ColumnByName("name")
	require.NotNil(t, c)
	assert.Equal(t, value.KindText, c.Type.Kind)

	assert.Nil(t, s.ColumnByName("nope"))
}

func TestPartitionAndClusteringAccessors(t *testing.T) {
	s := simpleSchema()
	require.Len(t, s.PartitionKeyColumns(), 1)
	require.Len(t, s.ClusteringKeyColumns(), 1)
	assert.Equal(t, Desc, s.ClusteringKeyColumns()[0].Direction)
}

func TestUDTRegistry(t *testing.T) {
	s := simpleSchema()
	def := &UDTDef{
		Keyspace: "ks",
		Name:     "address",
		Fields: []Column{
			{Name: "street", Type: ColumnType{Kind: value.KindText}},
			{Name: "zip", Type: ColumnType{Kind: value.KindInt}},
		},
	}
	s.RegisterUDT(def)

	got := s.ResolveUDT("ks", "address")
	require.NotNil(t, got)
	assert.Equal(t, "address", got.Name)
	assert.Len(t, got.Fields, 2)

	assert.Nil(t, s.ResolveUDT("ks", "missing"))
}
