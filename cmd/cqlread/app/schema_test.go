package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOrdersFixtureSchema(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nb-1-big-Data.db"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.json"), []byte(`{
		"keyspace": "shop",
		"table": "orders",
		"partition": [{"name": "customer", "type": "text"}],
		"clustering": [{"name": "placed_at", "type": "bigint", "direction": "ASC"}],
		"regular": [
			{"name": "amount", "type": "bigint"},
			{"name": "status", "type": "text"}
		]
	}`), 0o644))
}

func TestSchemaCommand_PrintsResolvedSchema(t *testing.T) {
	dir := t.TempDir()
	writeOrdersFixtureSchema(t, dir)

	cmd := newSchemaCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "keyspace: shop")
	assert.Contains(t, got, "table:    orders")
	assert.Contains(t, got, "customer text")
	assert.Contains(t, got, "placed_at bigint ASC")
	assert.Contains(t, got, "amount bigint")
	assert.Contains(t, got, "status text")
}

func TestSchemaCommand_MissingDirFails(t *testing.T) {
	cmd := newSchemaCmd(viper.New())
	cmd.SetArgs([]string{t.TempDir()})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}
