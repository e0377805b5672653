package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SelectStar(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events")
	require.NoError(t, err)
	assert.True(t, stmt.Star)
	assert.Equal(t, "events", stmt.Table)
}

func TestParse_ProjectionColumns(t *testing.T) {
	stmt, err := Parse("SELECT id, payload FROM events")
	require.NoError(t, err)
	require.Len(t, stmt.Projection, 2)
	assert.Equal(t, ExprColumn, stmt.Projection[0].Kind)
	assert.Equal(t, "id", stmt.Projection[0].Column)
	assert.Equal(t, "payload", stmt.Projection[1].Column)
}

func TestParse_QuotedVsUnquotedIdentifierCase(t *testing.T) {
	stmt, err := Parse(`SELECT "MixedCase", lower FROM events`)
	require.NoError(t, err)
	require.Len(t, stmt.Projection, 2)
	assert.Equal(t, "MixedCase", stmt.Projection[0].Column)
	assert.Equal(t, "lower", stmt.Projection[1].Column)

	stmt2, err := Parse("SELECT * FROM Events")
	require.NoError(t, err)
	assert.Equal(t, "events", stmt2.Table)
}

func TestParse_WhereEquality(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE id = 'alice'")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 1)
	c := stmt.Where[0]
	assert.Equal(t, "id", c.Column)
	assert.Equal(t, OpEq, c.Op)
	assert.Equal(t, LitString, c.Value.Kind)
	assert.Equal(t, "alice", c.Value.Str)
}

func TestParse_WhereMultipleAnd(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE id = 'alice' AND ts > 100")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 2)
	assert.Equal(t, OpEq, stmt.Where[0].Op)
	assert.Equal(t, OpGt, stmt.Where[1].Op)
	assert.Equal(t, int64(100), stmt.Where[1].Value.Int)
}

func TestParse_WhereIn(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE id IN ('alice', 'bob', 'carol')")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 1)
	c := stmt.Where[0]
	assert.Equal(t, OpIn, c.Op)
	require.Len(t, c.Values, 3)
	assert.Equal(t, "bob", c.Values[1].Str)
}

func TestParse_WhereBetween(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE ts BETWEEN 10 AND 20")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 1)
	c := stmt.Where[0]
	assert.Equal(t, OpBetween, c.Op)
	assert.Equal(t, int64(10), c.Low.Int)
	assert.Equal(t, int64(20), c.High.Int)
}

func TestParse_GroupByOrderByLimit(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events GROUP BY region ORDER BY ts DESC LIMIT 50")
	require.NoError(t, err)
	assert.Equal(t, []string{"region"}, stmt.GroupBy)
	require.Len(t, stmt.OrderBy, 1)
	assert.Equal(t, "ts", stmt.OrderBy[0].Column)
	assert.Equal(t, OrderDesc, stmt.OrderBy[0].Direction)
	assert.True(t, stmt.HasLimit)
	assert.Equal(t, 50, stmt.Limit)
}

func TestParse_AllowFiltering(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE payload = 'x' ALLOW FILTERING")
	require.NoError(t, err)
	assert.True(t, stmt.AllowFiltering)
}

func TestParse_AggregateWithDistinct(t *testing.T) {
	stmt, err := Parse("SELECT COUNT(DISTINCT id) FROM events")
	require.NoError(t, err)
	require.Len(t, stmt.Projection, 1)
	p := stmt.Projection[0]
	assert.Equal(t, ExprAggregate, p.Kind)
	assert.Equal(t, AggCount, p.AggFn)
	assert.True(t, p.AggDistinct)
	require.NotNil(t, p.AggArg)
	assert.Equal(t, "id", p.AggArg.Column)
}

func TestParse_CountStar(t *testing.T) {
	stmt, err := Parse("SELECT COUNT(*) FROM events")
	require.NoError(t, err)
	require.Len(t, stmt.Projection, 1)
	p := stmt.Projection[0]
	assert.Equal(t, ExprAggregate, p.Kind)
	assert.Equal(t, AggCount, p.AggFn)
	assert.Nil(t, p.AggArg)
}

func TestParse_AliasedProjection(t *testing.T) {
	stmt, err := Parse("SELECT SUM(amount) AS total FROM events")
	require.NoError(t, err)
	require.Len(t, stmt.Projection, 1)
	p := stmt.Projection[0]
	assert.Equal(t, ExprAlias, p.Kind)
	assert.Equal(t, "total", p.Alias)
	require.NotNil(t, p.Inner)
	assert.Equal(t, ExprAggregate, p.Inner.Kind)
	assert.Equal(t, AggSum, p.Inner.AggFn)
}

func TestParse_StringLiteralDoubledQuoteEscape(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE payload = 'it''s here'")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 1)
	assert.Equal(t, "it's here", stmt.Where[0].Value.Str)
}

func TestParse_FloatLiteral(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE score = 3.14")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 1)
	assert.Equal(t, LitFloat, stmt.Where[0].Value.Kind)
	assert.InDelta(t, 3.14, stmt.Where[0].Value.Flt, 1e-9)
}

func TestParse_BoolAndNullLiterals(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE active = true AND payload != null")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 2)
	assert.Equal(t, LitBool, stmt.Where[0].Value.Kind)
	assert.True(t, stmt.Where[0].Value.Bool)
	assert.Equal(t, LitNull, stmt.Where[1].Value.Kind)
	assert.Equal(t, OpNe, stmt.Where[1].Op)
}

func TestParse_NotEqualVariants(t *testing.T) {
	stmt1, err := Parse("SELECT * FROM events WHERE id != 'a'")
	require.NoError(t, err)
	assert.Equal(t, OpNe, stmt1.Where[0].Op)

	stmt2, err := Parse("SELECT * FROM events WHERE id <> 'a'")
	require.NoError(t, err)
	assert.Equal(t, OpNe, stmt2.Where[0].Op)
}

func TestParse_UUIDLiteral(t *testing.T) {
	stmt, err := Parse("SELECT * FROM events WHERE id = 123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, err)
	require.Len(t, stmt.Where, 1)
	assert.Equal(t, LitUUID, stmt.Where[0].Value.Kind)
	assert.Equal(t, byte(0x12), stmt.Where[0].Value.UUID[6])
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("SELECT FROM events")
	require.Error(t, err)
}

func TestParse_TrailingGarbageIsError(t *testing.T) {
	_, err := Parse("SELECT * FROM events LIMIT 10 extra")
	require.Error(t, err)
}
