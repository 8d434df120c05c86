package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nan() float64 { return math.NaN() }

func wageFixture() *Table {
	return MustTable(
		StringColumn("region", "Tokyo", "Osaka", "Tokyo", "Osaka"),
		IntColumn("period", 2019, 2019, 2020, 2020),
		StringColumn("age", "all", "all", "20-24", "all"),
		FloatColumn("wage", 500, 400, 250, nan()),
	)
}

func TestFilter(t *testing.T) {
	table := wageFixture()

	out, err := Filter(table, "region", "Tokyo")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = Filter(table, "period", 2019)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = Filter(table, "period", "2020")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len(), "string form matches int cells")

	out, err = Filter(table, "region", "Tokyo", "Osaka")
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())

	out, err = Filter(table, "wage", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestFilter_Idempotent(t *testing.T) {
	table := wageFixture()

	once, err := Filter(table, "age", "all")
	require.NoError(t, err)
	twice, err := Filter(once, "age", "all")
	require.NoError(t, err)

	assert.Equal(t, once.Records(), twice.Records())
}

func TestFilter_Commutative(t *testing.T) {
	table := wageFixture()

	a, err := Filter(table, "age", "all")
	require.NoError(t, err)
	a, err = Filter(a, "period", 2020)
	require.NoError(t, err)

	b, err := Filter(table, "period", 2020)
	require.NoError(t, err)
	b, err = Filter(b, "age", "all")
	require.NoError(t, err)

	assert.Equal(t, a.Records(), b.Records())
}

func TestFilter_NoMatchIsEmpty(t *testing.T) {
	out, err := Filter(wageFixture(), "region", "Fukuoka")
	require.NoError(t, err)
	assert.True(t, out.Empty())
	assert.Equal(t, wageFixture().Columns(), out.Columns())
}

func TestExclude(t *testing.T) {
	out, err := Exclude(wageFixture(), "age", "all")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"Tokyo", int64(2020), "20-24", 250.0}}, out.Records())

	// nulls are kept by Exclude, never matched by Filter
	out, err = Exclude(wageFixture(), "wage", 500)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	out, err = Filter(wageFixture(), "wage", 400, 250)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestFilter_MissingColumn(t *testing.T) {
	_, err := Filter(wageFixture(), "industry", "x")
	assert.ErrorIs(t, err, ErrSchema)
	_, err = Exclude(wageFixture(), "industry", "x")
	assert.ErrorIs(t, err, ErrSchema)
}
