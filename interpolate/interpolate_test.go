package interpolate

import (
	"math"
	"testing"

	"github.com/4D-STAR/opat-core/internal/errs"
	"github.com/4D-STAR/opat-core/model"
	"github.com/4D-STAR/opat-core/paramkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGridFile constructs a File with one card per (x, z) pair, each
// holding a single-cell "value" table equal to x+z, so linear interpolation
// has an exact, easily checked answer everywhere inside the hull.
func buildGridFile(t *testing.T, xs, zs []float64) *model.File {
	t.Helper()
	var cards []*model.DataCard
	for _, x := range xs {
		for _, z := range zs {
			key, err := paramkey.New([]float64{x, z}, 8)
			require.NoError(t, err)
			table, err := model.NewTable("value", []float64{0}, []float64{0}, 1, []float64{x + z})
			require.NoError(t, err)
			cards = append(cards, model.NewDataCard(key, map[string]*model.Table{"value": table}, []string{"value"}))
		}
	}
	f, err := model.NewFile(1, 2, 8, cards)
	require.NoError(t, err)
	return f
}

func TestEngine_InterpolateAtVertex(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5}, []float64{0.0, 0.06, 0.10})
	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	table, err := e.Interpolate("value", []float64{0.35, 0.06})
	require.NoError(t, err)
	cell, err := table.At(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.41, cell[0], 1e-9)
}

func TestEngine_InterpolateAtMidpoint(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5}, []float64{0.0, 0.06, 0.10})
	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	table, err := e.Interpolate("value", []float64{0.275, 0.03})
	require.NoError(t, err)
	cell, err := table.At(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.305, cell[0], 1e-6)
}

func TestEngine_OutOfRange(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5}, []float64{0.0, 0.06, 0.10})
	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	_, err = e.Interpolate("value", []float64{5.0, 5.0})
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestEngine_DimensionMismatch(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5}, []float64{0.0, 0.06, 0.10})
	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	_, err = e.Interpolate("value", []float64{0.3})
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

func TestEngine_UnknownTag(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5}, []float64{0.0, 0.06, 0.10})
	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	_, err = e.Interpolate("missing", []float64{0.3, 0.03})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEngine_WeightsSumToOne(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5, 0.7}, []float64{0.0, 0.00005, 0.0001, 0.06})
	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	table, err := e.Interpolate("value", []float64{0.42, 0.00003})
	require.NoError(t, err)
	cell, err := table.At(0, 0)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(cell[0]))
	// value is x+z, so weights that sum to one reproduce it exactly.
	assert.InDelta(t, 0.42003, cell[0], 1e-9)
}

func TestEngine_InterpolatePreservesNaN(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35}, []float64{0.0, 0.06})

	nanKey, err := paramkey.New([]float64{0.35, 0.06}, 8)
	require.NoError(t, err)
	card, ok := f.Card(nanKey)
	require.True(t, ok)
	table, ok := card.Table("value")
	require.True(t, ok)
	table.Data()[0] = math.NaN()

	e, err := NewEngine(f, Linear)
	require.NoError(t, err)

	result, err := e.Interpolate("value", []float64{0.35, 0.06})
	require.NoError(t, err)
	cell, err := result.At(0, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(cell[0]))
}

func TestNewEngine_RejectsNonLinearMode(t *testing.T) {
	f := buildGridFile(t, []float64{0.2, 0.35, 0.5}, []float64{0.0, 0.06, 0.10})
	_, err := NewEngine(f, Mode(99))
	assert.ErrorIs(t, err, errs.ErrUnimplemented)
}
