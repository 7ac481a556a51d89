package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementPositionsCentered(t *testing.T) {
	tr := Transducer{Rows: 2, Cols: 3, PitchMM: 2}

	pos, err := tr.ElementPositions()

	require.NoError(t, err)
	require.Len(t, pos, 6)
	assert.InDelta(t, -0.002, pos[0][0], 1e-12)
	assert.InDelta(t, -0.001, pos[0][1], 1e-12)
	assert.InDelta(t, 0.002, pos[5][0], 1e-12)
	assert.InDelta(t, 0.001, pos[5][1], 1e-12)

	var sx, sy float64
	for _, p := range pos {
		sx += p[0]
		sy += p[1]
		assert.Equal(t, 0.0, p[2])
	}
	assert.InDelta(t, 0, sx, 1e-12)
	assert.InDelta(t, 0, sy, 1e-12)
}

func TestElementPositionsInvalid(t *testing.T) {
	_, err := Transducer{Rows: 0, Cols: 8, PitchMM: 1}.ElementPositions()
	assert.Error(t, err)

	_, err = Transducer{Rows: 8, Cols: 8}.ElementPositions()
	assert.Error(t, err)
}

func TestFocusDelaysSymmetricOnAxis(t *testing.T) {
	tr := DefaultTransducer()
	elements, err := tr.ElementPositions()
	require.NoError(t, err)

	delays, err := FocusDelays([3]float64{0, 0, 0.03}, elements)
	require.NoError(t, err)
	require.Len(t, delays, 64)

	// Зеркальные элементы относительно центра имеют равные задержки.
	for i := range delays {
		assert.InDelta(t, delays[i], delays[len(delays)-1-i], 1e-15)
	}

	// Углы дальше всего от фокуса на оси.
	for _, corner := range []int{0, 7, 56, 63} {
		assert.InDelta(t, 0, delays[corner], 1e-15)
	}

	for _, d := range delays {
		assert.GreaterOrEqual(t, d, 0.0)
	}
	// Центральные элементы задерживаются сильнее угловых.
	assert.Greater(t, delays[27], delays[0])
}

func TestFocusDelaysFarthestIsZero(t *testing.T) {
	elements := [][3]float64{{-0.01, 0, 0}, {0, 0, 0}, {0.02, 0, 0}}

	delays, err := FocusDelays([3]float64{0, 0, 0.01}, elements)

	require.NoError(t, err)
	assert.Equal(t, 0.0, delays[2])
	assert.Greater(t, delays[1], delays[0])
}

func TestFocusDelaysEmpty(t *testing.T) {
	_, err := FocusDelays([3]float64{}, nil)
	assert.Error(t, err)
}

func TestUniformApodization(t *testing.T) {
	assert.Equal(t, []float64{1, 1, 1}, UniformApodization(3))
	assert.Empty(t, UniformApodization(0))
}
