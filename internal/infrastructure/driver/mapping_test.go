package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifuconsole/internal/domain/models"
)

const solutionFile = `{
  "id": "solution",
  "name": "Solution",
  "protocol_id": "example_protocol",
  "transducer_id": "example_transducer",
  "delays": [[0, 0, 0, 0]],
  "apodizations": [[1, 1, 1, 1]],
  "pulse": {"frequency": 500000, "amplitude": 1, "duration": 0.00002},
  "sequence": {"pulse_interval": 0.1, "pulse_count": 10, "pulse_train_interval": 1, "pulse_train_count": 1},
  "target": {"position": [0, 0, 30], "units": "mm"},
  "foci": [{"position": [0, 0, 30], "units": "mm"}],
  "approved": true
}`

func TestLoadSolutionFile(t *testing.T) {
	s, err := LoadSolutionFile([]byte(solutionFile), 4)

	require.NoError(t, err)
	assert.Equal(t, "Solution", s.Name)
	assert.Equal(t, []float64{0, 0, 0, 0}, s.Delays)
	assert.Equal(t, []float64{1, 1, 1, 1}, s.Apodizations)
	assert.Equal(t, models.Point{Position: [3]float64{0, 0, 30}, Units: "mm"}, s.Target)
	assert.Equal(t, 10, s.Sequence.PulseCount)
}

func TestLoadSolutionFileWrongElementCount(t *testing.T) {
	_, err := LoadSolutionFile([]byte(solutionFile), 64)

	assert.ErrorIs(t, err, models.ErrInvalidSolution)
}

func TestConvertSolutionToPayloadCopies(t *testing.T) {
	s := &models.Solution{
		ID:           "id",
		Delays:       []float64{1, 2},
		Apodizations: []float64{1, 1},
		Foci:         []models.Point{{Position: [3]float64{1, 2, 3}, Units: "mm"}},
		Voltage:      24,
	}

	p := ConvertSolutionToPayload(s)
	p.Delays[0][0] = 99

	assert.Equal(t, 1.0, s.Delays[0])
	require.Len(t, p.Foci, 1)
	assert.Equal(t, [3]float64{1, 2, 3}, p.Foci[0].Position)
	assert.Equal(t, 24.0, p.Voltage)
	assert.Nil(t, ConvertSolutionToPayload(nil))
}

func TestEncodeSolutionFileRoundTrip(t *testing.T) {
	src, err := LoadSolutionFile([]byte(solutionFile), 4)
	require.NoError(t, err)
	src.Delays = []float64{0, 1e-6, 2e-6, 0}
	src.Voltage = 12

	data, err := EncodeSolutionFile(src)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pulse_train_count"`)

	got, err := LoadSolutionFile(data, 4)

	require.NoError(t, err)
	assert.Equal(t, src, got)
}
