package lifu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSolution = `{
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

func TestParseSolutionFileLayout(t *testing.T) {
	p, err := ParseSolution([]byte(sampleSolution))
	require.NoError(t, err)

	assert.Equal(t, "example_protocol", p.ProtocolID)
	assert.Equal(t, "example_transducer", p.TransducerID)
	assert.Equal(t, []float64{0, 0, 0, 0}, FirstRow(p.Delays))
	assert.Equal(t, []float64{1, 1, 1, 1}, FirstRow(p.Apodizations))
	assert.Equal(t, 500000.0, p.Pulse.Frequency)
	assert.Equal(t, 10, p.Sequence.PulseCount)
	assert.Equal(t, [3]float64{0, 0, 30}, p.Target.Position)
	require.Len(t, p.Foci, 1)
	assert.True(t, p.Approved)
	assert.Zero(t, p.Voltage)
}

func TestSolutionMarshalKeys(t *testing.T) {
	p := &SolutionPayload{ID: "x", Delays: [][]float64{{0.5}}, Voltage: 12}

	data, err := p.Marshal()
	require.NoError(t, err)

	s := string(data)
	for _, key := range []string{`"protocol_id"`, `"transducer_id"`, `"pulse_interval"`, `"pulse_train_count"`, `"delays":[[0.5]]`, `"voltage":12`} {
		assert.Contains(t, s, key)
	}
}

func TestParseSolutionInvalid(t *testing.T) {
	_, err := ParseSolution([]byte(`{"delays": "nope"}`))
	assert.Error(t, err)
}

func TestFirstRow(t *testing.T) {
	assert.Nil(t, FirstRow(nil))
	m := [][]float64{{1, 2}, {3}}
	row := FirstRow(m)
	row[0] = 9
	assert.Equal(t, 1.0, m[0][0])
}
