package status

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifuconsole/internal/infrastructure/logger"
)

func TestParseFullLine(t *testing.T) {
	p := NewParser(logger.Nop())

	snap := p.Parse("STATUS:RUNNING,MODE:BURST,PULSE_TRAIN:[3/10],PULSE:[50/100],TEMP_TX:36.5,TEMP_AMBIENT:22.1")

	require.True(t, snap.Valid())
	assert.Equal(t, "RUNNING", *snap.Status)
	assert.Equal(t, "BURST", *snap.Mode)
	assert.InDelta(t, 30.0, *snap.PulseTrainPercent, 1e-9)
	assert.InDelta(t, 50.0, *snap.PulsePercent, 1e-9)
	assert.InDelta(t, 36.5, *snap.TempTX, 1e-9)
	assert.InDelta(t, 22.1, *snap.TempAmbient, 1e-9)
}

func TestParseZeroTotal(t *testing.T) {
	p := NewParser(logger.Nop())

	snap := p.Parse("STATUS:STOPPED,MODE:CONT,PULSE_TRAIN:[0/0],PULSE:[0/0],TEMP_TX:20,TEMP_AMBIENT:20")

	require.True(t, snap.Valid())
	assert.Equal(t, 0.0, *snap.PulseTrainPercent)
	assert.Equal(t, 0.0, *snap.PulsePercent)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing field", "STATUS:RUNNING,MODE:BURST,PULSE_TRAIN:[3/10],TEMP_TX:36.5,TEMP_AMBIENT:22.1"},
		{"empty", ""},
		{"garbage", "hello"},
		{"bad brackets", "STATUS:RUNNING,MODE:BURST,PULSE_TRAIN:3/10,PULSE:[50/100],TEMP_TX:36.5,TEMP_AMBIENT:22.1"},
		{"bad float", "STATUS:RUNNING,MODE:BURST,PULSE_TRAIN:[3/10],PULSE:[50/100],TEMP_TX:3.6.5,TEMP_AMBIENT:22.1"},
		{"extra field", "STATUS:RUNNING,MODE:BURST,PULSE_TRAIN:[3/10],PULSE:[50/100],TEMP_TX:36.5,TEMP_AMBIENT:22.1,EXTRA:9"},
		{"trailing text", "STATUS:RUNNING,MODE:BURST,PULSE_TRAIN:[3/10],PULSE:[50/100],TEMP_TX:36.5,TEMP_AMBIENT:22.1garbage"},
		{"leading text", "junkSTATUS:STOPPED,MODE:BURST,PULSE_TRAIN:[3/10],PULSE:[50/100],TEMP_TX:36.5,TEMP_AMBIENT:22.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, hook := test.NewNullLogger()
			p := NewParser(logger.FromLogrus(base))

			var snap = p.Parse(tt.line)

			assert.False(t, snap.Valid())
			assert.Nil(t, snap.Mode)
			assert.Nil(t, snap.PulseTrainPercent)
			assert.Nil(t, snap.PulsePercent)
			assert.Nil(t, snap.TempTX)
			assert.Nil(t, snap.TempAmbient)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		})
	}
}

func TestParseNegativeTemperature(t *testing.T) {
	p := NewParser(logger.Nop())

	snap := p.Parse("STATUS:STOPPED,MODE:BURST,PULSE_TRAIN:[1/4],PULSE:[1/2],TEMP_TX:-1.5,TEMP_AMBIENT:0")

	require.True(t, snap.Valid())
	assert.InDelta(t, -1.5, *snap.TempTX, 1e-9)
	assert.InDelta(t, 25.0, *snap.PulseTrainPercent, 1e-9)
}

func TestIsStatusLine(t *testing.T) {
	assert.True(t, IsStatusLine("STATUS:RUNNING,..."))
	assert.True(t, IsStatusLine("  STATUS:X"))
	assert.False(t, IsStatusLine(`{"TriggerStatus":"RUNNING"}`))
}
