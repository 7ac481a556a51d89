package status

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifuconsole/internal/infrastructure/logger"
	"lifuconsole/internal/service/events"
)

func newTracker(t *testing.T) (*TriggerTracker, *[]bool, *test.Hook) {
	t.Helper()
	bus := events.NewBus()
	var got []bool
	bus.Subscribe(func(e events.Event) {
		if tc, ok := e.(events.TriggerChanged); ok {
			got = append(got, tc.Running)
		}
	})
	base, hook := test.NewNullLogger()
	return NewTriggerTracker(bus, logger.FromLogrus(base)), &got, hook
}

func TestTriggerEdgeOnly(t *testing.T) {
	tr, got, _ := newTracker(t)

	require.NoError(t, tr.Update(`{"TriggerStatus":"RUNNING"}`))
	require.NoError(t, tr.Update(`{"TriggerStatus":"RUNNING"}`))

	assert.True(t, tr.Running())
	assert.Equal(t, []bool{true}, *got)
}

func TestTriggerMissingStatusMeansStopped(t *testing.T) {
	tr, got, _ := newTracker(t)

	require.NoError(t, tr.Update(`{"TriggerStatus":"RUNNING","TriggerFrequencyHz":10}`))
	require.NoError(t, tr.Update(`{"TriggerFrequencyHz":10}`))

	assert.False(t, tr.Running())
	assert.Equal(t, []bool{true, false}, *got)
}

func TestTriggerMalformedKeepsState(t *testing.T) {
	tr, got, hook := newTracker(t)
	tr.Confirm(true)

	err := tr.Update(`{"TriggerStatus":`)

	assert.Error(t, err)
	assert.True(t, tr.Running())
	assert.Equal(t, []bool{true}, *got)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestTriggerConfirm(t *testing.T) {
	tr, got, _ := newTracker(t)

	tr.Confirm(false)
	tr.Confirm(true)
	tr.Confirm(true)
	tr.Confirm(false)

	assert.Equal(t, []bool{true, false}, *got)
}

func TestParseTriggerStatus(t *testing.T) {
	st, err := ParseTriggerStatus(`{}`)
	require.NoError(t, err)
	assert.Equal(t, TriggerStopped, st)

	st, err = ParseTriggerStatus(`{"TriggerStatus":"PAUSED"}`)
	require.NoError(t, err)
	assert.Equal(t, "PAUSED", st)
}
