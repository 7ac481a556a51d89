package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/infrastructure/driver"
	"lifuconsole/internal/infrastructure/logger"
	"lifuconsole/internal/service/connection"
	"lifuconsole/internal/service/events"
	"lifuconsole/internal/service/monitor"
	"lifuconsole/internal/service/solution"
	"lifuconsole/internal/service/sonication"
	"lifuconsole/internal/service/status"
	"lifuconsole/internal/ui/viewmodel"
)

type harness struct {
	ctrl    *MainController
	fake    *driver.FakeDevices
	machine *connection.Machine
	mon     *monitor.Service
	updates atomic.Int32
}

func newHarness(t *testing.T, attached ...models.Descriptor) *harness {
	t.Helper()
	log := logger.Nop()
	bus := events.NewBus()
	fake := driver.NewFakeDevices(attached...)
	machine := connection.NewMachine(bus, log)
	trigger := status.NewTriggerTracker(bus, log)
	builder := solution.NewBuilder(fake, machine, bus, solution.DefaultTransducer(), solution.Defaults{Voltage: 12}, log)
	guard := sonication.NewGuard(fake, machine, trigger, log)
	mon := monitor.NewService(fake, machine, status.NewParser(log), trigger, guard, bus, monitor.Config{}, log)

	h := &harness{fake: fake, machine: machine, mon: mon}
	h.ctrl = NewMainController(viewmodel.NewMainViewModel(), Deps{
		Driver: fake, Builder: builder, Guard: guard, Trigger: trigger, Bus: bus, Logger: log,
	})
	h.ctrl.SetOnUpdate(func() { h.updates.Add(1) })
	h.ctrl.Initialize()
	t.Cleanup(h.ctrl.Close)

	mon.Start(context.Background())
	t.Cleanup(mon.Stop)

	want := models.StateDisconnected
	if len(attached) > 0 {
		want = models.StateTxConnected
	}
	require.Eventually(t, func() bool {
		return len(attached) == 0 || (machine.TxConnected() == contains(attached, models.DescriptorTX) &&
			machine.HvConnected() == contains(attached, models.DescriptorHV))
	}, time.Second, 5*time.Millisecond)
	if contains(attached, models.DescriptorTX) {
		require.Equal(t, want, machine.State())
	}
	return h
}

func contains(list []models.Descriptor, d models.Descriptor) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

func TestFullSessionFlow(t *testing.T) {
	h := newHarness(t, models.DescriptorTX, models.DescriptorHV)
	vm := h.ctrl.ViewModel()

	h.ctrl.ConfigureTransmitter(0, 0, 30, 400e3, 20, 10)
	require.Equal(t, models.StateReady, vm.State())
	assert.True(t, vm.Configured())
	assert.Equal(t, "Solution 'Solution' configured.", vm.LastMessage())
	require.NotNil(t, h.fake.Solution())
	assert.InDelta(t, 0.1, h.fake.Solution().Sequence.PulseInterval, 1e-12)

	h.ctrl.StartSonication()
	assert.Equal(t, models.StateRunning, vm.State())
	assert.True(t, vm.TriggerRunning())
	assert.False(t, vm.CanConfigure())

	h.ctrl.StopSonication()
	assert.Equal(t, models.StateReady, vm.State())
	assert.False(t, vm.TriggerRunning())
	assert.Greater(t, h.updates.Load(), int32(0))
}

func TestDeviceStoppedStatusEndsRunning(t *testing.T) {
	h := newHarness(t, models.DescriptorTX, models.DescriptorHV)
	vm := h.ctrl.ViewModel()

	h.ctrl.ConfigureSimple("demo", 500e3, 5)
	h.ctrl.StartSonication()
	require.Equal(t, models.StateRunning, h.machine.State())

	h.fake.FinishTrain()

	require.Eventually(t, func() bool { return h.machine.State() == models.StateReady }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return vm.Status().Valid() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "STOPPED", *vm.Status().Status)
	assert.InDelta(t, 100.0, *vm.Status().PulsePercent, 1e-9)
	assert.False(t, vm.TriggerRunning())
}

func TestStartWithoutHVIsIgnored(t *testing.T) {
	h := newHarness(t, models.DescriptorTX)

	h.ctrl.ConfigureSimple("demo", 500e3, 5)
	require.Equal(t, models.StateConfigured, h.machine.State())

	h.ctrl.StartSonication()

	assert.Equal(t, models.StateConfigured, h.machine.State())
	assert.False(t, h.fake.Running())
}

func TestConfigureFailureReported(t *testing.T) {
	h := newHarness(t, models.DescriptorTX)
	h.fake.SolutionErr = errors.New("nack")

	h.ctrl.ConfigureSimple("demo", 500e3, 5)

	assert.False(t, h.ctrl.ViewModel().Configured())
	assert.Equal(t, "Configuration failed.", h.ctrl.ViewModel().LastMessage())
}

func TestDeviceQueries(t *testing.T) {
	h := newHarness(t, models.DescriptorTX, models.DescriptorHV)
	vm := h.ctrl.ViewModel()

	h.ctrl.QueryDeviceInfo(models.DescriptorTX)
	h.ctrl.QueryTemperature()
	h.ctrl.SetHighVoltage(true)
	h.ctrl.SetRGB(models.DescriptorTX, models.RGBBlue)
	h.ctrl.SetTrigger(`{"TriggerStatus":"RUNNING"}`)

	info, ok := vm.DeviceInfo(models.DescriptorTX)
	require.True(t, ok)
	assert.Equal(t, "fake-1.0.0", info.Firmware)
	assert.Equal(t, "FAKE-TX", info.HardwareID)
	assert.Equal(t, &models.Temperature{TX: 25, Ambient: 22}, vm.Temperature())
	assert.Equal(t, &models.PowerStatus{HVOn: true}, vm.PowerStatus())
	n, label := vm.RGB()
	assert.Equal(t, 3, n)
	assert.Equal(t, "Blue", label)
	assert.True(t, vm.TriggerRunning())
	assert.True(t, h.ctrl.Ping(models.DescriptorHV))
	assert.True(t, h.ctrl.Echo(models.DescriptorTX, []byte{0x01, 0xAB}))
}

func TestResetConfiguration(t *testing.T) {
	h := newHarness(t, models.DescriptorTX)
	h.ctrl.ConfigureSimple("demo", 500e3, 5)
	require.True(t, h.machine.Configured())

	h.ctrl.ResetConfiguration()

	assert.False(t, h.ctrl.ViewModel().Configured())
	assert.Equal(t, models.StateTxConnected, h.ctrl.ViewModel().State())
}

func TestQueriesWithoutDevicesDoNotPanic(t *testing.T) {
	h := newHarness(t)

	h.ctrl.QueryTemperature()
	h.ctrl.QueryPowerStatus()
	h.ctrl.QueryRGB(models.DescriptorHV)
	h.ctrl.QueryTrigger()
	h.ctrl.ConfigureSimple("x", 1e5, 1)

	assert.False(t, h.ctrl.Ping(models.DescriptorTX))
	assert.False(t, h.ctrl.Echo(models.DescriptorTX, []byte("x")))
	assert.Nil(t, h.ctrl.ViewModel().Temperature())
	assert.Equal(t, models.StateDisconnected, h.machine.State())
}

func TestSoftResetTXWhileRunning(t *testing.T) {
	h := newHarness(t, models.DescriptorTX, models.DescriptorHV)
	vm := h.ctrl.ViewModel()
	h.ctrl.ConfigureSimple("demo", 500e3, 5)
	h.ctrl.StartSonication()
	require.Equal(t, models.StateRunning, vm.State())

	h.ctrl.SoftReset(models.DescriptorTX)

	assert.False(t, h.fake.Running())
	assert.False(t, vm.TriggerRunning())
	assert.False(t, vm.Configured())
	assert.Equal(t, models.StateTxConnected, vm.State())
}
