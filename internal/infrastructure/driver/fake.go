package driver

import (
	"context"
	"fmt"
	"sync"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
)

// FakeDevices — пара TX/HV в памяти для тестового режима без оборудования.
// Реализует ports.Driver и ports.DeviceWatcher: при Watch сразу сообщает
// о подключении устройств, а при запуске/остановке присылает строки статуса.
type FakeDevices struct {
	mu       sync.Mutex
	attached []models.Descriptor
	solution *models.Solution
	running  bool
	twelveV  bool
	hv       bool
	rgb      map[models.Descriptor]models.RGBState
	trigger  string

	// Ошибки, возвращаемые соответствующими командами (для тестов).
	SolutionErr error
	StartErr    error
	StopErr     error

	data chan models.DeviceEvent
}

var (
	_ ports.Driver        = (*FakeDevices)(nil)
	_ ports.DeviceWatcher = (*FakeDevices)(nil)
)

// NewFakeDevices создает эмулятор. attached — устройства, которые будут
// «подключены» при старте наблюдения.
func NewFakeDevices(attached ...models.Descriptor) *FakeDevices {
	return &FakeDevices{
		attached: attached,
		rgb:      make(map[models.Descriptor]models.RGBState),
		trigger:  `{"TriggerStatus":"STOPPED"}`,
		data:     make(chan models.DeviceEvent, 32),
	}
}

// Watch сообщает о подключении и пересылает данные до отмены ctx.
func (f *FakeDevices) Watch(ctx context.Context, out chan<- models.DeviceEvent) error {
	f.mu.Lock()
	attached := append([]models.Descriptor(nil), f.attached...)
	f.mu.Unlock()

	for _, d := range attached {
		ev := models.DeviceEvent{Kind: models.DeviceAttached, Descriptor: d, Port: "fake-" + string(d)}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-f.data:
			select {
			case out <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Push имитирует строку, присланную устройством.
func (f *FakeDevices) Push(d models.Descriptor, line string) {
	select {
	case f.data <- models.DeviceEvent{Kind: models.DeviceData, Descriptor: d, Port: "fake-" + string(d), Payload: line}:
	default:
	}
}

func (f *FakeDevices) has(d models.Descriptor) error {
	for _, a := range f.attached {
		if a == d {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrNotConnected, d)
}

func (f *FakeDevices) Ping(_ context.Context, d models.Descriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.has(d)
}

func (f *FakeDevices) Echo(_ context.Context, d models.Descriptor, data []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(d); err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

func (f *FakeDevices) SoftReset(_ context.Context, d models.Descriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(d); err != nil {
		return err
	}
	if d == models.DescriptorTX {
		f.solution = nil
		f.running = false
	}
	return nil
}

func (f *FakeDevices) GetVersion(_ context.Context, d models.Descriptor) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return "fake-1.0.0", f.has(d)
}

func (f *FakeDevices) GetHardwareID(_ context.Context, d models.Descriptor) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return "FAKE-" + string(d), f.has(d)
}

func (f *FakeDevices) GetTemperature(context.Context) (*models.Temperature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorTX); err != nil {
		return nil, err
	}
	return &models.Temperature{TX: 25.0, Ambient: 22.0}, nil
}

func (f *FakeDevices) SetTwelveVolt(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorHV); err != nil {
		return err
	}
	f.twelveV = on
	return nil
}

func (f *FakeDevices) SetHighVoltage(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorHV); err != nil {
		return err
	}
	f.hv = on
	return nil
}

func (f *FakeDevices) GetPowerStatus(context.Context) (*models.PowerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorHV); err != nil {
		return nil, err
	}
	return &models.PowerStatus{TwelveVOn: f.twelveV, HVOn: f.hv}, nil
}

func (f *FakeDevices) SetRGB(_ context.Context, d models.Descriptor, state models.RGBState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(d); err != nil {
		return err
	}
	f.rgb[d] = state
	return nil
}

func (f *FakeDevices) GetRGB(_ context.Context, d models.Descriptor) (models.RGBState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(d); err != nil {
		return models.RGBOff, err
	}
	return f.rgb[d], nil
}

func (f *FakeDevices) GetTrigger(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trigger, f.has(models.DescriptorTX)
}

func (f *FakeDevices) SetTrigger(_ context.Context, payload string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorTX); err != nil {
		return "", err
	}
	f.trigger = payload
	return payload, nil
}

func (f *FakeDevices) SetSolution(_ context.Context, s *models.Solution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorTX); err != nil {
		return err
	}
	if f.SolutionErr != nil {
		return f.SolutionErr
	}
	f.solution = s
	return nil
}

// Solution возвращает последнее применённое решение.
func (f *FakeDevices) Solution() *models.Solution {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.solution
}

func (f *FakeDevices) StartSonication(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorTX); err != nil {
		return err
	}
	if f.StartErr != nil {
		return f.StartErr
	}
	if f.solution == nil {
		return fmt.Errorf("%w: решение не загружено", models.ErrTransport)
	}
	f.running = true
	f.trigger = `{"TriggerStatus":"RUNNING"}`
	return nil
}

func (f *FakeDevices) StopSonication(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.has(models.DescriptorTX); err != nil {
		return err
	}
	if f.StopErr != nil {
		return f.StopErr
	}
	f.running = false
	f.trigger = `{"TriggerStatus":"STOPPED"}`
	return nil
}

// Running сообщает, идёт ли эмулируемая сонификация.
func (f *FakeDevices) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// FinishTrain имитирует окончание серии: устройство присылает STOPPED.
func (f *FakeDevices) FinishTrain() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	f.trigger = `{"TriggerStatus":"STOPPED"}`
	var total int
	if f.solution != nil {
		total = f.solution.Sequence.PulseCount
	}
	f.mu.Unlock()

	f.Push(models.DescriptorTX, fmt.Sprintf(
		"STATUS:STOPPED,MODE:BURST,PULSE_TRAIN:[1/1],PULSE:[%d/%d],TEMP_TX:25.0,TEMP_AMBIENT:22.0", total, total))
}
