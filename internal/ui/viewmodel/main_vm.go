package viewmodel

import (
	"sync"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/service/events"
)

// MainViewModel хранит то, что отображает главное окно: подключения, состояние,
// триггер и последние ответы устройств. Обновляется только через Apply.
type MainViewModel struct {
	mu sync.RWMutex

	txConnected    bool
	hvConnected    bool
	state          models.ConnectionState
	triggerRunning bool
	configured     bool

	lastMessage string
	lastData    string
	status      models.StatusSnapshot
	deviceInfo  map[models.Descriptor]models.DeviceInfo
	temperature *models.Temperature
	power       *models.PowerStatus
	rgbState    int
	rgbLabel    string
}

// NewMainViewModel создаёт ViewModel в состоянии DISCONNECTED.
func NewMainViewModel() *MainViewModel {
	return &MainViewModel{
		state:      models.StateDisconnected,
		deviceInfo: make(map[models.Descriptor]models.DeviceInfo),
		rgbLabel:   models.RGBOff.Label(),
	}
}

// Apply применяет событие шины. Возвращает true, если событие относится к ViewModel.
func (vm *MainViewModel) Apply(e events.Event) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	switch ev := e.(type) {
	case events.ConnectionStatusChanged:
		vm.txConnected = ev.TxConnected
		vm.hvConnected = ev.HvConnected
	case events.StateChanged:
		vm.state = ev.State
	case events.TriggerChanged:
		vm.triggerRunning = ev.Running
	case events.ConfiguredChanged:
		vm.configured = ev.Configured
	case events.SolutionConfigured:
		vm.lastMessage = ev.Message
	case events.DataReceived:
		vm.lastData = ev.Payload
	case events.StatusReceived:
		vm.status = ev.Snapshot
	case events.DeviceInfoReceived:
		vm.deviceInfo[ev.Descriptor] = models.DeviceInfo{Firmware: ev.Firmware, HardwareID: ev.HardwareID}
	case events.TemperatureReceived:
		vm.temperature = &models.Temperature{TX: ev.TX, Ambient: ev.Ambient}
	case events.PowerStatusReceived:
		vm.power = &models.PowerStatus{TwelveVOn: ev.TwelveVOn, HVOn: ev.HVOn}
	case events.RGBStateReceived:
		vm.rgbState = ev.State
		vm.rgbLabel = ev.Label
	default:
		return false
	}
	return true
}

func (vm *MainViewModel) TxConnected() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.txConnected
}

func (vm *MainViewModel) HvConnected() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.hvConnected
}

func (vm *MainViewModel) State() models.ConnectionState {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.state
}

func (vm *MainViewModel) TriggerRunning() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.triggerRunning
}

func (vm *MainViewModel) Configured() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.configured
}

// LastMessage — последнее сообщение о конфигурации решения.
func (vm *MainViewModel) LastMessage() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.lastMessage
}

func (vm *MainViewModel) LastData() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.lastData
}

func (vm *MainViewModel) Status() models.StatusSnapshot {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

func (vm *MainViewModel) DeviceInfo(d models.Descriptor) (models.DeviceInfo, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	info, ok := vm.deviceInfo[d]
	return info, ok
}

func (vm *MainViewModel) Temperature() *models.Temperature {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.temperature
}

func (vm *MainViewModel) PowerStatus() *models.PowerStatus {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.power
}

func (vm *MainViewModel) RGB() (int, string) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.rgbState, vm.rgbLabel
}

// CanConfigure: кнопка конфигурации доступна при подключенном TX вне сонификации.
func (vm *MainViewModel) CanConfigure() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.txConnected && vm.state != models.StateRunning
}

func (vm *MainViewModel) CanStart() bool {
	return vm.State() == models.StateReady
}

func (vm *MainViewModel) CanStop() bool {
	return vm.State() == models.StateRunning
}
