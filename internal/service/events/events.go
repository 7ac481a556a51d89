package events

import "lifuconsole/internal/domain/models"

// Event — уведомление для слоя интерфейса.
type Event interface {
	Name() string
}

// Connected: устройство подключено к порту.
type Connected struct {
	Descriptor models.Descriptor
	Port       string
}

// Disconnected: устройство отключено от порта.
type Disconnected struct {
	Descriptor models.Descriptor
	Port       string
}

// DataReceived: строка, полученная от устройства без запроса.
type DataReceived struct {
	Descriptor models.Descriptor
	Payload    string
}

// ConnectionStatusChanged: изменился признак подключения TX или HV.
type ConnectionStatusChanged struct {
	TxConnected bool
	HvConnected bool
}

// StateChanged публикуется при каждом пересчёте состояния, даже если оно не изменилось.
type StateChanged struct {
	State models.ConnectionState
}

type TriggerChanged struct {
	Running bool
}

type ConfiguredChanged struct {
	Configured bool
}

// SolutionConfigured несёт текстовый результат конфигурации для пользователя.
type SolutionConfigured struct {
	Message string
}

type DeviceInfoReceived struct {
	Descriptor models.Descriptor
	Firmware   string
	HardwareID string
}

type TemperatureReceived struct {
	TX      float64
	Ambient float64
}

type PowerStatusReceived struct {
	TwelveVOn bool
	HVOn      bool
}

type RGBStateReceived struct {
	State int
	Label string
}

// StatusReceived несёт разобранную строку статуса.
type StatusReceived struct {
	Snapshot models.StatusSnapshot
}

func (Connected) Name() string               { return "connected" }
func (Disconnected) Name() string            { return "disconnected" }
func (DataReceived) Name() string            { return "data_received" }
func (ConnectionStatusChanged) Name() string { return "connection_status_changed" }
func (StateChanged) Name() string            { return "state_changed" }
func (TriggerChanged) Name() string          { return "trigger_changed" }
func (ConfiguredChanged) Name() string       { return "configured_changed" }
func (SolutionConfigured) Name() string      { return "solution_configured" }
func (DeviceInfoReceived) Name() string      { return "device_info_received" }
func (TemperatureReceived) Name() string     { return "temperature_received" }
func (PowerStatusReceived) Name() string     { return "power_status_received" }
func (RGBStateReceived) Name() string        { return "rgb_state_received" }
func (StatusReceived) Name() string          { return "status_received" }
