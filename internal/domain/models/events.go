package models

// DeviceEventKind тип события от наблюдателя за устройствами.
type DeviceEventKind int

const (
	DeviceAttached DeviceEventKind = iota
	DeviceDetached
	DeviceData
)

func (k DeviceEventKind) String() string {
	switch k {
	case DeviceAttached:
		return "attach"
	case DeviceDetached:
		return "detach"
	case DeviceData:
		return "data"
	default:
		return "unknown"
	}
}

// DeviceEvent — событие подключения, отключения или входящих данных.
// Для DeviceData поле Payload содержит строку, полученную от устройства.
type DeviceEvent struct {
	Kind       DeviceEventKind
	Descriptor Descriptor
	Port       string
	Payload    string
}
