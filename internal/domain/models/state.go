package models

import "fmt"

// ConnectionState описывает состояние приложения, выведенное из подключений TX/HV
// и признака конфигурации.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota // Ни TX, ни HV не подключены
	StateTxConnected                         // TX подключен, решение не применено
	StateConfigured                          // Решение применено, HV не подключен
	StateReady                               // Всё подключено и сконфигурировано
	StateRunning                             // Идёт сонификация
)

var stateNames = map[ConnectionState]string{
	StateDisconnected: "DISCONNECTED",
	StateTxConnected:  "TX_CONNECTED",
	StateConfigured:   "CONFIGURED",
	StateReady:        "READY",
	StateRunning:      "RUNNING",
}

func (s ConnectionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

// Descriptor идентифицирует физическое устройство пары.
type Descriptor string

const (
	DescriptorTX Descriptor = "TX"
	DescriptorHV Descriptor = "HV"
)

// DeviceLinkStatus содержит состояние физического подключения одного устройства.
type DeviceLinkStatus struct {
	Descriptor Descriptor
	Connected  bool
	Port       string // Непрозрачный идентификатор порта (например, /dev/ttyACM0 или COM5)
}
