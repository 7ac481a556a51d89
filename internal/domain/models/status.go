package models

// StatusSnapshot — разобранная строка статуса от TX.
// Нулевые указатели означают, что поле не установлено (строка не разобрана).
type StatusSnapshot struct {
	Status            *string
	Mode              *string
	PulseTrainPercent *float64
	PulsePercent      *float64
	TempTX            *float64
	TempAmbient       *float64
}

// Valid сообщает, содержит ли снапшот разобранные данные.
func (s StatusSnapshot) Valid() bool {
	return s.Status != nil
}

// DeviceInfo — версия прошивки и аппаратный идентификатор устройства.
type DeviceInfo struct {
	Firmware   string
	HardwareID string
}

// Temperature — показания датчиков температуры TX.
type Temperature struct {
	TX      float64
	Ambient float64
}

// PowerStatus — состояние шин питания HV-блока.
type PowerStatus struct {
	TwelveVOn bool
	HVOn      bool
}

// RGBState — состояние индикатора.
type RGBState int

const (
	RGBOff RGBState = iota
	RGBRed
	RGBGreen
	RGBBlue
)

func (s RGBState) Label() string {
	switch s {
	case RGBOff:
		return "Off"
	case RGBRed:
		return "Red"
	case RGBGreen:
		return "Green"
	case RGBBlue:
		return "Blue"
	default:
		return "Unknown"
	}
}
