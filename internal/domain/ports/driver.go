package ports

import (
	"context"

	"lifuconsole/internal/domain/models"
)

// Driver определяет интерфейс команд к паре устройств TX/HV.
// Все методы используют чистые доменные типы, не зависящие от транспорта.
// Реализация может завершать вызовы как синхронно, так и асинхронно;
// вызывающая сторона ожидает результата через ctx.
type Driver interface {
	// Диагностика
	Ping(ctx context.Context, d models.Descriptor) error
	Echo(ctx context.Context, d models.Descriptor, data []byte) ([]byte, error)
	SoftReset(ctx context.Context, d models.Descriptor) error

	// Идентификация
	GetVersion(ctx context.Context, d models.Descriptor) (string, error)
	GetHardwareID(ctx context.Context, d models.Descriptor) (string, error)

	// Телеметрия TX
	GetTemperature(ctx context.Context) (*models.Temperature, error)

	// Питание HV
	SetTwelveVolt(ctx context.Context, on bool) error
	SetHighVoltage(ctx context.Context, on bool) error
	GetPowerStatus(ctx context.Context) (*models.PowerStatus, error)

	// Индикатор
	SetRGB(ctx context.Context, d models.Descriptor, state models.RGBState) error
	GetRGB(ctx context.Context, d models.Descriptor) (models.RGBState, error)

	// Триггер (JSON-полезная нагрузка в обе стороны)
	GetTrigger(ctx context.Context) (string, error)
	SetTrigger(ctx context.Context, payload string) (string, error)

	// Решение и сонификация
	SetSolution(ctx context.Context, s *models.Solution) error
	StartSonication(ctx context.Context) error
	StopSonication(ctx context.Context) error
}

// DeviceWatcher — источник асинхронных событий подключения/отключения/данных.
// Watch блокируется до отмены ctx или фатальной ошибки и пишет события в events
// строго в порядке их возникновения. Канал events Watch не закрывает.
type DeviceWatcher interface {
	Watch(ctx context.Context, events chan<- models.DeviceEvent) error
}
