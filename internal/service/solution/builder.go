package solution

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/service/connection"
	"lifuconsole/internal/service/events"
)

// Значения по умолчанию для упрощённого режима.
const (
	DefaultAmplitude          = 1.0
	DefaultPulseDuration      = 2e-5 // с
	DefaultPulseInterval      = 0.1  // с
	DefaultPulseTrainInterval = 1.0  // с
	DefaultPulseTrainCount    = 1
	DefaultTargetZMM          = 30.0
	DefaultProtocolID         = "example_protocol"
)

// Сообщения SolutionConfigured.
const (
	msgConfigured = "Solution '%s' configured."
	msgFailed     = "Configuration failed."
	msgError      = "Configuration error."
)

// Defaults — настраиваемые значения по умолчанию.
type Defaults struct {
	Voltage   float64
	TargetZMM float64
}

// SimpleParams — параметры упрощённого режима: цель на оси, остальное по умолчанию.
type SimpleParams struct {
	Name       string
	Frequency  float64 // Гц
	PulseCount int
}

// FullParams — параметры полного режима.
type FullParams struct {
	Name               string
	X, Y, Z            float64 // мм
	Frequency          float64 // Гц
	Voltage            float64
	TriggerHz          float64 // частота импульсов; интервал = 1/TriggerHz
	PulseCount         int
	PulseTrainInterval float64 // с
	PulseTrainCount    int
	Duration           float64 // с
	ComputeDelays      bool    // рассчитать фокусирующие задержки по геометрии решётки
}

// Builder собирает решения и применяет их к TX.
type Builder struct {
	mu sync.Mutex // одна конфигурация за раз

	driver     ports.Driver
	machine    *connection.Machine
	bus        *events.Bus
	transducer Transducer
	defaults   Defaults
	logger     ports.Logger

	newID func() string
}

// NewBuilder создает сборщик решений.
func NewBuilder(drv ports.Driver, machine *connection.Machine, bus *events.Bus,
	transducer Transducer, defaults Defaults, logger ports.Logger) *Builder {
	if defaults.TargetZMM == 0 {
		defaults.TargetZMM = DefaultTargetZMM
	}
	return &Builder{
		driver:     drv,
		machine:    machine,
		bus:        bus,
		transducer: transducer,
		defaults:   defaults,
		logger:     logger.With("SOLUTION"),
		newID:      uuid.NewString,
	}
}

// Transducer возвращает геометрию решётки.
func (b *Builder) Transducer() Transducer {
	return b.transducer
}

// BuildSimple собирает решение с нулевыми задержками и единичной аподизацией.
func (b *Builder) BuildSimple(p SimpleParams) (*models.Solution, error) {
	n := b.transducer.ElementCount()
	name := p.Name
	if name == "" {
		name = "Solution"
	}
	target := models.Point{Position: [3]float64{0, 0, b.defaults.TargetZMM}, Units: "mm"}

	return models.NewSolution(models.Solution{
		ID:           "solution",
		Name:         name,
		ProtocolID:   DefaultProtocolID,
		TransducerID: b.transducer.ID,
		Delays:       make([]float64, n),
		Apodizations: UniformApodization(n),
		Pulse: models.Pulse{
			Frequency: p.Frequency,
			Amplitude: DefaultAmplitude,
			Duration:  DefaultPulseDuration,
		},
		Sequence: models.Sequence{
			PulseInterval:      DefaultPulseInterval,
			PulseCount:         p.PulseCount,
			PulseTrainInterval: DefaultPulseTrainInterval,
			PulseTrainCount:    DefaultPulseTrainCount,
		},
		Target:   target,
		Foci:     []models.Point{target},
		Voltage:  b.defaults.Voltage,
		Approved: true,
	}, n)
}

// BuildFull собирает решение по полному набору параметров.
func (b *Builder) BuildFull(p FullParams) (*models.Solution, error) {
	if !(p.TriggerHz > 0) {
		return nil, fmt.Errorf("%w: частота триггера должна быть положительной, получено %v",
			models.ErrInvalidSolution, p.TriggerHz)
	}

	n := b.transducer.ElementCount()
	target := models.Point{Position: [3]float64{p.X, p.Y, p.Z}, Units: "mm"}

	delays := make([]float64, n)
	if p.ComputeDelays {
		elements, err := b.transducer.ElementPositions()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidSolution, err)
		}
		focus, err := target.Meters()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidSolution, err)
		}
		if delays, err = FocusDelays(focus, elements); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidSolution, err)
		}
	}

	name := p.Name
	if name == "" {
		name = "Solution"
	}
	voltage := p.Voltage
	if voltage == 0 {
		voltage = b.defaults.Voltage
	}

	return models.NewSolution(models.Solution{
		ID:           b.newID(),
		Name:         name,
		ProtocolID:   DefaultProtocolID,
		TransducerID: b.transducer.ID,
		Delays:       delays,
		Apodizations: UniformApodization(n),
		Pulse: models.Pulse{
			Frequency: p.Frequency,
			Amplitude: voltage,
			Duration:  p.Duration,
		},
		Sequence: models.Sequence{
			PulseInterval:      1 / p.TriggerHz,
			PulseCount:         p.PulseCount,
			PulseTrainInterval: p.PulseTrainInterval,
			PulseTrainCount:    p.PulseTrainCount,
		},
		Target:   target,
		Foci:     []models.Point{target},
		Voltage:  voltage,
		Approved: true,
	}, n)
}

// ConfigureSimple собирает решение упрощённого режима и применяет его.
func (b *Builder) ConfigureSimple(ctx context.Context, p SimpleParams) error {
	if err := b.checkGuard(); err != nil {
		return err
	}
	s, err := b.BuildSimple(p)
	if err != nil {
		return b.buildFailed(p.Name, err)
	}
	return b.Apply(ctx, s)
}

// ConfigureFull собирает решение полного режима и применяет его.
func (b *Builder) ConfigureFull(ctx context.Context, p FullParams) error {
	if err := b.checkGuard(); err != nil {
		return err
	}
	s, err := b.BuildFull(p)
	if err != nil {
		return b.buildFailed(p.Name, err)
	}
	return b.Apply(ctx, s)
}

// Apply отправляет готовое решение на TX. Без подключенного TX вызов транспорта
// не выполняется. При успехе выставляется признак конфигурации; при ошибке
// состояние не меняется.
func (b *Builder) Apply(ctx context.Context, s *models.Solution) error {
	if s == nil {
		return fmt.Errorf("%w: пустое решение", models.ErrInvalidSolution)
	}
	if err := b.checkGuard(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.logger.Info("Применение решения '%s' (id=%s): частота %s, напряжение %s, импульсов %d",
		s.Name, s.ID,
		humanize.SIWithDigits(s.Pulse.Frequency, 2, "Hz"),
		humanize.SIWithDigits(s.Voltage, 1, "V"),
		s.Sequence.PulseCount)

	if err := b.driver.SetSolution(ctx, s); err != nil {
		b.logger.Error("Не удалось применить решение '%s': %v", s.Name, err)
		b.bus.Publish(events.SolutionConfigured{Message: msgFailed})
		return fmt.Errorf("применение решения: %w", err)
	}

	b.machine.SetConfigured(true)
	b.logger.Info("Решение '%s' применено", s.Name)
	b.bus.Publish(events.SolutionConfigured{Message: fmt.Sprintf(msgConfigured, s.Name)})
	return nil
}

// Reset сбрасывает признак конфигурации.
func (b *Builder) Reset() error {
	if b.machine.State() == models.StateRunning {
		b.logger.Warn("Сброс конфигурации во время сонификации запрещён")
		return models.ErrGuardViolation
	}
	b.machine.SetConfigured(false)
	b.logger.Info("Конфигурация сброшена")
	return nil
}

func (b *Builder) checkGuard() error {
	if !b.machine.TxConnected() {
		b.logger.Warn("TX не подключен, конфигурация отклонена")
		return models.ErrNotConnected
	}
	if b.machine.State() == models.StateRunning {
		b.logger.Warn("Конфигурация во время сонификации запрещена")
		return models.ErrGuardViolation
	}
	return nil
}

func (b *Builder) buildFailed(name string, err error) error {
	b.logger.Error("Ошибка сборки решения '%s': %v", name, err)
	b.bus.Publish(events.SolutionConfigured{Message: msgError})
	if errors.Is(err, models.ErrInvalidSolution) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidSolution, err)
}
