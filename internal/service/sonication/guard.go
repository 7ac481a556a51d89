package sonication

import (
	"context"
	"fmt"
	"sync"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/service/connection"
	"lifuconsole/internal/service/status"
)

// Guard разрешает запуск сонификации только из READY и остановку только из RUNNING.
type Guard struct {
	opMu sync.Mutex

	driver  ports.Driver
	machine *connection.Machine
	trigger *status.TriggerTracker
	logger  ports.Logger
}

// NewGuard создает охранник сонификации.
func NewGuard(drv ports.Driver, machine *connection.Machine, trigger *status.TriggerTracker, logger ports.Logger) *Guard {
	return &Guard{
		driver:  drv,
		machine: machine,
		trigger: trigger,
		logger:  logger.With("SONICATION"),
	}
}

// Start запускает сонификацию. Вне READY транспорт не вызывается и
// возвращается ErrGuardViolation. Ошибка транспорта оставляет READY.
func (g *Guard) Start(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if st := g.machine.State(); st != models.StateReady {
		g.logger.Warn("Запуск сонификации запрещён в состоянии %s", st)
		return models.ErrGuardViolation
	}

	if err := g.driver.StartSonication(ctx); err != nil {
		g.logger.Error("Не удалось запустить триггер: %v", err)
		return fmt.Errorf("запуск сонификации: %w", err)
	}

	if !g.machine.EnterRunning() {
		// Пока устройство запускалось, состояние ушло из READY (например, отключился HV).
		g.logger.Warn("Состояние изменилось во время запуска (%s), останавливаем триггер", g.machine.State())
		if err := g.driver.StopSonication(ctx); err != nil {
			g.logger.Error("Не удалось остановить триггер после неудачного запуска: %v", err)
			g.trigger.Confirm(true)
		} else {
			g.trigger.Confirm(false)
		}
		return fmt.Errorf("%w: состояние изменилось во время запуска", models.ErrGuardViolation)
	}

	g.trigger.Confirm(true)
	g.logger.Info("Сонификация запущена")
	return nil
}

// Stop останавливает сонификацию. Вне RUNNING ничего не делает.
func (g *Guard) Stop(ctx context.Context) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if st := g.machine.State(); st != models.StateRunning {
		g.logger.Warn("Остановка сонификации запрещена в состоянии %s", st)
		return models.ErrGuardViolation
	}

	if err := g.driver.StopSonication(ctx); err != nil {
		g.logger.Error("Не удалось остановить триггер: %v", err)
		return fmt.Errorf("остановка сонификации: %w", err)
	}

	g.machine.ExitRunning()
	g.trigger.Confirm(false)
	g.logger.Info("Сонификация остановлена")
	return nil
}

// HandleStatus применяет асинхронный статус устройства: STOPPED во время
// RUNNING возвращает машину в READY.
func (g *Guard) HandleStatus(snap models.StatusSnapshot) {
	if !snap.Valid() {
		return
	}

	switch *snap.Status {
	case status.TriggerStopped:
		if g.machine.ExitRunning() {
			g.logger.Info("Устройство сообщило STOPPED, сонификация завершена")
		}
		g.trigger.Confirm(false)
	case status.TriggerRunning:
		g.trigger.Confirm(true)
	}
}

// HandleReset вызывается после подтверждённого сброса TX: устройство
// прекращает излучение, поэтому RUNNING сменяется на READY.
func (g *Guard) HandleReset() {
	if g.machine.ExitRunning() {
		g.logger.Info("TX сброшен, сонификация завершена")
	}
	g.trigger.Confirm(false)
}
