package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lifuconsole/internal/config"
	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/infrastructure/driver"
	"lifuconsole/internal/infrastructure/logger"
	"lifuconsole/internal/service/connection"
	"lifuconsole/internal/service/events"
	"lifuconsole/internal/service/monitor"
	"lifuconsole/internal/service/solution"
	"lifuconsole/internal/service/sonication"
	"lifuconsole/internal/service/status"
	"lifuconsole/internal/ui/controller"
	"lifuconsole/internal/ui/viewmodel"
	"lifuconsole/pkg/lifu"
)

// App собирает сервисы приложения и управляет их временем жизни.
type App struct {
	Config     *config.Config
	Logger     ports.Logger
	Bus        *events.Bus
	Machine    *connection.Machine
	Trigger    *status.TriggerTracker
	Builder    *solution.Builder
	Guard      *sonication.Guard
	Monitor    *monitor.Service
	Controller *controller.MainController
	Driver     ports.Driver

	// Fake заполнен только в тестовом режиме.
	Fake *driver.FakeDevices

	closeLog func() error
}

// New создает приложение по конфигурации.
func New(cfg *config.Config) (*App, error) {
	log, closeLog := logger.New(logger.Config{Level: cfg.Logging.Level, File: cfg.Logging.File})
	return NewWithLogger(cfg, log, closeLog)
}

// NewWithLogger создает приложение с готовым логгером.
func NewWithLogger(cfg *config.Config, log ports.Logger, closeLog func() error) (*App, error) {
	if closeLog == nil {
		closeLog = func() error { return nil }
	}
	a := &App{Config: cfg, Logger: log.With("APP"), closeLog: closeLog}

	var watcher ports.DeviceWatcher
	if cfg.Devices.TestMode {
		fake := driver.NewFakeDevices(models.DescriptorTX, models.DescriptorHV)
		a.Fake = fake
		a.Driver = fake
		watcher = fake
		a.Logger.Warn("Тестовый режим: устройства эмулируются")
	} else {
		devLog := log.With("LIFU")
		pw := lifu.NewPortWatcher(lifu.WatcherConfig{
			Devices: []lifu.DeviceMatch{
				{Descriptor: string(models.DescriptorTX), VID: cfg.Devices.TX.VID, PID: cfg.Devices.TX.PID, BaudRate: cfg.Devices.TX.BaudRate},
				{Descriptor: string(models.DescriptorHV), VID: cfg.Devices.HV.VID, PID: cfg.Devices.HV.PID, BaudRate: cfg.Devices.HV.BaudRate},
			},
			PollInterval: cfg.Devices.PollInterval,
			Timeout:      cfg.Devices.CommandTimeout,
			Charset:      cfg.Devices.Charset,
			Logger:       func(msg string) { devLog.Debug("%s", msg) },
		})
		adapter := driver.NewLifuAdapter(pw)
		a.Driver = adapter
		watcher = adapter
	}

	transducer := solution.Transducer{
		ID:      cfg.Transducer.ID,
		Rows:    cfg.Transducer.Rows,
		Cols:    cfg.Transducer.Cols,
		PitchMM: cfg.Transducer.PitchMM,
	}
	if _, err := transducer.ElementPositions(); err != nil {
		return nil, fmt.Errorf("преобразователь: %w", err)
	}

	a.Bus = events.NewBus()
	a.Machine = connection.NewMachine(a.Bus, log)
	a.Trigger = status.NewTriggerTracker(a.Bus, log)
	a.Builder = solution.NewBuilder(a.Driver, a.Machine, a.Bus, transducer,
		solution.Defaults{Voltage: cfg.Solution.DefaultVoltage, TargetZMM: cfg.Solution.TargetZMM}, log)
	a.Guard = sonication.NewGuard(a.Driver, a.Machine, a.Trigger, log)
	a.Monitor = monitor.NewService(watcher, a.Machine, status.NewParser(log), a.Trigger, a.Guard, a.Bus, monitor.Config{}, log)

	a.Controller = controller.NewMainController(viewmodel.NewMainViewModel(), controller.Deps{
		Driver:  a.Driver,
		Builder: a.Builder,
		Guard:   a.Guard,
		Trigger: a.Trigger,
		Bus:     a.Bus,
		Logger:  log,
		Timeout: cfg.Devices.CommandTimeout,
	})
	a.Controller.Initialize()

	return a, nil
}

// Run запускает мониторинг и блокируется до отмены ctx.
// Остановка наблюдения из-за ошибки не завершает приложение.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	a.Monitor.Start(ctx)
	done := a.Monitor.Done()

	g.Go(func() error {
		<-ctx.Done()
		a.Monitor.Stop()
		return nil
	})

	g.Go(func() error {
		select {
		case <-done:
			if ctx.Err() == nil {
				a.Logger.Error("Мониторинг устройств остановлен, подключения больше не отслеживаются")
			}
		case <-ctx.Done():
		}
		return nil
	})

	a.Logger.Info("Приложение запущено")
	return g.Wait()
}

// Close освобождает ресурсы.
func (a *App) Close() error {
	a.Monitor.Stop()
	a.Controller.Close()
	return a.closeLog()
}
