package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/service/connection"
	"lifuconsole/internal/service/events"
	"lifuconsole/internal/service/status"
)

// StatusHandler получает разобранные строки статуса (например, охранник сонификации).
type StatusHandler interface {
	HandleStatus(snap models.StatusSnapshot)
}

// Config содержит параметры мониторинга
type Config struct {
	BufferSize int // Размер очереди событий от наблюдателя
}

// Service реализует сервис мониторинга подключений TX/HV.
// События наблюдателя обрабатываются строго по порядку в одной горутине.
type Service struct {
	watcher ports.DeviceWatcher
	machine *connection.Machine
	parser  *status.Parser
	trigger *status.TriggerTracker
	handler StatusHandler
	bus     *events.Bus
	config  Config
	logger  ports.Logger

	mutex  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService создает новый экземпляр сервиса мониторинга
func NewService(watcher ports.DeviceWatcher, machine *connection.Machine, parser *status.Parser,
	trigger *status.TriggerTracker, handler StatusHandler, bus *events.Bus, cfg Config, logger ports.Logger) *Service {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	return &Service{
		watcher: watcher,
		machine: machine,
		parser:  parser,
		trigger: trigger,
		handler: handler,
		bus:     bus,
		config:  cfg,
		logger:  logger.With("MONITOR"),
	}
}

// Start запускает наблюдение и сразу возвращает управление.
// Повторный вызов перезапускает мониторинг.
func (s *Service) Start(ctx context.Context) {
	s.Stop()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	ch := make(chan models.DeviceEvent, s.config.BufferSize)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer close(ch)
		err := s.watcher.Watch(runCtx, ch)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Наблюдение за устройствами прервано: %v", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.consume(runCtx, ch)
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	s.logger.Info("Мониторинг устройств запущен")
}

// Stop останавливает мониторинг и ждёт завершения горутин.
// Безопасен до Start и при повторном вызове.
func (s *Service) Stop() {
	s.mutex.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mutex.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("Мониторинг устройств остановлен")
}

// Done закрывается, когда текущий цикл наблюдения завершился.
// До Start возвращает nil.
func (s *Service) Done() <-chan struct{} {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.done
}

// IsRunning сообщает, идёт ли наблюдение.
func (s *Service) IsRunning() bool {
	s.mutex.Lock()
	done := s.done
	s.mutex.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// consume обрабатывает события до отмены ctx или закрытия канала
func (s *Service) consume(ctx context.Context, ch <-chan models.DeviceEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			s.handle(ev)
		}
	}
}

func (s *Service) handle(ev models.DeviceEvent) {
	switch ev.Kind {
	case models.DeviceAttached:
		s.logger.Info("Подключено устройство %s (%s)", ev.Descriptor, ev.Port)
		s.machine.Attach(ev.Descriptor, ev.Port)

	case models.DeviceDetached:
		s.logger.Info("Отключено устройство %s (%s)", ev.Descriptor, ev.Port)
		s.machine.Detach(ev.Descriptor, ev.Port)

	case models.DeviceData:
		s.logger.Debug("Данные от %s: %s", ev.Descriptor, ev.Payload)
		s.bus.Publish(events.DataReceived{Descriptor: ev.Descriptor, Payload: ev.Payload})
		s.route(ev.Payload)

	default:
		s.logger.Warn("Неизвестное событие %v от %s", ev.Kind, ev.Descriptor)
	}
}

// route передаёт строку статуса парсеру, а JSON — трекеру триггера
func (s *Service) route(payload string) {
	line := strings.TrimSpace(payload)
	switch {
	case status.IsStatusLine(line):
		snap := s.parser.Parse(line)
		if !snap.Valid() {
			return
		}
		s.bus.Publish(events.StatusReceived{Snapshot: snap})
		if s.handler != nil {
			s.handler.HandleStatus(snap)
		}
	case strings.HasPrefix(line, "{"):
		_ = s.trigger.Update(line)
	}
}
