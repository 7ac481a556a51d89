package connection

import (
	"sync"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/service/events"
)

// ComputeState выводит состояние приложения из флагов подключения и конфигурации.
// Правила проверяются по приоритету; если ни одно не подошло, возвращается current.
//
// RUNNING не выводится из флагов: он сохраняется, пока tx, hv и configured истинны.
// Если при RUNNING пропало одно из условий, RUNNING сбрасывается и применяются
// правила 1-4, а при их несовпадении (TX потерян, HV на месте) — DISCONNECTED.
func ComputeState(tx, hv, configured bool, current models.ConnectionState) models.ConnectionState {
	if current == models.StateRunning {
		if tx && hv && configured {
			return models.StateRunning
		}
		current = models.StateDisconnected
	}

	switch {
	case !tx && !hv:
		return models.StateDisconnected
	case tx && !configured:
		return models.StateTxConnected
	case tx && hv && configured:
		return models.StateReady
	case tx && configured:
		return models.StateConfigured
	default:
		return current
	}
}

// Snapshot — копия состояния машины для чтения без блокировок.
type Snapshot struct {
	TX         models.DeviceLinkStatus
	HV         models.DeviceLinkStatus
	Configured bool
	State      models.ConnectionState
}

// Machine — единственный владелец состояния подключения.
// Каждый шаг (чтение флагов -> вычисление -> уведомление) выполняется атомарно:
// шаги сериализуются, уведомления публикуются в порядке шагов.
type Machine struct {
	stepMu sync.Mutex

	mu         sync.RWMutex
	tx         models.DeviceLinkStatus
	hv         models.DeviceLinkStatus
	configured bool
	state      models.ConnectionState

	bus    *events.Bus
	logger ports.Logger
}

// NewMachine создает машину в состоянии DISCONNECTED.
func NewMachine(bus *events.Bus, logger ports.Logger) *Machine {
	return &Machine{
		tx:     models.DeviceLinkStatus{Descriptor: models.DescriptorTX},
		hv:     models.DeviceLinkStatus{Descriptor: models.DescriptorHV},
		state:  models.StateDisconnected,
		bus:    bus,
		logger: logger.With("STATE"),
	}
}

// step выполняет мутацию под блокировкой и публикует собранные события после неё.
func (m *Machine) step(mutate func() []events.Event) {
	m.stepMu.Lock()
	defer m.stepMu.Unlock()

	m.mu.Lock()
	pending := mutate()
	m.mu.Unlock()

	for _, e := range pending {
		m.bus.Publish(e)
	}
}

// recomputeLocked пересчитывает состояние; вызывается под m.mu.
func (m *Machine) recomputeLocked() events.Event {
	prev := m.state
	m.state = ComputeState(m.tx.Connected, m.hv.Connected, m.configured, m.state)
	if prev != m.state {
		m.logger.Info("Состояние: %s -> %s", prev, m.state)
	} else {
		m.logger.Debug("Состояние не изменилось: %s", m.state)
	}
	return events.StateChanged{State: m.state}
}

func (m *Machine) linkLocked(d models.Descriptor) *models.DeviceLinkStatus {
	switch d {
	case models.DescriptorTX:
		return &m.tx
	case models.DescriptorHV:
		return &m.hv
	default:
		return nil
	}
}

// Attach отмечает устройство подключенным и пересчитывает состояние.
func (m *Machine) Attach(d models.Descriptor, port string) {
	m.setLink(d, port, true)
}

// Detach отмечает устройство отключенным и пересчитывает состояние.
func (m *Machine) Detach(d models.Descriptor, port string) {
	m.setLink(d, port, false)
}

func (m *Machine) setLink(d models.Descriptor, port string, connected bool) {
	m.step(func() []events.Event {
		if link := m.linkLocked(d); link != nil {
			link.Connected = connected
			if connected {
				link.Port = port
			} else {
				link.Port = ""
			}
		} else {
			m.logger.Warn("Неизвестный дескриптор устройства %q (порт %s)", d, port)
		}

		var first events.Event
		if connected {
			first = events.Connected{Descriptor: d, Port: port}
		} else {
			first = events.Disconnected{Descriptor: d, Port: port}
		}

		return []events.Event{
			first,
			events.ConnectionStatusChanged{TxConnected: m.tx.Connected, HvConnected: m.hv.Connected},
			m.recomputeLocked(),
		}
	})
}

// SetConfigured меняет признак конфигурации. ConfiguredChanged публикуется
// только при изменении значения, StateChanged — всегда.
func (m *Machine) SetConfigured(configured bool) {
	m.step(func() []events.Event {
		var out []events.Event
		if m.configured != configured {
			m.configured = configured
			out = append(out, events.ConfiguredChanged{Configured: configured})
		}
		return append(out, m.recomputeLocked())
	})
}

// Recompute пересчитывает состояние без изменения входов.
func (m *Machine) Recompute() {
	m.step(func() []events.Event {
		return []events.Event{m.recomputeLocked()}
	})
}

// transition атомарно переводит from -> to. Возвращает false, если текущее состояние не from.
func (m *Machine) transition(from, to models.ConnectionState) bool {
	ok := false
	m.step(func() []events.Event {
		if m.state != from {
			return nil
		}
		ok = true
		m.state = to
		m.logger.Info("Состояние: %s -> %s", from, to)
		return []events.Event{events.StateChanged{State: to}}
	})
	return ok
}

// EnterRunning переводит READY -> RUNNING.
func (m *Machine) EnterRunning() bool {
	return m.transition(models.StateReady, models.StateRunning)
}

// ExitRunning переводит RUNNING -> READY.
func (m *Machine) ExitRunning() bool {
	return m.transition(models.StateRunning, models.StateReady)
}

// State возвращает текущее состояние.
func (m *Machine) State() models.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Machine) TxConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tx.Connected
}

func (m *Machine) HvConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hv.Connected
}

func (m *Machine) Configured() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configured
}

// Snapshot возвращает копию всего состояния.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{TX: m.tx, HV: m.hv, Configured: m.configured, State: m.state}
}
