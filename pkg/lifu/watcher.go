package lifu

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial/enumerator"
)

// EventKind тип события наблюдателя.
type EventKind int

const (
	EventAttach EventKind = iota
	EventDetach
	EventData
)

// Event — подключение, отключение устройства или строка данных от него.
type Event struct {
	Kind       EventKind
	Descriptor string
	Port       string
	Line       string
}

// DeviceMatch описывает, как распознать устройство среди USB-портов.
type DeviceMatch struct {
	Descriptor string // "TX" или "HV"
	VID        string // шестнадцатеричный, без 0x
	PID        string
	BaudRate   int
}

// WatcherConfig — параметры наблюдателя.
type WatcherConfig struct {
	Devices      []DeviceMatch
	PollInterval time.Duration
	Timeout      time.Duration // таймаут команд
	Charset      string
	Logger       func(msg string)
}

// PortWatcher опрашивает список портов, открывает транспорт для найденных
// устройств и сообщает о подключении/отключении.
type PortWatcher struct {
	config WatcherConfig

	listPorts     func() ([]*enumerator.PortDetails, error)
	openTransport func(cfg Config) (*Transport, error)

	mu         sync.RWMutex
	transports map[string]*Transport
}

// NewPortWatcher создает наблюдатель.
func NewPortWatcher(cfg WatcherConfig) *PortWatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &PortWatcher{
		config:        cfg,
		listPorts:     enumerator.GetDetailedPortsList,
		openTransport: openSerial,
		transports:    make(map[string]*Transport),
	}
}

func openSerial(cfg Config) (*Transport, error) {
	t, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	if err := t.Open(); err != nil {
		return nil, err
	}
	return t, nil
}

// Client возвращает клиента подключенного устройства.
func (w *PortWatcher) Client(descriptor string) (*Client, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.transports[descriptor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, descriptor)
	}
	return NewClient(t), nil
}

// Connected сообщает, открыт ли транспорт устройства.
func (w *PortWatcher) Connected(descriptor string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.transports[descriptor]
	return ok
}

// Watch опрашивает порты до отмены ctx. События пишутся в out по порядку.
// При выходе все транспорты закрываются.
func (w *PortWatcher) Watch(ctx context.Context, out chan<- Event) error {
	defer w.closeAll()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.scan(ctx, out); err != nil {
			w.log("Ошибка перечисления портов: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// scan сравнивает найденные порты с открытыми транспортами
func (w *PortWatcher) scan(ctx context.Context, out chan<- Event) error {
	list, err := w.listPorts()
	if err != nil {
		return err
	}
	found := matchPorts(list, w.config.Devices)

	for _, dev := range w.config.Devices {
		if ctx.Err() != nil {
			return nil
		}

		w.mu.RLock()
		current, open := w.transports[dev.Descriptor]
		w.mu.RUnlock()

		port, present := found[dev.Descriptor]

		if open && (!present || current.PortName() != port) {
			w.detach(ctx, out, dev.Descriptor, current)
			open = false
		}
		if !open && present {
			w.attach(ctx, out, dev, port)
		}
	}
	return nil
}

func (w *PortWatcher) attach(ctx context.Context, out chan<- Event, dev DeviceMatch, port string) {
	t, err := w.openTransport(Config{
		PortName: port,
		BaudRate: dev.BaudRate,
		Timeout:  w.config.Timeout,
		Charset:  w.config.Charset,
		Logger:   w.config.Logger,
	})
	if err != nil {
		w.log("Не удалось открыть %s (%s): %v", dev.Descriptor, port, err)
		return
	}

	w.mu.Lock()
	w.transports[dev.Descriptor] = t
	w.mu.Unlock()

	if !send(ctx, out, Event{Kind: EventAttach, Descriptor: dev.Descriptor, Port: port}) {
		return
	}

	descriptor := dev.Descriptor
	err = t.StartReading(func(line string) {
		send(ctx, out, Event{Kind: EventData, Descriptor: descriptor, Port: port, Line: line})
	})
	if err != nil {
		w.log("Не удалось начать чтение %s: %v", descriptor, err)
	}
}

func (w *PortWatcher) detach(ctx context.Context, out chan<- Event, descriptor string, t *Transport) {
	w.mu.Lock()
	delete(w.transports, descriptor)
	w.mu.Unlock()

	port := t.PortName()
	if err := t.Close(); err != nil {
		w.log("Ошибка закрытия %s (%s): %v", descriptor, port, err)
	}
	send(ctx, out, Event{Kind: EventDetach, Descriptor: descriptor, Port: port})
}

func (w *PortWatcher) closeAll() {
	w.mu.Lock()
	all := w.transports
	w.transports = make(map[string]*Transport)
	w.mu.Unlock()

	for _, t := range all {
		t.Close()
	}
}

func (w *PortWatcher) log(format string, args ...interface{}) {
	if w.config.Logger != nil {
		w.config.Logger(fmt.Sprintf(format, args...))
	}
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// matchPorts сопоставляет USB-порты с описаниями устройств.
// Если подходящих портов несколько, берётся первый по имени.
func matchPorts(list []*enumerator.PortDetails, devices []DeviceMatch) map[string]string {
	sorted := make([]*enumerator.PortDetails, 0, len(list))
	for _, p := range list {
		if p != nil && p.IsUSB {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	taken := make(map[string]bool)
	found := make(map[string]string)
	for _, dev := range devices {
		for _, p := range sorted {
			if taken[p.Name] {
				continue
			}
			if strings.EqualFold(p.VID, dev.VID) && strings.EqualFold(p.PID, dev.PID) {
				found[dev.Descriptor] = p.Name
				taken[p.Name] = true
				break
			}
		}
	}
	return found
}
