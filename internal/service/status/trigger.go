package status

import (
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/service/events"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	TriggerRunning = "RUNNING"
	TriggerStopped = "STOPPED"
)

// TriggerPayload — JSON, который TX возвращает на запрос/установку триггера.
// Остальные поля (частота, длительность и т.п.) передаются как есть.
type TriggerPayload struct {
	TriggerStatus *string `json:"TriggerStatus,omitempty"`
}

// TriggerTracker хранит подтверждённое устройством состояние триггера.
// Уведомление TriggerChanged публикуется только при смене значения.
type TriggerTracker struct {
	stepMu sync.Mutex

	mu      sync.Mutex
	running bool

	bus    *events.Bus
	logger ports.Logger
}

// NewTriggerTracker создает трекер в состоянии "остановлен".
func NewTriggerTracker(bus *events.Bus, logger ports.Logger) *TriggerTracker {
	return &TriggerTracker{bus: bus, logger: logger.With("TRIGGER")}
}

// ParseTriggerStatus извлекает TriggerStatus из JSON. Отсутствующее поле означает STOPPED.
func ParseTriggerStatus(payload string) (string, error) {
	var p TriggerPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("разбор JSON триггера: %w", err)
	}
	if p.TriggerStatus == nil {
		return TriggerStopped, nil
	}
	return *p.TriggerStatus, nil
}

// Update применяет JSON от устройства. Некорректный JSON пишется в лог
// и не меняет состояние.
func (t *TriggerTracker) Update(payload string) error {
	st, err := ParseTriggerStatus(payload)
	if err != nil {
		t.logger.Error("Некорректные данные триггера %q: %v", payload, err)
		return err
	}
	t.Confirm(st == TriggerRunning)
	return nil
}

// Confirm применяет значение, подтверждённое прямым вызовом устройства.
func (t *TriggerTracker) Confirm(running bool) {
	t.stepMu.Lock()
	defer t.stepMu.Unlock()

	t.mu.Lock()
	changed := t.running != running
	t.running = running
	t.mu.Unlock()

	if !changed {
		return
	}
	t.logger.Info("Триггер: running=%v", running)
	t.bus.Publish(events.TriggerChanged{Running: running})
}

// Running возвращает текущее значение.
func (t *TriggerTracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
