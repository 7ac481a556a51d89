package events

import "sync"

// Listener получает события шины.
type Listener func(Event)

type subscription struct {
	id uint64
	fn Listener
}

// Bus доставляет события подписчикам синхронно, в порядке подписки.
// Publish сериализован: события приходят каждому подписчику ровно один раз
// и в том же порядке, в каком были опубликованы.
// Подписчик не должен вызывать Publish той же шины изнутри обработчика.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64

	publishMu sync.Mutex
}

// NewBus создает пустую шину событий.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish доставляет событие всем текущим подписчикам.
func (b *Bus) Publish(e Event) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}
