package lifu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Config определяет параметры подключения к одному устройству.
type Config struct {
	PortName string           `json:"portName"`
	BaudRate int              `json:"baudRate,omitempty"`
	Timeout  time.Duration    `json:"timeout,omitempty"` // Таймаут ответа на команду
	Charset  string           `json:"charset,omitempty"`
	Logger   func(msg string) `json:"-"`
}

type reply struct {
	payload string
	err     error
}

// Transport инкапсулирует работу с последовательным портом одного устройства.
type Transport struct {
	config Config
	codec  *Codec

	cmdMu sync.Mutex // одна команда в полёте

	mu      sync.Mutex
	port    io.ReadWriteCloser
	pending chan reply
	closed  chan struct{}

	readerDone chan struct{}
}

// NewTransport создаёт транспорт с заданной конфигурацией
func NewTransport(config Config) (*Transport, error) {
	if config.Timeout == 0 {
		config.Timeout = 3 * time.Second
	}
	if config.BaudRate == 0 {
		config.BaudRate = 921600
	}
	codec, err := NewCodec(config.Charset)
	if err != nil {
		return nil, err
	}
	return &Transport{config: config, codec: codec}, nil
}

// Open открывает COM-порт (8N1).
func (t *Transport) Open() error {
	mode := &serial.Mode{
		BaudRate: t.config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(t.config.PortName, mode)
	if err != nil {
		return fmt.Errorf("ошибка открытия порта %s: %w", t.config.PortName, err)
	}
	return t.attach(port)
}

// attach подключает транспорт к открытому потоку
func (t *Transport) attach(port io.ReadWriteCloser) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port != nil {
		port.Close()
		return fmt.Errorf("порт %s уже открыт", t.config.PortName)
	}
	t.port = port
	t.closed = make(chan struct{})
	t.readerDone = nil
	return nil
}

// PortName возвращает имя порта.
func (t *Transport) PortName() string {
	return t.config.PortName
}

// StartReading запускает чтение строк. Ответы на команды передаются ожидающей
// команде, прочие строки — в onData в порядке поступления.
func (t *Transport) StartReading(onData func(line string)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return ErrPortClosed
	}
	if t.readerDone != nil {
		return nil
	}
	r, err := t.codec.NewReader(t.port)
	if err != nil {
		return err
	}
	done := make(chan struct{})
	t.readerDone = done
	go t.readLoop(r, t.closed, done, onData)
	return nil
}

func (t *Transport) readLoop(r io.Reader, closed <-chan struct{}, done chan<- struct{}, onData func(string)) {
	defer close(done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		t.log("<< RX: %s", line)

		if payload, isReply, err := ParseReply(line); isReply && t.deliver(reply{payload: payload, err: err}) {
			continue
		}
		if onData != nil {
			onData(line)
		}
	}

	select {
	case <-closed:
	default:
		if err := scanner.Err(); err != nil {
			t.log("Ошибка чтения порта %s: %v", t.config.PortName, err)
		}
	}
}

// deliver передаёт ответ ожидающей команде. false — никто не ждёт.
func (t *Transport) deliver(r reply) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		return false
	}
	t.pending <- r
	t.pending = nil
	return true
}

// Command отправляет команду и ждёт ответа OK/ERR.
func (t *Transport) Command(ctx context.Context, cmd string) (string, error) {
	t.cmdMu.Lock()
	defer t.cmdMu.Unlock()

	ch := make(chan reply, 1)

	t.mu.Lock()
	port, closed := t.port, t.closed
	if port == nil {
		t.mu.Unlock()
		return "", ErrPortClosed
	}
	t.pending = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		if t.pending == ch {
			t.pending = nil
		}
		t.mu.Unlock()
	}()

	data, err := t.codec.Encode(cmd + "\n")
	if err != nil {
		return "", err
	}
	t.log(">> TX: %s", cmd)
	if _, err := port.Write(data); err != nil {
		return "", fmt.Errorf("ошибка записи в порт %s: %w", t.config.PortName, err)
	}

	timer := time.NewTimer(t.config.Timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.payload, r.err
	case <-closed:
		return "", ErrPortClosed
	case <-timer.C:
		return "", fmt.Errorf("%w: %s", ErrTimeout, cmd)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close закрывает порт и ждёт завершения чтения. Повторный вызов безопасен.
func (t *Transport) Close() error {
	t.mu.Lock()
	port, done := t.port, t.readerDone
	if port == nil {
		t.mu.Unlock()
		return nil
	}
	t.port = nil
	close(t.closed)
	t.mu.Unlock()

	err := port.Close()
	if done != nil {
		<-done
	}
	return err
}

func (t *Transport) log(format string, args ...interface{}) {
	if t.config.Logger != nil {
		t.config.Logger(fmt.Sprintf(format, args...))
	}
}
