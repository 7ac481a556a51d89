package lifu

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

var testDevices = []DeviceMatch{
	{Descriptor: "TX", VID: "0483", PID: "57AF"},
	{Descriptor: "HV", VID: "0483", PID: "A3B4"},
}

type portList struct {
	mu    sync.Mutex
	ports []*enumerator.PortDetails
	err   error
}

func (p *portList) set(ports ...*enumerator.PortDetails) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ports = ports
}

func (p *portList) list() ([]*enumerator.PortDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ports, p.err
}

func usb(name, vid, pid string) *enumerator.PortDetails {
	return &enumerator.PortDetails{Name: name, IsUSB: true, VID: vid, PID: pid}
}

func TestMatchPorts(t *testing.T) {
	list := []*enumerator.PortDetails{
		usb("/dev/ttyACM2", "0483", "57af"),
		usb("/dev/ttyACM1", "0483", "57AF"),
		{Name: "/dev/ttyS0"},
		usb("/dev/ttyACM3", "1234", "A3B4"),
	}

	found := matchPorts(list, testDevices)

	assert.Equal(t, map[string]string{"TX": "/dev/ttyACM1"}, found)
}

// pipeOpener открывает транспорт поверх net.Pipe и сохраняет сторону устройства.
type pipeOpener struct {
	mu      sync.Mutex
	devices map[string]net.Conn
	fail    bool
}

func (o *pipeOpener) open(cfg Config) (*Transport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return nil, errors.New("access denied")
	}
	host, dev := net.Pipe()
	tr, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	if err := tr.attach(host); err != nil {
		return nil, err
	}
	o.devices[cfg.PortName] = dev
	return tr, nil
}

func (o *pipeOpener) device(port string) net.Conn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.devices[port]
}

func newTestWatcher(pl *portList, op *pipeOpener) *PortWatcher {
	w := NewPortWatcher(WatcherConfig{Devices: testDevices, PollInterval: 10 * time.Millisecond})
	w.listPorts = pl.list
	w.openTransport = op.open
	return w
}

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestWatcherAttachDataDetach(t *testing.T) {
	pl := &portList{}
	op := &pipeOpener{devices: make(map[string]net.Conn)}
	w := newTestWatcher(pl, op)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Event, 16)
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, out) }()

	pl.set(usb("/dev/ttyACM0", "0483", "57AF"))
	ev := next(t, out)
	assert.Equal(t, Event{Kind: EventAttach, Descriptor: "TX", Port: "/dev/ttyACM0"}, ev)
	assert.True(t, w.Connected("TX"))
	_, err := w.Client("TX")
	assert.NoError(t, err)
	_, err = w.Client("HV")
	assert.ErrorIs(t, err, ErrNotConnected)

	dev := op.device("/dev/ttyACM0")
	require.NotNil(t, dev)
	go dev.Write([]byte("STATUS:STOPPED\n"))
	ev = next(t, out)
	assert.Equal(t, Event{Kind: EventData, Descriptor: "TX", Port: "/dev/ttyACM0", Line: "STATUS:STOPPED"}, ev)

	pl.set()
	ev = next(t, out)
	assert.Equal(t, Event{Kind: EventDetach, Descriptor: "TX", Port: "/dev/ttyACM0"}, ev)
	assert.False(t, w.Connected("TX"))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcherPortChangeReattaches(t *testing.T) {
	pl := &portList{}
	op := &pipeOpener{devices: make(map[string]net.Conn)}
	w := newTestWatcher(pl, op)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Event, 16)
	go w.Watch(ctx, out)

	pl.set(usb("COM5", "0483", "A3B4"))
	assert.Equal(t, EventAttach, next(t, out).Kind)

	pl.set(usb("COM7", "0483", "A3B4"))
	ev := next(t, out)
	assert.Equal(t, Event{Kind: EventDetach, Descriptor: "HV", Port: "COM5"}, ev)
	ev = next(t, out)
	assert.Equal(t, Event{Kind: EventAttach, Descriptor: "HV", Port: "COM7"}, ev)
}

func TestWatcherOpenFailureRetries(t *testing.T) {
	pl := &portList{}
	op := &pipeOpener{devices: make(map[string]net.Conn), fail: true}
	var logged sync.Once
	loggedCh := make(chan struct{})
	w := NewPortWatcher(WatcherConfig{
		Devices:      testDevices,
		PollInterval: 10 * time.Millisecond,
		Logger:       func(string) { logged.Do(func() { close(loggedCh) }) },
	})
	w.listPorts = pl.list
	w.openTransport = op.open

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Event, 16)
	go w.Watch(ctx, out)

	pl.set(usb("/dev/ttyACM0", "0483", "57AF"))
	select {
	case <-loggedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("open failure was not logged")
	}
	assert.False(t, w.Connected("TX"))

	op.mu.Lock()
	op.fail = false
	op.mu.Unlock()

	assert.Equal(t, EventAttach, next(t, out).Kind)
}

func TestWatcherListErrorKeepsPolling(t *testing.T) {
	pl := &portList{err: errors.New("enumeration unavailable")}
	op := &pipeOpener{devices: make(map[string]net.Conn)}
	w := newTestWatcher(pl, op)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Watch(ctx, make(chan Event, 1))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
