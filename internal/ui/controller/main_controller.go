package controller

import (
	"bytes"
	"context"
	"sync"
	"time"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/internal/service/events"
	"lifuconsole/internal/service/solution"
	"lifuconsole/internal/service/sonication"
	"lifuconsole/internal/service/status"
	"lifuconsole/internal/ui/viewmodel"
)

// Значения полной конфигурации, которые не вводятся в форме передатчика.
const (
	transmitterPulseCount    = 10
	transmitterTrainInterval = 1.0
	transmitterTrainCount    = 1
)

// MainController — фасад команд для интерфейса. Ошибки логируются и не
// возвращаются: результат виден через ViewModel.
type MainController struct {
	vm      *viewmodel.MainViewModel
	driver  ports.Driver
	builder *solution.Builder
	guard   *sonication.Guard
	trigger *status.TriggerTracker
	bus     *events.Bus
	logger  ports.Logger
	timeout time.Duration

	mu          sync.Mutex
	onUpdate    func()
	unsubscribe func()
}

// Deps — зависимости контроллера.
type Deps struct {
	Driver  ports.Driver
	Builder *solution.Builder
	Guard   *sonication.Guard
	Trigger *status.TriggerTracker
	Bus     *events.Bus
	Logger  ports.Logger
	Timeout time.Duration // таймаут одной команды устройству
}

// NewMainController создает новый экземпляр MainController.
func NewMainController(vm *viewmodel.MainViewModel, deps Deps) *MainController {
	if deps.Timeout <= 0 {
		deps.Timeout = 5 * time.Second
	}
	return &MainController{
		vm:      vm,
		driver:  deps.Driver,
		builder: deps.Builder,
		guard:   deps.Guard,
		trigger: deps.Trigger,
		bus:     deps.Bus,
		logger:  deps.Logger.With("UI"),
		timeout: deps.Timeout,
	}
}

// Initialize подписывает ViewModel на события шины.
func (c *MainController) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		return
	}
	c.unsubscribe = c.bus.Subscribe(func(e events.Event) {
		if c.vm.Apply(e) {
			c.notifyUpdate()
		}
	})
}

// Close отписывается от шины.
func (c *MainController) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// ViewModel возвращает ViewModel главного окна.
func (c *MainController) ViewModel() *viewmodel.MainViewModel {
	return c.vm
}

// SetOnUpdate устанавливает callback для обновления пользовательского интерфейса.
func (c *MainController) SetOnUpdate(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = callback
}

func (c *MainController) notifyUpdate() {
	c.mu.Lock()
	fn := c.onUpdate
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *MainController) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// ConfigureSimple применяет решение упрощённого режима.
func (c *MainController) ConfigureSimple(name string, frequency float64, pulseCount int) {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.builder.ConfigureSimple(ctx, solution.SimpleParams{
		Name: name, Frequency: frequency, PulseCount: pulseCount,
	}); err != nil {
		c.logger.Warn("Конфигурация '%s' не выполнена: %v", name, err)
	}
}

// ConfigureTransmitter применяет решение с фокусом в (x, y, z) мм и
// рассчитанными задержками.
func (c *MainController) ConfigureTransmitter(x, y, z, frequency, voltage, triggerHz float64) {
	ctx, cancel := c.ctx()
	defer cancel()
	err := c.builder.ConfigureFull(ctx, solution.FullParams{
		Name:               "Solution",
		X:                  x,
		Y:                  y,
		Z:                  z,
		Frequency:          frequency,
		Voltage:            voltage,
		TriggerHz:          triggerHz,
		PulseCount:         transmitterPulseCount,
		PulseTrainInterval: transmitterTrainInterval,
		PulseTrainCount:    transmitterTrainCount,
		Duration:           solution.DefaultPulseDuration,
		ComputeDelays:      true,
	})
	if err != nil {
		c.logger.Warn("Конфигурация передатчика не выполнена: %v", err)
		return
	}
	c.logger.Info("Передатчик сконфигурирован")
}

// ResetConfiguration сбрасывает признак конфигурации.
func (c *MainController) ResetConfiguration() {
	if err := c.builder.Reset(); err != nil {
		c.logger.Warn("Сброс конфигурации не выполнен: %v", err)
	}
}

func (c *MainController) StartSonication() {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.guard.Start(ctx); err != nil {
		c.logger.Warn("Сонификация не запущена: %v", err)
	}
}

func (c *MainController) StopSonication() {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.guard.Stop(ctx); err != nil {
		c.logger.Warn("Сонификация не остановлена: %v", err)
	}
}

// QueryDeviceInfo запрашивает версию прошивки и аппаратный ID.
func (c *MainController) QueryDeviceInfo(d models.Descriptor) {
	ctx, cancel := c.ctx()
	defer cancel()

	fw, err := c.driver.GetVersion(ctx, d)
	if err != nil {
		c.logger.Error("Версия %s: %v", d, err)
		return
	}
	id, err := c.driver.GetHardwareID(ctx, d)
	if err != nil {
		c.logger.Error("Аппаратный ID %s: %v", d, err)
		return
	}
	c.bus.Publish(events.DeviceInfoReceived{Descriptor: d, Firmware: fw, HardwareID: id})
}

func (c *MainController) QueryTemperature() {
	ctx, cancel := c.ctx()
	defer cancel()

	t, err := c.driver.GetTemperature(ctx)
	if err != nil {
		c.logger.Error("Температура: %v", err)
		return
	}
	c.bus.Publish(events.TemperatureReceived{TX: t.TX, Ambient: t.Ambient})
}

func (c *MainController) QueryPowerStatus() {
	ctx, cancel := c.ctx()
	defer cancel()

	ps, err := c.driver.GetPowerStatus(ctx)
	if err != nil {
		c.logger.Error("Состояние питания: %v", err)
		return
	}
	c.bus.Publish(events.PowerStatusReceived{TwelveVOn: ps.TwelveVOn, HVOn: ps.HVOn})
}

// SetTwelveVolt включает шину 12 В и публикует подтверждённое состояние.
func (c *MainController) SetTwelveVolt(on bool) {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.driver.SetTwelveVolt(ctx, on); err != nil {
		c.logger.Error("12V: %v", err)
		return
	}
	c.QueryPowerStatus()
}

// SetHighVoltage включает высокое напряжение и публикует подтверждённое состояние.
func (c *MainController) SetHighVoltage(on bool) {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.driver.SetHighVoltage(ctx, on); err != nil {
		c.logger.Error("HV: %v", err)
		return
	}
	c.QueryPowerStatus()
}

func (c *MainController) QueryRGB(d models.Descriptor) {
	ctx, cancel := c.ctx()
	defer cancel()

	st, err := c.driver.GetRGB(ctx, d)
	if err != nil {
		c.logger.Error("RGB %s: %v", d, err)
		return
	}
	c.bus.Publish(events.RGBStateReceived{State: int(st), Label: st.Label()})
}

func (c *MainController) SetRGB(d models.Descriptor, st models.RGBState) {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.driver.SetRGB(ctx, d, st); err != nil {
		c.logger.Error("RGB %s: %v", d, err)
		return
	}
	c.QueryRGB(d)
}

// QueryTrigger читает настройку триггера и обновляет его состояние.
func (c *MainController) QueryTrigger() {
	ctx, cancel := c.ctx()
	defer cancel()

	payload, err := c.driver.GetTrigger(ctx)
	if err != nil {
		c.logger.Error("Триггер: %v", err)
		return
	}
	_ = c.trigger.Update(payload)
}

// SetTrigger отправляет JSON триггера; состояние берётся из ответа устройства.
func (c *MainController) SetTrigger(payload string) {
	ctx, cancel := c.ctx()
	defer cancel()

	resp, err := c.driver.SetTrigger(ctx, payload)
	if err != nil {
		c.logger.Error("Установка триггера: %v", err)
		return
	}
	_ = c.trigger.Update(resp)
}

// Ping проверяет связь с устройством.
func (c *MainController) Ping(d models.Descriptor) bool {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.driver.Ping(ctx, d); err != nil {
		c.logger.Warn("Ping %s: %v", d, err)
		return false
	}
	return true
}

// Echo отправляет данные устройству и сообщает, вернулись ли они без изменений.
func (c *MainController) Echo(d models.Descriptor, data []byte) bool {
	ctx, cancel := c.ctx()
	defer cancel()
	resp, err := c.driver.Echo(ctx, d, data)
	if err != nil {
		c.logger.Warn("Echo %s: %v", d, err)
		return false
	}
	if !bytes.Equal(resp, data) {
		c.logger.Warn("Echo %s: ответ %x не совпадает с %x", d, resp, data)
		return false
	}
	return true
}

// SoftReset перезапускает устройство. Сброс TX завершает сонификацию
// и сбрасывает признак конфигурации.
func (c *MainController) SoftReset(d models.Descriptor) {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.driver.SoftReset(ctx, d); err != nil {
		c.logger.Error("Сброс %s: %v", d, err)
		return
	}
	if d == models.DescriptorTX {
		c.guard.HandleReset()
		c.ResetConfiguration()
	}
}
