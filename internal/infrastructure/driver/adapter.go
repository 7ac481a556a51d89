package driver

import (
	"context"
	"fmt"

	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/domain/ports"
	"lifuconsole/pkg/lifu"
)

// Devices — источник клиентов подключенных устройств (lifu.PortWatcher).
type Devices interface {
	Client(descriptor string) (*lifu.Client, error)
	Watch(ctx context.Context, out chan<- lifu.Event) error
}

// LifuAdapter адаптирует pkg/lifu к интерфейсам ports.Driver и ports.DeviceWatcher.
type LifuAdapter struct {
	devices Devices
}

var (
	_ ports.Driver        = (*LifuAdapter)(nil)
	_ ports.DeviceWatcher = (*LifuAdapter)(nil)
)

// NewLifuAdapter создает новый экземпляр LifuAdapter.
func NewLifuAdapter(devices Devices) *LifuAdapter {
	return &LifuAdapter{devices: devices}
}

func (a *LifuAdapter) client(d models.Descriptor) (*lifu.Client, error) {
	c, err := a.devices.Client(string(d))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNotConnected, err)
	}
	return c, nil
}

// Watch пересылает события наблюдателя портов в доменном виде.
func (a *LifuAdapter) Watch(ctx context.Context, out chan<- models.DeviceEvent) error {
	raw := make(chan lifu.Event, cap(out))
	errCh := make(chan error, 1)
	go func() { errCh <- a.devices.Watch(ctx, raw) }()

	for {
		select {
		case err := <-errCh:
			return err
		case ev := <-raw:
			select {
			case out <- ConvertEvent(ev):
			case <-ctx.Done():
				return <-errCh
			}
		}
	}
}

func (a *LifuAdapter) Ping(ctx context.Context, d models.Descriptor) error {
	c, err := a.client(d)
	if err != nil {
		return err
	}
	return wrap(c.Ping(ctx))
}

func (a *LifuAdapter) Echo(ctx context.Context, d models.Descriptor, data []byte) ([]byte, error) {
	c, err := a.client(d)
	if err != nil {
		return nil, err
	}
	out, err := c.Echo(ctx, data)
	return out, wrap(err)
}

func (a *LifuAdapter) SoftReset(ctx context.Context, d models.Descriptor) error {
	c, err := a.client(d)
	if err != nil {
		return err
	}
	return wrap(c.Reset(ctx))
}

// GetVersion получает версию прошивки.
func (a *LifuAdapter) GetVersion(ctx context.Context, d models.Descriptor) (string, error) {
	c, err := a.client(d)
	if err != nil {
		return "", err
	}
	v, err := c.Version(ctx)
	return v, wrap(err)
}

// GetHardwareID получает аппаратный идентификатор.
func (a *LifuAdapter) GetHardwareID(ctx context.Context, d models.Descriptor) (string, error) {
	c, err := a.client(d)
	if err != nil {
		return "", err
	}
	id, err := c.HardwareID(ctx)
	return id, wrap(err)
}

// GetTemperature читает датчики TX.
func (a *LifuAdapter) GetTemperature(ctx context.Context) (*models.Temperature, error) {
	c, err := a.client(models.DescriptorTX)
	if err != nil {
		return nil, err
	}
	tx, amb, err := c.Temperature(ctx)
	if err != nil {
		return nil, wrap(err)
	}
	return &models.Temperature{TX: tx, Ambient: amb}, nil
}

func (a *LifuAdapter) SetTwelveVolt(ctx context.Context, on bool) error {
	c, err := a.client(models.DescriptorHV)
	if err != nil {
		return err
	}
	return wrap(c.SetTwelveVolt(ctx, on))
}

func (a *LifuAdapter) SetHighVoltage(ctx context.Context, on bool) error {
	c, err := a.client(models.DescriptorHV)
	if err != nil {
		return err
	}
	return wrap(c.SetHighVoltage(ctx, on))
}

// GetPowerStatus читает состояние шин питания HV.
func (a *LifuAdapter) GetPowerStatus(ctx context.Context) (*models.PowerStatus, error) {
	c, err := a.client(models.DescriptorHV)
	if err != nil {
		return nil, err
	}
	v12, hv, err := c.PowerStatus(ctx)
	if err != nil {
		return nil, wrap(err)
	}
	return &models.PowerStatus{TwelveVOn: v12, HVOn: hv}, nil
}

func (a *LifuAdapter) SetRGB(ctx context.Context, d models.Descriptor, state models.RGBState) error {
	c, err := a.client(d)
	if err != nil {
		return err
	}
	return wrap(c.SetRGB(ctx, int(state)))
}

func (a *LifuAdapter) GetRGB(ctx context.Context, d models.Descriptor) (models.RGBState, error) {
	c, err := a.client(d)
	if err != nil {
		return models.RGBOff, err
	}
	n, err := c.RGB(ctx)
	if err != nil {
		return models.RGBOff, wrap(err)
	}
	return models.RGBState(n), nil
}

func (a *LifuAdapter) GetTrigger(ctx context.Context) (string, error) {
	c, err := a.client(models.DescriptorTX)
	if err != nil {
		return "", err
	}
	s, err := c.Trigger(ctx)
	return s, wrap(err)
}

func (a *LifuAdapter) SetTrigger(ctx context.Context, payload string) (string, error) {
	c, err := a.client(models.DescriptorTX)
	if err != nil {
		return "", err
	}
	s, err := c.SetTrigger(ctx, payload)
	return s, wrap(err)
}

// SetSolution отправляет решение на TX.
func (a *LifuAdapter) SetSolution(ctx context.Context, s *models.Solution) error {
	c, err := a.client(models.DescriptorTX)
	if err != nil {
		return err
	}
	return wrap(c.SetSolution(ctx, ConvertSolutionToPayload(s)))
}

func (a *LifuAdapter) StartSonication(ctx context.Context) error {
	c, err := a.client(models.DescriptorTX)
	if err != nil {
		return err
	}
	return wrap(c.Start(ctx))
}

func (a *LifuAdapter) StopSonication(ctx context.Context) error {
	c, err := a.client(models.DescriptorTX)
	if err != nil {
		return err
	}
	return wrap(c.Stop(ctx))
}

// wrap помечает ошибки транспорта доменным ErrTransport.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", models.ErrTransport, err)
}
