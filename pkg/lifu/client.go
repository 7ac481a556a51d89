package lifu

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Commander отправляет одну строковую команду и возвращает данные ответа.
type Commander interface {
	Command(ctx context.Context, cmd string) (string, error)
}

// Client предоставляет типизированные команды поверх транспорта.
type Client struct {
	conn Commander
}

// NewClient создает клиента для одного устройства.
func NewClient(conn Commander) *Client {
	return &Client{conn: conn}
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.conn.Command(ctx, cmdPing)
	return err
}

// Echo отправляет данные и возвращает то, что устройство вернуло.
func (c *Client) Echo(ctx context.Context, data []byte) ([]byte, error) {
	resp, err := c.conn.Command(ctx, cmdEcho+" "+hex.EncodeToString(data))
	if err != nil {
		return nil, err
	}
	out, err := hex.DecodeString(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: ECHO %q", ErrBadReply, resp)
	}
	return out, nil
}

func (c *Client) Version(ctx context.Context) (string, error) {
	return c.conn.Command(ctx, cmdVersion)
}

func (c *Client) HardwareID(ctx context.Context) (string, error) {
	return c.conn.Command(ctx, cmdHardwareID)
}

// Temperature возвращает температуру TX и окружающей среды ("36.5,22.1").
func (c *Client) Temperature(ctx context.Context) (tx, ambient float64, err error) {
	resp, err := c.conn.Command(ctx, cmdTemperature)
	if err != nil {
		return 0, 0, err
	}
	a, b, ok := strings.Cut(resp, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: TEMP %q", ErrBadReply, resp)
	}
	if tx, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, fmt.Errorf("%w: TEMP %q", ErrBadReply, resp)
	}
	if ambient, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, fmt.Errorf("%w: TEMP %q", ErrBadReply, resp)
	}
	return tx, ambient, nil
}

func (c *Client) SetRGB(ctx context.Context, state int) error {
	_, err := c.conn.Command(ctx, fmt.Sprintf("%s %d", cmdRGBSet, state))
	return err
}

func (c *Client) RGB(ctx context.Context) (int, error) {
	resp, err := c.conn.Command(ctx, cmdRGBGet)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(resp))
	if err != nil {
		return 0, fmt.Errorf("%w: RGB %q", ErrBadReply, resp)
	}
	return n, nil
}

func (c *Client) SetTwelveVolt(ctx context.Context, on bool) error {
	_, err := c.conn.Command(ctx, cmd12V+" "+onOff(on))
	return err
}

func (c *Client) SetHighVoltage(ctx context.Context, on bool) error {
	_, err := c.conn.Command(ctx, cmdHV+" "+onOff(on))
	return err
}

// PowerStatus разбирает ответ вида "12V:ON,HV:OFF".
func (c *Client) PowerStatus(ctx context.Context) (twelveV, hv bool, err error) {
	resp, err := c.conn.Command(ctx, cmdPower)
	if err != nil {
		return false, false, err
	}
	var seen12, seenHV bool
	for _, part := range strings.Split(resp, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		on := strings.EqualFold(val, "ON")
		switch strings.ToUpper(key) {
		case "12V":
			twelveV, seen12 = on, true
		case "HV":
			hv, seenHV = on, true
		}
	}
	if !seen12 || !seenHV {
		return false, false, fmt.Errorf("%w: POWER %q", ErrBadReply, resp)
	}
	return twelveV, hv, nil
}

// Trigger возвращает JSON текущей настройки триггера.
func (c *Client) Trigger(ctx context.Context) (string, error) {
	return c.conn.Command(ctx, cmdTriggerGet)
}

// SetTrigger отправляет JSON триггера; устройство отвечает применённой настройкой.
func (c *Client) SetTrigger(ctx context.Context, payload string) (string, error) {
	return c.conn.Command(ctx, cmdTriggerSet+" "+payload)
}

// SetSolution отправляет решение одной строкой JSON.
func (c *Client) SetSolution(ctx context.Context, p *SolutionPayload) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	_, err = c.conn.Command(ctx, cmdSolution+" "+string(data))
	return err
}

func (c *Client) Start(ctx context.Context) error {
	_, err := c.conn.Command(ctx, cmdStart)
	return err
}

func (c *Client) Stop(ctx context.Context) error {
	_, err := c.conn.Command(ctx, cmdStop)
	return err
}

func (c *Client) Reset(ctx context.Context) error {
	_, err := c.conn.Command(ctx, cmdReset)
	return err
}
