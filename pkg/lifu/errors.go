package lifu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrPortClosed   = errors.New("lifu: port is closed")
	ErrTimeout      = errors.New("lifu: command timed out")
	ErrNotConnected = errors.New("lifu: device is not connected")
	ErrBadReply     = errors.New("lifu: malformed reply")
)

// DeviceError — ошибка, о которой сообщило само устройство (строка ERR).
type DeviceError struct {
	Code    int
	Message string
}

func (e *DeviceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lifu: device error %d", e.Code)
	}
	return fmt.Sprintf("lifu: device error %d: %s", e.Code, e.Message)
}

// ParseReply разбирает строку ответа. isReply == false означает, что строка
// не является ответом на команду (асинхронные данные).
func ParseReply(line string) (payload string, isReply bool, err error) {
	line = strings.TrimRight(line, "\r\n")

	switch {
	case line == "OK":
		return "", true, nil
	case strings.HasPrefix(line, "OK "):
		return strings.TrimSpace(line[3:]), true, nil
	case line == "ERR":
		return "", true, &DeviceError{Code: -1}
	case strings.HasPrefix(line, "ERR "):
		rest := strings.TrimSpace(line[4:])
		codeStr, msg, _ := strings.Cut(rest, " ")
		code, convErr := strconv.Atoi(codeStr)
		if convErr != nil {
			return "", true, &DeviceError{Code: -1, Message: rest}
		}
		return "", true, &DeviceError{Code: code, Message: strings.TrimSpace(msg)}
	default:
		return "", false, nil
	}
}
