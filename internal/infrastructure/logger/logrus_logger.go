package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"lifuconsole/internal/domain/ports"
)

// Config задаёт уровень и необязательный файл для логов.
type Config struct {
	Level string // debug, info, warn, error, off
	File  string // если не пусто, логи дублируются в файл
}

// LogrusLogger реализует интерфейс ports.Logger поверх logrus.
type LogrusLogger struct {
	entry *logrus.Entry
}

// New создает логгер по конфигурации. Второе значение закрывает файл логов, если он открыт.
func New(cfg Config) (ports.Logger, func() error) {
	base := logrus.New()
	closer := func() error { return nil }

	level := strings.ToLower(strings.TrimSpace(cfg.Level))
	if level == "off" || level == "none" {
		base.SetOutput(io.Discard)
	} else {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		base.SetLevel(lvl)

		var out io.Writer = os.Stdout
		var fileErr error
		if cfg.File != "" {
			out, closer, fileErr = openLogFile(cfg.File)
		}
		base.SetOutput(out)
		if fileErr != nil {
			base.Warnf("Файл логов %s недоступен, вывод только в консоль: %v", cfg.File, fileErr)
		}
	}

	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &LogrusLogger{entry: logrus.NewEntry(base)}, closer
}

func openLogFile(path string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return os.Stdout, noop, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return os.Stdout, noop, err
	}
	return io.MultiWriter(os.Stdout, f), f.Close, nil
}

// FromLogrus оборачивает готовый *logrus.Logger (используется в тестах с hooks/test).
func FromLogrus(l *logrus.Logger) ports.Logger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// Nop возвращает логгер, который ничего не пишет.
func Nop() ports.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return FromLogrus(l)
}

func (l *LogrusLogger) Debug(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *LogrusLogger) Info(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *LogrusLogger) Warn(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *LogrusLogger) Error(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

func (l *LogrusLogger) Fatal(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}

func (l *LogrusLogger) Printf(format string, args ...interface{}) {
	l.entry.Printf(format, args...)
}

// With добавляет поле component; вложенные компоненты склеиваются через точку.
func (l *LogrusLogger) With(component string) ports.Logger {
	if prev, ok := l.entry.Data["component"]; ok {
		component = fmt.Sprintf("%v.%s", prev, component)
	}
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}
