package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config содержит конфигурацию приложения
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Devices    DevicesConfig    `yaml:"devices"`
	Transducer TransducerConfig `yaml:"transducer"`
	Solution   SolutionConfig   `yaml:"solution"`
}

// LoggingConfig содержит настройки логгера
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DeviceConfig описывает одно USB-устройство
type DeviceConfig struct {
	VID      string `yaml:"vid"`
	PID      string `yaml:"pid"`
	BaudRate int    `yaml:"baud_rate"`
}

// DevicesConfig содержит настройки обнаружения и обмена с TX/HV
type DevicesConfig struct {
	TX             DeviceConfig  `yaml:"tx"`
	HV             DeviceConfig  `yaml:"hv"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	Charset        string        `yaml:"charset"`
	TestMode       bool          `yaml:"test_mode"` // эмуляция устройств без оборудования
}

// TransducerConfig описывает решётку преобразователя
type TransducerConfig struct {
	ID      string  `yaml:"id"`
	Rows    int     `yaml:"rows"`
	Cols    int     `yaml:"cols"`
	PitchMM float64 `yaml:"pitch_mm"`
}

// SolutionConfig содержит значения по умолчанию для решений
type SolutionConfig struct {
	DefaultVoltage float64 `yaml:"default_voltage"`
	TargetZMM      float64 `yaml:"target_z_mm"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Devices: DevicesConfig{
			TX:             DeviceConfig{VID: "0483", PID: "57AF", BaudRate: 921600},
			HV:             DeviceConfig{VID: "0483", PID: "A3B4", BaudRate: 921600},
			PollInterval:   time.Second,
			CommandTimeout: 3 * time.Second,
			Charset:        "iso-8859-1",
		},
		Transducer: TransducerConfig{ID: "example_transducer", Rows: 8, Cols: 8, PitchMM: 4},
		Solution:   SolutionConfig{DefaultVoltage: 12, TargetZMM: 30},
	}
}

// Load читает YAML-файл (если задан и существует), затем .env и переменные окружения.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("разбор %s: %w", filename, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("чтение %s: %w", filename, err)
		}
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределяет значения переменными окружения LIFU_*
func applyEnv(cfg *Config) {
	cfg.Logging.Level = getEnv("LIFU_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = getEnv("LIFU_LOG_FILE", cfg.Logging.File)

	cfg.Devices.TX.VID = getEnv("LIFU_TX_VID", cfg.Devices.TX.VID)
	cfg.Devices.TX.PID = getEnv("LIFU_TX_PID", cfg.Devices.TX.PID)
	cfg.Devices.TX.BaudRate = getEnvAsInt("LIFU_TX_BAUD", cfg.Devices.TX.BaudRate)
	cfg.Devices.HV.VID = getEnv("LIFU_HV_VID", cfg.Devices.HV.VID)
	cfg.Devices.HV.PID = getEnv("LIFU_HV_PID", cfg.Devices.HV.PID)
	cfg.Devices.HV.BaudRate = getEnvAsInt("LIFU_HV_BAUD", cfg.Devices.HV.BaudRate)
	cfg.Devices.PollInterval = getEnvAsDuration("LIFU_POLL_INTERVAL", cfg.Devices.PollInterval)
	cfg.Devices.CommandTimeout = getEnvAsDuration("LIFU_COMMAND_TIMEOUT", cfg.Devices.CommandTimeout)
	cfg.Devices.Charset = getEnv("LIFU_CHARSET", cfg.Devices.Charset)
	cfg.Devices.TestMode = getEnvAsBool("LIFU_TEST_MODE", cfg.Devices.TestMode)

	cfg.Transducer.Rows = getEnvAsInt("LIFU_TRANSDUCER_ROWS", cfg.Transducer.Rows)
	cfg.Transducer.Cols = getEnvAsInt("LIFU_TRANSDUCER_COLS", cfg.Transducer.Cols)
	cfg.Solution.DefaultVoltage = getEnvAsFloat("LIFU_DEFAULT_VOLTAGE", cfg.Solution.DefaultVoltage)
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Transducer.Rows <= 0 || c.Transducer.Cols <= 0 {
		return fmt.Errorf("transducer: некорректный размер %dx%d", c.Transducer.Rows, c.Transducer.Cols)
	}
	if c.Transducer.PitchMM <= 0 {
		return fmt.Errorf("transducer: pitch_mm должен быть положительным")
	}
	if c.Devices.PollInterval <= 0 {
		return fmt.Errorf("devices: poll_interval должен быть положительным")
	}
	if c.Devices.CommandTimeout <= 0 {
		return fmt.Errorf("devices: command_timeout должен быть положительным")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	valueStr := getEnv(name, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	val, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return val
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
