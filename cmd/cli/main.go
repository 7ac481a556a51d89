package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"lifuconsole/internal/app"
	"lifuconsole/internal/config"
	"lifuconsole/internal/domain/models"
	"lifuconsole/internal/infrastructure/driver"
	"lifuconsole/internal/service/solution"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// КОНФИГУРАЦИЯ
	cfgPath := os.Getenv("LIFU_CONFIG")
	if cfgPath == "" {
		cfgPath = "lifu.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Run(ctx) }()

	fmt.Println("Ожидание подключения TX...")
	if !waitFor(15*time.Second, a.Machine.TxConnected) {
		log.Fatalf("Fatal: TX не подключен")
	}
	fmt.Println("TX подключен. Начинаем опрос...")

	// Вспомогательная функция для вывода
	printSection := func(name string, data interface{}, err error) {
		fmt.Printf("\n--- [%s] ---\n", name)
		if err != nil {
			fmt.Printf("ОШИБКА: %v\n", err)
			return
		}
		switch v := data.(type) {
		case string, int, bool:
			fmt.Printf("Результат: %v\n", v)
		default:
			b, _ := json.MarshalIndent(data, "", "  ")
			fmt.Println(string(b))
		}
	}

	call := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, cfg.Devices.CommandTimeout)
	}
	drv := a.Driver

	// 1. Идентификация
	for _, d := range []models.Descriptor{models.DescriptorTX, models.DescriptorHV} {
		c, done := call()
		ver, err := drv.GetVersion(c, d)
		printSection(string(d)+" GetVersion", ver, err)
		hw, err := drv.GetHardwareID(c, d)
		printSection(string(d)+" GetHardwareID", hw, err)
		done()
	}

	// 2. Температура
	c, done := call()
	temp, err := drv.GetTemperature(c)
	printSection("GetTemperature", temp, err)

	// 3. Питание
	power, err := drv.GetPowerStatus(c)
	printSection("GetPowerStatus", power, err)

	// 4. Триггер
	trig, err := drv.GetTrigger(c)
	printSection("GetTrigger", trig, err)
	done()

	// 5. Решение: из файла LIFU_SOLUTION_FILE или простое по умолчанию
	c, done = call()
	sol, err := loadSolution(a)
	if err == nil {
		err = a.Builder.Apply(c, sol)
	}
	done()
	printSection("Configure", a.Machine.State().String(), err)

	// Применённое решение сохраняется в LIFU_SOLUTION_OUT
	if out := os.Getenv("LIFU_SOLUTION_OUT"); out != "" && err == nil {
		printSection("SaveSolution", out, saveSolution(out, sol))
	}

	// 6. Сонификация, если всё готово
	if a.Machine.State() == models.StateReady {
		c, done = call()
		err = a.Guard.Start(c)
		done()
		printSection("Start", a.Machine.State().String(), err)

		time.Sleep(time.Second)

		c, done = call()
		err = a.Guard.Stop(c)
		done()
		printSection("Stop", a.Machine.State().String(), err)
	} else {
		fmt.Printf("\nСонификация пропущена: состояние %s\n", a.Machine.State())
	}

	fmt.Println("\nТест завершен.")
}

// loadSolution читает решение из LIFU_SOLUTION_FILE или строит простое по умолчанию.
func loadSolution(a *app.App) (*models.Solution, error) {
	path := os.Getenv("LIFU_SOLUTION_FILE")
	if path == "" {
		return a.Builder.BuildSimple(solution.SimpleParams{Frequency: 400e3, PulseCount: 10})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}
	return driver.LoadSolutionFile(data, a.Builder.Transducer().ElementCount())
}

func saveSolution(path string, s *models.Solution) error {
	data, err := driver.EncodeSolutionFile(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return cond()
}
