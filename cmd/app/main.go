package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"lifuconsole/internal/app"
	"lifuconsole/internal/config"
	"lifuconsole/internal/domain/models"
)

func main() {
	// 1. Конфигурация: yaml-файл, .env и переменные LIFU_*
	cfgPath := os.Getenv("LIFU_CONFIG")
	if cfgPath == "" {
		cfgPath = "lifu.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// 2. Сборка сервисов
	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	log := a.Logger
	log.Info("Application starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Вывод изменений состояния
	ctrl := a.Controller
	vm := ctrl.ViewModel()
	var last models.ConnectionState = -1
	ctrl.SetOnUpdate(func() {
		if st := vm.State(); st != last {
			last = st
			fmt.Printf("[state] %s (TX=%v HV=%v trigger=%v)\n", st, vm.TxConnected(), vm.HvConnected(), vm.TriggerRunning())
		}
	})

	// 4. Консоль команд
	go readCommands(a, stop)

	if err := a.Run(ctx); err != nil {
		log.Error("Run: %v", err)
	}
	log.Info("Application stopped")
}

func readCommands(a *app.App, quit func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if !dispatch(a, fields) {
			quit()
			return
		}
	}
}

// dispatch выполняет одну команду. false означает выход.
func dispatch(a *app.App, f []string) bool {
	ctrl := a.Controller
	vm := ctrl.ViewModel()
	switch f[0] {
	case "quit", "exit":
		return false
	case "configure":
		freq := argFloat(f, 1, 400e3)
		pulses := int(argFloat(f, 2, 10))
		ctrl.ConfigureSimple("", freq, pulses)
	case "focus":
		// focus x y z freq voltage triggerHz
		ctrl.ConfigureTransmitter(argFloat(f, 1, 0), argFloat(f, 2, 0), argFloat(f, 3, 30),
			argFloat(f, 4, 400e3), argFloat(f, 5, 12), argFloat(f, 6, 10))
	case "reset":
		ctrl.ResetConfiguration()
	case "start":
		ctrl.StartSonication()
	case "stop":
		ctrl.StopSonication()
	case "info":
		ctrl.QueryDeviceInfo(models.DescriptorTX)
		ctrl.QueryDeviceInfo(models.DescriptorHV)
		for _, d := range []models.Descriptor{models.DescriptorTX, models.DescriptorHV} {
			if info, ok := vm.DeviceInfo(d); ok {
				fmt.Printf("%s: %s %s\n", d, info.Firmware, info.HardwareID)
			}
		}
	case "temp":
		ctrl.QueryTemperature()
		if t := vm.Temperature(); t != nil {
			fmt.Printf("TX %.1f °C, ambient %.1f °C\n", t.TX, t.Ambient)
		}
	case "power":
		ctrl.QueryPowerStatus()
		if p := vm.PowerStatus(); p != nil {
			fmt.Printf("12V=%v HV=%v\n", p.TwelveVOn, p.HVOn)
		}
	case "hv":
		ctrl.SetHighVoltage(argBool(f, 1))
	case "12v":
		ctrl.SetTwelveVolt(argBool(f, 1))
	case "trigger":
		ctrl.QueryTrigger()
		fmt.Printf("trigger running=%v\n", vm.TriggerRunning())
	case "ping":
		for _, d := range []models.Descriptor{models.DescriptorTX, models.DescriptorHV} {
			fmt.Printf("%s: ping=%v echo=%v\n", d, ctrl.Ping(d), ctrl.Echo(d, []byte("lifu")))
		}
	case "status":
		snap := a.Machine.Snapshot()
		fmt.Printf("state=%s configured=%v TX=%v(%s) HV=%v(%s) message=%q\n", snap.State, snap.Configured,
			snap.TX.Connected, snap.TX.Port, snap.HV.Connected, snap.HV.Port, vm.LastMessage())
	default:
		fmt.Println("commands: configure [freq] [pulses] | focus x y z freq voltage hz | reset | start | stop | info | temp | power | hv on|off | 12v on|off | trigger | ping | status | quit")
	}
	return true
}

func argFloat(f []string, i int, def float64) float64 {
	if i >= len(f) {
		return def
	}
	v, err := strconv.ParseFloat(f[i], 64)
	if err != nil {
		return def
	}
	return v
}

func argBool(f []string, i int) bool {
	return i < len(f) && (f[i] == "on" || f[i] == "1" || f[i] == "true")
}
