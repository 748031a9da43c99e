package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/spf13/pflag"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/bridge"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/config"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/console"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/serial"
)

const serviceName = "nbiot-bridge"

func main() {
	var (
		cfgPath = pflag.StringP("config", "c", config.DefaultPath, "configuration file")
		imei    = pflag.String("imei", "", "NB-IoT gateway IMEI, overrides Gateway.IMEI")
		port    = pflag.StringP("port", "p", "", "serial port to bind at startup, overrides Serial.Port")
	)
	pflag.Parse()

	if err := run(*cfgPath, *imei, *port); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfgPath, imei, port string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if imei != "" {
		cfg.Gateway.IMEI = imei
	}
	if port != "" {
		cfg.Serial.Port = port
	}
	// IMEI 不合法时直接退出，不建立任何会话
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("exit by invalid configuration: %w", err)
	}

	lc := logger.NewClient(serviceName, cfg.LogLevel)
	sink := console.NewSink(os.Stdout)

	conn, relay, err := bridge.Setup(cfg, lc, sink)
	if err != nil {
		sink.Println(fmt.Sprintf("ERROR: Failed to connect to %s", cfg.Broker.Address))
		return err
	}
	defer conn.Disconnect()
	defer func() {
		if err := relay.Close(); err != nil {
			lc.Warnf("close bridge: %v", err)
		}
	}()

	if cfg.Serial.Port != "" {
		_ = relay.Bind(cfg.Serial.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shell := console.NewShell(relay, sink, serial.ListPorts)
	return shell.Run(ctx, os.Stdin)
}
