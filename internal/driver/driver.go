// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2019-2023 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

// Package driver provides an implementation of a ProtocolDriver interface
// that exposes the NB-IoT serial bridge as an EdgeX device service.
package driver

import (
	"fmt"
	"sync"

	"github.com/edgexfoundry/device-sdk-go/v4/pkg/interfaces"
	dsModels "github.com/edgexfoundry/device-sdk-go/v4/pkg/models"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/models"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/bridge"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/config"
)

// Version 由构建时 -ldflags 覆盖
var Version = "0.0.0"

// 设备资源名，与 res/profiles/nbiot-bridge.yaml 一致
const (
	ResourceBind         = "Bind"
	ResourceUnbind       = "Unbind"
	ResourceSend         = "Send"
	ResourceSendBinary   = "SendBinary"
	ResourceGatewayState = "GatewayState"
	ResourceLastStep     = "LastStep"
	ResourceLastRssi     = "LastRssi"
	ResourceBridgeState  = "BridgeState"
	ResourceLastTx       = "LastTx"
	ResourceLastRx       = "LastRx"
)

type BridgeDriver struct {
	lc      logger.LoggingClient
	asyncCh chan<- *dsModels.AsyncValues
	locker  sync.Mutex
	sdk     interfaces.DeviceServiceSDK

	cfg    *config.Config
	conn   bridge.Conn
	relay  *bridge.Relay
	frames *frameStore
}

var once sync.Once
var driver *BridgeDriver

func NewBridgeDriver() interfaces.ProtocolDriver {
	once.Do(func() {
		driver = new(BridgeDriver)
	})
	return driver
}

func (d *BridgeDriver) Initialize(sdk interfaces.DeviceServiceSDK) error {
	d.sdk = sdk
	d.lc = sdk.LoggingClient()
	d.asyncCh = sdk.AsyncValuesChannel()
	d.frames = newFrameStore()

	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		return fmt.Errorf("failed to load bridge configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid bridge configuration: %w", err)
	}
	d.cfg = cfg

	conn, relay, err := bridge.Setup(cfg, d.lc, &driverSink{d: d})
	if err != nil {
		return fmt.Errorf("failed to initialize serial bridge: %w", err)
	}
	d.conn = conn
	d.relay = relay
	return nil
}

// Start 配置了串口时自动绑定；失败只记录，由操作员通过 Bind 命令重试
func (d *BridgeDriver) Start() error {
	if d.cfg.Serial.Port == "" {
		d.lc.Infof("serial bridge ready for gateway %s, waiting for Bind command", d.relay.Identity())
		return nil
	}
	if err := d.relay.Bind(d.cfg.Serial.Port); err != nil {
		d.lc.Errorf("auto bind %s failed: %v", d.cfg.Serial.Port, err)
	}
	return nil
}

func (d *BridgeDriver) HandleReadCommands(deviceName string, protocols map[string]models.ProtocolProperties, reqs []dsModels.CommandRequest) ([]*dsModels.CommandValue, error) {
	d.locker.Lock()
	defer d.locker.Unlock()

	res := make([]*dsModels.CommandValue, len(reqs))
	for i, req := range reqs {
		cv, err := d.readResource(req.DeviceResourceName)
		if err != nil {
			return nil, err
		}
		res[i] = cv
		d.lc.Debugf("read %s.%s", deviceName, req.DeviceResourceName)
	}
	return res, nil
}

func (d *BridgeDriver) readResource(name string) (*dsModels.CommandValue, error) {
	switch name {
	case ResourceGatewayState, ResourceLastStep, ResourceLastRssi, ResourceBridgeState:
		return newResourceState(d.relay).value(name)
	case ResourceLastTx, ResourceLastRx:
		return newResourceBinary(d.frames, d.relay).value(name)
	default:
		return nil, unknownResource(name)
	}
}

func (d *BridgeDriver) HandleWriteCommands(deviceName string, protocols map[string]models.ProtocolProperties, reqs []dsModels.CommandRequest,
	params []*dsModels.CommandValue) error {
	d.locker.Lock()
	defer d.locker.Unlock()

	if len(reqs) != len(params) {
		return fmt.Errorf("mismatched write request: %d resources, %d values", len(reqs), len(params))
	}
	for i, req := range reqs {
		if err := d.writeResource(req.DeviceResourceName, params[i]); err != nil {
			return err
		}
		d.lc.Infof("write %s.%s", deviceName, req.DeviceResourceName)
	}
	return nil
}

func (d *BridgeDriver) writeResource(name string, cv *dsModels.CommandValue) error {
	switch name {
	case ResourceBind:
		port, err := cv.StringValue()
		if err != nil {
			return invalidValue(name, err)
		}
		if d.relay.State() == bridge.Unbound {
			d.frames.Reset()
		}
		return toEdgeX(d.relay.Bind(port))
	case ResourceUnbind:
		unbind, err := cv.BoolValue()
		if err != nil {
			return invalidValue(name, err)
		}
		if !unbind {
			return nil
		}
		return toEdgeX(d.relay.Unbind())
	case ResourceSend:
		text, err := cv.StringValue()
		if err != nil {
			return invalidValue(name, err)
		}
		return toEdgeX(d.relay.Send(text))
	case ResourceSendBinary:
		return newResourceBinary(d.frames, d.relay).write(cv)
	default:
		return unknownResource(name)
	}
}

func (d *BridgeDriver) Stop(force bool) error {
	d.lc.Info("BridgeDriver.Stop: serial bridge is stopping...")
	if d.relay != nil {
		if err := d.relay.Close(); err != nil {
			d.lc.Warnf("close bridge: %v", err)
		}
	}
	if d.conn != nil {
		d.conn.Disconnect()
	}
	return nil
}

func (d *BridgeDriver) AddDevice(deviceName string, protocols map[string]models.ProtocolProperties, adminState models.AdminState) error {
	d.lc.Debugf("a new Device is added: %s", deviceName)
	return nil
}

func (d *BridgeDriver) UpdateDevice(deviceName string, protocols map[string]models.ProtocolProperties, adminState models.AdminState) error {
	d.lc.Debugf("Device %s is updated", deviceName)
	return nil
}

func (d *BridgeDriver) RemoveDevice(deviceName string, protocols map[string]models.ProtocolProperties) error {
	d.lc.Debugf("Device %s is removed", deviceName)
	return nil
}

func (d *BridgeDriver) Discover() error {
	return fmt.Errorf("driver's Discover function isn't implemented")
}

func (d *BridgeDriver) ValidateDevice(device models.Device) error {
	d.lc.Debug("Driver's ValidateDevice function isn't implemented")
	return nil
}
