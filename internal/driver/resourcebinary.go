// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2025 YourCompany
//
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"fmt"

	"github.com/edgexfoundry/device-sdk-go/v4/pkg/models"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/common"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/bridge"
)

// resourceBinary 实现了二进制资源的读写；
// 读取最近一次收发的帧，写入则把原始帧原样发布到网关的 tx 主题。
type resourceBinary struct {
	frames *frameStore
	relay  *bridge.Relay
}

func newResourceBinary(frames *frameStore, relay *bridge.Relay) *resourceBinary {
	return &resourceBinary{frames: frames, relay: relay}
}

// value 从内存表里拿最近一帧，并封装成 CommandValue 上报
func (rb *resourceBinary) value(deviceResourceName string) (*models.CommandValue, error) {
	frame, err := rb.frames.Last(deviceResourceName)
	if err != nil {
		return nil, err
	}
	cv, err := models.NewCommandValue(deviceResourceName, common.ValueTypeBinary, frame)
	if err != nil {
		return nil, fmt.Errorf("failed to create CommandValue: %w", err)
	}
	return cv, nil
}

// write 接收上层下发的 CommandValue，把它的二进制内容作为一帧发送
func (rb *resourceBinary) write(param *models.CommandValue) error {
	frame, err := param.BinaryValue()
	if err != nil {
		return invalidValue(param.DeviceResourceName, err)
	}
	return toEdgeX(rb.relay.SendFrame(frame))
}
