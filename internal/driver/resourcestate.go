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

// resourceState 负责网关状态和桥接状态相关的只读资源
type resourceState struct {
	relay *bridge.Relay
}

func newResourceState(relay *bridge.Relay) *resourceState {
	return &resourceState{relay: relay}
}

func (rs *resourceState) value(deviceResourceName string) (*models.CommandValue, error) {
	st := rs.relay.GatewayState()

	var cv *models.CommandValue
	var err error
	switch deviceResourceName {
	case ResourceGatewayState:
		cv, err = models.NewCommandValue(deviceResourceName, common.ValueTypeString, st.String())
	case ResourceLastStep:
		cv, err = models.NewCommandValue(deviceResourceName, common.ValueTypeInt64, st.LastStep)
	case ResourceLastRssi:
		cv, err = models.NewCommandValue(deviceResourceName, common.ValueTypeInt64, st.LastRSSI)
	case ResourceBridgeState:
		cv, err = models.NewCommandValue(deviceResourceName, common.ValueTypeString, rs.relay.State().String())
	default:
		return nil, unknownResource(deviceResourceName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create CommandValue: %w", err)
	}
	return cv, nil
}
