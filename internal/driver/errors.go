package driver

import (
	goerrors "errors"
	"fmt"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/errors"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/bridge"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/hexframe"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/mqtt"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/natsbus"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/serial"
)

// toEdgeX 把桥接层错误映射为 EdgeX 错误类型，nil 原样返回
func toEdgeX(err error) error {
	if err == nil {
		return nil
	}
	var kind errors.ErrKind
	switch {
	case goerrors.Is(err, hexframe.ErrInvalidHexInput), goerrors.Is(err, bridge.ErrNoPort):
		kind = errors.KindContractInvalid
	case goerrors.Is(err, bridge.ErrAlreadyBound), goerrors.Is(err, bridge.ErrNotBound):
		kind = errors.KindStatusConflict
	case goerrors.Is(err, serial.ErrPortUnavailable):
		kind = errors.KindServiceUnavailable
	case goerrors.Is(err, mqtt.ErrPublish), goerrors.Is(err, mqtt.ErrSubscribe), goerrors.Is(err, mqtt.ErrConnection),
		goerrors.Is(err, natsbus.ErrPublish), goerrors.Is(err, natsbus.ErrSubscribe), goerrors.Is(err, natsbus.ErrConnection):
		kind = errors.KindCommunicationError
	default:
		kind = errors.KindServerError
	}
	return errors.NewCommonEdgeX(kind, "serial bridge", err)
}

func invalidValue(resource string, err error) error {
	return errors.NewCommonEdgeX(errors.KindContractInvalid, fmt.Sprintf("invalid value for %s", resource), err)
}

func unknownResource(resource string) error {
	return errors.NewCommonEdgeX(errors.KindEntityDoesNotExist, fmt.Sprintf("unknown device resource %s", resource), nil)
}
