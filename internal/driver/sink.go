package driver

import (
	dsModels "github.com/edgexfoundry/device-sdk-go/v4/pkg/models"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/common"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"
)

// driverSink 把操作员日志写入服务日志，记录最近收发的帧，
// 并把网关状态变化作为异步读数上报
type driverSink struct {
	d *BridgeDriver
}

func (s *driverSink) Println(text string) {
	s.d.lc.Info(text)
}

func (s *driverSink) SetStatus(st status.GatewayState) {
	readings := []struct {
		name      string
		valueType string
		value     any
	}{
		{ResourceGatewayState, common.ValueTypeString, st.String()},
		{ResourceLastStep, common.ValueTypeInt64, st.LastStep},
		{ResourceLastRssi, common.ValueTypeInt64, st.LastRSSI},
	}

	values := make([]*dsModels.CommandValue, 0, len(readings))
	for _, r := range readings {
		cv, err := dsModels.NewCommandValue(r.name, r.valueType, r.value)
		if err != nil {
			s.d.lc.Errorf("failed to create %s reading: %v", r.name, err)
			return
		}
		values = append(values, cv)
	}

	av := &dsModels.AsyncValues{
		DeviceName:    s.d.cfg.Gateway.DeviceName,
		CommandValues: values,
	}
	// 不阻塞转发路径
	select {
	case s.d.asyncCh <- av:
	default:
		s.d.lc.Warnf("async channel full, gateway state reading dropped")
	}
}

func (s *driverSink) FrameSent(frame []byte) {
	s.d.frames.Record(ResourceLastTx, frame)
}

func (s *driverSink) FrameReceived(frame []byte) {
	s.d.frames.Record(ResourceLastRx, frame)
}
