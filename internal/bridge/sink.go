package bridge

import "github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"

// Sink 接收面向操作员的日志行和网关状态更新，可能被多个 goroutine 调用
type Sink interface {
	Println(text string)
	SetStatus(state status.GatewayState)
}

// FrameRecorder 由需要保留最近收发帧的 Sink 选择实现
type FrameRecorder interface {
	FrameSent(frame []byte)
	FrameReceived(frame []byte)
}

type discardSink struct{}

func (discardSink) Println(string)                 {}
func (discardSink) SetStatus(status.GatewayState) {}
