// Package status 把网关状态主题上的通知解码为事件，并维护网关在线状态。
package status

import "fmt"

// Event 状态通知解码后的结果：Heartbeat、Disconnect 或 Unrecognized
type Event interface {
	isEvent()
}

// Heartbeat 网关周期性心跳，携带序号和信号强度
type Heartbeat struct {
	Step      int64
	From      string // 网关在 broker 侧的来源地址，如 "211.77.241.100:12191"
	RSSI      int64  // dBm
	Timestamp string
}

// Disconnect 网关断开通知
type Disconnect struct {
	Timestamp string
}

// Unrecognized 未知 type 的通知，不影响状态
type Unrecognized struct {
	Type string
}

func (Heartbeat) isEvent()    {}
func (Disconnect) isEvent()   {}
func (Unrecognized) isEvent() {}

// Describe 返回事件对应的操作员日志文本，Unrecognized 返回空串
func Describe(ev Event) string {
	switch e := ev.(type) {
	case Heartbeat:
		return fmt.Sprintf("Heartbeat[#%d] from %s. RSSI is %d dBm.", e.Step, e.From, e.RSSI)
	case Disconnect:
		return "Disconnected!"
	default:
		return ""
	}
}
