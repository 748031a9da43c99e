package status

import "sync"

// GatewayState 网关连接状态，零值即 Offline
type GatewayState struct {
	Online   bool
	LastStep int64
	LastRSSI int64
}

// String 返回界面上使用的状态标签
func (s GatewayState) String() string {
	if s.Online {
		return "on-line"
	}
	return "off-line"
}

// Apply 纯函数：心跳无条件置为 Online（不检查序号单调），断线置为 Offline，
// 其他事件保持原状态。没有超时：心跳停止本身不会让状态变为 Offline。
func Apply(state GatewayState, ev Event) GatewayState {
	switch e := ev.(type) {
	case Heartbeat:
		return GatewayState{Online: true, LastStep: e.Step, LastRSSI: e.RSSI}
	case Disconnect:
		return GatewayState{}
	default:
		return state
	}
}

// Tracker 持有当前 GatewayState，可被多个 goroutine 读取
type Tracker struct {
	mu    sync.RWMutex
	state GatewayState
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Apply 应用事件，返回新状态以及状态是否发生变化
func (t *Tracker) Apply(ev Event) (GatewayState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := Apply(t.state, ev)
	changed := next != t.state
	t.state = next
	return next, changed
}

func (t *Tracker) State() GatewayState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
