// Package console 是桥接工具的操作员界面：逐行读取命令，按时间戳输出日志行。
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"
)

const clearScreen = "\033[H\033[2J"

// Sink 把日志行写成 "[15:04:05] text"，可被多个 goroutine 调用
type Sink struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

func NewSink(out io.Writer) *Sink {
	return &Sink{out: out, now: time.Now}
}

func (s *Sink) Println(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "[%s] %s\n", s.now().Format("15:04:05"), text)
}

func (s *Sink) SetStatus(st status.GatewayState) {
	if st.Online {
		s.Println(fmt.Sprintf("status: %s (step %d, RSSI %d dBm)", st, st.LastStep, st.LastRSSI))
		return
	}
	s.Println("status: " + st.String())
}

// Clear 清空终端
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.out, clearScreen)
}
