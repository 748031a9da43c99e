// internal/serial/serial.go

package serial

import (
	"errors"
	"io"
)

// ChunkSize 单次阻塞读的最大字节数
const ChunkSize = 250

var (
	// ErrPortUnavailable 串口不存在、已被占用或无法配置
	ErrPortUnavailable = errors.New("serial port unavailable")
	// ErrWrite 已打开串口上的写失败
	ErrWrite = errors.New("serial write failed")
)

// Port 是 serial 包对外暴露的通用串口接口。
// Read 在读超时时返回 (0, nil)；端口关闭后返回错误。
type Port interface {
	io.ReadWriteCloser
	Name() string
}

// Opener 按端口名打开串口，方便替换为测试实现
type Opener func(name string) (Port, error)

// ReadLoop 在调用方的 goroutine 中循环读取串口，每次读到 n>0 字节就复制一份交给 onFrame，
// n==0 忽略；端口关闭或读出错时静默返回。
func ReadLoop(p Port, onFrame func(frame []byte)) {
	buf := make([]byte, ChunkSize)
	for {
		n, err := p.Read(buf)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			onFrame(frame)
		}
		if err != nil {
			return
		}
	}
}
