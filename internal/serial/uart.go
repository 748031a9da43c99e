package serial

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"
)

// 网关侧固定的串口参数：9600 8N1
const (
	Baudrate    = 9600
	DataBits    = 8
	ReadTimeout = 500 * time.Millisecond
)

// UARTPort 基于 tarm/serial 的 UART 串口。
// 读超时保证 Close 之后阻塞中的 Read 在一个超时周期内返回。
type UARTPort struct {
	name   string
	handle *serial.Port
	lock   *portLock
	closed atomic.Bool
}

// OpenUART 以固定参数独占打开串口。设备不存在、已被占用或无法配置时
// 返回包装了 ErrPortUnavailable 的错误。
func OpenUART(name string) (Port, error) {
	lock, err := lockPort(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open UART %s: %w", ErrPortUnavailable, name, err)
	}

	sc := &serial.Config{
		Name:        name,
		Baud:        Baudrate,
		Size:        DataBits,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: ReadTimeout,
	}
	p, err := serial.OpenPort(sc)
	if err != nil {
		_ = lock.release()
		return nil, fmt.Errorf("%w: open UART %s: %w", ErrPortUnavailable, name, err)
	}
	if err := lock.exclusive(); err != nil {
		_ = p.Close()
		_ = lock.release()
		return nil, fmt.Errorf("%w: exclusive UART %s: %w", ErrPortUnavailable, name, err)
	}
	return &UARTPort{name: name, handle: p, lock: lock}, nil
}

// Read 读原始字节。tarm/serial 在 VTIME 到期时返回 io.EOF，这里视为一次空读。
func (u *UARTPort) Read(p []byte) (int, error) {
	if u.closed.Load() {
		return 0, os.ErrClosed
	}
	n, err := u.handle.Read(p)
	if n == 0 && errors.Is(err, io.EOF) {
		if u.closed.Load() {
			return 0, os.ErrClosed
		}
		return 0, nil
	}
	return n, err
}

// Write 阻塞写入整帧
func (u *UARTPort) Write(p []byte) (int, error) {
	if u.closed.Load() {
		return 0, fmt.Errorf("%w: %s: %w", ErrWrite, u.name, os.ErrClosed)
	}
	n, err := u.handle.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %s: %w", ErrWrite, u.name, err)
	}
	return n, nil
}

// Close 释放串口，重复调用无副作用
func (u *UARTPort) Close() error {
	if !u.closed.CompareAndSwap(false, true) {
		return nil
	}
	return errors.Join(u.handle.Close(), u.lock.release())
}

// Name 返回设备节点名
func (u *UARTPort) Name() string {
	return u.name
}
