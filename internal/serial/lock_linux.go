package serial

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// portLock 独占一个设备节点：flock 挡住同机的其他桥接实例（包括本进程），
// TIOCEXCL 挡住其他进程对该 tty 的后续 open。
type portLock struct {
	f *os.File
}

func lockPort(name string) (*portLock, error) {
	f, err := os.OpenFile(name, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s is already open", name)
		}
		return nil, fmt.Errorf("flock %s: %w", name, err)
	}
	return &portLock{f: f}, nil
}

// exclusive 必须在串口本身打开之后调用，否则自己的 open 也会被拒绝
func (l *portLock) exclusive() error {
	return unix.IoctlSetInt(int(l.f.Fd()), unix.TIOCEXCL, 0)
}

func (l *portLock) release() error {
	_ = unix.IoctlSetInt(int(l.f.Fd()), unix.TIOCNXCL, 0)
	return l.f.Close()
}
