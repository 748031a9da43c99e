package serial

import (
	"sort"

	bugst "go.bug.st/serial"
)

// ListPorts 列出本机可见的串口设备，按名称排序
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}
