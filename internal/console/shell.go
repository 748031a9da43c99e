package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/bridge"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/gateway"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"
)

// Bridge 是 Shell 驱动的桥接能力，*bridge.Relay 满足该接口
type Bridge interface {
	Identity() gateway.Identity
	Bind(portName string) error
	Unbind() error
	Send(text string) error
	State() bridge.State
	GatewayState() status.GatewayState
	Session() (bridge.SessionInfo, bool)
}

const helpText = `commands:
  ports            list serial ports
  bind <port>      bridge a serial port to the gateway
  unbind           stop bridging
  send <hex>       publish a frame to the gateway, e.g. "send 41 42 43"
  status           show bridge and gateway state
  clear            clear the screen
  quit             exit`

// Shell 逐行执行操作员命令
type Shell struct {
	bridge Bridge
	sink   *Sink
	ports  func() ([]string, error)
}

func NewShell(b Bridge, sink *Sink, ports func() ([]string, error)) *Shell {
	return &Shell{bridge: b, sink: sink, ports: ports}
}

// Run 读取命令直到 quit、输入结束或 ctx 取消
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	sh.sink.Println(fmt.Sprintf("NB-IoT Gateway %s, type \"help\" for commands", sh.bridge.Identity()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if !sh.Exec(line) {
				return nil
			}
		}
	}
}

// Exec 执行一条命令，返回 false 表示退出
func (sh *Shell) Exec(line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "help", "?":
		for _, l := range strings.Split(helpText, "\n") {
			sh.sink.Println(l)
		}
	case "ports":
		ports, err := sh.ports()
		if err != nil {
			sh.sink.Println(fmt.Sprintf("ERROR - failed to list serial ports - %v", err))
			return true
		}
		if len(ports) == 0 {
			sh.sink.Println("no serial ports found")
		}
		for _, p := range ports {
			sh.sink.Println(p)
		}
	case "bind":
		if arg == "" {
			sh.sink.Println("You must choose a serial port!")
			return true
		}
		// 打开串口和订阅失败已由 Relay 写入日志
		if err := sh.bridge.Bind(arg); errors.Is(err, bridge.ErrAlreadyBound) {
			sh.sink.Println("ERROR - " + err.Error())
		}
	case "unbind":
		if err := sh.bridge.Unbind(); err != nil {
			sh.sink.Println("ERROR - " + err.Error())
		}
	case "send":
		// 非法输入和发布失败已由 Relay 写入日志
		_ = sh.bridge.Send(arg)
	case "status":
		sh.sink.Println(fmt.Sprintf("bridge %s, gateway %s", sh.bridge.State(), sh.bridge.GatewayState()))
		if info, ok := sh.bridge.Session(); ok {
			sh.sink.Println(fmt.Sprintf("session %s on %s (tx %s)", info.ID, info.Port, info.Topics.Tx))
		}
	case "clear", "cls":
		sh.sink.Clear()
	case "quit", "exit":
		return false
	default:
		sh.sink.Println(fmt.Sprintf("unknown command %q, type \"help\"", cmd))
	}
	return true
}
