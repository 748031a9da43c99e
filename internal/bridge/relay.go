package bridge

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/google/uuid"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/gateway"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/hexframe"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/mqtt"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/serial"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"
)

var (
	ErrAlreadyBound = errors.New("bridge already bound")
	ErrNotBound     = errors.New("bridge not bound")
	ErrNoPort       = errors.New("no serial port selected")
	ErrNoBus        = errors.New("message bus required")
)

// Bus 是 Relay 需要的消息总线能力，mqtt.Client 与 natsbus.Client 都满足
type Bus interface {
	SetHandler(h mqtt.Handler)
	Subscribe(topics ...string) error
	Unsubscribe(topics ...string) error
	Publish(topic string, payload []byte) error
}

type Options struct {
	Identity    gateway.Identity
	TopicPrefix string
	Bus         Bus           // 必填
	Open        serial.Opener // 为空时使用 serial.OpenUART
	Sink        Sink
	Logger      logger.LoggingClient
}

// Relay 同一时间最多持有一个 Bound 会话
type Relay struct {
	opts   Options
	topics gateway.TopicSet
	tx     *txPublisher

	mu      sync.Mutex // 串行化 Bind/Unbind
	current atomic.Pointer[Session]
}

func New(opts Options) (*Relay, error) {
	if opts.Bus == nil {
		return nil, ErrNoBus
	}
	if opts.Open == nil {
		opts.Open = serial.OpenUART
	}
	if opts.Sink == nil {
		opts.Sink = discardSink{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewMockClient()
	}
	topics := gateway.NewTopicSet(opts.TopicPrefix, opts.Identity)
	return &Relay{
		opts:   opts,
		topics: topics,
		tx: &txPublisher{
			bus:   opts.Bus,
			topic: topics.Tx,
			sink:  opts.Sink,
			lc:    opts.Logger,
		},
	}, nil
}

// Identity 返回桥接的网关 IMEI
func (r *Relay) Identity() gateway.Identity {
	return r.opts.Identity
}

// State 返回当前会话状态，没有会话时为 Unbound
func (r *Relay) State() State {
	if s := r.current.Load(); s != nil {
		return s.State()
	}
	return Unbound
}

// GatewayState 返回当前会话的网关状态，没有会话时为 Offline
func (r *Relay) GatewayState() status.GatewayState {
	if s := r.current.Load(); s != nil {
		return s.tracker.State()
	}
	return status.GatewayState{}
}

// Session 返回当前会话快照
func (r *Relay) Session() (SessionInfo, bool) {
	s := r.current.Load()
	if s == nil {
		return SessionInfo{}, false
	}
	return s.info(), true
}

// Bind 打开串口、订阅网关的 status/rx 主题并启动转发，要求总线已连接。
// 已经 Bound 时拒绝，不会再打开第二个串口；失败时保持 Unbound，不重试。
func (r *Relay) Bind(portName string) error {
	if portName == "" {
		return ErrNoPort
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s := r.current.Load(); s != nil {
		return fmt.Errorf("%w to %s", ErrAlreadyBound, s.Port.Name())
	}

	if c, ok := r.opts.Bus.(interface{ IsConnected() bool }); ok && !c.IsConnected() {
		err := fmt.Errorf("%w: broker not connected", mqtt.ErrConnection)
		r.opts.Sink.Println(fmt.Sprintf("ERROR - %v", err))
		return err
	}

	port, err := r.opts.Open(portName)
	if err != nil {
		if !errors.Is(err, serial.ErrPortUnavailable) {
			err = fmt.Errorf("%w: %s: %w", serial.ErrPortUnavailable, portName, err)
		}
		r.opts.Logger.Errorf("bind %s: %v", portName, err)
		r.opts.Sink.Println(fmt.Sprintf("ERROR - failed to open serial port - %s, %v", portName, err))
		return err
	}

	s := &Session{
		ID:       uuid.NewString(),
		Identity: r.opts.Identity,
		Topics:   r.topics,
		Port:     port,
		tx:       r.tx,
		sink:     r.opts.Sink,
		lc:       r.opts.Logger,
		tracker:  status.NewTracker(),
		events:   make(chan event, queueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.consume()

	r.opts.Bus.SetHandler(s)
	if err := r.opts.Bus.Subscribe(s.Topics.Inbound()...); err != nil {
		r.opts.Bus.SetHandler(nil)
		close(s.done)
		_ = port.Close()
		s.wg.Wait()
		r.opts.Logger.Errorf("bind %s: %v", portName, err)
		r.opts.Sink.Println(fmt.Sprintf("ERROR - failed to subscribe gateway topics - %v", err))
		return err
	}

	s.wg.Add(1)
	go s.readSerial()

	s.setState(Bound)
	r.current.Store(s)
	r.opts.Logger.Infof("session %s: bridged %s to gateway %s (tx=%s rx=%s status=%s)",
		s.ID, portName, s.Identity, s.Topics.Tx, s.Topics.Rx, s.Topics.Status)
	r.opts.Sink.Println(fmt.Sprintf("Bridge %s to NB-IoT Gateway", portName))
	return nil
}

// Unbind 取消订阅、关闭串口并等待转发 goroutine 退出：Bound → Closing → Closed，
// 之后 Relay 回到 Unbound，可以重新 Bind。
func (r *Relay) Unbind() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.current.Load()
	if s == nil {
		return ErrNotBound
	}
	s.setState(Closing)

	r.opts.Bus.SetHandler(nil)
	var errs []error
	if err := r.opts.Bus.Unsubscribe(s.Topics.Inbound()...); err != nil {
		errs = append(errs, err)
	}
	if err := s.Port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", s.Port.Name(), err))
	}
	close(s.done)
	s.wg.Wait()

	s.setState(Closed)
	r.current.Store(nil)

	err := errors.Join(errs...)
	if err != nil {
		r.opts.Logger.Warnf("session %s: unbind: %v", s.ID, err)
	}
	r.opts.Logger.Infof("session %s: closed", s.ID)
	r.opts.Sink.Println(fmt.Sprintf("Unbind %s from NB-IoT Gateway", s.Port.Name()))
	return err
}

// Close 进程退出时调用，未绑定时什么也不做
func (r *Relay) Close() error {
	err := r.Unbind()
	if errors.Is(err, ErrNotBound) {
		return nil
	}
	return err
}

// Send 把操作员输入的十六进制文本转换成帧后发布到 tx 主题；
// 文本非法时什么也不发送。不要求绑定串口。
func (r *Relay) Send(text string) error {
	frame, err := hexframe.Parse(text)
	if err != nil {
		r.opts.Sink.Println("ERROR - incorrect HEX input: " + err.Error())
		return err
	}
	return r.SendFrame(frame)
}

// SendFrame 发布一帧并返回发布结果。Bound 时经会话的消费 goroutine 排队，
// 与串口帧保持顺序；否则直接发布。
func (r *Relay) SendFrame(frame []byte) error {
	if len(frame) == 0 {
		return nil
	}
	payload := make([]byte, len(frame))
	copy(payload, frame)

	if s := r.current.Load(); s != nil && s.State() == Bound {
		if handled, err := s.send(payload); handled {
			return err
		}
	}
	return r.tx.publish(payload)
}
