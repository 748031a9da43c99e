package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/gateway"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/hexframe"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/serial"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"
)

const queueSize = 64

type eventKind int

const (
	evSerialFrame eventKind = iota
	evMessage
	evSend
)

type event struct {
	kind    eventKind
	topic   string
	payload []byte
	result  chan error
}

// Session 一次绑定产生的桥接会话，绑定时创建，解绑后丢弃
type Session struct {
	ID       string
	Identity gateway.Identity
	Topics   gateway.TopicSet
	Port     serial.Port

	tx      *txPublisher
	sink    Sink
	lc      logger.LoggingClient
	tracker *status.Tracker
	state   atomic.Int32

	events  chan event
	done    chan struct{}
	stopped chan struct{} // 消费 goroutine 退出后关闭
	wg      sync.WaitGroup
}

// SessionInfo 会话的只读快照
type SessionInfo struct {
	ID       string
	Identity gateway.Identity
	Topics   gateway.TopicSet
	Port     string
	State    State
	Gateway  status.GatewayState
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) info() SessionInfo {
	return SessionInfo{
		ID:       s.ID,
		Identity: s.Identity,
		Topics:   s.Topics,
		Port:     s.Port.Name(),
		State:    s.State(),
		Gateway:  s.tracker.State(),
	}
}

// enqueue 在会话关闭后返回 false，不会阻塞关闭流程
func (s *Session) enqueue(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// HandleMessage 由总线投递 goroutine 调用
func (s *Session) HandleMessage(topic string, payload []byte) {
	frame := make([]byte, len(payload))
	copy(frame, payload)
	s.enqueue(event{kind: evMessage, topic: topic, payload: frame})
}

func (s *Session) onSerialFrame(frame []byte) {
	s.enqueue(event{kind: evSerialFrame, payload: frame})
}

func (s *Session) consume() {
	defer s.wg.Done()
	defer close(s.stopped)
	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		case <-s.done:
			return
		}
	}
}

// send 经消费 goroutine 发布，保证与串口帧按入队顺序发出。
// 会话已停止且该帧没有被处理时 handled 为 false，由调用方改走 Relay 直接发布。
func (s *Session) send(frame []byte) (handled bool, err error) {
	result := make(chan error, 1)
	if !s.enqueue(event{kind: evSend, payload: frame, result: result}) {
		return false, nil
	}
	select {
	case err := <-result:
		return true, err
	case <-s.stopped:
		select {
		case err := <-result:
			return true, err
		default:
			return false, nil
		}
	}
}

func (s *Session) readSerial() {
	defer s.wg.Done()
	serial.ReadLoop(s.Port, s.onSerialFrame)
	s.lc.Debugf("session %s: read loop on %s finished", s.ID, s.Port.Name())
}

func (s *Session) handle(ev event) {
	switch ev.kind {
	case evSerialFrame:
		_ = s.publish(ev.payload)
	case evSend:
		ev.result <- s.publish(ev.payload)
	case evMessage:
		switch ev.topic {
		case s.Topics.Rx:
			s.writeSerial(ev.payload)
		case s.Topics.Status:
			s.applyStatus(ev.payload)
		default:
			s.lc.Debugf("session %s: message on unexpected topic %s dropped", s.ID, ev.topic)
		}
	}
}

func (s *Session) publish(frame []byte) error {
	return s.tx.publish(frame)
}

func (s *Session) writeSerial(frame []byte) {
	if len(frame) == 0 {
		return
	}
	s.sink.Println("RECV - " + hexframe.Format(frame))
	if rec, ok := s.sink.(FrameRecorder); ok {
		rec.FrameReceived(frame)
	}
	if _, err := s.Port.Write(frame); err != nil {
		s.lc.Errorf("session %s: write %s: %v", s.ID, s.Port.Name(), err)
		s.sink.Println(fmt.Sprintf("ERROR - failed to write serial port - %s, %v", s.Port.Name(), err))
	}
}

func (s *Session) applyStatus(payload []byte) {
	ev, err := status.Decode(payload)
	if err != nil {
		s.lc.Warnf("session %s: status notification dropped: %v", s.ID, err)
		s.sink.Println(fmt.Sprintf("ERROR - %v", err))
		return
	}
	if u, ok := ev.(status.Unrecognized); ok {
		s.lc.Debugf("session %s: status type %q ignored", s.ID, u.Type)
		return
	}

	prev := s.tracker.State()
	next, _ := s.tracker.Apply(ev)
	if prev.Online != next.Online {
		s.lc.Infof("gateway %s is %s", s.Identity, next)
	}
	s.sink.Println(status.Describe(ev))
	s.sink.SetStatus(next)
}

// txPublisher 是 tx 主题唯一的发布出口。会话的消费 goroutine 与未绑定时的
// 操作员发送共用它，mu 保证同一时刻只有一个发布者。
type txPublisher struct {
	mu    sync.Mutex
	bus   Bus
	topic string
	sink  Sink
	lc    logger.LoggingClient
}

func (p *txPublisher) publish(frame []byte) error {
	if len(frame) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.bus.Publish(p.topic, frame); err != nil {
		p.lc.Errorf("publish to %s: %v", p.topic, err)
		p.sink.Println(fmt.Sprintf("ERROR - failed to publish - %v", err))
		return err
	}
	p.sink.Println("SEND - " + hexframe.Format(frame))
	if rec, ok := p.sink.(FrameRecorder); ok {
		rec.FrameSent(frame)
	}
	return nil
}
