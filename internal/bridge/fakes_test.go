package bridge

import (
	"fmt"
	"os"
	"sync"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/mqtt"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/serial"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/status"
)

// fakePort 通过 reads 通道模拟串口输入，记录所有写入
type fakePort struct {
	name  string
	reads chan []byte
	inUse bool // 受 fakeSystem.mu 保护

	mu       sync.Mutex
	written  [][]byte
	writeErr error

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakePort(name string) *fakePort {
	return &fakePort{name: name, reads: make(chan []byte), closed: make(chan struct{})}
}

func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case data := <-p.reads:
		return copy(b, data), nil
	case <-p.closed:
		return 0, os.ErrClosed
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

func (p *fakePort) Name() string { return p.name }

func (p *fakePort) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *fakePort) writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.written...)
}

// fakeSystem 模拟本机串口目录，同一端口同时只能打开一次
type fakeSystem struct {
	mu     sync.Mutex
	ports  map[string]*fakePort
	opened int
}

func newFakeSystem(names ...string) *fakeSystem {
	fs := &fakeSystem{ports: make(map[string]*fakePort)}
	for _, n := range names {
		fs.ports[n] = newFakePort(n)
	}
	return fs
}

func (fs *fakeSystem) open(name string) (serial.Port, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p, ok := fs.ports[name]
	if !ok {
		return nil, fmt.Errorf("%w: open UART %s: no such file or directory", serial.ErrPortUnavailable, name)
	}
	switch {
	case p.isClosed():
		p = newFakePort(name)
		fs.ports[name] = p
	case p.inUse:
		return nil, fmt.Errorf("%w: open UART %s: %s is already open", serial.ErrPortUnavailable, name, name)
	}
	p.inUse = true
	fs.opened++
	return p, nil
}

func (fs *fakeSystem) port(name string) *fakePort {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.ports[name]
}

func (fs *fakeSystem) openCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.opened
}

type published struct {
	topic   string
	payload []byte
}

type fakeBus struct {
	mu           sync.Mutex
	handler      mqtt.Handler
	subscribed   map[string]bool
	published    []published
	subscribeErr error
	publishErr   error
}

func newFakeBus() *fakeBus {
	return &fakeBus{subscribed: make(map[string]bool)}
}

func (b *fakeBus) SetHandler(h mqtt.Handler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

func (b *fakeBus) Subscribe(topics ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return b.subscribeErr
	}
	for _, t := range topics {
		b.subscribed[t] = true
	}
	return nil
}

func (b *fakeBus) Unsubscribe(topics ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		delete(b.subscribed, t)
	}
	return nil
}

func (b *fakeBus) Publish(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, published{topic: topic, payload: append([]byte(nil), payload...)})
	return nil
}

// deliver 模拟 broker 投递一条消息，只投递给已订阅的主题
func (b *fakeBus) deliver(topic string, payload []byte) {
	b.mu.Lock()
	h := b.handler
	ok := b.subscribed[topic]
	b.mu.Unlock()
	if h != nil && ok {
		h.HandleMessage(topic, payload)
	}
}

func (b *fakeBus) publishes() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.published...)
}

func (b *fakeBus) topics() map[string]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]bool, len(b.subscribed))
	for k, v := range b.subscribed {
		out[k] = v
	}
	return out
}

type recordingSink struct {
	mu       sync.Mutex
	lines    []string
	statuses []status.GatewayState
	sent     [][]byte
	received [][]byte
}

func (s *recordingSink) Println(text string) {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	s.mu.Unlock()
}

func (s *recordingSink) SetStatus(st status.GatewayState) {
	s.mu.Lock()
	s.statuses = append(s.statuses, st)
	s.mu.Unlock()
}

func (s *recordingSink) FrameSent(frame []byte) {
	s.mu.Lock()
	s.sent = append(s.sent, frame)
	s.mu.Unlock()
}

func (s *recordingSink) FrameReceived(frame []byte) {
	s.mu.Lock()
	s.received = append(s.received, frame)
	s.mu.Unlock()
}

func (s *recordingSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *recordingSink) hasLine(line string) bool {
	for _, l := range s.snapshot() {
		if l == line {
			return true
		}
	}
	return false
}

func (s *recordingSink) lastStatus() (status.GatewayState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return status.GatewayState{}, false
	}
	return s.statuses[len(s.statuses)-1], true
}
