package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/google/uuid"
)

var (
	ErrConnection = errors.New("broker connection failed")
	ErrSubscribe  = errors.New("subscribe failed")
	ErrPublish    = errors.New("publish failed")
)

// qosAtMostOnce 全部订阅和发布都用 QoS 0：发出即忘，不确认不重试
const qosAtMostOnce byte = 0

const disconnectQuiesce = 250 // ms

// ClientOptions 配置 MQTT 客户端行为
// Broker: tcp://host:port
// ClientID: 客户端标识，为空时自动生成
// Username/Password: 可选认证
// KeepAlive: 心跳间隔
// ConnectTimeout: 连接超时
type ClientOptions struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
}

// Handler 接收入站消息。在 paho 的投递 goroutine 上调用，实现方不能假设所在线程。
type Handler interface {
	HandleMessage(topic string, payload []byte)
}

// HandlerFunc 让普通函数满足 Handler
type HandlerFunc func(topic string, payload []byte)

func (f HandlerFunc) HandleMessage(topic string, payload []byte) {
	f(topic, payload)
}

// Client 封装 Paho MQTT 客户端：单次连接、QoS 0 收发、单一入站 Handler。
// 不自动重连，连接断开只记录日志。
type Client struct {
	inner paho.Client
	opts  ClientOptions
	lc    logger.LoggingClient

	mu      sync.RWMutex
	handler Handler

	closeOnce sync.Once
}

// GenerateClientID 生成形如 nbiot-bridge-<uuid> 的客户端标识
func GenerateClientID() string {
	return "nbiot-bridge-" + uuid.NewString()
}

// NewClient 创建一个新的 MQTT 客户端并连接到 Broker，失败返回包装了 ErrConnection 的错误
func NewClient(opts ClientOptions, lc logger.LoggingClient) (*Client, error) {
	if opts.ClientID == "" {
		opts.ClientID = GenerateClientID()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	c := &Client{opts: opts, lc: lc}

	p := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetKeepAlive(opts.KeepAlive).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(opts.ConnectTimeout).
		SetDefaultPublishHandler(c.onMessage).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			lc.Errorf("mqtt connection to %s lost: %v", opts.Broker, err)
		})
	if opts.Username != "" {
		p.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		p.SetPassword(opts.Password)
	}
	c.inner = paho.NewClient(p)

	tok := c.inner.Connect()
	if !tok.WaitTimeout(opts.ConnectTimeout) {
		return nil, fmt.Errorf("%w: %s: timeout after %s", ErrConnection, opts.Broker, opts.ConnectTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, opts.Broker, err)
	}
	lc.Infof("connected to mqtt broker %s as %s", opts.Broker, opts.ClientID)
	return c, nil
}

// SetHandler 注册唯一的入站 Handler，后注册的覆盖先注册的，nil 表示丢弃
func (c *Client) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Client) onMessage(_ paho.Client, m paho.Message) {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		c.lc.Debugf("mqtt message on %s dropped, no handler", m.Topic())
		return
	}
	h.HandleMessage(m.Topic(), m.Payload())
}

// Subscribe 以 QoS 0 订阅一组主题
func (c *Client) Subscribe(topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	filters := make(map[string]byte, len(topics))
	for _, t := range topics {
		filters[t] = qosAtMostOnce
	}
	tok := c.inner.SubscribeMultiple(filters, c.onMessage)
	if !tok.WaitTimeout(c.opts.ConnectTimeout) {
		return fmt.Errorf("%w: %v: timeout", ErrSubscribe, topics)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%w: %v: %w", ErrSubscribe, topics, err)
	}
	return nil
}

// Unsubscribe 取消订阅，连接仍然保留
func (c *Client) Unsubscribe(topics ...string) error {
	if len(topics) == 0 {
		return nil
	}
	tok := c.inner.Unsubscribe(topics...)
	if !tok.WaitTimeout(c.opts.ConnectTimeout) {
		return fmt.Errorf("unsubscribe %v: timeout", topics)
	}
	return tok.Error()
}

// Publish 以 QoS 0、非保留方式发布原始二进制帧
func (c *Client) Publish(topic string, payload []byte) error {
	tok := c.inner.Publish(topic, qosAtMostOnce, false, payload)
	tok.Wait()
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, topic, err)
	}
	return nil
}

// IsConnected 报告底层连接状态
func (c *Client) IsConnected() bool {
	return c.inner.IsConnected()
}

// Disconnect 断开与 Broker 的连接，可重复调用
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		c.inner.Disconnect(disconnectQuiesce)
		c.lc.Infof("disconnected from mqtt broker %s", c.opts.Broker)
	})
}
