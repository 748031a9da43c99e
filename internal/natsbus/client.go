// Package natsbus 提供与 mqtt.Client 相同收发面的 NATS 实现，
// 用于 broker 侧以 NATS 转发网关主题的部署。
package natsbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/nats-io/nats.go"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/mqtt"
)

var (
	ErrConnection = errors.New("nats connection failed")
	ErrSubscribe  = errors.New("nats subscribe failed")
	ErrPublish    = errors.New("nats publish failed")
)

// Options NATS 连接参数，与 mqtt.ClientOptions 对应
type Options struct {
	URL            string
	Name           string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// Client 单连接、无重连的 NATS 总线
type Client struct {
	nc *nats.Conn
	lc logger.LoggingClient

	mu      sync.RWMutex
	handler mqtt.Handler
	subs    map[string]*nats.Subscription
}

// Connect 连接 NATS 服务器，失败返回包装了 ErrConnection 的错误
func Connect(opts Options, lc logger.LoggingClient) (*Client, error) {
	if opts.Name == "" {
		opts.Name = mqtt.GenerateClientID()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	natsOpts := []nats.Option{
		nats.Name(opts.Name),
		nats.Timeout(opts.ConnectTimeout),
		nats.NoReconnect(),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				lc.Errorf("nats connection to %s lost: %v", opts.URL, err)
			}
		}),
	}
	if opts.Username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(opts.Username, opts.Password))
	}
	nc, err := nats.Connect(opts.URL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, opts.URL, err)
	}
	lc.Infof("connected to nats server %s as %s", opts.URL, opts.Name)
	return &Client{nc: nc, lc: lc, subs: make(map[string]*nats.Subscription)}, nil
}

func (c *Client) SetHandler(h mqtt.Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Client) onMessage(m *nats.Msg) {
	c.mu.RLock()
	h := c.handler
	c.mu.RUnlock()
	if h == nil {
		c.lc.Debugf("nats message on %s dropped, no handler", m.Subject)
		return
	}
	h.HandleMessage(m.Subject, m.Data)
}

func (c *Client) Subscribe(topics ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		if _, ok := c.subs[t]; ok {
			continue
		}
		sub, err := c.nc.Subscribe(t, c.onMessage)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrSubscribe, t, err)
		}
		c.subs[t] = sub
	}
	return c.nc.Flush()
}

func (c *Client) Unsubscribe(topics ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, t := range topics {
		sub, ok := c.subs[t]
		if !ok {
			continue
		}
		delete(c.subs, t)
		if err := sub.Unsubscribe(); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe %s: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) Publish(topic string, payload []byte) error {
	if err := c.nc.Publish(topic, payload); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, topic, err)
	}
	return nil
}

func (c *Client) IsConnected() bool {
	return c.nc.IsConnected()
}

// Disconnect 关闭连接，可重复调用
func (c *Client) Disconnect() {
	if c.nc.IsClosed() {
		return
	}
	url := c.nc.ConnectedUrl()
	c.nc.Close()
	c.lc.Infof("disconnected from nats server %s", url)
}
