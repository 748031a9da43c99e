package bridge

import (
	"fmt"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/config"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/mqtt"
	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/natsbus"
)

// Conn 是进程级的总线连接，会话结束只取消订阅，进程退出时才 Disconnect
type Conn interface {
	Bus
	IsConnected() bool
	Disconnect()
}

// Dial 按配置的 Transport 建立总线连接，失败不重试
func Dial(cfg config.BrokerConfig, lc logger.LoggingClient) (Conn, error) {
	switch cfg.Transport {
	case config.TransportMQTT, "":
		c, err := mqtt.NewClient(mqtt.ClientOptions{
			Broker:         cfg.Address,
			ClientID:       cfg.ClientID,
			Username:       cfg.Username,
			Password:       cfg.Password,
			KeepAlive:      cfg.KeepAlive,
			ConnectTimeout: cfg.ConnectTimeout,
		}, lc)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.TransportNATS:
		c, err := natsbus.Connect(natsbus.Options{
			URL:            cfg.Address,
			Name:           cfg.ClientID,
			Username:       cfg.Username,
			Password:       cfg.Password,
			ConnectTimeout: cfg.ConnectTimeout,
		}, lc)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown broker transport %q", cfg.Transport)
	}
}

// Setup 负责：
//  1. 校验网关 IMEI
//  2. 按 Transport 连接 broker（失败不重试）
//  3. 创建 Relay，串口在 Bind 时才打开
func Setup(cfg *config.Config, lc logger.LoggingClient, sink Sink) (Conn, *Relay, error) {
	id, err := cfg.Identity()
	if err != nil {
		return nil, nil, err
	}

	conn, err := Dial(cfg.Broker, lc)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s broker %s: %w", cfg.Broker.Transport, cfg.Broker.Address, err)
	}

	relay, err := New(Options{
		Identity:    id,
		TopicPrefix: cfg.Gateway.TopicPrefix,
		Bus:         conn,
		Sink:        sink,
		Logger:      lc,
	})
	if err != nil {
		conn.Disconnect()
		return nil, nil, err
	}
	return conn, relay, nil
}
