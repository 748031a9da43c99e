package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/gateway"
)

const (
	TransportMQTT = "mqtt"
	TransportNATS = "nats"

	DefaultPath       = "./res/configuration.yaml"
	defaultBroker     = "tcp://localhost:1883"
	defaultDeviceName = "nbiot-gateway"
	defaultLogLevel   = "INFO"
)

// LoadConfig 从指定 YAML 文件加载配置，补齐默认值并校验
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse 反序列化 YAML 并补齐默认值，不做校验
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Broker.Transport = strings.ToLower(strings.TrimSpace(c.Broker.Transport))
	if c.Broker.Transport == "" {
		c.Broker.Transport = TransportMQTT
	}
	if c.Broker.Address == "" {
		c.Broker.Address = defaultBroker
	}
	if c.Broker.KeepAlive == 0 {
		c.Broker.KeepAlive = 30 * time.Second
	}
	if c.Broker.ConnectTimeout == 0 {
		c.Broker.ConnectTimeout = 10 * time.Second
	}
	if c.Gateway.TopicPrefix == "" {
		c.Gateway.TopicPrefix = gateway.DefaultTopicPrefix
	}
	if c.Gateway.DeviceName == "" {
		c.Gateway.DeviceName = defaultDeviceName
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate 在任何会话开始前检查配置，IMEI 必须是 15 位数字
func (c *Config) Validate() error {
	if _, err := gateway.ParseIdentity(c.Gateway.IMEI); err != nil {
		return err
	}
	switch c.Broker.Transport {
	case TransportMQTT, TransportNATS:
	default:
		return fmt.Errorf("unknown broker transport %q", c.Broker.Transport)
	}
	if c.Broker.Address == "" {
		return fmt.Errorf("broker address is empty")
	}
	if c.Broker.ConnectTimeout < 0 || c.Broker.KeepAlive < 0 {
		return fmt.Errorf("broker timeouts must not be negative")
	}
	return nil
}

// Identity 返回已校验的网关 IMEI
func (c *Config) Identity() (gateway.Identity, error) {
	return gateway.ParseIdentity(c.Gateway.IMEI)
}
