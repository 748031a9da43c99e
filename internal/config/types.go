package config

import "time"

// BrokerConfig 描述远端 broker 连接参数
type BrokerConfig struct {
	Transport      string        `yaml:"Transport"` // mqtt / nats
	Address        string        `yaml:"Address"`   // tcp://host:1883 或 nats://host:4222
	ClientID       string        `yaml:"ClientID"`  // 为空时自动生成
	Username       string        `yaml:"Username"`
	Password       string        `yaml:"Password"`
	KeepAlive      time.Duration `yaml:"KeepAlive"`
	ConnectTimeout time.Duration `yaml:"ConnectTimeout"`
}

// GatewayConfig 描述被桥接的 NB-IoT 网关
type GatewayConfig struct {
	IMEI        string `yaml:"IMEI"`
	TopicPrefix string `yaml:"TopicPrefix"`
	DeviceName  string `yaml:"DeviceName"` // EdgeX 模式下上报读数使用的设备名
}

// SerialConfig 本地串口；波特率等参数固定，只有端口名可配
type SerialConfig struct {
	Port string `yaml:"Port"` // 为空时由操作员 bind 命令指定
}

// Config 汇总了 Broker、Gateway、Serial 等配置
type Config struct {
	Broker   BrokerConfig  `yaml:"Broker"`
	Gateway  GatewayConfig `yaml:"Gateway"`
	Serial   SerialConfig  `yaml:"Serial"`
	LogLevel string        `yaml:"LogLevel"`
}
