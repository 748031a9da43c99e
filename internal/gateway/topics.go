package gateway

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix 是 broker 侧为每个 IMEI 分配的主题前缀
const DefaultTopicPrefix = "/maxlong/broker/imei"

// TopicSet 由 Identity 派生的三个主题：
// Status 心跳/断线通知，Tx 本地 → 远端，Rx 远端 → 本地
type TopicSet struct {
	Status string
	Tx     string
	Rx     string
}

// NewTopicSet 按 "<prefix>/<imei>/{status,tx,rx}" 生成主题
func NewTopicSet(prefix string, id Identity) TopicSet {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	base := fmt.Sprintf("%s/%s", prefix, id)
	return TopicSet{
		Status: base + "/status",
		Tx:     base + "/tx",
		Rx:     base + "/rx",
	}
}

// Inbound 返回绑定时需要订阅的主题
func (t TopicSet) Inbound() []string {
	return []string{t.Status, t.Rx}
}
