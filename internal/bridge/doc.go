// Package bridge 把本地串口与远端 NB-IoT 网关的 MQTT 主题桥接起来：
//
//	串口读 → Relay → 发布到 tx 主题
//	rx 主题 → Relay → 写串口
//	status 主题 → status.Tracker → Relay → Sink
//
// 串口读循环和总线投递 goroutine 都只把事件放进会话队列，
// 由会话唯一的消费 goroutine 依次处理，发布和写串口都只在这个 goroutine 中发生。
package bridge
