package natsbus

import (
	"testing"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linjuya-lu/device_nbiot_bridge_go/internal/mqtt"
)

func TestOnMessageDispatchesToHandler(t *testing.T) {
	c := &Client{lc: logger.NewMockClient(), subs: map[string]*nats.Subscription{}}
	c.onMessage(&nats.Msg{Subject: "x", Data: []byte{1}})

	var got []byte
	c.SetHandler(mqtt.HandlerFunc(func(topic string, payload []byte) {
		assert.Equal(t, "gw.rx", topic)
		got = payload
	}))
	c.onMessage(&nats.Msg{Subject: "gw.rx", Data: []byte{0x10, 0x20}})
	assert.Equal(t, []byte{0x10, 0x20}, got)
}

func TestConnectUnreachableServer(t *testing.T) {
	c, err := Connect(Options{URL: "nats://127.0.0.1:1", ConnectTimeout: time.Second}, logger.NewMockClient())
	assert.Nil(t, c)
	require.ErrorIs(t, err, ErrConnection)
}
