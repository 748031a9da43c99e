package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeartbeat(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"heartbeat","step":1,"from":"1.2.3.4:1","rssi":-80,"timestamp":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, Heartbeat{Step: 1, From: "1.2.3.4:1", RSSI: -80, Timestamp: "t"}, ev)
	assert.Equal(t, "Heartbeat[#1] from 1.2.3.4:1. RSSI is -80 dBm.", Describe(ev))
}

func TestDecodeHeartbeatWithExtraFieldsAndStringNumbers(t *testing.T) {
	payload := `{"imei":"866425030027611","type":"heartbeat","timestamp":"2019-09-08T06:58:26.436Z",
		"from":"211.77.241.100:12191","step":"7","rssi":"-79","locationAreaCode":10222,
		"cellId":14723,"accessTechnology":"Cat NB1"}`
	ev, err := Decode([]byte(payload))
	require.NoError(t, err)
	hb, ok := ev.(Heartbeat)
	require.True(t, ok)
	assert.Equal(t, int64(7), hb.Step)
	assert.Equal(t, int64(-79), hb.RSSI)
	assert.Equal(t, "211.77.241.100:12191", hb.From)
}

func TestDecodeDisconnect(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"disconnect","timestamp":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, Disconnect{Timestamp: "t"}, ev)
	assert.Equal(t, "Disconnected!", Describe(ev))
}

func TestDecodeUnrecognized(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"register","timestamp":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, Unrecognized{Type: "register"}, ev)
	assert.Empty(t, Describe(ev))
}

func TestDecodeMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":           `heartbeat`,
		"not an object":      `[1,2]`,
		"json null":          `null`,
		"missing type":       `{"timestamp":"t"}`,
		"type not string":    `{"type":1,"timestamp":"t"}`,
		"missing step":       `{"type":"heartbeat","from":"a","rssi":-80,"timestamp":"t"}`,
		"missing from":       `{"type":"heartbeat","step":1,"rssi":-80,"timestamp":"t"}`,
		"missing rssi":       `{"type":"heartbeat","step":1,"from":"a","timestamp":"t"}`,
		"missing timestamp":  `{"type":"heartbeat","step":1,"from":"a","rssi":-80}`,
		"null step":          `{"type":"heartbeat","step":null,"from":"a","rssi":-80,"timestamp":"t"}`,
		"fractional rssi":    `{"type":"heartbeat","step":1,"from":"a","rssi":-80.5,"timestamp":"t"}`,
		"non numeric step":   `{"type":"heartbeat","step":"one","from":"a","rssi":-80,"timestamp":"t"}`,
		"disconnect no time": `{"type":"disconnect"}`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(payload))
			require.ErrorIs(t, err, ErrMalformedStatus)
		})
	}
}

func TestApply(t *testing.T) {
	online := GatewayState{Online: true, LastStep: 9, LastRSSI: -70}

	for _, prior := range []GatewayState{{}, online} {
		got := Apply(prior, Heartbeat{Step: 1, RSSI: -80})
		assert.Equal(t, GatewayState{Online: true, LastStep: 1, LastRSSI: -80}, got)

		assert.Equal(t, GatewayState{}, Apply(prior, Disconnect{}))
		assert.Equal(t, prior, Apply(prior, Unrecognized{Type: "x"}))
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.State().Online)
	assert.Equal(t, "off-line", tr.State().String())

	st, changed := tr.Apply(Heartbeat{Step: 1, RSSI: -80})
	assert.True(t, changed)
	assert.Equal(t, "on-line", st.String())

	_, changed = tr.Apply(Heartbeat{Step: 1, RSSI: -80})
	assert.False(t, changed)

	// 序号回退也照常覆盖
	st, changed = tr.Apply(Heartbeat{Step: 0, RSSI: -90})
	assert.True(t, changed)
	assert.Equal(t, int64(0), st.LastStep)

	_, changed = tr.Apply(Unrecognized{})
	assert.False(t, changed)

	st, changed = tr.Apply(Disconnect{Timestamp: "t"})
	assert.True(t, changed)
	assert.False(t, st.Online)
}
