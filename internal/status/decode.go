package status

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedStatus 状态通知无法解码或缺少必需字段；只丢弃这一条
var ErrMalformedStatus = errors.New("malformed status")

const (
	TypeHeartbeat  = "heartbeat"
	TypeDisconnect = "disconnect"
)

// Decode 解析状态主题的 JSON 负载，例如
//
//	{"imei":"866425030027611","type":"heartbeat","timestamp":"2019-09-08T06:58:26.436Z",
//	 "from":"211.77.241.100:12191","step":1,"rssi":-79}
//
// step/rssi 既接受 JSON 数字也接受数字字符串，多余字段忽略。
func Decode(payload []byte) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStatus, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedStatus)
	}

	typ, err := stringField(fields, "type")
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeHeartbeat:
		var hb Heartbeat
		if hb.Timestamp, err = stringField(fields, "timestamp"); err != nil {
			return nil, err
		}
		if hb.From, err = stringField(fields, "from"); err != nil {
			return nil, err
		}
		if hb.Step, err = intField(fields, "step"); err != nil {
			return nil, err
		}
		if hb.RSSI, err = intField(fields, "rssi"); err != nil {
			return nil, err
		}
		return hb, nil

	case TypeDisconnect:
		ts, err := stringField(fields, "timestamp")
		if err != nil {
			return nil, err
		}
		return Disconnect{Timestamp: ts}, nil

	default:
		return Unrecognized{Type: typ}, nil
	}
}

func lookup(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedStatus, name)
	}
	return raw, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := lookup(fields, name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: field %q is not a string", ErrMalformedStatus, name)
	}
	return s, nil
}

func intField(fields map[string]json.RawMessage, name string) (int64, error) {
	raw, err := lookup(fields, name)
	if err != nil {
		return 0, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedStatus, name, err)
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q is not an integer", ErrMalformedStatus, name)
		}
		return v, nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: field %q is not an integer", ErrMalformedStatus, name)
	}
	return v, nil
}
