package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// IdentityLength 是 NB-IoT 网关 IMEI 的固定长度
const IdentityLength = 15

// ErrInvalidIdentity 表示 IMEI 不是 15 位数字
var ErrInvalidIdentity = errors.New("invalid gateway identity")

// Identity 远端网关的 IMEI，会话期间不可变，所有主题名都由它派生
type Identity string

// ParseIdentity 校验并返回 Identity，必须恰好 15 位 ASCII 数字
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if len(s) != IdentityLength {
		return "", fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidIdentity, s, len(s), IdentityLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: %q contains non-digit %q", ErrInvalidIdentity, s, s[i])
		}
	}
	return Identity(s), nil
}

func (id Identity) String() string {
	return string(id)
}
