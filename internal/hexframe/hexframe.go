// Package hexframe 在操作员可读的十六进制文本与原始帧之间转换，
// 例如 "41 42 43" ⇄ []byte{0x41, 0x42, 0x43}。
package hexframe

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidHexInput 表示输入文本不是合法的十六进制字节序列
var ErrInvalidHexInput = errors.New("invalid hex input")

// Parse 去掉所有空白后按两位一组解析，大小写均可
func Parse(text string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if compact == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHexInput)
	}
	if len(compact)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits in %q", ErrInvalidHexInput, text)
	}
	b, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHexInput, err)
	}
	return b, nil
}

// Format 输出大写、单空格分隔的字节对
func Format(frame []byte) string {
	if len(frame) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(frame)*3 - 1)
	for i, b := range frame {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
