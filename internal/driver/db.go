package driver

import (
	"sync"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/errors"
)

// frameStore 是一个简单的内存存储：ResourceName → 最近一帧。
// 只保留最新值，不做持久化。
type frameStore struct {
	mu     sync.RWMutex
	frames map[string][]byte
}

func newFrameStore() *frameStore {
	return &frameStore{frames: make(map[string][]byte)}
}

// Record 保存一帧的副本，避免外部修改
func (f *frameStore) Record(resourceName string, frame []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames[resourceName] = append([]byte(nil), frame...)
}

// Last 返回最近一帧的副本
func (f *frameStore) Last(resourceName string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	frame, ok := f.frames[resourceName]
	if !ok {
		return nil, errors.NewCommonEdgeX(
			errors.KindEntityDoesNotExist,
			"no frame recorded for "+resourceName,
			nil,
		)
	}
	return append([]byte(nil), frame...), nil
}

// Reset 清空所有记录，在新会话绑定前调用
func (f *frameStore) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = make(map[string][]byte)
}
