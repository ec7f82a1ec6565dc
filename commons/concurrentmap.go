package commons

import "sync"

// ConcurrentMap is a map guarded by a mutex.
type ConcurrentMap[K comparable, V any] struct {
	m    map[K]V
	lock sync.RWMutex
}

func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{m: make(map[K]V)}
}

func (cm *ConcurrentMap[K, V]) GetValue(key K) (V, bool) {
	cm.lock.RLock()
	defer cm.lock.RUnlock()

	v, ok := cm.m[key]
	return v, ok
}

func (cm *ConcurrentMap[K, V]) SetValue(key K, value V) {
	cm.lock.Lock()
	defer cm.lock.Unlock()

	cm.m[key] = value
}

func (cm *ConcurrentMap[K, V]) DeleteValue(key K) {
	cm.lock.Lock()
	defer cm.lock.Unlock()

	delete(cm.m, key)
}
