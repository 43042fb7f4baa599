package boxcommon

import (
	"sync"
)

// KeyedMutex serializes operations per tenant key. Artifact writes/deletes
// and provisioning for one tenant never run concurrently, while unrelated
// tenants proceed independently. Entries are never evicted; tenant count is
// small and bounded by provisioning.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[TenantKey]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[TenantKey]*sync.Mutex),
	}
}

// Lock acquires the mutex for key, creating it on first use.
func (km *KeyedMutex) Lock(key TenantKey) {
	km.mu.Lock()
	l, ok := km.locks[key]
	if !ok {
		l = &sync.Mutex{}
		km.locks[key] = l
	}
	km.mu.Unlock()
	l.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that was never locked
// panics, same as sync.Mutex.
func (km *KeyedMutex) Unlock(key TenantKey) {
	km.mu.Lock()
	l, ok := km.locks[key]
	km.mu.Unlock()
	if !ok {
		panic("boxcommon: unlock of unknown tenant key")
	}
	l.Unlock()
}
