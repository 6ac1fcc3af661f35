// Package iocache is for durable caching and run tracking.
package iocache

import (
	"sync"

	"github.com/huangsam/lakerisk/internal/contract"
)

// CacheStoreManager manages the attribution cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	attribution  contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetAttributionStore returns the attribution CacheStore.
func (mgr *CacheStoreManager) GetAttributionStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.attribution
}

// GetRunStore returns the RunStore, or nil when run tracking is disabled.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
