// Package runstore persists analysis run history and decision curve rows.
package runstore

import (
	"sync"

	"github.com/ltin1214/dcurves/internal/contract"
)

// RunStoreManager manages the RunStore instance.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	run          contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// Manager is the global store manager instance.
var Manager = &RunStoreManager{}

// GetRunStore returns the run history store, or nil before InitStores.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.run
}

// InitStores initializes the run store from the validated config.
func InitStores(cfg *contract.Config) error {
	store, err := NewRunStore(cfg.HistoryBackend, cfg.HistoryDBConnect)
	if err != nil {
		return err
	}
	Manager.Lock()
	defer Manager.Unlock()
	Manager.run = store
	return nil
}

// CloseStores closes the run store connection if one was initialized.
func CloseStores() {
	Manager.Lock()
	defer Manager.Unlock()
	if Manager.run != nil {
		if err := Manager.run.Close(); err != nil {
			contract.LogWarn("Failed to close run store", err)
		}
		Manager.run = nil
	}
}
