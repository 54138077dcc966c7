package database

import (
	"sync"
	"sync/atomic"
)

var (
	instance   atomic.Pointer[Database]
	instanceMu sync.Mutex
)

// GetInstance returns the process-wide database handle, opening it on first use.
// Later calls return the same handle and ignore their arguments.
func GetInstance(dbPath string, opts ...Option) (*Database, error) {
	if db := instance.Load(); db != nil {
		return db, nil
	}

	instanceMu.Lock()
	defer instanceMu.Unlock()

	if db := instance.Load(); db != nil {
		return db, nil
	}

	db, err := NewDatabase(dbPath, opts...)
	if err != nil {
		return nil, err
	}
	instance.Store(db)
	return db, nil
}

// CloseInstance closes the shared handle so the next GetInstance opens a new one.
func CloseInstance() error {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	db := instance.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}
