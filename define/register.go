package define

import (
	"fmt"
	"sync"
)

var (
	factoryMutex sync.RWMutex
	factories    = make(map[string]ConnFactory)
)

// RegisterFactory registers a connection factory for a specific driver
func RegisterFactory(driver string, factory ConnFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	factories[driver] = factory
}

// GetFactory returns the connection factory for a specific driver
func GetFactory(driver string) (ConnFactory, error) {
	factoryMutex.RLock()
	defer factoryMutex.RUnlock()
	if factory, ok := factories[driver]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("no factory registered for driver: %s", driver)
}

// UnregisterFactory removes a connection factory for a specific driver
func UnregisterFactory(driver string) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	delete(factories, driver)
}
