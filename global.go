package mempool

import (
	"sort"
	"sync"
	"unsafe"
)

// Manager keeps named allocators so subsystems can share pool memory by
// name instead of passing *Allocator through every layer. Instances
// materialize on first Get, using a config registered beforehand or the
// default one.
type Manager struct {
	allocators sync.Map // name -> *Allocator
	configs    map[string]Config
	configMu   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		configs: make(map[string]Config),
	}
}

var GlobalManager = NewManager()

// RegisterConfig records the config Get will use when it first
// materializes name. Registering after the instance exists, or twice for
// the same name, returns ErrAllocatorExists.
func (m *Manager) RegisterConfig(name string, config Config) error {
	if _, ok := m.allocators.Load(name); ok {
		return newAllocError("register", name, ErrAllocatorExists)
	}

	m.configMu.Lock()
	defer m.configMu.Unlock()

	if _, exists := m.configs[name]; exists {
		return newAllocError("register", name, ErrAllocatorExists)
	}
	m.configs[name] = config
	return nil
}

// Get returns the allocator registered under name, creating it on first
// use. Racing creators resolve by LoadOrStore; the loser closes its
// instance and adopts the winner's.
func (m *Manager) Get(name string) *Allocator {
	if held, ok := m.allocators.Load(name); ok {
		return held.(*Allocator)
	}

	m.configMu.RLock()
	config, exists := m.configs[name]
	m.configMu.RUnlock()

	if !exists {
		config = DefaultConfig()
	}

	a := New(config)
	if actual, loaded := m.allocators.LoadOrStore(name, a); loaded {
		a.Close()
		return actual.(*Allocator)
	}
	return a
}

// Remove closes and forgets the named allocator. Unknown names return
// ErrAllocatorNotFound.
func (m *Manager) Remove(name string) error {
	m.configMu.Lock()
	delete(m.configs, name)
	m.configMu.Unlock()

	held, ok := m.allocators.LoadAndDelete(name)
	if !ok {
		return newAllocError("remove", name, ErrAllocatorNotFound)
	}
	return held.(*Allocator).Close()
}

// Names returns the materialized allocator names, sorted.
func (m *Manager) Names() []string {
	var names []string
	m.allocators.Range(func(key, _ interface{}) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// StatsAll snapshots every materialized allocator.
func (m *Manager) StatsAll() map[string]Stats {
	stats := make(map[string]Stats)
	m.allocators.Range(func(key, value interface{}) bool {
		stats[key.(string)] = value.(*Allocator).Stats()
		return true
	})
	return stats
}

// CloseAll closes every materialized allocator and forgets them all.
func (m *Manager) CloseAll() error {
	var firstErr error
	m.allocators.Range(func(key, value interface{}) bool {
		if err := value.(*Allocator).Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.allocators.Delete(key)
		return true
	})
	if firstErr != nil {
		return wrapError("close all", firstErr)
	}
	return nil
}

// Process-global default allocator. defaultOverride wins when set;
// otherwise the lazy instance materializes once.
var (
	defaultMu       sync.Mutex
	defaultLazy     *Allocator
	defaultOverride *Allocator
)

// Default returns the process-global allocator, creating it with
// DefaultConfig() on first use. SetDefault overrides what it returns.
func Default() *Allocator {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultOverride != nil {
		return defaultOverride
	}
	if defaultLazy == nil {
		defaultLazy = NewWithDefaults()
	}
	return defaultLazy
}

// SetDefault makes a the process-global allocator. The previous default is
// not closed; callers that replaced it own its shutdown. Passing nil
// removes the override so Default falls back to the lazy instance.
func SetDefault(a *Allocator) {
	defaultMu.Lock()
	defaultOverride = a
	defaultMu.Unlock()
}

// Allocate serves from the process-global allocator.
func Allocate(size int) unsafe.Pointer {
	return Default().Allocate(size)
}

// AllocateAligned serves from the process-global allocator.
func AllocateAligned(size, align int) unsafe.Pointer {
	return Default().AllocateAligned(size, align)
}

// Deallocate releases through the process-global allocator.
func Deallocate(ptr unsafe.Pointer) bool {
	return Default().Deallocate(ptr)
}

// GlobalStats snapshots the process-global allocator.
func GlobalStats() Stats {
	return Default().Stats()
}
