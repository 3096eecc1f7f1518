package keylock

import "sync"

// MutexMap hands out one mutex per key. Entries are dropped once no goroutine holds or waits on them.
type MutexMap struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewMutexMap() *MutexMap {
	return &MutexMap{entries: make(map[string]*entry)}
}

// Lock blocks until key is exclusively held and returns the matching release func.
func (m *MutexMap) Lock(key string) (unlock func()) {
	e := m.acquire(key)
	e.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.release(key, e)
		})
	}
}

// Len reports how many keys are currently tracked.
func (m *MutexMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MutexMap) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *MutexMap) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}
