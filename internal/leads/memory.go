package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps leads in process memory. Its contents vanish with it.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	leads  map[uint]Lead
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leads: make(map[uint]Lead), now: time.Now}
}

func (m *MemoryStore) Add(_ context.Context, l Lead) (Lead, error) {
	if l.Status == "" {
		l.Status = StatusNew
	}
	st, err := ParseStatus(string(l.Status))
	if err != nil {
		return Lead{}, err
	}
	l.Status = st
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	l.ID = m.nextID
	l.CreatedAt = m.now()
	l.UpdatedAt = l.CreatedAt
	m.leads[l.ID] = l
	return l, nil
}

func (m *MemoryStore) Get(_ context.Context, id uint) (Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return l, nil
}

func (m *MemoryStore) filter(keep func(Lead) bool) []Lead {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Lead, 0)
	for _, l := range m.leads {
		if keep(l) {
			out = append(out, l)
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *MemoryStore) ListByProperty(_ context.Context, propertyID uint) ([]Lead, error) {
	return m.filter(func(l Lead) bool { return l.PropertyID == propertyID }), nil
}

func (m *MemoryStore) ListForAgent(_ context.Context, agentID uint) ([]Lead, error) {
	return m.filter(func(l Lead) bool { return l.AgentID == agentID }), nil
}

func (m *MemoryStore) SetStatus(_ context.Context, id uint, s Status) (Lead, error) {
	st, err := ParseStatus(string(s))
	if err != nil {
		return Lead{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	l.Status = st
	l.UpdatedAt = m.now()
	m.leads[id] = l
	return l, nil
}

func (m *MemoryStore) CountByStatus(_ context.Context, agentID uint) (map[Status]int, error) {
	counts := newCounts()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.leads {
		if l.AgentID == agentID {
			counts[l.Status]++
		}
	}
	return counts, nil
}

// SessionStores hands each session its own MemoryStore and forgets it when
// the session ends.
type SessionStores struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewSessionStores() *SessionStores {
	return &SessionStores{stores: make(map[string]*MemoryStore)}
}

// For returns the store of session sid, creating it on first use.
func (s *SessionStores) For(sid string) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[sid]
	if !ok {
		st = NewMemoryStore()
		s.stores[sid] = st
	}
	return st
}

// Drop discards the store of session sid.
func (s *SessionStores) Drop(sid string) {
	s.mu.Lock()
	delete(s.stores, sid)
	s.mu.Unlock()
}

// Len returns the number of live session stores.
func (s *SessionStores) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
