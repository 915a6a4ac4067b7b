package permission

import (
	"iter"
	"sync"
)

// Session holds the permission map between login and logout
type Session struct {
	mu   sync.RWMutex
	opts []GateOption
	m    *Map
	gate *Gate
}

// NewSession creates an empty session; opts apply to every gate it builds
func NewSession(opts ...GateOption) *Session {
	s := &Session{opts: opts}
	s.reset()
	return s
}

// Login replaces the held map with one built from modules
func (s *Session) Login(modules []Module) {
	m := NewMap(modules)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = m
	s.gate = NewGate(m, s.opts...)
}

// Logout discards the held map
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.m = nil
	s.gate = NewGate(nil, s.opts...)
}

// Active reports whether a map is held
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m != nil
}

// Map returns the held map, nil after logout
func (s *Session) Map() *Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m
}

// IsAllowed checks route against the held map
func (s *Session) IsAllowed(route string) bool {
	s.mu.RLock()
	gate := s.gate
	s.mu.RUnlock()
	return gate.IsAllowed(route)
}

// Menu returns the menu for the map held at the time of the call
func (s *Session) Menu() iter.Seq[MenuSection] {
	return MenuItems(s.Map())
}
