package fakebackend

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// record is one stored row; "id" is always set
type record map[string]any

// store keeps one collection in insertion order
type store struct {
	mu   sync.RWMutex
	rows []record
}

func newStore() *store {
	return &store{}
}

func (s *store) create(r record) record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r = clone(r)
	if id, _ := r["id"].(string); id == "" {
		r["id"] = uuid.NewString()
	}
	s.rows = append(s.rows, r)
	return clone(r)
}

func (s *store) get(id string) (record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return clone(s.rows[i]), true
	}
	return nil, false
}

func (s *store) update(id string, r record) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	r = clone(r)
	r["id"] = id
	s.rows[i] = r
	return clone(r), true
}

func (s *store) patch(id string, fields record) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	for k, v := range fields {
		if k != "id" {
			s.rows[i][k] = v
		}
	}
	return clone(s.rows[i]), true
}

func (s *store) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return true
}

// list returns the rows matching search (case-insensitive substring of any
// string field) and the total before paging. page is 1-based; limit 0 means all.
func (s *store) list(search string, page, limit int) ([]record, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(search)
	var matched []record
	for _, r := range s.rows {
		if search == "" || matches(r, search) {
			matched = append(matched, clone(r))
		}
	}

	total := len(matched)
	if limit <= 0 {
		return matched, total
	}
	start := (max(page, 1) - 1) * limit
	if start >= total {
		return []record{}, total
	}
	return matched[start:min(start+limit, total)], total
}

func (s *store) index(id string) int {
	for i, r := range s.rows {
		if r["id"] == id {
			return i
		}
	}
	return -1
}

func matches(r record, needle string) bool {
	for _, v := range r {
		if str, ok := v.(string); ok && strings.Contains(strings.ToLower(str), needle) {
			return true
		}
	}
	return false
}

func clone(r record) record {
	out := make(record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
