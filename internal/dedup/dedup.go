package dedup

import (
	"strings"
	"sync"

	"go-jss-crawler/internal/filter"
)

// Set remembers which postings one crawl invocation has already emitted.
// It is created by the invocation and handed to every pass; nothing outlives it.
type Set struct {
	mu    sync.Mutex
	keys  map[string]struct{}
	names map[string]struct{}
	order []string
}

func NewSet() *Set {
	return &Set{
		keys:  make(map[string]struct{}),
		names: make(map[string]struct{}),
	}
}

// Key builds the dedup key: normalized company name + "_" + external id.
func Key(companyName, externalID string) string {
	return filter.Normalize(companyName) + "_" + strings.TrimSpace(externalID)
}

// IsSeen checks if a key has already been emitted.
func (s *Set) IsSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.keys[key]
	return exists
}

// Add records key for companyName. It reports false when the key was already present.
func (s *Set) Add(key, companyName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.keys[key]; exists {
		return false
	}
	s.keys[key] = struct{}{}
	s.names[filter.Normalize(companyName)] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Len is the number of distinct emitted keys.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ContainsAnyName reports whether any wanted name (normalized) is contained in
// the company name of an emitted key. This is the name filter's substring
// rule, not an exact match on the normalized name part of a key.
func (s *Set) ContainsAnyName(wanted []string) bool {
	targets := filter.NormalizeAll(wanted)
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.names {
		for _, t := range targets {
			if strings.Contains(name, t) {
				return true
			}
		}
	}
	return false
}
