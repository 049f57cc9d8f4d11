package spend

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Store holds the delegations known to the current session, keyed by
// permission hash. The authoritative state lives in the external protocol;
// this is local bookkeeping only and is not persisted past the session.
type Store struct {
	mu          sync.RWMutex
	permissions map[common.Hash]Permission
}

// NewStore creates an empty permission store.
func NewStore() *Store {
	return &Store{permissions: make(map[common.Hash]Permission)}
}

// Put inserts or replaces a permission.
func (s *Store) Put(p Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[p.PermissionHash] = p
}

// Get returns the permission for a hash, if known.
func (s *Store) Get(hash common.Hash) (Permission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[hash]
	return p, ok
}

// Remove drops a permission from the store.
func (s *Store) Remove(hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.permissions, hash)
}

// Replace swaps the entire contents for a freshly fetched set.
func (s *Store) Replace(permissions []Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions = make(map[common.Hash]Permission, len(permissions))
	for _, p := range permissions {
		s.permissions[p.PermissionHash] = p
	}
}

// List returns all known permissions ordered by hash so repeated calls
// with unchanged contents return equal slices.
func (s *Store) List() []Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PermissionHash.Hex() < out[j].PermissionHash.Hex()
	})
	return out
}

// FindByToken returns the first granted permission for a token, if any.
func (s *Store) FindByToken(token common.Address) (Permission, bool) {
	for _, p := range s.List() {
		if p.Token == token && p.Granted() {
			return p, true
		}
	}
	return Permission{}, false
}

// Len returns the number of stored permissions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.permissions)
}
