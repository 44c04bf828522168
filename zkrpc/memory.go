package zkrpc

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vm"
)

// MemoryStore is an in-process Store, for tests and for a single-process
// deployment that does not need programs or keys to survive a restart —
// the zkrpc-level analogue of package vm's own package-level key cache.
type MemoryStore struct {
	mu       sync.RWMutex
	programs map[uuid.UUID]*isa.Program
	keys     map[string]*vm.Keys
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		programs: make(map[uuid.UUID]*isa.Program),
		keys:     make(map[string]*vm.Keys),
	}
}

func (s *MemoryStore) PutProgram(p *isa.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[p.ID] = p
	return nil
}

func (s *MemoryStore) GetProgram(id uuid.UUID) (*isa.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.programs[id]
	if !ok {
		return nil, fmt.Errorf("zkrpc: program %s not registered", id)
	}
	return p, nil
}

func (s *MemoryStore) PutKeys(id uuid.UUID, method string, keys *vm.Keys) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[id.String()+"/"+method] = keys
	return nil
}

func (s *MemoryStore) GetKeys(id uuid.UUID, method string) (*vm.Keys, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[id.String()+"/"+method]
	return k, ok, nil
}
