package storage

import (
	"sync"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// MemoryCommandStore ячейка с текущей командой устройства под RWMutex.
// Запись и чтение идут целыми значениями, поля разных записей не смешиваются.
type MemoryCommandStore struct {
	mu      sync.RWMutex
	current entity.Command
}

// NewMemoryCommandStore создаёт ячейку с инертной командой по умолчанию
func NewMemoryCommandStore() *MemoryCommandStore {
	return &MemoryCommandStore{current: entity.DefaultCommand()}
}

// Write заменяет текущую команду; побеждает последняя дошедшая запись
func (s *MemoryCommandStore) Write(cmd entity.Command) {
	cp := cmd.Clone()

	s.mu.Lock()
	s.current = cp
	s.mu.Unlock()
}

// Read возвращает копию текущей команды
func (s *MemoryCommandStore) Read() entity.Command {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current.Clone()
}

var _ port.CommandStore = (*MemoryCommandStore)(nil)
