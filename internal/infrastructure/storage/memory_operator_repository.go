package storage

import (
	"context"
	"sort"
	"sync"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// MemoryOperatorRepository in-memory хранилище операторов бота
type MemoryOperatorRepository struct {
	mu        sync.RWMutex
	operators map[int64]entity.Operator
}

// NewMemoryOperatorRepository создаёт новое in-memory хранилище
func NewMemoryOperatorRepository() *MemoryOperatorRepository {
	return &MemoryOperatorRepository{
		operators: make(map[int64]entity.Operator),
	}
}

// Get возвращает копию оператора по ID, создаёт нового если не найден
func (r *MemoryOperatorRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Operator, error) {
	r.mu.RLock()
	op, exists := r.operators[userID]
	r.mu.RUnlock()

	if exists {
		return &op, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Повторная проверка: оператора мог создать параллельный запрос
	if op, exists := r.operators[userID]; exists {
		return &op, nil
	}
	created := entity.NewOperator(userID, chatID)
	r.operators[userID] = *created

	return created, nil
}

// Save сохраняет состояние оператора
func (r *MemoryOperatorRepository) Save(ctx context.Context, operator *entity.Operator) error {
	r.mu.Lock()
	r.operators[operator.ID] = *operator
	r.mu.Unlock()

	return nil
}

// Subscribers возвращает подписанных операторов в порядке ID
func (r *MemoryOperatorRepository) Subscribers(ctx context.Context) ([]*entity.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Operator, 0)
	for _, op := range r.operators {
		if op.Subscribed {
			op := op
			out = append(out, &op)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// Проверка реализации интерфейса
var _ port.OperatorRepository = (*MemoryOperatorRepository)(nil)
