package port

import (
	"context"

	"smart-spray/internal/domain/entity"
)

// AuditLog упорядоченный журнал решений только на добавление
type AuditLog interface {
	// Append дописывает запись в конец журнала и возвращает её с заполненными id и timestamp
	Append(ctx context.Context, entry entity.LogEntry) (entity.LogEntry, error)

	// Load возвращает последние last записей по порядку; last < 0 означает весь журнал
	Load(ctx context.Context, last int) ([]entity.LogEntry, error)
}
