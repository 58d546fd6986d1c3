package port

import (
	"context"

	"smart-spray/internal/domain/entity"
)

// DeviceNotifier рекомендательный push команды на контроллер.
// Ошибка не прерывает конвейер, строка ответа попадает в журнал.
type DeviceNotifier interface {
	Notify(ctx context.Context, cmd entity.Command) (string, error)
}

// DecisionListener получает каждую записанную в журнал запись.
// Реализации не должны блокировать вызывающего.
type DecisionListener interface {
	OnDecision(ctx context.Context, entry entity.LogEntry)
}
