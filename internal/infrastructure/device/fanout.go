package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// Named notifier с именем для строки ответа
type Named struct {
	Name     string
	Notifier port.DeviceNotifier
}

// Fanout рассылает команду всем адаптерам параллельно и склеивает ответы.
type Fanout struct {
	targets []Named
}

// NewFanout создаёт рассылку по адаптерам
func NewFanout(targets ...Named) *Fanout {
	return &Fanout{targets: targets}
}

// Len количество адаптеров
func (f *Fanout) Len() int {
	return len(f.targets)
}

// Notify возвращает ответы в порядке адаптеров; ошибка только если не ответил ни один
func (f *Fanout) Notify(ctx context.Context, cmd entity.Command) (string, error) {
	if len(f.targets) == 0 {
		return "", nil
	}

	responses := make([]string, len(f.targets))
	errs := make([]error, len(f.targets))

	var wg sync.WaitGroup
	for i, t := range f.targets {
		wg.Add(1)
		go func(i int, t Named) {
			defer wg.Done()
			responses[i], errs[i] = t.Notifier.Notify(ctx, cmd.Clone())
		}(i, t)
	}
	wg.Wait()

	if len(f.targets) == 1 {
		return responses[0], errs[0]
	}

	parts := make([]string, len(f.targets))
	failed := 0
	for i, t := range f.targets {
		if errs[i] != nil {
			failed++
			parts[i] = fmt.Sprintf("%s: Error: %v", t.Name, errs[i])
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", t.Name, responses[i])
	}
	joined := strings.Join(parts, "; ")
	if failed == len(f.targets) {
		return joined, errors.Join(errs...)
	}
	return joined, nil
}

var _ port.DeviceNotifier = (*Fanout)(nil)
