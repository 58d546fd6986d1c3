package vision

import (
	"context"

	"golang.org/x/sync/semaphore"

	"smart-spray/internal/domain/apperr"
	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// ThrottledClassifier ограничивает число одновременных инференсов.
// Ожидающий вызов прекращается вместе с контекстом запроса.
type ThrottledClassifier struct {
	next port.Classifier
	sem  *semaphore.Weighted
}

// NewThrottledClassifier оборачивает классификатор лимитом workers
func NewThrottledClassifier(next port.Classifier, workers int) *ThrottledClassifier {
	if workers <= 0 {
		workers = 1
	}
	return &ThrottledClassifier{next: next, sem: semaphore.NewWeighted(int64(workers))}
}

// Classify ждёт свободный слот и вызывает обёрнутый классификатор
func (t *ThrottledClassifier) Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, apperr.Wrap(apperr.KindClassifierUnavailable, "inference slot wait aborted", err)
	}
	defer t.sem.Release(1)

	return t.next.Classify(ctx, imageData)
}

var _ port.Classifier = (*ThrottledClassifier)(nil)
