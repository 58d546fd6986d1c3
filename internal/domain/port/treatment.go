package port

import "smart-spray/internal/domain/entity"

// TreatmentTable неизменяемая таблица обработки: метка -> рекомендация
type TreatmentTable interface {
	// Resolve всегда возвращает рекомендацию; неизвестная метка даёт Unknown
	Resolve(label string) entity.Recommendation
}
