package port

import (
	"context"

	"smart-spray/internal/domain/entity"
)

// Classifier интерфейс классификатора болезней листьев
type Classifier interface {
	// Classify декодирует изображение и возвращает метку класса с уверенностью
	Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error)
}

// Camera интерфейс локальной камеры
type Camera interface {
	// Capture снимает один кадр и возвращает его в JPEG
	Capture(ctx context.Context) ([]byte, error)
}
