package entity

// ClassificationResult результат работы классификатора по одному изображению
type ClassificationResult struct {
	Label      string  `json:"label"`      // идентификатор класса модели
	Confidence float64 `json:"confidence"` // уверенность в диапазоне [0,1]
}
