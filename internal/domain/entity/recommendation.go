package entity

// UnknownDisease отображаемое имя для меток, которых нет в таблице обработки
const UnknownDisease = "Unknown"

// Recommendation решение по обработке для конкретной метки классификатора
type Recommendation struct {
	Disease    string `json:"disease"`     // человекочитаемое название болезни
	Spray      bool   `json:"spray"`       // нужно ли опрыскивание
	SprayTime  int    `json:"spray_time"`  // длительность в секундах
	ServoIndex *int   `json:"servo_index"` // канал привода, nil если не применимо
	Chemical   string `json:"chemical"`    // препарат
}

// UnknownRecommendation возвращает рекомендацию по умолчанию для неизвестной метки.
func UnknownRecommendation() Recommendation {
	return Recommendation{
		Disease:    UnknownDisease,
		Spray:      false,
		SprayTime:  0,
		ServoIndex: nil,
		Chemical:   "None",
	}
}

// Command строит команду устройству из рекомендации.
func (r Recommendation) Command() Command {
	chemical := r.Chemical
	return Command{
		Spray:      r.Spray,
		SprayTime:  r.SprayTime,
		ServoIndex: cloneInt(r.ServoIndex),
		Chemical:   &chemical,
	}
}

// Clone возвращает копию без общих указателей.
func (r Recommendation) Clone() Recommendation {
	r.ServoIndex = cloneInt(r.ServoIndex)
	return r
}
