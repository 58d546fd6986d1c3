package entity

import "time"

// Источники решений
const (
	SourceUpload   = "upload"
	SourceWebcam   = "webcam"
	SourceTelegram = "telegram"
	SourceManual   = "manual"
)

// ManualClassID метка записи журнала для ручного управления
const ManualClassID = "manual"

// ManualDisease отображаемое имя ручного решения
const ManualDisease = "Manual Override"

// LogEntry неизменяемая запись журнала решений
type LogEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`   // upload, webcam, telegram, manual
	ClassID        string    `json:"class_id"` // метка классификатора или manual
	Disease        string    `json:"disease"`
	Confidence     float64   `json:"confidence"`
	Spray          bool      `json:"spray"`
	SprayTime      int       `json:"spray_time"`
	ServoIndex     *int      `json:"servo_index"`
	Chemical       string    `json:"chemical"`
	DeviceResponse string    `json:"device_response,omitempty"` // ответ контроллера на push
}

// IsManual сообщает, что запись сделана ручным управлением.
func (e LogEntry) IsManual() bool {
	return e.ClassID == ManualClassID
}

// Clone возвращает копию без общих указателей.
func (e LogEntry) Clone() LogEntry {
	e.ServoIndex = cloneInt(e.ServoIndex)
	return e
}
