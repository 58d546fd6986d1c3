package entity

// OperatorState состояние оператора в диалоге с ботом
type OperatorState string

const (
	StateIdle          OperatorState = "idle"           // Ждёт команды
	StateAwaitingPhoto OperatorState = "awaiting_photo" // Ожидание фото листа
	StateProcessing    OperatorState = "processing"     // Идёт классификация
)

// Operator оператор, управляющий опрыскивателем через Telegram
type Operator struct {
	ID         int64         // Telegram User ID
	ChatID     int64         // Telegram Chat ID
	State      OperatorState // Текущее состояние
	Subscribed bool          // Получает уведомления о решениях
}

// NewOperator создаёт оператора в начальном состоянии
func NewOperator(userID, chatID int64) *Operator {
	return &Operator{
		ID:     userID,
		ChatID: chatID,
		State:  StateIdle,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}
