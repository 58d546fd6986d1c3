package entity

// Command текущая инструкция для контроллера опрыскивателя.
// Хранится в единственном экземпляре и целиком заменяется при записи.
type Command struct {
	Spray      bool    `json:"spray"`
	SprayTime  int     `json:"spray_time"`
	ServoIndex *int    `json:"servo_index"`
	Chemical   *string `json:"chemical"`
}

// DefaultCommand инертная команда, с которой стартует процесс
func DefaultCommand() Command {
	return Command{Spray: false, SprayTime: 0}
}

// Clone возвращает глубокую копию команды.
func (c Command) Clone() Command {
	c.ServoIndex = cloneInt(c.ServoIndex)
	if c.Chemical != nil {
		chemical := *c.Chemical
		c.Chemical = &chemical
	}
	return c
}

// Equal сравнивает команды по значениям, а не по указателям.
func (c Command) Equal(other Command) bool {
	if c.Spray != other.Spray || c.SprayTime != other.SprayTime {
		return false
	}
	if (c.ServoIndex == nil) != (other.ServoIndex == nil) {
		return false
	}
	if c.ServoIndex != nil && *c.ServoIndex != *other.ServoIndex {
		return false
	}
	if (c.Chemical == nil) != (other.Chemical == nil) {
		return false
	}
	return c.Chemical == nil || *c.Chemical == *other.Chemical
}

// ChemicalName возвращает название препарата или пустую строку.
func (c Command) ChemicalName() string {
	if c.Chemical == nil {
		return ""
	}
	return *c.Chemical
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// IntPtr удобный конструктор для опциональных каналов.
func IntPtr(v int) *int {
	return &v
}

// StringPtr удобный конструктор для опциональных строк.
func StringPtr(v string) *string {
	return &v
}
