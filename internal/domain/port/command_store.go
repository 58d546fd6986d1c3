package port

import "smart-spray/internal/domain/entity"

// CommandStore хранит единственную текущую команду устройства
type CommandStore interface {
	// Write атомарно заменяет текущую команду
	Write(cmd entity.Command)

	// Read возвращает копию текущей команды (или команды по умолчанию) и никогда не падает
	Read() entity.Command
}
