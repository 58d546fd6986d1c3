package container

import (
	"log/slog"

	app "smart-spray/internal/application"
	"smart-spray/internal/domain/port"
)

// Deps внешние адаптеры, из которых собираются сервисы
type Deps struct {
	Classifier port.Classifier
	Camera     port.Camera
	Table      port.TreatmentTable
	Commands   port.CommandStore
	AuditLog   port.AuditLog
	Device     port.DeviceNotifier
	Operators  port.OperatorRepository
	Listeners  []port.DecisionListener
	Spray      app.SprayConfig
	Log        *slog.Logger
}

type Container struct {
	OperatorService *app.OperatorService
	SprayService    *app.SprayService
}

func New(deps Deps) *Container {
	operatorService := app.NewOperatorService(deps.Operators)
	sprayService := app.NewSprayService(
		deps.Classifier,
		deps.Camera,
		deps.Table,
		deps.Commands,
		deps.AuditLog,
		deps.Device,
		deps.Spray,
		deps.Log,
	)
	for _, l := range deps.Listeners {
		sprayService.Subscribe(l)
	}

	return &Container{
		OperatorService: operatorService,
		SprayService:    sprayService,
	}
}
