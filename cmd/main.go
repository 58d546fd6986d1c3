package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"smart-spray/config"
	"smart-spray/internal/api/rest"
	"smart-spray/internal/api/telegram"
	app "smart-spray/internal/application"
	"smart-spray/internal/container"
	"smart-spray/internal/domain/port"
	"smart-spray/internal/infrastructure/device"
	"smart-spray/internal/infrastructure/observability"
	"smart-spray/internal/infrastructure/schedule"
	"smart-spray/internal/infrastructure/storage"
	"smart-spray/internal/infrastructure/vision"
)

// auditStore журнал решений с закрытием при остановке
type auditStore interface {
	port.AuditLog
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Таблица обработки обязательна: без неё решения принимать нельзя
	table, err := schedule.Load(cfg.SchedulePath)
	if err != nil {
		log.Fatalf("Failed to load spray schedule: %v", err)
	}

	audit, err := openAuditLog(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open spray log: %v", err)
	}
	defer audit.Close()

	classifier := vision.NewThrottledClassifier(
		vision.NewTFServingClassifier(vision.TFServingConfig{
			URL:       cfg.ClassifierURL,
			Classes:   cfg.ClassifierClasses,
			InputSize: cfg.ClassifierInputSize,
			Timeout:   cfg.ClassifierTimeout,
		}, nil),
		cfg.ClassifierWorkers,
	)

	notifier, err := deviceNotifier(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to device: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	// Собираем сервисы приложения
	appContainer := container.New(container.Deps{
		Classifier: classifier,
		Camera:     vision.NewWebcam(cfg.CameraDevice),
		Table:      table,
		Commands:   storage.NewMemoryCommandStore(),
		AuditLog:   audit,
		Device:     notifier,
		Operators:  storage.NewMemoryOperatorRepository(),
		Listeners:  []port.DecisionListener{metrics},
		Spray: app.SprayConfig{
			ServoChannels: cfg.ServoChannels,
			DeviceTimeout: cfg.DeviceTimeout,
		},
		Log: logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	srv := rest.New(*cfg, appContainer.SprayService, metrics)
	g.Go(func() error {
		logger.Info("REST API listening", slog.String("addr", cfg.ListenAddr()))
		return srv.Run(gctx)
	})

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.OperatorService, appContainer.SprayService, logger)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		appContainer.SprayService.Subscribe(bot)

		g.Go(func() error {
			logger.Info("Bot is running")
			return bot.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("stopped")
}

func openAuditLog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auditStore, error) {
	switch cfg.LogStore {
	case config.LogStorePostgres:
		return storage.NewPostgresAuditLog(ctx, cfg.DatabaseURL)
	case config.LogStoreClickHouse:
		return storage.NewClickHouseAuditLog(ctx, storage.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePass,
		}, logger)
	default:
		return storage.NewFileAuditLog(cfg.LogPath, logger)
	}
}

// deviceNotifier собирает push-адаптеры контроллера; nil если ни один не настроен
func deviceNotifier(cfg *config.Config, logger *slog.Logger) (port.DeviceNotifier, error) {
	var targets []device.Named

	if cfg.ESP32URL != "" {
		targets = append(targets, device.Named{Name: "http", Notifier: device.NewHTTPServo(cfg.ESP32URL, cfg.DeviceTimeout)})
	}
	if cfg.MQTTBroker != "" {
		client, err := device.NewMQTTClient(device.MQTTConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		}, logger)
		if err != nil {
			return nil, err
		}
		targets = append(targets, device.Named{Name: "mqtt", Notifier: device.NewMQTTPublisher(client, cfg.MQTTCommandTopic, cfg.DeviceTimeout)})
	}

	if len(targets) == 0 {
		logger.Warn("no device push configured, controller must poll /command")
		return nil, nil
	}
	return device.NewFanout(targets...), nil
}
