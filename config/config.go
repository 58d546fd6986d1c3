package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Хранилища журнала решений
const (
	LogStoreFile       = "file"
	LogStorePostgres   = "postgres"
	LogStoreClickHouse = "clickhouse"
)

type Config struct {
	Port     int        `env:"PORT" envDefault:"5001"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	SchedulePath string `env:"SPRAY_SCHEDULE_PATH" envDefault:"data/spray_schedule.json"`

	LogStore       string `env:"LOG_STORE" envDefault:"file"`
	LogPath        string `env:"SPRAY_LOG_PATH" envDefault:"data/spray_log.jsonl"`
	DatabaseURL    string `env:"DATABASE_URL"`
	ClickHouseAddr string `env:"CLICKHOUSE_ADDR"`
	ClickHouseDB   string `env:"CLICKHOUSE_DB" envDefault:"default"`
	ClickHouseUser string `env:"CLICKHOUSE_USER" envDefault:"default"`
	ClickHousePass string `env:"CLICKHOUSE_PASS"`

	ClassifierURL       string        `env:"CLASSIFIER_URL" envDefault:"http://localhost:8501/v1/models/tomato_leaves:predict"`
	ClassifierClasses   []string      `env:"CLASSIFIER_CLASSES" envSeparator:"," envDefault:"Tomato_Bacterial_spot,Tomato_Early_blight,Tomato_Late_blight,Tomato_Leaf_Mold,Tomato_Septoria_leaf_spot,Tomato_Yellow_Leaf_Curl_Virus"`
	ClassifierInputSize int           `env:"CLASSIFIER_INPUT_SIZE" envDefault:"70"`
	ClassifierTimeout   time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"10s"`
	ClassifierWorkers   int           `env:"CLASSIFIER_WORKERS" envDefault:"2"`

	ESP32URL      string        `env:"ESP32_URL"`
	DeviceTimeout time.Duration `env:"DEVICE_TIMEOUT" envDefault:"5s"`
	ServoChannels []int         `env:"SERVO_CHANNELS" envSeparator:","`

	MQTTBroker       string `env:"MQTT_BROKER"`
	MQTTClientID     string `env:"MQTT_CLIENT_ID" envDefault:"smart-spray"`
	MQTTUsername     string `env:"MQTT_USERNAME"`
	MQTTPassword     string `env:"MQTT_PASSWORD"`
	MQTTCommandTopic string `env:"MQTT_COMMAND_TOPIC" envDefault:"smartspray/command"`

	CameraDevice int `env:"CAMERA_DEVICE" envDefault:"0"`

	TelegramToken string `env:"TELEGRAM_TOKEN"`

	BearerToken    string        `env:"API_BEARER_TOKEN"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.SchedulePath == "" {
		errs = append(errs, errors.New("SPRAY_SCHEDULE_PATH is required"))
	}

	switch c.LogStore {
	case LogStoreFile:
		if c.LogPath == "" {
			errs = append(errs, errors.New("SPRAY_LOG_PATH is required for file log store"))
		}
	case LogStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres log store"))
		}
	case LogStoreClickHouse:
		if c.ClickHouseAddr == "" {
			errs = append(errs, errors.New("CLICKHOUSE_ADDR is required for clickhouse log store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_STORE %q", c.LogStore))
	}

	if c.ClassifierURL == "" {
		errs = append(errs, errors.New("CLASSIFIER_URL is required"))
	}
	if len(c.ClassifierClasses) == 0 {
		errs = append(errs, errors.New("CLASSIFIER_CLASSES must not be empty"))
	}
	if c.ClassifierInputSize <= 0 {
		errs = append(errs, errors.New("CLASSIFIER_INPUT_SIZE must be positive"))
	}
	if c.ClassifierWorkers <= 0 {
		errs = append(errs, errors.New("CLASSIFIER_WORKERS must be positive"))
	}
	if c.ClassifierTimeout <= 0 || c.DeviceTimeout <= 0 || c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	for _, ch := range c.ServoChannels {
		if ch < 0 {
			errs = append(errs, fmt.Errorf("SERVO_CHANNELS contains negative channel %d", ch))
		}
	}

	return errors.Join(errs...)
}

// ListenAddr адрес HTTP-сервера
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}
