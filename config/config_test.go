package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 5001, cfg.Port)
	require.Equal(t, ":5001", cfg.ListenAddr())
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Equal(t, LogStoreFile, cfg.LogStore)
	require.Equal(t, "data/spray_log.jsonl", cfg.LogPath)
	require.Len(t, cfg.ClassifierClasses, 6)
	require.Equal(t, 70, cfg.ClassifierInputSize)
	require.Equal(t, 10*time.Second, cfg.ClassifierTimeout)
	require.Equal(t, 5*time.Second, cfg.DeviceTimeout)
	require.Equal(t, "smartspray/command", cfg.MQTTCommandTopic)
	require.Empty(t, cfg.ServoChannels)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVO_CHANNELS", "0,1,2")
	t.Setenv("CLASSIFIER_CLASSES", "a,b")
	t.Setenv("DEVICE_TIMEOUT", "2s")
	t.Setenv("LOG_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/spray")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, []int{0, 1, 2}, cfg.ServoChannels)
	require.Equal(t, []string{"a", "b"}, cfg.ClassifierClasses)
	require.Equal(t, 2*time.Second, cfg.DeviceTimeout)
}

func TestLoad_InvalidValue(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CLASSIFIER_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:                5001,
			SchedulePath:        "data/spray_schedule.json",
			LogStore:            LogStoreFile,
			LogPath:             "data/spray_log.jsonl",
			ClassifierURL:       "http://localhost:8501/v1/models/m:predict",
			ClassifierClasses:   []string{"a"},
			ClassifierInputSize: 70,
			ClassifierTimeout:   time.Second,
			ClassifierWorkers:   1,
			DeviceTimeout:       time.Second,
			RequestTimeout:      time.Second,
			MaxUploadBytes:      1024,
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.LogStore = "s3" }},
		{"postgres without dsn", func(c *Config) { c.LogStore = LogStorePostgres }},
		{"clickhouse without addr", func(c *Config) { c.LogStore = LogStoreClickHouse }},
		{"zero workers", func(c *Config) { c.ClassifierWorkers = 0 }},
		{"zero timeout", func(c *Config) { c.DeviceTimeout = 0 }},
		{"negative channel", func(c *Config) { c.ServoChannels = []int{1, -1} }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
