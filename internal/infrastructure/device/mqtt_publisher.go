package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"smart-spray/internal/domain/entity"
	"smart-spray/internal/domain/port"
)

// MQTTConfig параметры подключения к брокеру
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// NewMQTTClient подключается к брокеру с автопереподключением
func NewMQTTClient(cfg MQTTConfig, log *slog.Logger) (mqtt.Client, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt connected", slog.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", slog.Any("error", err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// Publisher часть mqtt.Client, нужная для публикации
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher публикует текущую команду retained-сообщением,
// чтобы контроллер получил её сразу после подписки.
type MQTTPublisher struct {
	client  Publisher
	topic   string
	timeout time.Duration
}

// NewMQTTPublisher создаёт издателя команд
func NewMQTTPublisher(client Publisher, topic string, timeout time.Duration) *MQTTPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTPublisher{client: client, topic: topic, timeout: timeout}
}

// Notify публикует JSON команды с QoS 1
func (p *MQTTPublisher) Notify(ctx context.Context, cmd entity.Command) (string, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to marshal command: %w", err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	token := p.client.Publish(p.topic, 1, true, payload)
	if !token.WaitTimeout(timeout) {
		return "", errors.New("mqtt publish timed out")
	}
	if err := token.Error(); err != nil {
		return "", fmt.Errorf("failed to publish command: %w", err)
	}
	return "published to " + p.topic, nil
}

var _ port.DeviceNotifier = (*MQTTPublisher)(nil)
