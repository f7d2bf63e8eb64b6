package output

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weather-forecast/datasource"
	"weather-forecast/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of mqtt.Client the sink needs
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Message is the MQTT payload for one forecast
type Message struct {
	Location    models.Location       `json:"location"`
	Days        int                   `json:"days"`
	PublishedAt time.Time             `json:"published_at"`
	Forecast    models.ForecastResult `json:"forecast"`
}

// MQTTSink publishes forecasts as retained JSON messages, one topic per location
type MQTTSink struct {
	client Publisher
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

// NewMQTTSink creates a sink publishing under topic
func NewMQTTSink(client Publisher, topic string, logger *slog.Logger) *MQTTSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTSink{
		client: client,
		topic:  strings.TrimRight(topic, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// Topic returns the topic a location's forecast is published to
func (m *MQTTSink) Topic(loc models.Location) string {
	return fmt.Sprintf("%s/%s", m.topic, topicSegment(loc.Name))
}

// Present publishes the report and waits for the broker to acknowledge it
func (m *MQTTSink) Present(ctx context.Context, report Report) error {
	topic := m.Topic(report.Location)

	data, err := json.Marshal(Message{
		Location:    report.Location,
		Days:        report.Days,
		PublishedAt: m.now().UTC(),
		Forecast:    report.Forecast,
	})
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}

	token := m.client.Publish(topic, 1, true, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		m.logger.Error("failed to publish forecast", "topic", topic, "error", err)
		return fmt.Errorf("publish forecast: %w", err)
	}

	m.logger.Info("published forecast", "topic", topic, "bytes", len(data))
	return nil
}

// topicSegment turns a location name into a single MQTT topic level
func topicSegment(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "unnamed"
	}
	return strings.NewReplacer(" ", "-", "/", "-", "+", "-", "#", "-").Replace(name)
}

// ConnectMQTT connects to the configured broker and waits for the session to come up
func ConnectMQTT(ctx context.Context, cfg *datasource.Config, logger *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(cfg.MQTT.ClientID)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTT.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		client.Disconnect(250)
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

var _ Sink = (*MQTTSink)(nil)
