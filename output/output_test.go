package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"weather-forecast/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func sampleReport() Report {
	return Report{
		Location: models.Location{Name: "Shanghai", Latitude: 31.2304, Longitude: 121.4737},
		Days:     2,
		Forecast: models.ForecastResult{
			Timezone: "GMT",
			Daily: models.Daily{
				"weathercode":         {0.0, 61.0},
				"weather_description": {"Clear sky", "Slight rain"},
			},
		},
	}
}

func TestConsoleSink_Present(t *testing.T) {
	var buf bytes.Buffer

	if err := NewConsoleSink(&buf).Present(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if lines[0] != consoleHeader {
		t.Errorf("first line = %q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "Successfully fetched and trimmed 2-day daily weather forecast for Shanghai." {
		t.Errorf("last line = %q", last)
	}
	if lines[len(lines)-2] != consoleFooter {
		t.Errorf("footer = %q", lines[len(lines)-2])
	}

	body := strings.Join(lines[1:len(lines)-2], "\n")
	var got models.ForecastResult
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("body is not JSON: %v\n%s", err, body)
	}
	if got.Daily["weather_description"][1] != "Slight rain" {
		t.Errorf("weather_description = %v", got.Daily["weather_description"])
	}
	if !strings.Contains(body, "\n    \"daily\": {") {
		t.Errorf("body not indented with four spaces:\n%s", body)
	}
}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	done := make(chan struct{})
	close(done)
	return &fakeToken{err: err, done: done}
}

func (f *fakeToken) Wait() bool                       { return true }
func (f *fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (f *fakeToken) Done() <-chan struct{}            { return f.done }
func (f *fakeToken) Error() error                     { return f.err }

type fakePublisher struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
	err      error
}

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.topic = topic
	f.qos = qos
	f.retained = retained
	f.payload, _ = payload.([]byte)
	return newFakeToken(f.err)
}

func TestMQTTSink_Present(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTTSink(pub, "forecast/daily/", nil)
	fixed := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	if err := sink.Present(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	if pub.topic != "forecast/daily/shanghai" {
		t.Errorf("topic = %q", pub.topic)
	}
	if pub.qos != 1 || !pub.retained {
		t.Errorf("qos = %d retained = %v, want 1 true", pub.qos, pub.retained)
	}

	var msg Message
	if err := json.Unmarshal(pub.payload, &msg); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if msg.Days != 2 || msg.Location.Name != "Shanghai" || !msg.PublishedAt.Equal(fixed) {
		t.Errorf("message = %+v", msg)
	}
	if len(msg.Forecast.Daily["weather_description"]) != 2 {
		t.Errorf("forecast daily = %v", msg.Forecast.Daily)
	}
}

func TestMQTTSink_PublishError(t *testing.T) {
	boom := errors.New("not connected")
	sink := NewMQTTSink(&fakePublisher{err: boom}, "forecast", nil)

	err := sink.Present(context.Background(), sampleReport())
	if !errors.Is(err, boom) {
		t.Fatalf("Present() error = %v, want %v", err, boom)
	}
}

func TestMQTTSink_Topic(t *testing.T) {
	sink := NewMQTTSink(&fakePublisher{}, "wx", nil)
	tests := []struct {
		name string
		want string
	}{
		{name: "New York", want: "wx/new-york"},
		{name: "  ", want: "wx/unnamed"},
		{name: "a/b+c#", want: "wx/a-b-c-"},
	}
	for _, tt := range tests {
		if got := sink.Topic(models.Location{Name: tt.name}); got != tt.want {
			t.Errorf("Topic(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
