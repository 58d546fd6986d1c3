package device

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"smart-spray/internal/domain/entity"
)

func sprayCommand() entity.Command {
	return entity.Command{Spray: true, SprayTime: 5, ServoIndex: entity.IntPtr(2), Chemical: entity.StringPtr("Copper Fungicide")}
}

func TestHTTPServo_SendsDurationAndChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/servo", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("duration"))
		require.Equal(t, "2", r.URL.Query().Get("servoindex"))
		_, _ = w.Write([]byte("Servo 2 activated for 5s\n"))
	}))
	defer srv.Close()

	resp, err := NewHTTPServo(srv.URL+"/", time.Second).Notify(context.Background(), sprayCommand())
	require.NoError(t, err)
	require.Equal(t, "Servo 2 activated for 5s", resp)
}

func TestHTTPServo_OmitsMissingChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("servoindex"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := NewHTTPServo(srv.URL, time.Second).Notify(context.Background(), entity.Command{Spray: true, SprayTime: 1})
	require.NoError(t, err)
}

func TestHTTPServo_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPServo(srv.URL, time.Second).Notify(context.Background(), sprayCommand())
	require.ErrorContains(t, err, "503")

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer slow.Close()

	_, err = NewHTTPServo(slow.URL, 30*time.Millisecond).Notify(context.Background(), sprayCommand())
	require.Error(t, err)
}

type fakeToken struct {
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool { return !t.pending }

func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

func (t *fakeToken) Error() error { return t.err }

type fakePublisher struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
	token    *fakeToken
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.topic, p.qos, p.retained = topic, qos, retained
	p.payload = payload.([]byte)
	return p.token
}

func TestMQTTPublisher_PublishesRetainedCommand(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{}}

	resp, err := NewMQTTPublisher(pub, "smartspray/command", time.Second).Notify(context.Background(), sprayCommand())
	require.NoError(t, err)
	require.Equal(t, "published to smartspray/command", resp)
	require.Equal(t, "smartspray/command", pub.topic)
	require.Equal(t, byte(1), pub.qos)
	require.True(t, pub.retained)

	var got entity.Command
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	require.True(t, got.Equal(sprayCommand()))
}

func TestMQTTPublisher_Errors(t *testing.T) {
	_, err := NewMQTTPublisher(&fakePublisher{token: &fakeToken{err: errors.New("not connected")}}, "t", time.Second).
		Notify(context.Background(), sprayCommand())
	require.ErrorContains(t, err, "not connected")

	_, err = NewMQTTPublisher(&fakePublisher{token: &fakeToken{pending: true}}, "t", time.Second).
		Notify(context.Background(), sprayCommand())
	require.ErrorContains(t, err, "timed out")
}

type stubNotifier struct {
	resp string
	err  error
}

func (s stubNotifier) Notify(context.Context, entity.Command) (string, error) {
	return s.resp, s.err
}

func TestFanout(t *testing.T) {
	require.Equal(t, 0, NewFanout().Len())
	resp, err := NewFanout().Notify(context.Background(), sprayCommand())
	require.NoError(t, err)
	require.Empty(t, resp)

	single := NewFanout(Named{Name: "http", Notifier: stubNotifier{resp: "ok"}})
	resp, err = single.Notify(context.Background(), sprayCommand())
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	mixed := NewFanout(
		Named{Name: "http", Notifier: stubNotifier{err: errors.New("refused")}},
		Named{Name: "mqtt", Notifier: stubNotifier{resp: "published"}},
	)
	resp, err = mixed.Notify(context.Background(), sprayCommand())
	require.NoError(t, err)
	require.Equal(t, "http: Error: refused; mqtt: published", resp)

	allFailed := NewFanout(
		Named{Name: "http", Notifier: stubNotifier{err: errors.New("refused")}},
		Named{Name: "mqtt", Notifier: stubNotifier{err: errors.New("timeout")}},
	)
	resp, err = allFailed.Notify(context.Background(), sprayCommand())
	require.Error(t, err)
	require.True(t, strings.HasPrefix(resp, "http: Error: refused"))
}
