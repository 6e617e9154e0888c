package telemetry_test

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matryer/is"
	"github.com/tauraamui/rppgtracker/pkg/telemetry"
)

type fakeToken struct {
	err error
}

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}
func (t fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient embeds the interface so only the methods the publisher
// calls need implementing.
type fakeClient struct {
	mqtt.Client
	connectErr   error
	published    []published
	disconnected bool
}

func (c *fakeClient) Connect() mqtt.Token { return fakeToken{err: c.connectErr} }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return fakeToken{}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestMQTTPublishesEncodedReadings(t *testing.T) {
	is := is.New(t)

	client := &fakeClient{}
	reset := telemetry.OverloadNewClient(func(*mqtt.ClientOptions) mqtt.Client { return client })
	defer reset()

	pub, err := telemetry.MQTT(telemetry.Settings{Broker: "tcp://localhost:1883", Topic: "rppg/live", QoS: 1})
	is.NoErr(err)

	reading := telemetry.Reading{
		Session: "abc", Strategy: "green", Frame: 45, PulseRate: 71.5,
		Waveform: []float64{0, 0.5, 1}, Timestamp: 1600000000,
	}
	is.NoErr(pub.Publish(reading))
	pub.Close()

	is.Equal(len(client.published), 1)
	is.Equal(client.published[0].topic, "rppg/live")
	is.Equal(client.published[0].qos, byte(1))
	is.True(client.disconnected)

	decoded, err := telemetry.Decode(client.published[0].payload)
	is.NoErr(err)
	is.Equal(decoded, reading)
}

func TestMQTTConnectFailure(t *testing.T) {
	is := is.New(t)

	client := &fakeClient{connectErr: errors.New("connection refused")}
	reset := telemetry.OverloadNewClient(func(*mqtt.ClientOptions) mqtt.Client { return client })
	defer reset()

	pub, err := telemetry.MQTT(telemetry.Settings{Broker: "tcp://localhost:1883", Topic: "rppg/live"})
	is.True(pub == nil)
	is.Equal(err.Error(), "unable to connect to MQTT broker tcp://localhost:1883: connection refused")
}

func TestNoopPublisher(t *testing.T) {
	is := is.New(t)
	pub := telemetry.Noop()
	is.NoErr(pub.Publish(telemetry.Reading{}))
	pub.Close()
}
