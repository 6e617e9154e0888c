// Package telemetry publishes live pulse readings while a session runs.
package telemetry

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tauraamui/rppgtracker/pkg/log"
	"github.com/tauraamui/xerror"
	"github.com/vmihailenco/msgpack/v5"
)

// Reading is one live measurement taken from the most recent window.
type Reading struct {
	Session   string    `msgpack:"session"`
	Strategy  string    `msgpack:"strategy"`
	Frame     int       `msgpack:"frame"`
	PulseRate float64   `msgpack:"pulse_rate"`
	Waveform  []float64 `msgpack:"waveform"`
	Timestamp int64     `msgpack:"timestamp"`
}

type Publisher interface {
	Publish(Reading) error
	Close()
}

// Encode packs a reading into its wire form.
func Encode(r Reading) ([]byte, error) {
	return msgpack.Marshal(&r)
}

// Decode is the inverse of Encode.
func Decode(payload []byte) (Reading, error) {
	var r Reading
	err := msgpack.Unmarshal(payload, &r)
	return r, err
}

// Noop drops every reading.
func Noop() Publisher {
	return noop{}
}

type noop struct{}

func (noop) Publish(Reading) error { return nil }
func (noop) Close()                {}

type Settings struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
}

const (
	connectTimeout    = 5 * time.Second
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250
)

var newClient = func(opts *mqtt.ClientOptions) mqtt.Client {
	return mqtt.NewClient(opts)
}

// MQTT connects to the broker and returns a publisher sending msgpack
// encoded readings to the configured topic.
func MQTT(settings Settings) (Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(settings.Broker)
	opts.SetClientID(settings.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warn("MQTT connection to %s lost: %v", settings.Broker, err)
	}

	client := newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, xerror.Errorf("timed out connecting to MQTT broker %s", settings.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, xerror.Errorf("unable to connect to MQTT broker %s: %w", settings.Broker, err)
	}

	log.Info("Connected to MQTT broker: [%s]", settings.Broker)
	return &mqttPublisher{client: client, topic: settings.Topic, qos: settings.QoS}, nil
}

type mqttPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
}

func (p *mqttPublisher) Publish(r Reading) error {
	payload, err := Encode(r)
	if err != nil {
		return xerror.Errorf("unable to encode reading: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return xerror.Errorf("timed out publishing to %s", p.topic)
	}
	return token.Error()
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(disconnectQuiesce)
}
