package telemetry

import mqtt "github.com/eclipse/paho.mqtt.golang"

func OverloadNewClient(overload func(*mqtt.ClientOptions) mqtt.Client) func() {
	newClientRef := newClient
	newClient = overload
	return func() { newClient = newClientRef }
}
