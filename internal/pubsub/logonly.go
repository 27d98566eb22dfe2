package pubsub

import (
	"context"

	"github.com/charmbracelet/log"
)

// logOnly is used when no GCP project is configured. Events are encoded and logged, not sent.
type logOnly struct{}

// NewLogOnly returns a client that only logs events.
func NewLogOnly() PubSubClient {
	return logOnly{}
}

func (logOnly) SendMessage(_ context.Context, topic EventType, data any) error {
	b, err := Encode(data)
	if err != nil {
		return err
	}
	log.Debug("Event (not published)", "topic", topic, "bytes", len(b))
	return nil
}

func (logOnly) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

func (logOnly) Close() {}
