// Package redisbus adapts bus.Adapter onto a Redis pub/sub channel, using
// github.com/redis/go-redis/v9. Envelopes are JSON-encoded; the channel
// name is fixed per Adapter instance rather than derived per-recipient,
// since the engine never needs the transport to demultiplex — every
// subscriber filters on Envelope.Recipient itself.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bdi.dev/engine/bus"
)

// Adapter publishes envelopes to a single Redis channel.
type Adapter struct {
	client  *redis.Client
	channel string
}

// New wraps an existing client. The caller owns the client's lifecycle
// (Close it when done); Adapter never closes it.
func New(client *redis.Client, channel string) *Adapter {
	return &Adapter{client: client, channel: channel}
}

// Publish implements bus.Adapter.
func (a *Adapter) Publish(ctx context.Context, env bus.Envelope) error {
	wire, err := json.Marshal(wireEnvelope{
		Sender:    env.Sender.String(),
		Recipient: env.Recipient.String(),
		EventID:   env.EventID.String(),
		At:        env.At,
		Payload:   env.Payload,
	})
	if err != nil {
		return fmt.Errorf("redisbus: encode envelope: %w", err)
	}
	return a.client.Publish(ctx, a.channel, wire).Err()
}

// wireEnvelope is the JSON shape on the channel. Handles travel as their
// String() form since handle.Handle itself carries a uuid.UUID that
// round-trips fine through encoding/json, but keeping the wire format
// independent of the handle package's internal layout avoids coupling
// transport compatibility to an unrelated type's field names.
type wireEnvelope struct {
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
	EventID   string      `json:"event_id"`
	At        time.Time   `json:"at"`
	Payload   interface{} `json:"payload"`
}
