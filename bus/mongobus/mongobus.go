// Package mongobus adapts bus.Adapter onto an append-only MongoDB
// collection, using go.mongodb.org/mongo-driver/v2. It treats Mongo as an
// opaque event log rather than a queryable store: every Publish is a
// single InsertOne against a collection the operator is expected to cap.
package mongobus

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"bdi.dev/engine/bus"
)

// Adapter inserts one document per published envelope.
type Adapter struct {
	coll *mongo.Collection
}

// New wraps an existing collection handle. The caller is responsible for
// creating it as a capped collection up front if bounded retention is
// wanted; mongobus never issues administrative commands.
func New(coll *mongo.Collection) *Adapter {
	return &Adapter{coll: coll}
}

type doc struct {
	Sender    string `bson:"sender"`
	Recipient string `bson:"recipient"`
	EventID   string `bson:"event_id"`
	At        int64  `bson:"at_unix_nano"`
	Payload   any    `bson:"payload"`
}

// Publish implements bus.Adapter.
func (a *Adapter) Publish(ctx context.Context, env bus.Envelope) error {
	_, err := a.coll.InsertOne(ctx, doc{
		Sender:    env.Sender.String(),
		Recipient: env.Recipient.String(),
		EventID:   env.EventID.String(),
		At:        env.At.UnixNano(),
		Payload:   env.Payload,
	})
	if err != nil {
		return fmt.Errorf("mongobus: insert envelope: %w", err)
	}
	return nil
}
