package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeEvent is one notification from a collection change stream. Consumers
// recompute from a full read on every event, so the event only carries what
// kind of write happened.
type ChangeEvent struct {
	OperationType string
}

// watchSession opens a change stream scoped to one session and pumps its
// events into a channel. The channel closes when ctx is cancelled or the
// stream dies. Delete events carry no full document, so they are matched by
// operation type instead; an occasional recompute for another session's
// delete is harmless.
func watchSession(ctx context.Context, coll *mongo.Collection, sessionID string) (<-chan ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "fullDocument.sessionId", Value: sessionID}},
			bson.D{{Key: "operationType", Value: "delete"}},
		}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	cs, err := coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	ch := make(chan ChangeEvent, 16)
	go func() {
		defer close(ch)
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			var ev struct {
				OperationType string `bson:"operationType"`
			}
			if err := cs.Decode(&ev); err != nil {
				continue
			}
			select {
			case ch <- ChangeEvent{OperationType: ev.OperationType}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
