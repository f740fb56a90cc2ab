package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gobag/internal/model"
)

type ParticipantRepo interface {
	Upsert(ctx context.Context, p *model.Participant) error
	ListBySession(ctx context.Context, sessionID string) ([]*model.Participant, error)
	DeleteBySession(ctx context.Context, sessionID string) error
	Watch(ctx context.Context, sessionID string) (<-chan ChangeEvent, error)
}

type participantRepo struct {
	collection *mongo.Collection
}

func NewParticipantRepo(db *mongo.Database) ParticipantRepo {
	return &participantRepo{
		collection: db.Collection("participants"),
	}
}

// Upsert writes the participant keyed by its identity subject, so a repeat
// submit from the same subject replaces the earlier one.
func (r *participantRepo) Upsert(ctx context.Context, p *model.Participant) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p,
		options.Replace().SetUpsert(true))
	return err
}

func (r *participantRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Participant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*model.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}

func (r *participantRepo) Watch(ctx context.Context, sessionID string) (<-chan ChangeEvent, error) {
	return watchSession(ctx, r.collection, sessionID)
}
