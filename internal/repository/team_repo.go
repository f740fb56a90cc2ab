package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gobag/internal/model"
)

// TeamRepo stores team documents in a single flat collection keyed by
// sessionId. Looking a team up by access code is therefore one indexed query
// instead of a cross-collection fan-out.
type TeamRepo interface {
	CreateMany(ctx context.Context, teams []*model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	GetByAccessCode(ctx context.Context, code string) (*model.Team, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Team, error)
	UpdateSelection(ctx context.Context, id string, items []string) (bool, error)
	Submit(ctx context.Context, id string, items []string, at time.Time) (bool, error)
	ResetBySession(ctx context.Context, sessionID string) error
	DeleteBySession(ctx context.Context, sessionID string) error
	Watch(ctx context.Context, sessionID string) (<-chan ChangeEvent, error)
}

type teamRepo struct {
	collection *mongo.Collection
}

func NewTeamRepo(db *mongo.Database) TeamRepo {
	return &teamRepo{
		collection: db.Collection("teams"),
	}
}

func (r *teamRepo) CreateMany(ctx context.Context, teams []*model.Team) error {
	if len(teams) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(teams))
	for _, t := range teams {
		if t.ID == "" {
			t.ID = primitive.NewObjectID().Hex()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		if t.SelectedItems == nil {
			t.SelectedItems = []string{}
		}
		docs = append(docs, t)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByAccessCode(ctx context.Context, code string) (*model.Team, error) {
	var team model.Team
	err := r.collection.FindOne(ctx, bson.M{"accessCode": code}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Team, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID},
		options.Find().SetSort(bson.M{"teamNumber": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var teams []*model.Team
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// UpdateSelection overwrites the selection of a not-yet-submitted team.
// Returns false when the team is missing or already submitted.
func (r *teamRepo) UpdateSelection(ctx context.Context, id string, items []string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "isSubmitted": false},
		bson.M{"$set": bson.M{"selectedItems": items}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Submit writes the final selection together with the submission flag and
// timestamp in one update, so readers never observe a half-applied submit.
func (r *teamRepo) Submit(ctx context.Context, id string, items []string, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "isSubmitted": false},
		bson.M{"$set": bson.M{
			"selectedItems": items,
			"isSubmitted":   true,
			"submittedAt":   at,
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ResetBySession clears every team of the session in one batch. Access codes
// are deliberately left untouched.
func (r *teamRepo) ResetBySession(ctx context.Context, sessionID string) error {
	_, err := r.collection.UpdateMany(ctx, bson.M{"sessionId": sessionID}, bson.M{
		"$set":   bson.M{"selectedItems": []string{}, "isSubmitted": false},
		"$unset": bson.M{"submittedAt": ""},
	})
	return err
}

func (r *teamRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}

func (r *teamRepo) Watch(ctx context.Context, sessionID string) (<-chan ChangeEvent, error) {
	return watchSession(ctx, r.collection, sessionID)
}
