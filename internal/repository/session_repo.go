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

type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) (string, error)
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetByAccessCode(ctx context.Context, code string) (*model.Session, error)
	List(ctx context.Context) ([]*model.Session, error)
	FindByItemList(ctx context.Context, itemListID string) ([]*model.Session, error)
	UpdateItemListRefs(ctx context.Context, sessionIDs []string, toListID string) error
	ResetAccessCode(ctx context.Context, id, code string) error
	Delete(ctx context.Context, id string) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("trainingSessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) (string, error) {
	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetByAccessCode(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"accessCode": code}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) List(ctx context.Context) ([]*model.Session, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) FindByItemList(ctx context.Context, itemListID string) ([]*model.Session, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"itemListId": itemListID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateItemListRefs re-points every listed session at toListID in a single
// ordered batch. Callers chunk the IDs; one call is one atomic commit unit.
func (r *sessionRepo) UpdateItemListRefs(ctx context.Context, sessionIDs []string, toListID string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"itemListId": toListID}}))
	}
	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

func (r *sessionRepo) ResetAccessCode(ctx context.Context, id, code string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"accessCode": code,
		"isActive":   false,
	}})
	return err
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
