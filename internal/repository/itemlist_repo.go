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

type ItemListRepo interface {
	Create(ctx context.Context, list *model.ItemList) (string, error)
	GetByID(ctx context.Context, id string) (*model.ItemList, error)
	FindByName(ctx context.Context, name string) (*model.ItemList, error)
	List(ctx context.Context) ([]*model.ItemList, error)
	Rename(ctx context.Context, id, name string) error
	UpdateItems(ctx context.Context, id string, items []model.Item) error
	EnsureDefault(ctx context.Context, name string, items []model.Item) (*model.ItemList, error)
	Delete(ctx context.Context, id string) error
}

type itemListRepo struct {
	collection *mongo.Collection
}

func NewItemListRepo(db *mongo.Database) ItemListRepo {
	return &itemListRepo{
		collection: db.Collection("itemLists"),
	}
}

func (r *itemListRepo) Create(ctx context.Context, list *model.ItemList) (string, error) {
	if list.ID == "" {
		list.ID = primitive.NewObjectID().Hex()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, list); err != nil {
		return "", err
	}
	return list.ID, nil
}

func (r *itemListRepo) GetByID(ctx context.Context, id string) (*model.ItemList, error) {
	var list model.ItemList
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&list)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

func (r *itemListRepo) FindByName(ctx context.Context, name string) (*model.ItemList, error) {
	var list model.ItemList
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&list)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

func (r *itemListRepo) List(ctx context.Context) ([]*model.ItemList, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lists []*model.ItemList
	if err := cursor.All(ctx, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *itemListRepo) Rename(ctx context.Context, id, name string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"name": name}})
	return err
}

func (r *itemListRepo) UpdateItems(ctx context.Context, id string, items []model.Item) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"items": items}})
	return err
}

// EnsureDefault creates the default list if none exists yet. The conditional
// upsert on the isDefault flag means two callers racing here still end up
// with exactly one default document.
func (r *itemListRepo) EnsureDefault(ctx context.Context, name string, items []model.Item) (*model.ItemList, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{"$setOnInsert": bson.M{
		"_id":       primitive.NewObjectID().Hex(),
		"name":      name,
		"items":     items,
		"createdAt": time.Now(),
	}}

	var list model.ItemList
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"isDefault": true}, update, opts).Decode(&list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *itemListRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
