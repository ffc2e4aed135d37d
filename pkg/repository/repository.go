package repository

import (
	"context"

	"github.com/stationly/stationly/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is a thin typed store over one Mongo collection, covering the
// query surface the sync and metadata layers need: lookup by id, exact field
// match, array-contains, everything, everything-except, delete-all and
// batched upsert by id.
type Repository[T any] struct {
	CollectionName string

	// Mongo field name holding the entity id, and how to read it off an
	// entity when upserting.
	IDField string
	IDOf    func(T) string
}

func (r *Repository[T]) collection() *mongo.Collection {
	return database.GetCollection(r.CollectionName)
}

func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.collection().FindOne(ctx, bson.M{r.IDField: id}).Decode(&entity)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

func (r *Repository[T]) find(ctx context.Context, query bson.M) ([]T, error) {
	cursor, err := r.collection().Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entities []T
	for cursor.Next(ctx) {
		var entity T
		if err := cursor.Decode(&entity); err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	return entities, cursor.Err()
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

func (r *Repository[T]) GetAllBy(ctx context.Context, field string, value any) ([]T, error) {
	return r.find(ctx, bson.M{field: value})
}

// GetAllByArrayContains matches documents whose array field contains value.
func (r *Repository[T]) GetAllByArrayContains(ctx context.Context, field string, value any) ([]T, error) {
	return r.find(ctx, bson.M{field: value})
}

func (r *Repository[T]) GetAllExcept(ctx context.Context, field string, value any) ([]T, error) {
	return r.find(ctx, bson.M{field: bson.M{"$ne": value}})
}

func (r *Repository[T]) DeleteAll(ctx context.Context) error {
	_, err := r.collection().DeleteMany(ctx, bson.M{})
	return err
}

// BatchUpsert writes all entities in one bulk call, replacing by id.
func (r *Repository[T]) BatchUpsert(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}

	writeModels := make([]mongo.WriteModel, 0, len(entities))
	for _, entity := range entities {
		replaceModel := mongo.NewReplaceOneModel()
		replaceModel.SetFilter(bson.M{r.IDField: r.IDOf(entity)})
		replaceModel.SetReplacement(entity)
		replaceModel.SetUpsert(true)

		writeModels = append(writeModels, replaceModel)
	}

	_, err := r.collection().BulkWrite(ctx, writeModels, &options.BulkWriteOptions{})
	return err
}
