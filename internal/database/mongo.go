package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name         = "pantry_db"
	CollectionKV = "kv"
)

type Mongo struct {
	Client     *mongo.Client
	Collection *mongo.Collection
}

type kvDocument struct {
	Key       string             `bson:"_id"`
	Value     string             `bson:"value"`
	Version   int64              `bson:"version"`
	UpdatedAt primitive.DateTime `bson:"updated_at"`
}

func OpenMongo(ctx context.Context, dbURI string) (*Mongo, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to mongo at: %s", dbURI)
	}
	if err = c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(ctx)
		return nil, errors.Wrapf(err, "error pinging mongo at: %s", dbURI)
	}
	return &Mongo{
		Client:     c,
		Collection: c.Database(Name).Collection(CollectionKV),
	}, nil
}

func (m *Mongo) Get(ctx context.Context, key string) (string, error) {
	var d kvDocument
	err := m.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	return d.Value, errors.Wrapf(err, "error finding key: %s", key)
}

func (m *Mongo) Set(ctx context.Context, key string, value string) error {
	_, err := m.Collection.UpdateOne(
		ctx,
		bson.M{"_id": key},
		bson.M{
			"$set": bson.M{"value": value, "updated_at": primitive.NewDateTimeFromTime(time.Now())},
			"$inc": bson.M{"version": 1},
		},
		options.Update().SetUpsert(true),
	)
	return errors.Wrapf(err, "error setting key: %s", key)
}

func (m *Mongo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := m.Collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	return errors.Wrapf(err, "error deleting keys: %v", keys)
}

// Update is optimistic: the write only matches the version that was read,
// a lost race re-reads and calls fn again.
func (m *Mongo) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for i := 0; i < maxUpdateRetries; i++ {
		var d kvDocument
		err := m.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&d)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return errors.Wrapf(err, "error finding key for update: %s", key)
		}
		exists := err == nil

		next, err := fn(d.Value, exists)
		if err != nil {
			return finishUpdate(err)
		}

		now := primitive.NewDateTimeFromTime(time.Now())
		if !exists {
			_, err = m.Collection.InsertOne(ctx, kvDocument{Key: key, Value: next, Version: 1, UpdatedAt: now})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return errors.Wrapf(err, "error inserting key: %s", key)
		}

		res, err := m.Collection.UpdateOne(
			ctx,
			bson.M{"_id": key, "version": d.Version},
			bson.M{
				"$set": bson.M{"value": next, "updated_at": now},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return errors.Wrapf(err, "error updating key: %s", key)
		}
		if res.MatchedCount == 0 {
			continue
		}
		return nil
	}
	return errors.Wrapf(ErrConflict, "key: %s", key)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
