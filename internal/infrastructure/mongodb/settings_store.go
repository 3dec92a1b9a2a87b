package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgmongo "github.com/parcel-platform/label-service/pkg/mongodb"
)

const settingsCollection = "settings"

type settingDocument struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

// SettingsStore is the MongoDB-backed key/value configuration store.
// Implements domain.SettingsStore.
type SettingsStore struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewSettingsStore creates a SettingsStore and ensures the key index.
func NewSettingsStore(client *pkgmongo.InstrumentedClient) *SettingsStore {
	store := &SettingsStore{
		collection: client.Collection(settingsCollection),
	}
	_, _ = store.collection.CreateIndex(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return store
}

// Get returns the stored value for a key, or the empty string when absent.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var doc settingDocument
	err := s.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return doc.Value, nil
}

// Set upserts the value for a key.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	opts := options.Update().SetUpsert(true)
	update := pkgmongo.BuildUpdate(bson.M{"value": value})
	if _, err := s.collection.UpdateOne(ctx, bson.M{"key": key}, update, opts); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}
