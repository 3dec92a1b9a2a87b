package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parcel-platform/label-service/internal/domain"
	pkgmongo "github.com/parcel-platform/label-service/pkg/mongodb"
)

const labelCollection = "colissimo_labels"

// LabelRepository persists current-generation label records.
type LabelRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewLabelRepository creates a LabelRepository and ensures its indexes.
func NewLabelRepository(client *pkgmongo.InstrumentedClient) *LabelRepository {
	repo := &LabelRepository{
		collection: client.Collection(labelCollection),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *LabelRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trackingNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	}
	for _, model := range indexes {
		_, _ = r.collection.CreateIndex(ctx, model)
	}
}

// Save inserts a label record.
func (r *LabelRepository) Save(ctx context.Context, record *domain.LabelRecord) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to save label record: %w", err)
	}
	return nil
}

// FindByTrackingNumber returns the record for a tracking number, or nil when
// none exists.
func (r *LabelRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.LabelRecord, error) {
	var record domain.LabelRecord
	err := r.collection.FindOne(ctx, bson.M{"trackingNumber": trackingNumber}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByOrderID returns every label record for an order, newest first.
func (r *LabelRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.LabelRecord, error) {
	opts := options.Find().SetSort(pkgmongo.SortDescending("createdAt"))
	cursor, err := r.collection.Find(ctx, bson.M{"orderId": orderID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.LabelRecord
	err = cursor.All(ctx, &records)
	return records, err
}

// FindCreatedAfter returns records created strictly after the given time,
// oldest first.
func (r *LabelRepository) FindCreatedAfter(ctx context.Context, after time.Time) ([]*domain.LabelRecord, error) {
	opts := options.Find().SetSort(pkgmongo.SortAscending("createdAt"))
	cursor, err := r.collection.Find(ctx, bson.M{"createdAt": bson.M{"$gt": after}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.LabelRecord
	err = cursor.All(ctx, &records)
	return records, err
}

// Delete removes a label record by id.
func (r *LabelRepository) Delete(ctx context.Context, id string) error {
	objectID, err := pkgmongo.ParseID(id)
	if err != nil {
		return fmt.Errorf("invalid label record id %q: %w", id, err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
