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

const legacyLabelCollection = "colissimo_ws_labels"

// LegacyLabelRepository reads the predecessor plugin's label records. This
// service never writes new records here; the collection only shrinks.
type LegacyLabelRepository struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewLegacyLabelRepository creates a LegacyLabelRepository.
func NewLegacyLabelRepository(client *pkgmongo.InstrumentedClient) *LegacyLabelRepository {
	return &LegacyLabelRepository{
		collection: client.Collection(legacyLabelCollection),
	}
}

// FindByOrderID returns the legacy record for an order, or nil when none
// exists. The legacy schema holds at most one record per order.
func (r *LegacyLabelRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.LegacyLabelRecord, error) {
	var record domain.LegacyLabelRecord
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindCreatedAfter returns legacy records created strictly after the given
// time, oldest first.
func (r *LegacyLabelRepository) FindCreatedAfter(ctx context.Context, after time.Time) ([]*domain.LegacyLabelRecord, error) {
	opts := options.Find().SetSort(pkgmongo.SortAscending("createdAt"))
	cursor, err := r.collection.Find(ctx, bson.M{"createdAt": bson.M{"$gt": after}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*domain.LegacyLabelRecord
	err = cursor.All(ctx, &records)
	return records, err
}

// Delete removes a legacy record by id.
func (r *LegacyLabelRepository) Delete(ctx context.Context, id string) error {
	objectID, err := pkgmongo.ParseID(id)
	if err != nil {
		return fmt.Errorf("invalid legacy record id %q: %w", id, err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
