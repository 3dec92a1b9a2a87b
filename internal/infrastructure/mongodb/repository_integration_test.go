package mongodb

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/pkg/logging"
	pkgmongo "github.com/parcel-platform/label-service/pkg/mongodb"
	pkgtesting "github.com/parcel-platform/label-service/pkg/testing"
)

func setupMongo(t *testing.T) *pkgmongo.InstrumentedClient {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := pkgtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close(context.Background()) })

	client, err := pkgmongo.NewClient(ctx, &pkgmongo.Config{
		URI:            container.URI,
		Database:       "label_service_test",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	logger := logging.New(&logging.Config{ServiceName: "label-service-test", Level: logging.LevelError, Output: io.Discard})
	return pkgmongo.NewInstrumentedClient(client, nil, logger)
}

// TestLabelRepositoryRoundTrip tests save, lookups and delete against MongoDB
func TestLabelRepositoryRoundTrip(t *testing.T) {
	client := setupMongo(t)
	repo := NewLabelRepository(client)
	ctx := context.Background()

	record := domain.NewLabelRecord("42", "ORD-2024-0042", "6C00000042", 1.5, true)
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByTrackingNumber(ctx, "6C00000042")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, "ORD-2024-0042", found.OrderRef)
	assert.Equal(t, 1.5, found.Weight)
	assert.True(t, found.Signed)

	missing, err := repo.FindByTrackingNumber(ctx, "6C99999999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byOrder, err := repo.FindByOrderID(ctx, "42")
	require.NoError(t, err)
	require.Len(t, byOrder, 1)

	require.NoError(t, repo.Delete(ctx, record.ID.Hex()))
	gone, err := repo.FindByTrackingNumber(ctx, "6C00000042")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// TestLabelRepositoryUniqueTrackingNumber tests the unique index
func TestLabelRepositoryUniqueTrackingNumber(t *testing.T) {
	client := setupMongo(t)
	repo := NewLabelRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.NewLabelRecord("1", "ORD-1", "6C00000001", 1, false)))
	err := repo.Save(ctx, domain.NewLabelRecord("2", "ORD-2", "6C00000001", 2, false))
	assert.Error(t, err, "duplicate tracking numbers are rejected")
}

// TestLabelRepositoryFindCreatedAfter tests the watermark query ordering
func TestLabelRepositoryFindCreatedAfter(t *testing.T) {
	client := setupMongo(t)
	repo := NewLabelRepository(client)
	ctx := context.Background()

	base := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	for i, tracking := range []string{"6C3", "6C1", "6C2"} {
		record := domain.NewLabelRecord("42", "ORD-42", tracking, 1, false)
		// Deliberately saved out of creation order.
		offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
		record.CreatedAt = base.Add(offsets[i])
		require.NoError(t, repo.Save(ctx, record))
	}

	records, err := repo.FindCreatedAfter(ctx, base)
	require.NoError(t, err)
	require.Len(t, records, 2, "the boundary record itself is excluded")
	assert.Equal(t, "6C2", records[0].TrackingNumber)
	assert.Equal(t, "6C3", records[1].TrackingNumber)
}

// TestSettingsStoreRoundTrip tests the key/value store upsert semantics
func TestSettingsStoreRoundTrip(t *testing.T) {
	client := setupMongo(t)
	store := NewSettingsStore(client)
	ctx := context.Background()

	value, err := store.Get(ctx, "contract-number")
	require.NoError(t, err)
	assert.Empty(t, value, "missing keys read as empty")

	require.NoError(t, store.Set(ctx, "contract-number", "654321"))
	require.NoError(t, store.Set(ctx, "contract-number", "999999"))

	value, err = store.Get(ctx, "contract-number")
	require.NoError(t, err)
	assert.Equal(t, "999999", value, "set overwrites, never duplicates")
}

// TestOrderProviderReadsAndWrites tests the order read model and its two writes
func TestOrderProviderReadsAndWrites(t *testing.T) {
	client := setupMongo(t)
	provider := NewOrderProvider(client)
	ctx := context.Background()

	_, err := client.Collection("orders").InsertOne(ctx, orderDocument{
		OrderID:   "42",
		Reference: "ORD-2024-0042",
		DeliveryAddress: addressDocument{
			LastName: "Durand",
			Line1:    "8 rue des Lilas",
			City:     "Lyon",
			ZipCode:  "69003",
			Country:  "FR",
		},
		Weight:   1.5,
		StatusID: 2,
	})
	require.NoError(t, err)

	order, err := provider.FindByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-0042", order.Reference)
	assert.Equal(t, "Durand", order.DeliveryAddress.LastName)
	assert.Equal(t, 1.5, order.Weight)

	_, err = provider.FindByID(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	require.NoError(t, provider.SetDeliveryReference(ctx, "42", "6C00000042"))
	require.NoError(t, provider.SetStatus(ctx, "42", 4))
	assert.ErrorIs(t, provider.SetStatus(ctx, "999", 4), domain.ErrOrderNotFound)

	order, err = provider.FindByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 4, order.StatusID)
}

// TestLegacyLabelRepository tests reads and deletes on the legacy collection
func TestLegacyLabelRepository(t *testing.T) {
	client := setupMongo(t)
	repo := NewLegacyLabelRepository(client)
	ctx := context.Background()

	record := &domain.LegacyLabelRecord{
		OrderID:        "42",
		OrderRef:       "ORD-2024-0042",
		TrackingNumber: "6C00000050",
		CreatedAt:      time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC),
	}
	insertResult, err := client.Collection("colissimo_ws_labels").InsertOne(ctx, record)
	require.NoError(t, err)

	found, err := repo.FindByOrderID(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "6C00000050", found.TrackingNumber)

	records, err := repo.FindCreatedAfter(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, records, 1)

	id := insertResult.InsertedID.(primitive.ObjectID).Hex()
	require.NoError(t, repo.Delete(ctx, id))

	found, err = repo.FindByOrderID(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, found)
}
