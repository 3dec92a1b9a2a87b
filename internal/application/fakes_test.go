package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parcel-platform/label-service/internal/config"
	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/internal/infrastructure/storage"
	"github.com/parcel-platform/label-service/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{ServiceName: "label-service-test", Level: logging.LevelError, Output: io.Discard})
}

func testFileStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store := storage.NewFileStore(t.TempDir(), t.TempDir())
	require.NoError(t, store.EnsureDirs())
	return store
}

// fakeSettingsStore is an in-memory domain.SettingsStore.
type fakeSettingsStore struct {
	values map[string]string
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{values: make(map[string]string)}
}

func (f *fakeSettingsStore) Get(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeSettingsStore) Set(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func testSettings(t *testing.T, overrides map[string]string) (*config.Settings, *fakeSettingsStore) {
	t.Helper()
	store := newFakeSettingsStore()
	settings := config.NewSettings(store)
	require.NoError(t, settings.EnsureDefaults(context.Background()))
	for key, value := range overrides {
		store.values[key] = value
	}
	return settings, store
}

// fakeLabelRepository is an in-memory domain.LabelRepository.
type fakeLabelRepository struct {
	records []*domain.LabelRecord
	deleted []string
	saveErr error
}

func (f *fakeLabelRepository) Save(ctx context.Context, record *domain.LabelRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeLabelRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.LabelRecord, error) {
	for _, record := range f.records {
		if record.TrackingNumber == trackingNumber {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeLabelRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.LabelRecord, error) {
	var out []*domain.LabelRecord
	for _, record := range f.records {
		if record.OrderID == orderID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeLabelRepository) FindCreatedAfter(ctx context.Context, after time.Time) ([]*domain.LabelRecord, error) {
	var out []*domain.LabelRecord
	for _, record := range f.records {
		if record.CreatedAt.After(after) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeLabelRepository) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	for i, record := range f.records {
		if record.ID.Hex() == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

// fakeLegacyRepository is an in-memory domain.LegacyLabelRepository.
type fakeLegacyRepository struct {
	records []*domain.LegacyLabelRecord
	deleted []string
}

func (f *fakeLegacyRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.LegacyLabelRecord, error) {
	for _, record := range f.records {
		if record.OrderID == orderID {
			return record, nil
		}
	}
	return nil, nil
}

func (f *fakeLegacyRepository) FindCreatedAfter(ctx context.Context, after time.Time) ([]*domain.LegacyLabelRecord, error) {
	var out []*domain.LegacyLabelRecord
	for _, record := range f.records {
		if record.CreatedAt.After(after) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeLegacyRepository) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	for i, record := range f.records {
		if record.ID.Hex() == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

// fakeOrderProvider is an in-memory domain.OrderProvider.
type fakeOrderProvider struct {
	orders       map[string]*domain.Order
	deliveryRefs map[string]string
	statuses     map[string]int
}

func newFakeOrderProvider(orders ...*domain.Order) *fakeOrderProvider {
	p := &fakeOrderProvider{
		orders:       make(map[string]*domain.Order),
		deliveryRefs: make(map[string]string),
		statuses:     make(map[string]int),
	}
	for _, order := range orders {
		p.orders[order.ID] = order
	}
	return p
}

func (f *fakeOrderProvider) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderProvider) SetDeliveryReference(ctx context.Context, orderID, trackingNumber string) error {
	f.deliveryRefs[orderID] = trackingNumber
	return nil
}

func (f *fakeOrderProvider) SetStatus(ctx context.Context, orderID string, statusID int) error {
	f.statuses[orderID] = statusID
	return nil
}

// fakeCarrierGateway is a scripted domain.CarrierGateway.
type fakeCarrierGateway struct {
	labelResult *domain.LabelResult
	labelErr    error
	labelCalls  []domain.LabelRequest

	bordereauResult *domain.BordereauResult
	bordereauErr    error
	bordereauCalls  [][]string
}

func (f *fakeCarrierGateway) GenerateLabel(ctx context.Context, request domain.LabelRequest) (*domain.LabelResult, error) {
	f.labelCalls = append(f.labelCalls, request)
	if f.labelErr != nil {
		return nil, f.labelErr
	}
	return f.labelResult, nil
}

func (f *fakeCarrierGateway) GenerateBordereau(ctx context.Context, parcelNumbers []string) (*domain.BordereauResult, error) {
	f.bordereauCalls = append(f.bordereauCalls, parcelNumbers)
	if f.bordereauErr != nil {
		return nil, f.bordereauErr
	}
	return f.bordereauResult, nil
}

// fakePublisher collects published domain events.
type fakePublisher struct {
	events []domain.DomainEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}
