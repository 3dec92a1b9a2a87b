package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcel-platform/label-service/internal/config"
	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/pkg/errors"
)

type bordereauFixture struct {
	service  *BordereauApplicationService
	labels   *fakeLabelRepository
	legacy   *fakeLegacyRepository
	gateway  *fakeCarrierGateway
	store    *fakeSettingsStore
	events   *fakePublisher
	settings *config.Settings
}

func newBordereauFixture(t *testing.T, overrides map[string]string) *bordereauFixture {
	t.Helper()

	settings, store := testSettings(t, overrides)
	labels := &fakeLabelRepository{}
	legacy := &fakeLegacyRepository{}
	gateway := &fakeCarrierGateway{
		bordereauResult: &domain.BordereauResult{Content: []byte("%PDF-bordereau")},
	}
	events := &fakePublisher{}

	service := NewBordereauApplicationService(
		labels,
		legacy,
		gateway,
		testFileStore(t),
		settings,
		events,
		nil,
		testLogger(),
	)

	return &bordereauFixture{
		service:  service,
		labels:   labels,
		legacy:   legacy,
		gateway:  gateway,
		store:    store,
		events:   events,
		settings: settings,
	}
}

func recordCreatedAt(orderID, trackingNumber string, at time.Time) *domain.LabelRecord {
	record := domain.NewLabelRecord(orderID, "ORD-"+orderID, trackingNumber, 1.0, false)
	record.CreatedAt = at
	return record
}

// TestGenerateBordereau tests the happy path and watermark advancement
func TestGenerateBordereau(t *testing.T) {
	f := newBordereauFixture(t, nil)
	ctx := context.Background()

	f.labels.records = []*domain.LabelRecord{
		recordCreatedAt("1", "6C1", time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)),
		recordCreatedAt("2", "6C2", time.Date(2024, 3, 18, 11, 0, 0, 0, time.UTC)),
	}

	bordereau, err := f.service.Generate(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, bordereau.ParcelCount)
	assert.Contains(t, bordereau.FileName, "bordereau_")

	require.Len(t, f.gateway.bordereauCalls, 1)
	assert.Equal(t, []string{"6C1", "6C2"}, f.gateway.bordereauCalls[0])

	// The watermark moved to the generation instant.
	mark, err := f.settings.Watermark(ctx)
	require.NoError(t, err)
	assert.True(t, mark.After(time.Date(2024, 3, 18, 11, 0, 0, 0, time.UTC)))

	content, err := f.service.GetFile(ctx, bordereau.FileName)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-bordereau"), content)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "bordereau.generated", f.events.events[0].EventType())
}

// TestGenerateBordereauSkipsAlreadyManifested tests watermark filtering
func TestGenerateBordereauSkipsAlreadyManifested(t *testing.T) {
	f := newBordereauFixture(t, map[string]string{
		config.KeyLastBordereauDate: "2024-03-18 12:00:00",
	})

	f.labels.records = []*domain.LabelRecord{
		recordCreatedAt("1", "6C1", time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)),
		recordCreatedAt("2", "6C2", time.Date(2024, 3, 18, 13, 0, 0, 0, time.UTC)),
	}

	bordereau, err := f.service.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, bordereau.ParcelCount)
	assert.Equal(t, []string{"6C2"}, f.gateway.bordereauCalls[0])
}

// TestGenerateBordereauIncludesLegacyRecords tests legacy batching when active
func TestGenerateBordereauIncludesLegacyRecords(t *testing.T) {
	f := newBordereauFixture(t, map[string]string{config.KeyLegacyPluginActive: "1"})

	f.labels.records = []*domain.LabelRecord{
		recordCreatedAt("1", "6C1", time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)),
	}
	f.legacy.records = []*domain.LegacyLabelRecord{
		{OrderID: "9", OrderRef: "ORD-9", TrackingNumber: "6C9", CreatedAt: time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)},
		{OrderID: "10", OrderRef: "ORD-10", TrackingNumber: "", CreatedAt: time.Date(2024, 3, 18, 9, 30, 0, 0, time.UTC)},
	}

	bordereau, err := f.service.Generate(context.Background())

	require.NoError(t, err)
	// Blank tracking numbers are dropped; legacy parcels follow current ones.
	assert.Equal(t, 2, bordereau.ParcelCount)
	assert.Equal(t, []string{"6C1", "6C9"}, f.gateway.bordereauCalls[0])
}

// TestGenerateBordereauEmptyPeriodStillCalls tests the empty-list carrier call
func TestGenerateBordereauEmptyPeriodStillCalls(t *testing.T) {
	f := newBordereauFixture(t, nil)

	bordereau, err := f.service.Generate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, bordereau.ParcelCount)
	require.Len(t, f.gateway.bordereauCalls, 1)
	assert.Empty(t, f.gateway.bordereauCalls[0])
}

// TestGenerateBordereauCarrierFault tests fault mapping and watermark hold
func TestGenerateBordereauCarrierFault(t *testing.T) {
	f := newBordereauFixture(t, map[string]string{
		config.KeyLastBordereauDate: "2024-03-18 12:00:00",
	})
	f.gateway.bordereauErr = &domain.CarrierFault{Message: "Aucun colis trouvé"}

	_, err := f.service.Generate(context.Background())

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.CodeUpstreamError, appErr.Code)
	assert.Contains(t, appErr.Message, "Aucun colis")

	// A failed generation leaves the watermark untouched.
	mark, err := f.settings.Watermark(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 18, 12, 0, 0, 0, time.UTC), mark)
	assert.Empty(t, f.events.events)
}

// TestGenerateBordereauNoLabelFound tests the not-found mapping
func TestGenerateBordereauNoLabelFound(t *testing.T) {
	f := newBordereauFixture(t, nil)
	f.gateway.bordereauErr = domain.ErrNoLabelFound

	_, err := f.service.Generate(context.Background())

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

// TestGenerateBordereauEmptyArtifact tests the empty-attachment mapping
func TestGenerateBordereauEmptyArtifact(t *testing.T) {
	f := newBordereauFixture(t, nil)
	f.gateway.bordereauErr = domain.ErrEmptyArtifact

	_, err := f.service.Generate(context.Background())

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.CodeUpstreamError, appErr.Code)
}

// TestListAndGetBordereaux tests listing and the not-found read
func TestListAndGetBordereaux(t *testing.T) {
	f := newBordereauFixture(t, nil)
	ctx := context.Background()

	first, err := f.service.Generate(ctx)
	require.NoError(t, err)

	listing, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Bordereaux, 1)
	assert.Equal(t, first.FileName, listing.Bordereaux[0])
	assert.False(t, listing.LastBordereauDate.IsZero())

	_, err = f.service.GetFile(ctx, "bordereau_2099-01-01_00-00-00.pdf")
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}
