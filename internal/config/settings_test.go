package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcel-platform/label-service/internal/infrastructure/colissimo"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

// TestEnsureDefaults tests that missing keys get their documented defaults
func TestEnsureDefaults(t *testing.T) {
	store := newMemoryStore()
	settings := NewSettings(store)

	require.NoError(t, settings.EnsureDefaults(context.Background()))

	assert.Equal(t, "https://ws.colissimo.fr/sls-ws/SlsServiceWS", store.values[KeyEndpoint])
	assert.Equal(t, colissimo.OutputFormatDefault, store.values[KeyDefaultLabelFormat])
	assert.Equal(t, "1", store.values[KeyAutoSentStatus])
	assert.Equal(t, "4", store.values[KeySentStatusID])
	assert.Equal(t, "1970-01-01 00:00:00", store.values[KeyLastBordereauDate])
	assert.Equal(t, "1", store.values[KeyDefaultSigned])
	assert.Equal(t, "0", store.values[KeyLegacyPluginActive])
}

// TestEnsureDefaultsKeepsExistingValues tests that configured values survive
func TestEnsureDefaultsKeepsExistingValues(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyDefaultLabelFormat] = "ZPL_10x15_203dpi"
	store.values[KeySentStatusID] = "7"
	settings := NewSettings(store)

	require.NoError(t, settings.EnsureDefaults(context.Background()))

	assert.Equal(t, "ZPL_10x15_203dpi", store.values[KeyDefaultLabelFormat])
	assert.Equal(t, "7", store.values[KeySentStatusID])
}

// TestAPIConfiguration tests the carrier configuration assembly
func TestAPIConfiguration(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyContractNumber] = "654321"
	store.values[KeyPassword] = "secret"
	settings := NewSettings(store)

	cfg, err := settings.APIConfiguration(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "654321", cfg.ContractNumber)
	assert.Equal(t, "secret", cfg.Password)
	// Empty endpoint falls back to the production SLS endpoint.
	assert.Equal(t, "https://ws.colissimo.fr/sls-ws/SlsServiceWS", cfg.Endpoint)
	assert.Equal(t, colissimo.SOAPVersion11, cfg.Version)
}

// TestFileExtension tests the extension derivation rule
func TestFileExtension(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"PDF_10x15_300dpi", "pdf"},
		{"PDF_A4_300dpi", "pdf"},
		{"ZPL_10x15_203dpi", "zpl"},
		{"DPL_10x15_300dpi", "dpl"},
		{"", "pdf"},
		{"XY", "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			store := newMemoryStore()
			store.values[KeyDefaultLabelFormat] = tt.format
			settings := NewSettings(store)

			ext, err := settings.FileExtension(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ext)
		})
	}
}

// TestBoolSettings tests the accepted truthy forms
func TestBoolSettings(t *testing.T) {
	store := newMemoryStore()
	settings := NewSettings(store)
	ctx := context.Background()

	store.values[KeyDefaultSigned] = "1"
	signed, err := settings.DefaultSigned(ctx)
	require.NoError(t, err)
	assert.True(t, signed)

	store.values[KeyDefaultSigned] = "true"
	signed, err = settings.DefaultSigned(ctx)
	require.NoError(t, err)
	assert.True(t, signed)

	store.values[KeyDefaultSigned] = "0"
	signed, err = settings.DefaultSigned(ctx)
	require.NoError(t, err)
	assert.False(t, signed)

	// Missing key reads as false.
	active, err := settings.LegacyPluginActive(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

// TestSentStatusID tests the numeric status parsing
func TestSentStatusID(t *testing.T) {
	store := newMemoryStore()
	store.values[KeySentStatusID] = "4"
	settings := NewSettings(store)

	id, err := settings.SentStatusID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	store.values[KeySentStatusID] = "not-a-number"
	_, err = settings.SentStatusID(context.Background())
	assert.Error(t, err)
}

// TestWatermark tests the cursor parse and the epoch fallback
func TestWatermark(t *testing.T) {
	store := newMemoryStore()
	settings := NewSettings(store)
	ctx := context.Background()

	// Missing value reads as the epoch so the first bordereau covers
	// everything.
	mark, err := settings.Watermark(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), mark)

	store.values[KeyLastBordereauDate] = "2024-03-18 17:30:05"
	mark, err = settings.Watermark(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 18, 17, 30, 5, 0, time.UTC), mark)

	store.values[KeyLastBordereauDate] = "18/03/2024"
	_, err = settings.Watermark(ctx)
	assert.Error(t, err)
}

// TestAdvanceWatermark tests monotonic advancement
func TestAdvanceWatermark(t *testing.T) {
	store := newMemoryStore()
	store.values[KeyLastBordereauDate] = "2024-03-18 17:30:05"
	settings := NewSettings(store)
	ctx := context.Background()

	require.NoError(t, settings.AdvanceWatermark(ctx, time.Date(2024, 3, 19, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-19 09:00:00", store.values[KeyLastBordereauDate])

	// A regression is ignored, never written.
	require.NoError(t, settings.AdvanceWatermark(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-19 09:00:00", store.values[KeyLastBordereauDate])

	// Advancing to the same instant is a no-op too.
	require.NoError(t, settings.AdvanceWatermark(ctx, time.Date(2024, 3, 19, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-19 09:00:00", store.values[KeyLastBordereauDate])
}
