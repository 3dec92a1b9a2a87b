package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/internal/infrastructure/colissimo"
)

// Settings keys. All values live in the opaque key/value store; defaults
// are applied once at startup by EnsureDefaults.
const (
	KeyContractNumber     = "contract-number"
	KeyPassword           = "password"
	KeyEndpoint           = "endpoint"
	KeyDefaultLabelFormat = "default-label-format"
	KeyAutoSentStatus     = "auto-sent-status"
	KeySentStatusID       = "sent-status-id"
	KeyPreFillInputWeight = "pre-fill-input-weight"
	KeyLastBordereauDate  = "last-bordereau-date"
	KeyDefaultSigned      = "default-signed"
	KeyLegacyPluginActive = "legacy-plugin-active"
)

// WatermarkLayout is the stored form of the bordereau watermark.
const WatermarkLayout = "2006-01-02 15:04:05"

const defaultEndpoint = "https://ws.colissimo.fr/sls-ws/SlsServiceWS"

var defaults = map[string]string{
	KeyContractNumber:     "",
	KeyPassword:           "",
	KeyEndpoint:           defaultEndpoint,
	KeyDefaultLabelFormat: colissimo.OutputFormatDefault,
	KeyAutoSentStatus:     "1",
	KeySentStatusID:       "4",
	KeyPreFillInputWeight: "1",
	KeyLastBordereauDate:  "1970-01-01 00:00:00",
	KeyDefaultSigned:      "1",
	KeyLegacyPluginActive: "0",
}

// Settings wraps the opaque store with typed accessors for this module's
// keys.
type Settings struct {
	store domain.SettingsStore
}

// NewSettings creates a Settings accessor over the given store.
func NewSettings(store domain.SettingsStore) *Settings {
	return &Settings{store: store}
}

// EnsureDefaults writes every missing key with its documented default.
// Existing values are never overwritten.
func (s *Settings) EnsureDefaults(ctx context.Context) error {
	for key, value := range defaults {
		current, err := s.store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to read setting %s: %w", key, err)
		}
		if current != "" {
			continue
		}
		// Empty-string defaults (credentials) still get a stored row so
		// operators can see which keys exist.
		if err := s.store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to initialize setting %s: %w", key, err)
		}
	}
	return nil
}

// APIConfiguration assembles the per-call carrier configuration. Implements
// colissimo.ConfigProvider.
func (s *Settings) APIConfiguration(ctx context.Context) (colissimo.APIConfiguration, error) {
	contract, err := s.store.Get(ctx, KeyContractNumber)
	if err != nil {
		return colissimo.APIConfiguration{}, err
	}
	password, err := s.store.Get(ctx, KeyPassword)
	if err != nil {
		return colissimo.APIConfiguration{}, err
	}
	endpoint, err := s.store.Get(ctx, KeyEndpoint)
	if err != nil {
		return colissimo.APIConfiguration{}, err
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return colissimo.APIConfiguration{
		ContractNumber: contract,
		Password:       password,
		Endpoint:       endpoint,
		Method:         colissimo.MethodGenerateLabel,
		Version:        colissimo.SOAPVersion11,
	}, nil
}

// OutputFormat returns the configured label output format.
func (s *Settings) OutputFormat(ctx context.Context) (string, error) {
	format, err := s.store.Get(ctx, KeyDefaultLabelFormat)
	if err != nil {
		return "", err
	}
	if format == "" {
		format = colissimo.OutputFormatDefault
	}
	return format, nil
}

// FileExtension derives the artifact extension from the configured output
// format: the lowercased first three characters (PDF_10x15_300dpi -> pdf).
func (s *Settings) FileExtension(ctx context.Context) (string, error) {
	format, err := s.OutputFormat(ctx)
	if err != nil {
		return "", err
	}
	if len(format) < 3 {
		return "pdf", nil
	}
	return strings.ToLower(format[:3]), nil
}

// AutoSentStatus reports whether orders transition to the "sent" status
// after a successful label.
func (s *Settings) AutoSentStatus(ctx context.Context) (bool, error) {
	return s.boolValue(ctx, KeyAutoSentStatus)
}

// SentStatusID returns the order status id used by the auto transition.
func (s *Settings) SentStatusID(ctx context.Context) (int, error) {
	raw, err := s.store.Get(ctx, KeySentStatusID)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", KeySentStatusID, raw, err)
	}
	return id, nil
}

// DefaultSigned reports whether new labels default to signed delivery.
func (s *Settings) DefaultSigned(ctx context.Context) (bool, error) {
	return s.boolValue(ctx, KeyDefaultSigned)
}

// PreFillInputWeight returns the weight pre-filled in the admin form when
// the order itself carries none. Plain passthrough, same as the original.
func (s *Settings) PreFillInputWeight(ctx context.Context) (float64, error) {
	raw, err := s.store.Get(ctx, KeyPreFillInputWeight)
	if err != nil {
		return 0, err
	}
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", KeyPreFillInputWeight, raw, err)
	}
	return weight, nil
}

// LegacyPluginActive reports whether the predecessor plugin's records take
// part in reconciliation and bordereau batching.
func (s *Settings) LegacyPluginActive(ctx context.Context) (bool, error) {
	return s.boolValue(ctx, KeyLegacyPluginActive)
}

// Watermark returns the last-bordereau-date cursor.
func (s *Settings) Watermark(ctx context.Context) (time.Time, error) {
	raw, err := s.store.Get(ctx, KeyLastBordereauDate)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	mark, err := time.Parse(WatermarkLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q: %w", KeyLastBordereauDate, raw, err)
	}
	return mark, nil
}

// AdvanceWatermark moves the cursor forward. Regressions are ignored so
// the watermark stays monotonically non-decreasing.
func (s *Settings) AdvanceWatermark(ctx context.Context, to time.Time) error {
	current, err := s.Watermark(ctx)
	if err != nil {
		return err
	}
	if !to.After(current) {
		return nil
	}
	return s.store.Set(ctx, KeyLastBordereauDate, to.Format(WatermarkLayout))
}

func (s *Settings) boolValue(ctx context.Context, key string) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	switch raw {
	case "1", "true":
		return true, nil
	default:
		return false, nil
	}
}
