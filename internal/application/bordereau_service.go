package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parcel-platform/label-service/internal/config"
	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/internal/infrastructure/storage"
	"github.com/parcel-platform/label-service/pkg/errors"
	"github.com/parcel-platform/label-service/pkg/logging"
	"github.com/parcel-platform/label-service/pkg/metrics"
)

// BordereauDTO represents a generated bordereau response
type BordereauDTO struct {
	FileName    string    `json:"fileName"`
	ParcelCount int       `json:"parcelCount"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// BordereauApplicationService generates end-of-day manifests covering every
// label created since the previous bordereau. The watermark read, carrier
// call and watermark advance form one critical section: concurrent
// generations would otherwise manifest the same parcels twice.
type BordereauApplicationService struct {
	mu sync.Mutex

	labels    domain.LabelRepository
	legacy    domain.LegacyLabelRepository
	gateway   domain.CarrierGateway
	files     *storage.FileStore
	settings  *config.Settings
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewBordereauApplicationService creates a new BordereauApplicationService
func NewBordereauApplicationService(
	labels domain.LabelRepository,
	legacy domain.LegacyLabelRepository,
	gateway domain.CarrierGateway,
	files *storage.FileStore,
	settings *config.Settings,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
) *BordereauApplicationService {
	return &BordereauApplicationService{
		labels:    labels,
		legacy:    legacy,
		gateway:   gateway,
		files:     files,
		settings:  settings,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent("bordereau-service"),
	}
}

// Generate produces a bordereau for all labels created since the watermark.
// The watermark only advances after the manifest file is safely on disk; a
// failed generation leaves the next attempt covering the same parcels.
func (s *BordereauApplicationService) Generate(ctx context.Context) (*BordereauDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	watermark, err := s.settings.Watermark(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read watermark: %w", err)
	}

	numbers, err := s.collectParcelNumbers(ctx, watermark)
	if err != nil {
		return nil, err
	}

	// An empty parcel list is still sent: the carrier answers with an
	// empty-period bordereau or a fault of its own choosing.
	result, err := s.gateway.GenerateBordereau(ctx, numbers)
	if err != nil {
		s.recordOutcome(false, 0)
		if fault, ok := err.(*domain.CarrierFault); ok {
			return nil, errors.ErrUpstream(fault.Message).Wrap(err)
		}
		if err == domain.ErrNoLabelFound {
			return nil, errors.ErrNotFound("parcels for bordereau").Wrap(err)
		}
		if err == domain.ErrEmptyArtifact {
			return nil, errors.ErrUpstream("carrier returned an empty bordereau").Wrap(err)
		}
		return nil, errors.ErrUpstream("carrier call failed").Wrap(err)
	}

	generatedAt := time.Now().UTC()
	name, err := s.files.WriteBordereau(generatedAt, result.Content)
	if err != nil {
		s.recordOutcome(false, 0)
		return nil, fmt.Errorf("failed to store bordereau: %w", err)
	}

	if err := s.settings.AdvanceWatermark(ctx, generatedAt); err != nil {
		// The manifest exists; a stale watermark only risks re-manifesting,
		// never losing parcels.
		s.logger.WithError(err).Error("Failed to advance bordereau watermark")
	}

	if s.publisher != nil {
		event := &domain.BordereauGeneratedEvent{
			FileName:    name,
			ParcelCount: len(numbers),
			GeneratedAt: generatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithError(err).Warn("Failed to publish domain event", "eventType", event.EventType())
		}
	}
	s.recordOutcome(true, len(numbers))

	s.logger.Info("Generated bordereau",
		"fileName", name,
		"parcelCount", len(numbers),
		"since", watermark.Format(config.WatermarkLayout),
	)

	return &BordereauDTO{
		FileName:    name,
		ParcelCount: len(numbers),
		GeneratedAt: generatedAt,
	}, nil
}

// BordereauListDTO is the listing response: stored manifests newest first
// plus the current watermark.
type BordereauListDTO struct {
	Bordereaux        []string  `json:"bordereaux"`
	LastBordereauDate time.Time `json:"lastBordereauDate"`
}

// List returns the stored bordereau file names, newest first, together with
// the watermark the next generation will start from.
func (s *BordereauApplicationService) List(ctx context.Context) (*BordereauListDTO, error) {
	names, err := s.files.ListBordereaux()
	if err != nil {
		return nil, fmt.Errorf("failed to list bordereaux: %w", err)
	}
	watermark, err := s.settings.Watermark(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read watermark: %w", err)
	}
	return &BordereauListDTO{
		Bordereaux:        names,
		LastBordereauDate: watermark,
	}, nil
}

// GetFile returns a stored bordereau by file name.
func (s *BordereauApplicationService) GetFile(ctx context.Context, name string) ([]byte, error) {
	content, err := s.files.ReadBordereau(name)
	if err != nil {
		return nil, errors.ErrNotFoundWithID("bordereau", name).Wrap(err)
	}
	return content, nil
}

// collectParcelNumbers gathers tracking numbers created after the
// watermark: current records first, then the legacy plugin's when that
// integration is active. Both sets arrive oldest first from their stores.
func (s *BordereauApplicationService) collectParcelNumbers(ctx context.Context, watermark time.Time) ([]string, error) {
	records, err := s.labels.FindCreatedAfter(ctx, watermark)
	if err != nil {
		return nil, fmt.Errorf("failed to collect label records: %w", err)
	}

	numbers := make([]string, 0, len(records))
	for _, record := range records {
		if record.TrackingNumber != "" {
			numbers = append(numbers, record.TrackingNumber)
		}
	}

	legacyActive, err := s.settings.LegacyPluginActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy plugin setting: %w", err)
	}
	if legacyActive {
		legacyRecords, err := s.legacy.FindCreatedAfter(ctx, watermark)
		if err != nil {
			return nil, fmt.Errorf("failed to collect legacy records: %w", err)
		}
		for _, record := range legacyRecords {
			if record.TrackingNumber != "" {
				numbers = append(numbers, record.TrackingNumber)
			}
		}
	}

	return numbers, nil
}

func (s *BordereauApplicationService) recordOutcome(success bool, parcels int) {
	if s.metrics != nil {
		s.metrics.RecordBordereauGenerated(success, parcels)
	}
}
