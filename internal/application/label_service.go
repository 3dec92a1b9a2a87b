package application

import (
	"context"
	"fmt"
	"time"

	"github.com/parcel-platform/label-service/internal/config"
	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/internal/infrastructure/storage"
	"github.com/parcel-platform/label-service/pkg/errors"
	"github.com/parcel-platform/label-service/pkg/logging"
	"github.com/parcel-platform/label-service/pkg/metrics"
)

// GenerateLabelCommand represents the command to generate a label for an
// order. Weight and Signed override the order's values when set.
type GenerateLabelCommand struct {
	OrderID      string   `json:"orderId"`
	Weight       *float64 `json:"weight,omitempty" binding:"omitempty,weight"`
	Signed       *bool    `json:"signed,omitempty"`
	OutputFormat string   `json:"outputFormat,omitempty" binding:"omitempty,output_format"`
}

// LabelDTO represents a label record response
type LabelDTO struct {
	OrderID        string    `json:"orderId"`
	OrderRef       string    `json:"orderRef"`
	TrackingNumber string    `json:"trackingNumber"`
	Weight         float64   `json:"weight"`
	Signed         bool      `json:"signed"`
	HasCustomsForm bool      `json:"hasCustomsForm"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DeletedLabelDTO describes the outcome of a label deletion
type DeletedLabelDTO struct {
	TrackingNumber string `json:"trackingNumber"`
	BaseName       string `json:"baseName"`
	Generation     string `json:"generation"`
	RecordRemoved  bool   `json:"recordRemoved"`
}

// SenderProfile is the shipper identity stamped on every label request.
type SenderProfile struct {
	Address        domain.Address
	CommercialName string
}

// LabelApplicationService handles label generation, lookup and deletion.
type LabelApplicationService struct {
	labels     domain.LabelRepository
	orders     domain.OrderProvider
	gateway    domain.CarrierGateway
	files      *storage.FileStore
	settings   *config.Settings
	reconciler *Reconciler
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics
	logger     *logging.Logger
	sender     SenderProfile
}

// NewLabelApplicationService creates a new LabelApplicationService
func NewLabelApplicationService(
	labels domain.LabelRepository,
	orders domain.OrderProvider,
	gateway domain.CarrierGateway,
	files *storage.FileStore,
	settings *config.Settings,
	reconciler *Reconciler,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
	sender SenderProfile,
) *LabelApplicationService {
	return &LabelApplicationService{
		labels:     labels,
		orders:     orders,
		gateway:    gateway,
		files:      files,
		settings:   settings,
		reconciler: reconciler,
		publisher:  publisher,
		metrics:    m,
		logger:     logger.WithComponent("label-service"),
		sender:     sender,
	}
}

// GenerateLabel runs the full labeling flow for one order: resolve the
// order, call the carrier, persist the artifacts and record, then stamp the
// tracking reference back onto the order. Nothing is persisted when the
// carrier rejects the request.
func (s *LabelApplicationService) GenerateLabel(ctx context.Context, cmd GenerateLabelCommand) (*LabelDTO, error) {
	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		if err == domain.ErrOrderNotFound {
			return nil, errors.ErrNotFoundWithID("order", cmd.OrderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	weight := order.Weight
	if cmd.Weight != nil {
		weight = *cmd.Weight
	}
	if weight <= 0 {
		return nil, errors.ErrValidation("weight must be positive")
	}

	signed, err := s.resolveSigned(ctx, cmd.Signed)
	if err != nil {
		return nil, err
	}

	format := cmd.OutputFormat
	if format == "" {
		if format, err = s.settings.OutputFormat(ctx); err != nil {
			return nil, fmt.Errorf("failed to load output format: %w", err)
		}
	}

	request := domain.LabelRequest{
		OrderID:        order.ID,
		OrderRef:       order.Reference,
		Sender:         s.sender.Address,
		Recipient:      order.DeliveryAddress,
		Weight:         weight,
		SignedDelivery: signed,
		OutputFormat:   format,
		CommercialName: s.sender.CommercialName,
		DepositDate:    time.Now().UTC().Format("2006-01-02"),
		PickupCode:     order.PickupCode,
		PickupType:     order.PickupType,
	}

	result, err := s.gateway.GenerateLabel(ctx, request)
	if err != nil {
		return nil, errors.ErrUpstream("carrier call failed").Wrap(err)
	}
	if !result.Valid {
		// Carrier-side rejection, e.g. "Bad weight". No file, no record.
		return nil, errors.ErrUpstream(result.ErrorMessage)
	}

	ext, err := s.settings.FileExtension(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive file extension: %w", err)
	}

	if err := s.files.WriteLabel(order.Reference, ext, result.Label); err != nil {
		return nil, fmt.Errorf("failed to store label artifact: %w", err)
	}
	if result.HasCustomsForm() {
		if err := s.files.WriteCustomsForm(order.Reference, result.CustomsForm); err != nil {
			return nil, fmt.Errorf("failed to store customs form: %w", err)
		}
	}

	record := domain.NewLabelRecord(order.ID, order.Reference, result.ParcelNumber, weight, signed)
	if err := s.labels.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save label record: %w", err)
	}

	if err := s.orders.SetDeliveryReference(ctx, order.ID, result.ParcelNumber); err != nil {
		s.logger.WithError(err).Error("Failed to set delivery reference",
			"orderId", order.ID,
			"trackingNumber", result.ParcelNumber,
		)
	}

	if err := s.applySentStatus(ctx, order); err != nil {
		s.logger.WithError(err).Error("Failed to apply sent status", "orderId", order.ID)
	}

	s.publishEvent(ctx, &domain.LabelCreatedEvent{
		OrderID:        order.ID,
		TrackingNumber: record.TrackingNumber,
		Weight:         record.Weight,
		Signed:         record.Signed,
		CreatedAt:      record.CreatedAt,
	})
	if s.metrics != nil {
		s.metrics.RecordLabelGenerated(signed)
	}

	s.logger.Info("Generated label",
		"orderId", order.ID,
		"orderRef", order.Reference,
		"trackingNumber", record.TrackingNumber,
		"weight", weight,
		"signed", signed,
	)

	return &LabelDTO{
		OrderID:        record.OrderID,
		OrderRef:       record.OrderRef,
		TrackingNumber: record.TrackingNumber,
		Weight:         record.Weight,
		Signed:         record.Signed,
		HasCustomsForm: result.HasCustomsForm(),
		CreatedAt:      record.CreatedAt,
	}, nil
}

// GetLabels returns the label records for an order, newest first.
func (s *LabelApplicationService) GetLabels(ctx context.Context, orderID string) ([]LabelDTO, error) {
	records, err := s.labels.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	dtos := make([]LabelDTO, len(records))
	for i, record := range records {
		dtos[i] = LabelDTO{
			OrderID:        record.OrderID,
			OrderRef:       record.OrderRef,
			TrackingNumber: record.TrackingNumber,
			Weight:         record.Weight,
			Signed:         record.Signed,
			HasCustomsForm: s.files.LabelExists(record.OrderRef, storage.CustomsExtension),
			CreatedAt:      record.CreatedAt,
		}
	}
	return dtos, nil
}

// GetLabelFile returns the stored artifact for a tracking number, resolving
// the base name across record generations.
func (s *LabelApplicationService) GetLabelFile(ctx context.Context, trackingNumber string) ([]byte, string, error) {
	resolved, err := s.reconciler.Resolve(ctx, trackingNumber, "")
	if err != nil {
		return nil, "", err
	}

	ext, err := s.settings.FileExtension(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to derive file extension: %w", err)
	}

	if !s.files.LabelExists(resolved.BaseName, ext) {
		return nil, "", errors.ErrNotFoundWithID("label file", trackingNumber)
	}

	content, err := s.files.ReadLabel(resolved.BaseName, ext)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read label artifact: %w", err)
	}
	return content, resolved.BaseName + "." + ext, nil
}

// DeleteLabel removes a label's artifacts and, when one is resolved, its
// record. The optional orderID helps resolve labels that only exist in the
// legacy plugin's table. File cleanup happens even when no record
// generation matches.
func (s *LabelApplicationService) DeleteLabel(ctx context.Context, trackingNumber, orderID string) (*DeletedLabelDTO, error) {
	resolved, err := s.reconciler.Resolve(ctx, trackingNumber, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.files.RemoveByPrefix(resolved.BaseName); err != nil {
		return nil, fmt.Errorf("failed to remove label artifacts: %w", err)
	}

	switch {
	case resolved.Current != nil:
		if err := s.labels.Delete(ctx, resolved.Current.ID.Hex()); err != nil {
			return nil, fmt.Errorf("failed to delete label record: %w", err)
		}
	case resolved.Legacy != nil:
		if err := s.reconciler.legacy.Delete(ctx, resolved.Legacy.ID.Hex()); err != nil {
			return nil, fmt.Errorf("failed to delete legacy label record: %w", err)
		}
	}

	generation := generationName(resolved.Generation)
	s.publishEvent(ctx, &domain.LabelDeletedEvent{
		TrackingNumber: trackingNumber,
		BaseName:       resolved.BaseName,
		DeletedAt:      time.Now().UTC(),
	})
	if s.metrics != nil {
		s.metrics.RecordLabelDeleted(generation)
	}

	s.logger.Info("Deleted label",
		"trackingNumber", trackingNumber,
		"baseName", resolved.BaseName,
		"generation", generation,
	)

	return &DeletedLabelDTO{
		TrackingNumber: trackingNumber,
		BaseName:       resolved.BaseName,
		Generation:     generation,
		RecordRemoved:  resolved.HasRecord(),
	}, nil
}

func (s *LabelApplicationService) resolveSigned(ctx context.Context, override *bool) (bool, error) {
	if override != nil {
		return *override, nil
	}
	signed, err := s.settings.DefaultSigned(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load signed default: %w", err)
	}
	return signed, nil
}

func (s *LabelApplicationService) applySentStatus(ctx context.Context, order *domain.Order) error {
	auto, err := s.settings.AutoSentStatus(ctx)
	if err != nil {
		return err
	}
	if !auto {
		return nil
	}

	statusID, err := s.settings.SentStatusID(ctx)
	if err != nil {
		return err
	}
	// Orders already in the sent status are left alone.
	if order.StatusID == statusID {
		return nil
	}
	return s.orders.SetStatus(ctx, order.ID, statusID)
}

func (s *LabelApplicationService) publishEvent(ctx context.Context, event domain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain event", "eventType", event.EventType())
	}
}

func generationName(g domain.RecordGeneration) string {
	switch g {
	case domain.GenerationCurrent:
		return "current"
	case domain.GenerationLegacyPlugin:
		return "legacy"
	default:
		return "pre-unification"
	}
}
