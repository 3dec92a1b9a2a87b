package application

import (
	"context"
	"fmt"

	"github.com/parcel-platform/label-service/internal/config"
	"github.com/parcel-platform/label-service/internal/domain"
)

// Reconciler resolves a tracking number across the three label record
// generations. Artifacts were named after the order reference from the
// legacy plugin onward; before that they were named after the tracking
// number itself, with no usable record.
type Reconciler struct {
	labels   domain.LabelRepository
	legacy   domain.LegacyLabelRepository
	settings *config.Settings
}

// NewReconciler creates a Reconciler.
func NewReconciler(labels domain.LabelRepository, legacy domain.LegacyLabelRepository, settings *config.Settings) *Reconciler {
	return &Reconciler{labels: labels, legacy: legacy, settings: settings}
}

// Resolve determines the artifact base name and record for a tracking
// number. The optional orderID hint enables legacy-table lookup when no
// current record exists at all. Resolution is best effort: a missing record
// never fails the call, it only degrades the generation.
func (r *Reconciler) Resolve(ctx context.Context, trackingNumber, orderID string) (*domain.DeletableLabel, error) {
	record, err := r.labels.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up label record: %w", err)
	}

	if record != nil && record.OrderRef != "" {
		return &domain.DeletableLabel{
			Generation: domain.GenerationCurrent,
			BaseName:   record.OrderRef,
			Current:    record,
		}, nil
	}

	// Records without an order reference predate the current schema. Their
	// artifacts may still be resolvable through the legacy plugin's table.
	lookupID := orderID
	if record != nil {
		lookupID = record.OrderID
	}
	if lookupID != "" {
		legacyRecord, err := r.legacyLookup(ctx, lookupID)
		if err != nil {
			return nil, err
		}
		if legacyRecord != nil && legacyRecord.OrderRef != "" {
			return &domain.DeletableLabel{
				Generation: domain.GenerationLegacyPlugin,
				BaseName:   legacyRecord.OrderRef,
				Current:    record,
				Legacy:     legacyRecord,
			}, nil
		}
	}

	return &domain.DeletableLabel{
		Generation: domain.GenerationPreUnification,
		BaseName:   trackingNumber,
		Current:    record,
	}, nil
}

func (r *Reconciler) legacyLookup(ctx context.Context, orderID string) (*domain.LegacyLabelRecord, error) {
	active, err := r.settings.LegacyPluginActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy plugin setting: %w", err)
	}
	if !active {
		return nil, nil
	}

	legacyRecord, err := r.legacy.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up legacy record: %w", err)
	}
	return legacyRecord, nil
}
