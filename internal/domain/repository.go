package domain

import (
	"context"
	"time"
)

// LabelRepository defines the interface for current-generation label records
type LabelRepository interface {
	Save(ctx context.Context, record *LabelRecord) error
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*LabelRecord, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*LabelRecord, error)
	FindCreatedAfter(ctx context.Context, after time.Time) ([]*LabelRecord, error)
	Delete(ctx context.Context, id string) error
}

// LegacyLabelRepository defines read/delete access to the predecessor-plugin
// label schema, kept for backward compatibility
type LegacyLabelRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*LegacyLabelRecord, error)
	FindCreatedAfter(ctx context.Context, after time.Time) ([]*LegacyLabelRecord, error)
	Delete(ctx context.Context, id string) error
}

// Order is the read model supplied by the order data provider.
type Order struct {
	ID                 string
	Reference          string
	DeliveryAddress    Address
	Weight             float64 // kg, summed over order lines
	StatusID           int
	DeliveryModuleCode string
	// Pickup-point selection, present when the relay-delivery module
	// handled the order.
	PickupCode string
	PickupType string
}

// OrderProvider defines the interface to the order/address data provider.
// Reads are used to assemble label requests; the two writes record the
// carrier tracking reference and the optional "sent" status transition.
type OrderProvider interface {
	FindByID(ctx context.Context, orderID string) (*Order, error)
	SetDeliveryReference(ctx context.Context, orderID, trackingNumber string) error
	SetStatus(ctx context.Context, orderID string, statusID int) error
}

// SettingsStore is the opaque key/value configuration store. It also holds
// the bordereau watermark.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
