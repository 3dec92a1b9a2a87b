package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	Subject() string
	OccurredAt() time.Time
}

// LabelCreatedEvent is published when a label has been generated and
// its record persisted
type LabelCreatedEvent struct {
	OrderID        string    `json:"orderId"`
	TrackingNumber string    `json:"trackingNumber"`
	Weight         float64   `json:"weight"`
	Signed         bool      `json:"signed"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (e *LabelCreatedEvent) EventType() string     { return "label.created" }
func (e *LabelCreatedEvent) Subject() string       { return e.TrackingNumber }
func (e *LabelCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// LabelDeletedEvent is published after a label's files and record have
// been removed
type LabelDeletedEvent struct {
	TrackingNumber string    `json:"trackingNumber"`
	BaseName       string    `json:"baseName"`
	DeletedAt      time.Time `json:"deletedAt"`
}

func (e *LabelDeletedEvent) EventType() string     { return "label.deleted" }
func (e *LabelDeletedEvent) Subject() string       { return e.TrackingNumber }
func (e *LabelDeletedEvent) OccurredAt() time.Time { return e.DeletedAt }

// BordereauGeneratedEvent is published when a manifest has been persisted
// and the watermark advanced
type BordereauGeneratedEvent struct {
	FileName    string    `json:"fileName"`
	ParcelCount int       `json:"parcelCount"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func (e *BordereauGeneratedEvent) EventType() string     { return "bordereau.generated" }
func (e *BordereauGeneratedEvent) Subject() string       { return e.FileName }
func (e *BordereauGeneratedEvent) OccurredAt() time.Time { return e.GeneratedAt }
