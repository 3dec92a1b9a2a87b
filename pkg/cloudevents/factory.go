package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for parcel domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new CloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	return &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateLabelCreatedEvent creates a LabelCreated event
func (f *EventFactory) CreateLabelCreatedEvent(
	ctx context.Context,
	orderID string,
	orderRef string,
	trackingNumber string,
	weight float64,
	signed bool,
) *CloudEvent {
	data := LabelCreatedData{
		OrderID:        orderID,
		OrderRef:       orderRef,
		TrackingNumber: trackingNumber,
		Weight:         weight,
		Signed:         signed,
	}
	event := f.CreateEvent(ctx, LabelCreated, "label/"+trackingNumber, data)
	event.OrderID = orderID
	return event
}

// CreateLabelDeletedEvent creates a LabelDeleted event
func (f *EventFactory) CreateLabelDeletedEvent(
	ctx context.Context,
	orderID string,
	trackingNumber string,
	generation string,
) *CloudEvent {
	data := LabelDeletedData{
		OrderID:        orderID,
		TrackingNumber: trackingNumber,
		Generation:     generation,
	}
	event := f.CreateEvent(ctx, LabelDeleted, "label/"+trackingNumber, data)
	event.OrderID = orderID
	return event
}

// CreateBordereauGeneratedEvent creates a BordereauGenerated event
func (f *EventFactory) CreateBordereauGeneratedEvent(
	ctx context.Context,
	fileName string,
	parcelNumbers []string,
) *CloudEvent {
	data := BordereauGeneratedData{
		FileName:      fileName,
		ParcelCount:   len(parcelNumbers),
		ParcelNumbers: parcelNumbers,
	}
	return f.CreateEvent(ctx, BordereauGenerated, "bordereau/"+fileName, data)
}
