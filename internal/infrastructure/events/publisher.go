package events

import (
	"context"
	"fmt"

	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/pkg/cloudevents"
	"github.com/parcel-platform/label-service/pkg/kafka"
)

// KafkaPublisher bridges domain events onto Kafka as CloudEvents.
// Implements domain.EventPublisher. Publishing is fire-and-forget from the
// caller's point of view: a failed publish is reported but business writes
// are already committed.
type KafkaPublisher struct {
	producer *kafka.InstrumentedProducer
	factory  *cloudevents.EventFactory
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(producer *kafka.InstrumentedProducer, factory *cloudevents.EventFactory) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, factory: factory}
}

// Publish maps a domain event to its CloudEvent and topic and sends it.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	var (
		topic string
		ce    *cloudevents.CloudEvent
	)

	switch e := event.(type) {
	case *domain.LabelCreatedEvent:
		topic = kafka.Topics.LabelEvents
		ce = p.factory.CreateEvent(ctx, cloudevents.LabelCreated, "label/"+e.TrackingNumber, e)
		ce.OrderID = e.OrderID
	case *domain.LabelDeletedEvent:
		topic = kafka.Topics.LabelEvents
		ce = p.factory.CreateEvent(ctx, cloudevents.LabelDeleted, "label/"+e.TrackingNumber, e)
	case *domain.BordereauGeneratedEvent:
		topic = kafka.Topics.BordereauEvents
		ce = p.factory.CreateEvent(ctx, cloudevents.BordereauGenerated, "bordereau/"+e.FileName, e)
	default:
		return fmt.Errorf("unmapped domain event type %q", event.EventType())
	}

	return p.producer.PublishEvent(ctx, topic, ce)
}
