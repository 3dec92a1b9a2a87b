package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcel-platform/label-service/pkg/cloudevents"
)

// TestEventMessage tests the CloudEvents binary-mode header mapping
func TestEventMessage(t *testing.T) {
	event := &cloudevents.CloudEvent{
		SpecVersion:     "1.0",
		Type:            cloudevents.LabelCreated,
		Source:          cloudevents.SourceLabelService,
		Subject:         "label/6C00000042",
		ID:              "00000000-0000-0000-0000-000000000001",
		Time:            time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC),
		DataContentType: "application/json",
		OrderID:         "42",
		Data:            map[string]string{"trackingNumber": "6C00000042"},
	}

	msg, err := eventMessage(event)

	require.NoError(t, err)
	assert.Equal(t, []byte("label/6C00000042"), msg.Key)
	assert.Equal(t, event.Time, msg.Time)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "1.0", headers["ce-specversion"])
	assert.Equal(t, cloudevents.LabelCreated, headers["ce-type"])
	assert.Equal(t, cloudevents.SourceLabelService, headers["ce-source"])
	assert.Equal(t, "2024-03-18T10:00:00Z", headers["ce-time"])
	assert.Equal(t, "application/json", headers["content-type"])
	assert.Equal(t, "42", headers["ce-parcelorderid"])
}

// TestEventMessageOmitsEmptyExtensions tests that extension headers are optional
func TestEventMessageOmitsEmptyExtensions(t *testing.T) {
	event := &cloudevents.CloudEvent{
		SpecVersion:     "1.0",
		Type:            cloudevents.BordereauGenerated,
		Source:          cloudevents.SourceLabelService,
		Subject:         "bordereau/bordereau_2024-03-18_17-30-05.pdf",
		ID:              "00000000-0000-0000-0000-000000000002",
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
	}

	msg, err := eventMessage(event)
	require.NoError(t, err)

	for _, h := range msg.Headers {
		assert.NotEqual(t, "ce-parcelcorrelationid", h.Key)
		assert.NotEqual(t, "ce-parcelorderid", h.Key)
	}
}

// TestEventMessagePayload tests that the value is the serialized envelope
func TestEventMessagePayload(t *testing.T) {
	event := &cloudevents.CloudEvent{
		SpecVersion:     "1.0",
		Type:            cloudevents.LabelDeleted,
		Source:          cloudevents.SourceLabelService,
		Subject:         "label/6C00000042",
		ID:              "00000000-0000-0000-0000-000000000003",
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            cloudevents.LabelDeletedData{TrackingNumber: "6C00000042", Generation: "current"},
	}

	msg, err := eventMessage(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, cloudevents.LabelDeleted, decoded["type"])
	assert.Equal(t, "label/6C00000042", decoded["subject"])
}
