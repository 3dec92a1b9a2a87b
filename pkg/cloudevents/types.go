package cloudevents

import (
	"time"
)

// EventType constants for parcel domain events
const (
	// Label events
	LabelCreated = "parcel.label.created"
	LabelDeleted = "parcel.label.deleted"

	// Bordereau events
	BordereauGenerated = "parcel.bordereau.generated"

	// Order events
	OrderStatusChanged = "parcel.order.status-changed"
)

// Source constants for event sources
const (
	SourceLabelService = "/parcel/label-service"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Extensions
	CorrelationID string `json:"parcelcorrelationid,omitempty"`
	OrderID       string `json:"parcelorderid,omitempty"`
}

// LabelCreatedData represents the data payload for LabelCreated events
type LabelCreatedData struct {
	OrderID        string  `json:"orderId"`
	OrderRef       string  `json:"orderRef"`
	TrackingNumber string  `json:"trackingNumber"`
	Weight         float64 `json:"weight"`
	Signed         bool    `json:"signed"`
}

// LabelDeletedData represents the data payload for LabelDeleted events
type LabelDeletedData struct {
	OrderID        string `json:"orderId,omitempty"`
	TrackingNumber string `json:"trackingNumber"`
	Generation     string `json:"generation"`
}

// BordereauGeneratedData represents the data payload for BordereauGenerated
// events
type BordereauGeneratedData struct {
	FileName      string   `json:"fileName"`
	ParcelCount   int      `json:"parcelCount"`
	ParcelNumbers []string `json:"parcelNumbers,omitempty"`
}

// OrderStatusChangedData represents the data payload for OrderStatusChanged
// events
type OrderStatusChangedData struct {
	OrderID  string `json:"orderId"`
	StatusID int    `json:"statusId"`
}
