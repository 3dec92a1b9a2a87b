package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrLabelNotFound = errors.New("label not found")
	ErrEmptyArtifact = errors.New("carrier returned an empty file")
	ErrNoLabelFound  = errors.New("no label found")
)

// LabelRecord is the current-generation label entity. One record is created
// per successfully generated label; the artifact files on disk are named
// after OrderRef.
type LabelRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        string             `bson:"orderId" json:"orderId"`
	OrderRef       string             `bson:"orderRef" json:"orderRef"`
	TrackingNumber string             `bson:"trackingNumber" json:"trackingNumber"`
	Weight         float64            `bson:"weight" json:"weight"`
	Signed         bool               `bson:"signed" json:"signed"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// NewLabelRecord creates a LabelRecord for a freshly generated label.
func NewLabelRecord(orderID, orderRef, trackingNumber string, weight float64, signed bool) *LabelRecord {
	return &LabelRecord{
		ID:             primitive.NewObjectID(),
		OrderID:        orderID,
		OrderRef:       orderRef,
		TrackingNumber: trackingNumber,
		Weight:         weight,
		Signed:         signed,
		CreatedAt:      time.Now().UTC(),
	}
}

// LegacyLabelRecord is the predecessor-plugin label entity, kept for
// backward compatibility. Its artifacts are also named after OrderRef, but
// the record is keyed by order id rather than tracking number.
type LegacyLabelRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        string             `bson:"orderId" json:"orderId"`
	OrderRef       string             `bson:"orderRef" json:"orderRef"`
	TrackingNumber string             `bson:"trackingNumber" json:"trackingNumber"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// RecordGeneration tags which schema generation a resolved label belongs to.
// Generation 0 is the pre-unification layout where artifacts were named by
// tracking number directly and no usable record field exists.
type RecordGeneration int

const (
	GenerationPreUnification RecordGeneration = iota
	GenerationLegacyPlugin
	GenerationCurrent
)

// DeletableLabel is the result of cross-generation resolution: the artifact
// base name to delete and, when one was resolved, the record to remove from
// its generation's store. Record fields are a tagged variant, not a
// hierarchy: exactly one of Current/Legacy is set for generations > 0.
type DeletableLabel struct {
	Generation RecordGeneration
	BaseName   string
	Current    *LabelRecord
	Legacy     *LegacyLabelRecord
}

// HasRecord reports whether resolution found a record to delete. File
// cleanup proceeds either way; record deletion is skipped when false.
func (d *DeletableLabel) HasRecord() bool {
	return d.Current != nil || d.Legacy != nil
}
