package domain

import (
	"context"
)

// CarrierGateway is the domain port for the Colissimo SLS web service.
// Implementations translate domain requests into carrier SOAP calls and
// parse the multipart replies. One synchronous call per invocation, no
// retries: a transport failure is final for the operation that caused it.
type CarrierGateway interface {
	// GenerateLabel requests a shipping label for one parcel.
	GenerateLabel(ctx context.Context, request LabelRequest) (*LabelResult, error)

	// GenerateBordereau requests a manifest covering the given parcel
	// numbers. Order is preserved and duplicates are passed through; the
	// carrier tolerates both.
	GenerateBordereau(ctx context.Context, parcelNumbers []string) (*BordereauResult, error)
}

// Address is one side of a shipment, sender or recipient.
type Address struct {
	Company    string `bson:"company,omitempty" json:"company,omitempty"`
	LastName   string `bson:"lastName" json:"lastName"`
	FirstName  string `bson:"firstName" json:"firstName"`
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	ZipCode    string `bson:"zipCode" json:"zipCode"`
	Country    string `bson:"country" json:"country"` // ISO 3166-1 alpha-2
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Mobile     string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
}

// LabelRequest describes one shipment to label. Built fresh per request and
// never persisted; only its XML projection travels to the carrier.
type LabelRequest struct {
	OrderID        string
	OrderRef       string
	Sender         Address
	Recipient      Address
	Weight         float64 // kg
	SignedDelivery bool
	OutputFormat   string // e.g. PDF_10x15_300dpi
	CommercialName string
	DepositDate    string // YYYY-MM-DD
	// Pickup-point routing, set when the order was placed through the
	// relay-delivery module. Empty for home delivery.
	PickupCode string
	PickupType string
}

// LabelResult is the parsed outcome of a generateLabel call. Valid results
// carry the artifact bytes; invalid ones carry only the carrier's error
// string. Callers must not persist anything when Valid is false.
type LabelResult struct {
	Valid        bool
	ParcelNumber string
	Label        []byte
	CustomsForm  []byte // CN23, nil when the destination needs none
	ErrorMessage string
}

// HasCustomsForm reports whether the carrier attached a CN23 document.
func (r *LabelResult) HasCustomsForm() bool {
	return len(r.CustomsForm) > 0
}

// BordereauResult is the parsed outcome of a bordereau call: the manifest
// document bytes.
type BordereauResult struct {
	Content []byte
}

// CarrierFault is a carrier-reported failure scraped from a non-success
/// reply. Distinct from transport errors: the endpoint answered, the request
// was refused.
type CarrierFault struct {
	Message string
}

func (e *CarrierFault) Error() string {
	return "carrier fault: " + e.Message
}
