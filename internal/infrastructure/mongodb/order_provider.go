package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parcel-platform/label-service/internal/domain"
	pkgmongo "github.com/parcel-platform/label-service/pkg/mongodb"
)

const orderCollection = "orders"

type orderDocument struct {
	OrderID            string          `bson:"orderId"`
	Reference          string          `bson:"reference"`
	DeliveryAddress    addressDocument `bson:"deliveryAddress"`
	Weight             float64         `bson:"weight"`
	StatusID           int             `bson:"statusId"`
	DeliveryModuleCode string          `bson:"deliveryModuleCode"`
	PickupCode         string          `bson:"pickupCode,omitempty"`
	PickupType         string          `bson:"pickupType,omitempty"`
	DeliveryRef        string          `bson:"deliveryRef,omitempty"`
}

type addressDocument struct {
	Company   string `bson:"company,omitempty"`
	LastName  string `bson:"lastName"`
	FirstName string `bson:"firstName"`
	Line1     string `bson:"line1"`
	Line2     string `bson:"line2,omitempty"`
	City      string `bson:"city"`
	ZipCode   string `bson:"zipCode"`
	Country   string `bson:"country"`
	Phone     string `bson:"phone,omitempty"`
	Mobile    string `bson:"mobile,omitempty"`
	Email     string `bson:"email,omitempty"`
}

// OrderProvider reads order and delivery address data and records the two
// writes this service makes: the tracking reference and the status
// transition. Implements domain.OrderProvider.
type OrderProvider struct {
	collection *pkgmongo.InstrumentedCollection
}

// NewOrderProvider creates an OrderProvider.
func NewOrderProvider(client *pkgmongo.InstrumentedClient) *OrderProvider {
	return &OrderProvider{
		collection: client.Collection(orderCollection),
	}
}

// FindByID returns the order read model, or domain.ErrOrderNotFound.
func (p *OrderProvider) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var doc orderDocument
	err := p.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order %s: %w", orderID, err)
	}

	return &domain.Order{
		ID:                 doc.OrderID,
		Reference:          doc.Reference,
		DeliveryAddress:    toDomainAddress(doc.DeliveryAddress),
		Weight:             doc.Weight,
		StatusID:           doc.StatusID,
		DeliveryModuleCode: doc.DeliveryModuleCode,
		PickupCode:         doc.PickupCode,
		PickupType:         doc.PickupType,
	}, nil
}

// SetDeliveryReference records the carrier tracking number on the order.
func (p *OrderProvider) SetDeliveryReference(ctx context.Context, orderID, trackingNumber string) error {
	return p.updateOrder(ctx, orderID, bson.M{"deliveryRef": trackingNumber})
}

// SetStatus moves the order to the given status.
func (p *OrderProvider) SetStatus(ctx context.Context, orderID string, statusID int) error {
	return p.updateOrder(ctx, orderID, bson.M{"statusId": statusID})
}

func (p *OrderProvider) updateOrder(ctx context.Context, orderID string, set bson.M) error {
	result, err := p.collection.UpdateOne(ctx, bson.M{"orderId": orderID}, pkgmongo.BuildUpdate(set))
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func toDomainAddress(doc addressDocument) domain.Address {
	return domain.Address{
		Company:   doc.Company,
		LastName:  doc.LastName,
		FirstName: doc.FirstName,
		Line1:     doc.Line1,
		Line2:     doc.Line2,
		City:      doc.City,
		ZipCode:   doc.ZipCode,
		Country:   doc.Country,
		Phone:     doc.Phone,
		Mobile:    doc.Mobile,
		Email:     doc.Email,
	}
}
