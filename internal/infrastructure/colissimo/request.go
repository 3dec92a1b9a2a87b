package colissimo

import (
	"strconv"

	"github.com/parcel-platform/label-service/internal/domain"
)

// labelRequestFields projects a domain label request onto the
// generateLabelRequest tree expected by the carrier. Field order matters:
// the service validates the sequence, not just the names. Empty optional
// values are dropped by the encoder, so the projection can list every
// field unconditionally.
func labelRequestFields(cfg APIConfiguration, req domain.LabelRequest) Fields {
	format := req.OutputFormat
	if format == "" {
		format = OutputFormatDefault
	}

	return Fields{
		{Key: "contractNumber", Value: cfg.ContractNumber},
		{Key: "password", Value: cfg.Password},
		{Key: "outputFormat", Value: Fields{
			{Key: "x", Value: "0"},
			{Key: "y", Value: "0"},
			{Key: "outputPrintingType", Value: format},
		}},
		{Key: "letter", Value: Fields{
			{Key: "service", Value: Fields{
				{Key: "productCode", Value: productCode(req)},
				{Key: "depositDate", Value: req.DepositDate},
				{Key: "orderNumber", Value: req.OrderRef},
				{Key: "commercialName", Value: req.CommercialName},
			}},
			{Key: "parcel", Value: Fields{
				{Key: "weight", Value: strconv.FormatFloat(req.Weight, 'f', -1, 64)},
				{Key: "pickupLocationId", Value: req.PickupCode},
			}},
			{Key: "sender", Value: Fields{
				{Key: "senderParcelRef", Value: req.OrderRef},
				{Key: "address", Value: addressFields(req.Sender)},
			}},
			{Key: "addressee", Value: Fields{
				{Key: "addresseeParcelRef", Value: req.OrderRef},
				{Key: "address", Value: addressFields(req.Recipient)},
			}},
		}},
	}
}

func addressFields(a domain.Address) Fields {
	return Fields{
		{Key: "companyName", Value: a.Company},
		{Key: "lastName", Value: a.LastName},
		{Key: "firstName", Value: a.FirstName},
		{Key: "line2", Value: a.Line1},
		{Key: "line3", Value: a.Line2},
		{Key: "countryCode", Value: a.Country},
		{Key: "city", Value: a.City},
		{Key: "zipCode", Value: a.ZipCode},
		{Key: "phoneNumber", Value: a.Phone},
		{Key: "mobileNumber", Value: a.Mobile},
		{Key: "email", Value: a.Email},
	}
}

// productCode selects the carrier product. Relay deliveries reuse the
// pickup-point type code chosen at checkout; home deliveries switch on the
// signature requirement.
func productCode(req domain.LabelRequest) string {
	if req.PickupType != "" {
		return req.PickupType
	}
	if req.SignedDelivery {
		return productCodeSigned
	}
	return productCodeUnsigned
}
