package colissimo

// APIConfiguration is the immutable per-call configuration for the SLS web
// service: contract credentials plus transport parameters. Values come from
// the settings store; the struct itself never outlives one call.
type APIConfiguration struct {
	ContractNumber string
	Password       string
	Endpoint       string
	Method         string
	Version        string
}

// Carrier constants. The SLS service publishes both operations under one
// namespace; SOAP 1.1 carries the method in the SOAPAction header.
const (
	Namespace = "http://sls.ws.coliposte.fr"

	MethodGenerateLabel     = "generateLabel"
	MethodGenerateBordereau = "generateBordereauByParcelsNumbers"

	SOAPVersion11 = "1.1"
)

// Output formats accepted by the carrier. The artifact file extension is
// the lowercased first three characters of the format name.
const (
	OutputFormatDefault = "PDF_10x15_300dpi"
)

// Home-delivery product codes. Relay deliveries use the pickup-point type
// code supplied by the relay module instead.
const (
	productCodeSigned   = "DOS"
	productCodeUnsigned = "DOM"
)
