package colissimo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/parcel-platform/label-service/internal/domain"
	"github.com/parcel-platform/label-service/pkg/logging"
	"github.com/parcel-platform/label-service/pkg/metrics"
)

const envelopeOpen = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Header></soapenv:Header><soapenv:Body>`
const envelopeClose = `</soapenv:Body></soapenv:Envelope>`

// ConfigProvider supplies the per-call API configuration. Credentials live
// in the settings store and may change between calls, so they are read
// fresh each time rather than captured at construction.
type ConfigProvider interface {
	APIConfiguration(ctx context.Context) (APIConfiguration, error)
}

// Client is the SOAP adapter for the Colissimo SLS web service. It
// implements domain.CarrierGateway. One synchronous HTTP call per
// invocation; failures are surfaced, never retried. The circuit breaker
// only short-circuits while the endpoint is known down.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	config     ConfigProvider
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new SLS client
func NewClient(config ConfigProvider, logger *logging.Logger, m *metrics.Metrics) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "colissimo-sls",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		// No client-side timeout: callers bound the call through ctx.
		httpClient: &http.Client{},
		breaker:    breaker,
		config:     config,
		logger:     logger.WithComponent("colissimo"),
		metrics:    m,
	}
}

// GenerateLabel requests a shipping label for one parcel.
func (c *Client) GenerateLabel(ctx context.Context, request domain.LabelRequest) (*domain.LabelResult, error) {
	cfg, err := c.config.APIConfiguration(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load carrier configuration: %w", err)
	}

	var body bytes.Buffer
	body.WriteString(envelopeOpen)
	body.WriteString(`<sls:generateLabel xmlns:sls="` + Namespace + `">`)
	body.WriteString("<generateLabelRequest>")
	body.WriteString(EncodeFields(labelRequestFields(cfg, request)))
	body.WriteString("</generateLabelRequest>")
	body.WriteString("</sls:generateLabel>")
	body.WriteString(envelopeClose)

	reply, err := c.call(ctx, cfg, MethodGenerateLabel, body.Bytes())
	if err != nil {
		return nil, err
	}

	result := parseLabelResult(reply)
	if !result.Valid {
		c.logger.Warn("Carrier rejected label request",
			"orderRef", request.OrderRef,
			"error", result.ErrorMessage,
		)
	}
	return result, nil
}

// GenerateBordereau requests a manifest covering the given parcel numbers.
// The list travels as sibling parcelsNumbers leaves, order preserved and
// duplicates passed through. An empty list is still a valid call.
func (c *Client) GenerateBordereau(ctx context.Context, parcelNumbers []string) (*domain.BordereauResult, error) {
	cfg, err := c.config.APIConfiguration(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load carrier configuration: %w", err)
	}

	numbers := make(Sequence, len(parcelNumbers))
	for i, n := range parcelNumbers {
		numbers[i] = n
	}

	fields := Fields{
		{Key: "contractNumber", Value: cfg.ContractNumber},
		{Key: "password", Value: cfg.Password},
		{Key: "generateBordereauParcelNumberList", Value: Fields{
			{Key: "parcelsNumbers", Value: numbers},
		}},
	}

	var body bytes.Buffer
	body.WriteString(envelopeOpen)
	body.WriteString(`<sls:generateBordereauByParcelsNumbers xmlns:sls="` + Namespace + `">`)
	body.WriteString(EncodeFields(fields))
	body.WriteString("</sls:generateBordereauByParcelsNumbers>")
	body.WriteString(envelopeClose)

	reply, err := c.call(ctx, cfg, MethodGenerateBordereau, body.Bytes())
	if err != nil {
		return nil, err
	}

	return parseBordereauResult(reply)
}

func (c *Client) call(ctx context.Context, cfg APIConfiguration, operation string, envelope []byte) (*soapReply, error) {
	start := time.Now()

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(envelope))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
		req.Header.Set("SOAPAction", operation)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		// SOAP faults arrive with a 500 status and a parseable body, so
		// the status code alone does not decide success here.
		return parseReply(resp.Header.Get("Content-Type"), body)
	})

	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.ObserveCarrierCall(operation, duration, err == nil)
	}

	if err != nil {
		c.logger.WithError(err).Error("Carrier call failed",
			"operation", operation,
			"durationMs", duration.Milliseconds(),
		)
		return nil, fmt.Errorf("carrier transport failure (%s): %w", operation, err)
	}

	c.logger.Debug("Carrier call completed",
		"operation", operation,
		"durationMs", duration.Milliseconds(),
	)
	return raw.(*soapReply), nil
}
