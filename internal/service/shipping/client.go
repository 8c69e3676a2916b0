package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

const quoteTimeout = 5 * time.Second

const (
	CodeUnavailable = "unavailable"
	CodeBadQuote    = "bad-quote"
	CodeUnknown     = "unknown"
)

type CarrierError struct {
	Carrier string
	Code    string
	Err     error
}

func (e *CarrierError) Error() string {
	return fmt.Sprintf("carrier: %s, code: %s, error: %v", e.Carrier, e.Code, e.Err)
}

func NewCarrierError(carrier string, code string, err error) *CarrierError {
	return &CarrierError{Carrier: carrier, Code: code, Err: err}
}

// carrierQuote is the wire format carrier quote APIs answer with
type carrierQuote struct {
	Service       string          `json:"service"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimated_days"`
}

type quoteRequest struct {
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
}

// Client requests quotes from a single carrier rate API
type Client struct {
	Name string
	Addr string

	client *http.Client
	logger logger.Logger
}

func NewClient(name string, addr string, l logger.Logger) *Client {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Client{
		Name:   name,
		Addr:   addr,
		client: &http.Client{},
		logger: l,
	}
}

// GetQuotes asks the carrier to price the parcel
// One slow or dead carrier must not stall the whole aggregation, so the
// request carries its own timeout
func (c *Client) GetQuotes(ctx context.Context, query models.ShippingQuery) ([]models.ShippingRate, error) {
	ctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	body, err := json.Marshal(quoteRequest{
		Origin:        query.Origin,
		Destination:   query.Destination,
		WeightKg:      query.WeightKg,
		DeclaredValue: query.DeclaredValue,
	})
	if err != nil {
		return nil, NewCarrierError(c.Name, CodeUnknown, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Addr+"/rates", bytes.NewReader(body))
	if err != nil {
		return nil, NewCarrierError(c.Name, CodeUnknown, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewCarrierError(c.Name, CodeUnavailable, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("carrier answered with error", "carrier", c.Name, "status_code", resp.StatusCode)
		return nil, NewCarrierError(c.Name, CodeUnavailable, fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	var quotes []carrierQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		c.logger.Warn("failed to decode carrier response", "carrier", c.Name, "error", err)
		return nil, NewCarrierError(c.Name, CodeBadQuote, fmt.Errorf("failed to decode response: %w", err))
	}

	now := time.Now()
	rates := make([]models.ShippingRate, 0, len(quotes))
	for _, q := range quotes {
		rates = append(rates, models.ShippingRate{
			Carrier:       c.Name,
			Service:       q.Service,
			CostUSD:       q.Cost,
			EstimatedDays: q.EstimatedDays,
			QuotedAt:      now,
		})
	}

	return rates, nil
}
