// Package tripsearch implements the flight and lodging search ports against
// an HTTP offer-aggregation API.
package tripsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pverdier/tripsched/auth"
	"github.com/pverdier/tripsched/core/model"
	"github.com/pverdier/tripsched/core/search"
	"github.com/pverdier/tripsched/infra/logger"
)

// Config defines the aggregator endpoint and credentials. Providers either
// take a static API key or issue tokens via a client-credentials endpoint;
// OAuth wins when both are set.
type Config struct {
	BaseURL        string    `json:"base_url"`
	APIKey         string    `json:"api_key"`
	OAuth          auth.Conf `json:"oauth"`
	TimeoutSeconds int       `json:"timeout_seconds"`
}

// Client queries the offer aggregator. It implements both search ports; the
// planner holds it once per leg.
type Client struct {
	baseURL string
	apiKey  string
	creds   *auth.ClientCred
	http    *http.Client
	log     logger.Logger
}

var (
	_ search.FlightSearcher  = (*Client)(nil)
	_ search.LodgingSearcher = (*Client)(nil)
)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a search client for the configured endpoint.
func New(cfg Config, log logger.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tripsearch: base_url is required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	if cfg.OAuth.Enabled() {
		c.creds = auth.NewClientCred(cfg.OAuth)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type flightResponse struct {
	Offers []struct {
		Ref      string  `json:"ref"`
		Airline  string  `json:"airline"`
		Stops    int     `json:"stops"`
		Cabin    string  `json:"cabin"`
		Price    float64 `json:"price"`
		Currency string  `json:"currency"`
	} `json:"offers"`
}

type lodgingResponse struct {
	Offers []struct {
		Ref      string  `json:"ref"`
		Property string  `json:"property"`
		Rating   float64 `json:"rating"`
		Nightly  float64 `json:"nightly"`
		Currency string  `json:"currency"`
	} `json:"offers"`
}

// SearchFlights queries round-trip flight offers for the window.
func (c *Client) SearchFlights(ctx context.Context, w model.DateWindow, cr search.Criteria) ([]model.FlightOffer, error) {
	q := url.Values{}
	q.Set("origin", cr.Origin)
	q.Set("destination", cr.Destination)
	q.Set("depart", w.Start.Format("2006-01-02"))
	q.Set("return", w.End.Format("2006-01-02"))
	if cr.Cabin != "" {
		q.Set("cabin", cr.Cabin)
	}
	if cr.Currency != "" {
		q.Set("currency", cr.Currency)
	}

	var res flightResponse
	if err := c.get(ctx, "/v1/flights", q, &res); err != nil {
		return nil, err
	}
	offers := make([]model.FlightOffer, 0, len(res.Offers))
	for _, o := range res.Offers {
		offers = append(offers, model.FlightOffer{
			Price:       model.Money{Amount: o.Price, Currency: o.Currency},
			ProviderRef: o.Ref,
			Origin:      cr.Origin,
			Destination: cr.Destination,
			Stops:       o.Stops,
			Cabin:       o.Cabin,
			Airline:     o.Airline,
		})
	}
	return offers, nil
}

// SearchLodging queries stay offers for the window. Offers under the minimum
// rating are filtered out client-side.
func (c *Client) SearchLodging(ctx context.Context, w model.DateWindow, cr search.Criteria) ([]model.LodgingOffer, error) {
	q := url.Values{}
	q.Set("destination", cr.Destination)
	q.Set("checkin", w.Start.Format("2006-01-02"))
	q.Set("checkout", w.End.Format("2006-01-02"))
	if cr.Currency != "" {
		q.Set("currency", cr.Currency)
	}
	if cr.MinRating > 0 {
		q.Set("min_rating", strconv.FormatFloat(cr.MinRating, 'f', 1, 64))
	}

	var res lodgingResponse
	if err := c.get(ctx, "/v1/lodging", q, &res); err != nil {
		return nil, err
	}
	offers := make([]model.LodgingOffer, 0, len(res.Offers))
	for _, o := range res.Offers {
		if cr.MinRating > 0 && o.Rating < cr.MinRating {
			continue
		}
		offers = append(offers, model.LodgingOffer{
			Price:       model.Money{Amount: o.Nightly, Currency: o.Currency},
			ProviderRef: o.Ref,
			Property:    o.Property,
			Nights:      w.Nights,
			Rating:      o.Rating,
		})
	}
	return offers, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.creds != nil {
		if err := c.creds.SetAuthHeader(req); err != nil {
			return fmt.Errorf("%s: %w: %v", path, search.ErrUnauthenticated, err)
		}
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", search.ErrTimeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", path, search.ErrUnauthenticated)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", path, search.ErrRateLimited)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s: status %d: %w", path, resp.StatusCode, search.ErrTimeout)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: unexpected status %d, body: %s", path, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
