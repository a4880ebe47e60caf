// Package client is a Go SDK for the weather dashboard API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/weather-dashboard/internal/domain/dashboard"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/pkg/clientid"
)

const (
	defaultBaseURL = "http://localhost:8080"
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
)

// Config holds everything a client needs. It is the explicit replacement for
// ambient per-browser state: base URL, client id and preferred units.
type Config struct {
	BaseURL    string
	ClientID   string
	Units      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the weather dashboard API on behalf of one client id.
type Client struct {
	baseURL    string
	clientID   string
	units      string
	httpClient *http.Client
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// New builds a client, minting a client id when cfg.ClientID is empty.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	id := strings.TrimSpace(cfg.ClientID)
	if id == "" {
		minted, err := clientid.New()
		if err != nil {
			return nil, fmt.Errorf("generate client id: %w", err)
		}
		id = minted
	}
	if !clientid.Valid(id) {
		return nil, fmt.Errorf("invalid client id %q", id)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    base,
		clientID:   id,
		units:      cfg.Units,
		httpClient: httpClient,
	}, nil
}

// ClientID returns the identifier sent with every request.
func (c *Client) ClientID() string {
	return c.clientID
}

// Geocode resolves a free-text city query.
func (c *Client) Geocode(ctx context.Context, query string) ([]weather.LocationCandidate, error) {
	var resp []weather.LocationCandidate
	params := url.Values{"city": {query}}
	if err := c.do(ctx, http.MethodGet, "/weather/geocode", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Current fetches current conditions for a city or coordinates.
func (c *Client) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	var resp weather.CurrentConditions
	err := c.do(ctx, http.MethodGet, "/weather/current", c.locationParams(loc), nil, &resp)
	return resp, err
}

// Forecast fetches raw forecast points together with server-side projections.
func (c *Client) Forecast(ctx context.Context, loc weather.Location) (weather.ForecastResponse, error) {
	var resp weather.ForecastResponse
	err := c.do(ctx, http.MethodGet, "/weather/forecast", c.locationParams(loc), nil, &resp)
	return resp, err
}

// Details fetches the combined city view.
func (c *Client) Details(ctx context.Context, loc weather.Location) (weather.Details, error) {
	var resp weather.Details
	err := c.do(ctx, http.MethodGet, "/weather/details", c.locationParams(loc), nil, &resp)
	return resp, err
}

// Favorites lists the saved cities in insertion order.
func (c *Client) Favorites(ctx context.Context) ([]string, error) {
	var resp []string
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AddFavorite saves a city and returns the updated list.
func (c *Client) AddFavorite(ctx context.Context, city string) ([]string, error) {
	var resp []string
	body := map[string]string{"city": city}
	if err := c.do(ctx, http.MethodPost, "/favorites", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveFavorite deletes a city and returns the updated list.
func (c *Client) RemoveFavorite(ctx context.Context, city string) ([]string, error) {
	var resp []string
	if err := c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(city), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Dashboard fetches one refresh of every favorite.
func (c *Client) Dashboard(ctx context.Context) (dashboard.Snapshot, error) {
	var resp dashboard.Snapshot
	err := c.do(ctx, http.MethodGet, "/dashboard", c.unitParams(), nil, &resp)
	return resp, err
}

// Select fetches a geocode candidate's conditions and saves it as a favorite.
func (c *Client) Select(ctx context.Context, candidate weather.LocationCandidate) (dashboard.SelectResult, error) {
	var resp dashboard.SelectResult
	body := dashboard.SelectRequest{Candidate: candidate, Units: c.units}
	err := c.do(ctx, http.MethodPost, "/dashboard/select", nil, body, &resp)
	return resp, err
}

func (c *Client) unitParams() url.Values {
	params := url.Values{}
	if c.units != "" {
		params.Set("units", c.units)
	}
	return params
}

func (c *Client) locationParams(loc weather.Location) url.Values {
	params := c.unitParams()
	if loc.HasCoordinates() {
		params.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
		return params
	}
	params.Set("city", loc.City)
	return params
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, dst any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(clientid.Header, c.clientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
