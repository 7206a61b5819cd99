package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
)

// APIError is a request the backend refused. Status carries the HTTP status;
// Type and Summary come from the backend's error envelope.
type APIError struct {
	Status  int
	Message string
	Type    string
	Summary string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("backend rejected request (%s): %s", e.Type, e.Message)
	}
	return fmt.Sprintf("backend rejected request: %s", e.Message)
}

// TransportError is a request that never produced a response. Callers can
// distinguish it from APIError to tell "server said no" from "network failed".
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// errorEnvelope is the backend's error body {message, type, summary}.
type errorEnvelope struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// Client talks to the dispenser backend's resource API. The session token is
// attached to every request; timeouts are owned by the underlying http.Client.
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// NewClient creates a backend client. A zero timeout disables the client-side
// deadline.
func NewClient(baseURL, sessionToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// ListDispensers fetches every dispenser, with owners nested.
func (c *Client) ListDispensers(ctx context.Context) ([]models.Dispenser, error) {
	var out []models.Dispenser
	if err := c.do(ctx, "list_dispensers", http.MethodGet, "/dispenser", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOwners fetches every registered owner.
func (c *Client) ListOwners(ctx context.Context) ([]models.Owner, error) {
	var out []models.Owner
	if err := c.do(ctx, "list_owners", http.MethodGet, "/dispenser/owners", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDispenser creates a dispenser. In new-owner mode the backend creates
// the owner as a side effect and returns it nested in the response.
func (c *Client) CreateDispenser(ctx context.Context, payload models.CreateDispenserPayload) (*models.Dispenser, error) {
	var out models.Dispenser
	if err := c.do(ctx, "create_dispenser", http.MethodPost, "/dispenser", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDispenser patches location and/or share percentage.
func (c *Client) UpdateDispenser(ctx context.Context, id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
	var out models.Dispenser
	if err := c.do(ctx, "update_dispenser", http.MethodPatch, "/dispenser/"+id, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CollectDispenser records a collection event and returns the dispenser with
// its running totals advanced by the backend.
func (c *Client) CollectDispenser(ctx context.Context, id string, payload models.CollectDispenserPayload) (*models.Dispenser, error) {
	var out models.Dispenser
	if err := c.do(ctx, "collect_dispenser", http.MethodPatch, "/dispenser/collect/"+id, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDispenser removes a dispenser.
func (c *Client) DeleteDispenser(ctx context.Context, id string) error {
	return c.do(ctx, "delete_dispenser", http.MethodDelete, "/dispenser/"+id, nil, nil)
}

// UpdateOwner patches an owner's name and phone number.
func (c *Client) UpdateOwner(ctx context.Context, id string, payload models.UpdateOwnerPayload) (*models.Owner, error) {
	var out models.Owner
	if err := c.do(ctx, "update_owner", http.MethodPatch, "/dispenser/owner/"+id, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the operator bound to the session credential.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, "current_user", http.MethodGet, "/user/@me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request and maps the response into the caller's type. A
// non-2xx response becomes an *APIError; a failure to obtain a response at
// all becomes a *TransportError.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out)
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	outcome := "success"
	switch err.(type) {
	case *APIError:
		outcome = "rejected"
	case *TransportError:
		outcome = "transport_error"
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()

	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		// A malformed error body still yields a usable APIError.
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Message == "" {
			envelope.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return &APIError{
			Status:  resp.StatusCode,
			Message: envelope.Message,
			Type:    envelope.Type,
			Summary: envelope.Summary,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
