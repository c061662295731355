// Package client provides the HTTP transport for the external data
// provider. It does one POST per lookup with no retries; backoff policy
// belongs to callers further out.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"funnel_backend/platform/logger"
)

// ProviderUnavailableError signals a transport failure or a non-2xx
// response without a structured error payload.
type ProviderUnavailableError struct {
	Status int
	Err    error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider unavailable: %v", e.Err)
	}
	return fmt.Sprintf("provider unavailable: status %d", e.Status)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// ProviderRejectedError signals an API-level error payload: the
// provider answered, but refused the request.
type ProviderRejectedError struct {
	Code    string
	Message string
}

func (e *ProviderRejectedError) Error() string {
	return fmt.Sprintf("provider rejected request: %s (%s)", e.Message, e.Code)
}

// Client is the HTTP client for the data provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a new provider API client.
func New(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		log:        log,
	}
}

// PersonSearch looks up person records matching the given keys.
// An empty slice means no match; that is a valid outcome, not an error.
func (c *Client) PersonSearch(ctx context.Context, body PersonSearchBody) ([]PersonRecord, error) {
	var records []PersonRecord
	if err := c.post(ctx, "/v1/people/search", body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// OrganizationSearch looks up organization records matching the given keys.
func (c *Client) OrganizationSearch(ctx context.Context, body OrganizationSearchBody) ([]OrganizationRecord, error) {
	var records []OrganizationRecord
	if err := c.post(ctx, "/v1/organizations/search", body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PersonSearchBody is the provider's person lookup request.
type PersonSearchBody struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"organization_name,omitempty"`
	SocialURL string `json:"linkedin_url,omitempty"`
}

// OrganizationSearchBody is the provider's organization lookup request.
type OrganizationSearchBody struct {
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("provider request failed", "path", path, "error", err)
		return &ProviderUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Success - continue to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			c.log.Error("provider upstream error", "path", path, "status", resp.StatusCode)
			return &ProviderUnavailableError{Status: resp.StatusCode}
		}
		c.log.Warn("provider rejected request", "path", path, "code", apiErr.Code, "message", apiErr.Message)
		return &ProviderRejectedError{Code: apiErr.Code, Message: apiErr.Message}
	default:
		c.log.Error("provider upstream error", "path", path, "status", resp.StatusCode)
		return &ProviderUnavailableError{Status: resp.StatusCode}
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.log.Error("provider decode failed", "path", path, "error", err)
		return &ProviderUnavailableError{Err: err}
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		c.log.Error("provider decode failed", "path", path, "error", err)
		return &ProviderUnavailableError{Err: err}
	}
	return nil
}

// apiError is the provider's structured error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchEnvelope wraps every provider search response.
type searchEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// PersonRecord is the raw person shape from the provider. Most fields
// are optional on the wire, hence the pointers.
type PersonRecord struct {
	FullName         *string  `json:"full_name"`
	FirstName        *string  `json:"first_name"`
	LastName         *string  `json:"last_name"`
	Email            *string  `json:"email"`
	Title            *string  `json:"title"`
	Location         *string  `json:"location"`
	LinkedInURL      *string  `json:"linkedin_url"`
	TwitterURL       *string  `json:"twitter_url"`
	PhotoURL         *string  `json:"photo_url"`
	OrganizationName *string  `json:"organization_name"`
	OrganizationSite *string  `json:"organization_domain"`
	Confidence       *float64 `json:"match_score"`
}

// OrganizationRecord is the raw organization shape from the provider.
type OrganizationRecord struct {
	Name          *string  `json:"name"`
	Domain        *string  `json:"domain"`
	WebsiteURL    *string  `json:"website_url"`
	LinkedInURL   *string  `json:"linkedin_url"`
	TwitterURL    *string  `json:"twitter_url"`
	LogoURL       *string  `json:"logo_url"`
	Industry      *string  `json:"industry"`
	Location      *string  `json:"location"`
	EmployeeCount *int     `json:"employee_count"`
	Confidence    *float64 `json:"match_score"`
}
