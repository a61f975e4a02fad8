package payrexx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client owns the outbound HTTP channel to the API. It is safe for
// concurrent use; the underlying connection pool is shared across
// calls.
type Client struct {
	BaseURL      string
	InstanceName string
	SecretKey    string
	UserAgent    string
	HTTPClient   *http.Client
}

func NewClient(instanceName, secretKey string) *Client {
	return &Client{
		BaseURL:      APIBaseURL,
		InstanceName: instanceName,
		SecretKey:    secretKey,
		UserAgent:    UserAgent,
		HTTPClient:   &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.HTTPClient.Timeout = d
	}
}

// send executes one signed request and decodes the response envelope.
// It does not classify success or failure; that is the manager's job.
func send[T any](ctx context.Context, c *Client, req Request) (*Response[T], error) {
	form := EncodeForm(req)
	signed := form
	if signed != "" {
		signed += "&"
	}
	signed += SignatureParam + "=" + escape(Sign(c.SecretKey, form))

	target := c.BaseURL + req.Path() + "?" + InstanceParam + "=" + url.QueryEscape(c.InstanceName)
	if req.Method() == http.MethodGet {
		// GET duplicates the signed parameter string into the query
		target += "&" + signed
	}

	// the signed body is attached as content for every method
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), target, bytes.NewReader(bodyBytes(signed)))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=iso-8859-1")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.UserAgent)

	httpResp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp Response[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}
