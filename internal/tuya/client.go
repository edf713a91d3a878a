package tuya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const signMethod = "HMAC-SHA256"

// Credentials identifies a platform project. It is supplied by the
// caller on every operation and never cached or mutated here.
type Credentials struct {
	AccessKey string
	SecretKey string
	BaseURL   string
}

// Envelope is the platform's standard response wrapper. Success is
// authoritative: a false value is a failure regardless of HTTP status.
type Envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
	T       int64           `json:"t"`
}

// Client dispatches signed requests against the cloud platform. It
// holds no per-call state; concurrent calls are independent.
type Client struct {
	client *http.Client
	now    func() time.Time
}

// NewClient creates a client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}
}

func (c *Client) timestamp() string {
	return strconv.FormatInt(c.now().UnixMilli(), 10)
}

// Call acquires a fresh token, signs the request, and dispatches it to
// baseURL+endpoint. Non-2xx statuses fail with HTTPError before any
// body parse; a decoded envelope with success=false fails with
// APIError. Every call pays its own token fetch: the main request's
// signature depends on the token value, so the two round trips are
// strictly sequential.
func (c *Client) Call(ctx context.Context, creds Credentials, method, endpoint string, query map[string]string, body any) (*Envelope, error) {
	token, err := c.AcquireToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	canonical := Canonicalize(endpoint, query)

	contentHash := EmptyBodyHash
	var payload []byte
	if method != http.MethodGet && body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		contentHash = ContentHash(payload)
	}

	t := c.timestamp()
	stringToSign := StringToSign(method, contentHash, canonical)
	sign := Sign(creds.AccessKey+token+t+stringToSign, creds.SecretKey)

	var reader io.Reader
	if len(payload) > 0 {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, creds.BaseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("t", t)
	req.Header.Set("path", canonical)
	req.Header.Set("client_id", creds.AccessKey)
	req.Header.Set("sign", sign)
	req.Header.Set("sign_method", signMethod)
	req.Header.Set("access_token", token)
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if !env.Success {
		return nil, &APIError{Code: env.Code, Msg: env.Msg}
	}
	return &env, nil
}
