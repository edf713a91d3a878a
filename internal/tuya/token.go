package tuya

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const tokenPath = "/v1.0/token?grant_type=1"

// tokenResult is the token endpoint's result payload. Only the access
// token is consumed; expiry and refresh token are received but unused
// because every call fetches a fresh token.
type tokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireTime   int64  `json:"expire_time"`
	UID          string `json:"uid"`
}

// AcquireToken fetches a short-lived access token from the platform.
// The token request signs an empty body and carries no access token of
// its own.
func (c *Client) AcquireToken(ctx context.Context, creds Credentials) (string, error) {
	t := c.timestamp()
	stringToSign := StringToSign(http.MethodGet, EmptyBodyHash, tokenPath)
	sign := Sign(creds.AccessKey+t+stringToSign, creds.SecretKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, creds.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("t", t)
	req.Header.Set("sign_method", signMethod)
	req.Header.Set("client_id", creds.AccessKey)
	req.Header.Set("sign", sign)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &DecodeError{Err: err}
	}
	if !env.Success {
		return "", &AuthError{Msg: env.Msg}
	}

	var result tokenResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return "", &DecodeError{Err: err}
	}
	if result.AccessToken == "" {
		return "", &AuthError{Msg: "token missing in response"}
	}
	return result.AccessToken, nil
}
