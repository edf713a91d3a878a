package tuya

import "fmt"

// AuthError indicates the token endpoint rejected the request, or that
// a token was missing from an otherwise successful response.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("tuya: authentication failed: %s", e.Msg)
}

// HTTPError indicates a transport-level failure (non-2xx status).
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("tuya: unexpected HTTP status %d", e.Status)
}

// APIError indicates the platform reported a logical failure in its
// response envelope (device offline, bad command, invalid id).
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tuya: api error %d: %s", e.Code, e.Msg)
}

// DecodeError indicates a malformed response body or an unparsable
// nested value.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("tuya: failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
