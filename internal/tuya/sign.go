package tuya

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Sign computes the HMAC-SHA256 digest of message keyed by secret,
// encoded as uppercase hexadecimal. This is the platform's required
// signature encoding.
func Sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// ContentHash returns the lowercase hex SHA-256 digest of body.
func ContentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// EmptyBodyHash is the content hash used for all bodiless requests.
// GET requests always sign the hash of the empty string, regardless of
// any query or body content.
var EmptyBodyHash = ContentHash(nil)

// StringToSign assembles the newline-joined tuple the platform expects:
// method, content hash, reserved header field (always empty), and the
// canonical URL.
func StringToSign(method, contentHash, canonicalURL string) string {
	return strings.Join([]string{method, contentHash, "", canonicalURL}, "\n")
}

// Canonicalize rebuilds an endpoint path into the canonical URL used
// as signing input. Query keys from the path and the explicit query
// map are merged (explicit wins on collision) and sorted byte-wise
// ascending, but the rebuilt values are taken from the explicit map
// only: a key present solely in the path's query string keeps its
// position with an empty value. The platform accepts this form and the
// plain-merge variant is untested against it, so the behavior is kept
// as is.
func Canonicalize(path string, query map[string]string) string {
	uri := path
	pathQuery := ""
	if i := strings.Index(path, "?"); i >= 0 {
		uri = path[:i]
		pathQuery = path[i+1:]
	}

	keys := make(map[string]struct{})
	for _, pair := range strings.Split(pathQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if j := strings.Index(pair, "="); j >= 0 {
			key = pair[:j]
		}
		keys[key] = struct{}{}
	}
	for k := range query {
		keys[k] = struct{}{}
	}

	if len(keys) == 0 {
		return uri
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	pairs := make([]string, 0, len(sorted))
	for _, k := range sorted {
		pairs = append(pairs, k+"="+query[k])
	}
	qs := strings.Join(pairs, "&")
	if decoded, err := url.QueryUnescape(qs); err == nil {
		qs = decoded
	}

	return uri + "?" + qs
}
