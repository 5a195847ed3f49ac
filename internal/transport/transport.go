// Package transport carries opaque request and response bodies between the
// client and the credential store. It owns basic authentication and the
// namespace header and never looks inside a body.
package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/hengadev/credstore/internal/storeerr"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderNamespace     = "sapcp-credstore-namespace"
	HeaderContentType   = "Content-Type"

	// ContentTypeJOSE marks a request body as a compact JWE.
	ContentTypeJOSE = "application/jose"
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// BuildHeaders returns the headers every store request carries, merged with
// extra. Extra headers never override authorization or namespace.
func BuildHeaders(username, password, namespace string, extra http.Header) http.Header {
	headers := make(http.Header, len(extra)+2)
	for k, values := range extra {
		for _, v := range values {
			headers.Add(k, v)
		}
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	headers.Set(HeaderAuthorization, "Basic "+credentials)
	headers.Set(HeaderNamespace, namespace)
	return headers
}

// Send performs one request and returns the raw response body. A status
// outside 2xx yields a *storeerr.TransportError; the body is discarded
// unread in that case. There is no retry and no internal timeout.
func Send(ctx context.Context, client Doer, method, url string, headers http.Header, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %w", storeerr.ErrStoreUnavailable, method, err)
	}
	for k, values := range headers {
		req.Header[k] = append([]string(nil), values...)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request failed: %w", storeerr.ErrStoreUnavailable, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, storeerr.NewTransportError(method, redact(req), resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", storeerr.ErrStoreUnavailable, method, err)
	}
	return payload, nil
}

// redact drops userinfo and query from the URL reported in errors.
func redact(req *http.Request) string {
	u := *req.URL
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
