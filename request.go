package floodr

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cemoody/floodr/internal/jsonpool"
)

// Request is a single HTTP request descriptor submitted as part of a batch.
// A Request is immutable once submitted: construct one, pass it to Do, and
// discard it once its Response arrives.
type Request struct {
	// URL is the absolute HTTP/HTTPS URL to fetch. Required.
	URL string

	// Method is the HTTP method. Defaults to GET when empty.
	Method string

	// Headers maps header name to a single string value. Keys are treated
	// case-insensitively when checking for an existing Content-Type.
	Headers map[string]string

	// Params is appended to URL as a query string with repeated-key
	// (doseq) semantics: a []string value produces one "k=v" pair per
	// element.
	Params map[string][]string

	// JSON, when non-nil, is serialized as the request body and sets
	// Content-Type: application/json unless the caller already set one.
	// Mutually exclusive with Body and BodyText.
	JSON any

	// Body is a raw request body. Mutually exclusive with JSON and BodyText.
	Body []byte

	// BodyText is a UTF-8 request body. Mutually exclusive with JSON and Body.
	BodyText string

	// Timeout overrides the client's default per-request timeout when > 0.
	Timeout time.Duration

	// RequestID is echoed verbatim on the Response. NewRequest fills it
	// with a random UUIDv4; when a submitted Request leaves it empty, one
	// is generated at dispatch and appears only on the Response.
	RequestID string
}

// NewRequest builds a Request with a generated RequestID, mirroring the way
// callers elsewhere in this ecosystem stamp an idempotency key at
// construction time (uuid.New().String()).
func NewRequest(method, rawURL string) Request {
	return Request{
		URL:       rawURL,
		Method:    method,
		RequestID: uuid.New().String(),
	}
}

// ensureRequestIDs returns a copy of requests with a generated RequestID
// filled in for every entry that doesn't already have one, so a request_id
// exists even for a request that later fails normalization.
func ensureRequestIDs(requests []Request) []Request {
	out := make([]Request, len(requests))
	for i, r := range requests {
		if r.RequestID == "" {
			r.RequestID = uuid.New().String()
		}
		out[i] = r
	}
	return out
}

// normalizedRequest is what the engine actually executes: params already
// folded into the URL, body already serialized to bytes.
type normalizedRequest struct {
	url       string
	method    string
	header    http.Header
	body      []byte
	timeout   time.Duration
	requestID string
}

func (r Request) normalize() (normalizedRequest, error) {
	if r.URL == "" {
		return normalizedRequest{}, newConstructionError("url", "request url must not be empty")
	}
	if r.JSON != nil && (r.Body != nil || r.BodyText != "") {
		return normalizedRequest{}, newConstructionError("body", "at most one of json/body may be set")
	}
	if r.Timeout < 0 {
		return normalizedRequest{}, newConstructionError("timeout", "timeout must be positive when set")
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	requestID := r.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	fullURL, err := appendParams(r.URL, r.Params)
	if err != nil {
		return normalizedRequest{}, newConstructionError("params", "%v", err)
	}

	header := make(http.Header, len(r.Headers)+1)
	for k, v := range r.Headers {
		header.Set(k, v)
	}

	var body []byte
	switch {
	case r.JSON != nil:
		encoded, err := jsonpool.Marshal(r.JSON)
		if err != nil {
			return normalizedRequest{}, newConstructionError("json", "failed to encode json body: %v", err)
		}
		body = encoded
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
	case r.Body != nil:
		body = r.Body
	case r.BodyText != "":
		body = []byte(r.BodyText)
	}

	return normalizedRequest{
		url:       fullURL,
		method:    method,
		header:    header,
		body:      body,
		timeout:   r.Timeout,
		requestID: requestID,
	}, nil
}

// appendParams appends params to rawURL with doseq (repeated-key) semantics.
func appendParams(rawURL string, params map[string][]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	query := parsed.Query()
	for key, values := range params {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
