package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nmorell/weatherfacade/internal/apierr"
	"github.com/nmorell/weatherfacade/internal/observability"
)

// userAgent identifies this facade to the provider.
const userAgent = "weather-facade/1.0"

// locationNotFoundMarker is the phrase the provider embeds in the 400 error
// body when the q parameter matched no location.
const locationNotFoundMarker = "No matching location found"

// Caller issues one provider round trip and classifies the outcome.
// Every error returned is an *apierr.Error.
type Caller interface {
	Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error)
}

// Client calls the provider over HTTP. Each Get is exactly one round trip:
// no retries, no caching.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient validates the key and builds an HTTP client with a connect
// deadline shorter than the total deadline.
func NewClient(apiKey, baseURL string, connectTimeout, totalTimeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("upstream: API key is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("upstream: invalid base URL: %w", err)
	}

	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: totalTimeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connectTimeout,
			},
		},
	}, nil
}

// Get performs one GET against baseURL/endpoint with the given parameters and
// classifies the response. The API key is appended here; params is not
// mutated, and the key never appears in returned errors.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	start := time.Now()

	req, err := c.buildRequest(ctx, endpoint, params)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, apierr.ConnectionFailure("failed to build provider request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.UpstreamCallDuration.WithLabelValues(endpoint, "error").Observe(duration)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.UpstreamCallDuration.WithLabelValues(endpoint, status).Observe(duration)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.ConnectionFailure("failed to read provider response")
	}

	return classifyResponse(resp.StatusCode, body, params)
}

// classifyResponse maps a provider response to a payload or exactly one
// taxonomy kind, evaluated in contract order.
func classifyResponse(statusCode int, body []byte, params url.Values) (json.RawMessage, error) {
	switch {
	case statusCode == http.StatusOK:
		if !json.Valid(body) {
			return nil, apierr.InvalidParameter("response", "body", map[string]any{
				"reason": "malformed upstream payload",
			})
		}
		return json.RawMessage(body), nil

	case statusCode == http.StatusUnauthorized:
		return nil, apierr.AuthenticationFailure()

	case statusCode == http.StatusBadRequest:
		message := upstreamErrorMessage(body)
		if strings.Contains(message, locationNotFoundMarker) {
			return nil, apierr.LocationNotFound(params.Get("q"))
		}
		return nil, apierr.InvalidParameter("request", params.Encode(), map[string]any{
			"response": message,
		})

	case statusCode == http.StatusTooManyRequests:
		return nil, apierr.RateLimited()

	case statusCode >= http.StatusInternalServerError:
		return nil, apierr.UpstreamUnavailable()

	default:
		return nil, apierr.UnexpectedUpstreamStatus(statusCode)
	}
}

// upstreamErrorMessage extracts error.message from a provider error body.
func upstreamErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return "Invalid request parameters"
	}
	return payload.Error.Message
}

// classifyTransportError converts a transport-level failure to the taxonomy.
// Raw transport errors never propagate past this package.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.Timeout()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierr.Timeout()
	}
	return apierr.ConnectionFailure("")
}

func (c *Client) buildRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if corrID := correlationIDFromContext(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}
	return req, nil
}

func correlationIDFromContext(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
