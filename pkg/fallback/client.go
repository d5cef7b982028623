// Package fallback calls the external suggestion service used when no rule
// matches a query. The engine never calls it; transports do, under their
// own timeout.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bastiangx/tripserve/internal/metrics"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrDisabled is returned when no service URL is configured.
	ErrDisabled = errors.New("fallback service not configured")
	// ErrInvalidResponse is returned when the service answers with a body
	// that doesn't have the response shape.
	ErrInvalidResponse = errors.New("invalid fallback response")
)

// DefaultTimeout bounds a call when the caller sets none.
const DefaultTimeout = 3 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

const responseSchema = `{
  "type": "object",
  "required": ["suggestions"],
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text": {"type": "string"},
          "entity_type": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "selectable": {"type": "boolean"},
          "is_placeholder": {"type": "boolean"}
        }
      }
    },
    "intent": {"type": ["string", "null"]},
    "next_slot": {"type": ["string", "null"]},
    "source": {"type": "string"},
    "latency_ms": {"type": "number"}
  }
}`

// Client posts requests to the fallback service.
type Client struct {
	url    string
	http   *http.Client
	schema *gojsonschema.Schema
}

// New returns a client for url. An empty url gives a disabled client whose
// Suggest always fails with ErrDisabled.
func New(url string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	return &Client{
		url:    strings.TrimSpace(url),
		http:   &http.Client{Timeout: timeout},
		schema: schema,
	}, nil
}

// Enabled reports whether a service URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// Suggest sends req to the service and returns its response tagged with
// the fallback source.
func (c *Client) Suggest(ctx context.Context, req model.Request) (model.Response, error) {
	if !c.Enabled() {
		return model.Response{}, ErrDisabled
	}
	start := time.Now()

	resp, err := c.call(ctx, req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrInvalidResponse) {
			outcome = "invalid"
		}
		metrics.FallbackCalls.WithLabelValues(outcome).Inc()
		return model.Response{}, err
	}
	metrics.FallbackCalls.WithLabelValues("ok").Inc()

	resp.Source = model.SourceFallback
	resp.LatencyMS = float64(time.Since(start).Microseconds()) / 1000
	if resp.Suggestions == nil {
		resp.Suggestions = []model.Suggestion{}
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, req model.Request) (model.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.Response{}, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.Response{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return model.Response{}, fmt.Errorf("fallback request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBody))
	if err != nil {
		return model.Response{}, fmt.Errorf("read fallback response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return model.Response{}, fmt.Errorf("fallback returned status %d", httpResp.StatusCode)
	}

	if err := c.validate(data); err != nil {
		return model.Response{}, err
	}
	var out model.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return out, nil
}

func (c *Client) validate(data []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		log.Debugf("fallback response rejected: %v", errs)
		return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(errs, "; "))
	}
	return nil
}
