package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	fmerrors "github.com/felixgeelhaar/freementors/internal/errors"
	"github.com/felixgeelhaar/freementors/internal/log"
	"github.com/felixgeelhaar/freementors/internal/version"
)

// DefaultEndpoint is the GraphQL endpoint of a local development server
const DefaultEndpoint = "http://localhost:8000/graphql/"

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 4 << 20

// Client is the Free Mentors GraphQL API client.
// A Client is safe for concurrent use; WithToken returns a copy rather
// than mutating the receiver.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
	Token      string
	Logger     *log.Logger
}

// NewClient creates a new API client for the given GraphQL endpoint
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: log.DefaultLogger(),
	}
}

// WithToken returns a copy of the client that authenticates with token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.Token = token
	return &clone
}

// graphQLRequest is the POST body of every call
type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// graphQLError is one entry of a response error list
type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// graphQLResponse is the envelope of every response
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// do executes one GraphQL operation and decodes its data into target.
//
// Outcomes are classified as:
//   - populated error list: protocol error carrying the joined messages
//   - network failure or non-2xx without an error list: transport error
//   - body that is not a GraphQL JSON envelope: malformed response error
func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, target any) error {
	body, err := json.Marshal(graphQLRequest{
		Query:         query,
		OperationName: operation,
		Variables:     variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.GetInfo().UserAgent())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	logger := c.logger().With("operation", operation, "request_id", requestID)
	start := time.Now()

	resp, err := c.httpClient().Do(req)
	if err != nil {
		logger.Debug("graphql request failed", "error", err.Error())
		return fmerrors.NewTransportError(c.Endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmerrors.NewTransportError(c.Endpoint, fmt.Errorf("failed to read response: %w", err))
	}

	logger.Debug("graphql response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var envelope graphQLResponse
	decodeErr := json.Unmarshal(raw, &envelope)

	if decodeErr == nil && len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			if e.Message != "" {
				messages = append(messages, e.Message)
			}
		}
		return fmerrors.NewProtocolError(messages)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmerrors.NewTransportError(c.Endpoint,
			fmt.Errorf("request failed with status %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	if decodeErr != nil {
		return fmerrors.NewMalformedResponseError("body is not JSON", decodeErr)
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmerrors.NewMalformedResponseError("response has no data", nil)
	}

	if target != nil {
		if err := json.Unmarshal(envelope.Data, target); err != nil {
			return fmerrors.NewMalformedResponseError(fmt.Sprintf("cannot decode %s data", operation), err)
		}
	}

	return nil
}

const pingQuery = `query Ping { __typename }`

// Ping checks that the endpoint answers GraphQL. No token is needed.
func (c *Client) Ping(ctx context.Context) error {
	var data struct {
		Typename string `json:"__typename"`
	}
	if err := c.do(ctx, "Ping", pingQuery, nil, &data); err != nil {
		return err
	}
	if data.Typename == "" {
		return fmerrors.NewMalformedResponseError("ping returned no type name", nil)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.DefaultLogger()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Result is the {success, message} payload shared by most mutations
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Err converts an unsuccessful result into a rejected error
func (r *Result) Err() error {
	if r == nil {
		return fmerrors.NewMalformedResponseError("missing result", nil)
	}
	if !r.Success {
		return fmerrors.NewRejectedError(r.Message)
	}
	return nil
}

// missingField reports a null top-level field in an otherwise valid response
func missingField(field string) error {
	return fmerrors.NewMalformedResponseError(fmt.Sprintf("missing %s in response", field), nil)
}
