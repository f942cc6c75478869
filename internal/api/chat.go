package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/adsagent/internal/errors"
	"github.com/diogo/adsagent/internal/models"
)

// ErrClientClosed is the cause reported when a closed client is used
var ErrClientClosed = errors.New("client is closed")

// Chat sends one user turn to POST /api/chat and returns the reply.
// Every failure, whatever its cause, is an *errors.UnreachableError.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if req.ChatHistory == nil {
		req.ChatHistory = []models.HistoryEntry{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, apierrors.NewNetworkError(models.EndpointChat, fmt.Errorf("failed to encode request: %w", err))
	}

	data, err := c.do(ctx, http.MethodPost, models.EndpointChat, body)
	if err != nil {
		return nil, err
	}

	return parseChatResponse(data)
}

// Health calls GET /api/health
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	data, err := c.do(ctx, http.MethodGet, models.EndpointHealth, nil)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(data) {
		return nil, apierrors.NewParseError(models.EndpointHealth, "response is not valid JSON", string(data))
	}
	status := gjson.GetBytes(data, "status")
	if status.Type != gjson.String {
		return nil, apierrors.NewParseError(models.EndpointHealth, `missing string field "status"`, string(data))
	}

	return &models.HealthStatus{Status: status.String()}, nil
}

// parseChatResponse extracts the reply text. The body must be a JSON object
// with a string "response" field; anything else is malformed.
func parseChatResponse(data []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(data) {
		return nil, apierrors.NewParseError(models.EndpointChat, "response is not valid JSON", string(data))
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, apierrors.NewParseError(models.EndpointChat, "response is not a JSON object", string(data))
	}

	reply := parsed.Get("response")
	if reply.Type != gjson.String {
		return nil, apierrors.NewParseError(models.EndpointChat, `missing string field "response"`, string(data))
	}

	return &models.ChatResponse{Response: reply.String()}, nil
}

// do performs a request against endpoint and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	if c.IsClosed() {
		return nil, apierrors.NewNetworkError(endpoint, ErrClientClosed)
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, apierrors.NewNetworkError(endpoint, fmt.Errorf("failed to create request: %w", err))
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	logger := c.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("endpoint", endpoint).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		return nil, apierrors.NewNetworkError(endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.Body == nil {
		return nil, apierrors.NewParseError(endpoint, "empty response body", "")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("failed to read response body")
		return nil, apierrors.NewNetworkError(endpoint, fmt.Errorf("failed to read response: %w", err))
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.NewStatusError(resp.StatusCode, endpoint, string(data))
	}

	return data, nil
}
