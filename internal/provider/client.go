// Package provider performs single-shot chat-completion calls against
// OpenAI-compatible HTTP APIs.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/BiBoyang/AIvsAI/internal/config"
	"github.com/BiBoyang/AIvsAI/internal/session"
)

const temperature = 0.7

// Client sends chat-completion requests. It keeps no per-call state
// and is reused for both providers.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient builds a client. No request timeout is set: the only
// cancellation for an unresponsive provider is process interruption.
func NewClient(logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	return &Client{
		httpClient: &http.Client{},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// Complete sends messages to the provider described by cfg and
// returns the content of the first choice. One attempt, no retries;
// any non-2xx status carries the response body back verbatim.
func (c *Client) Complete(ctx context.Context, cfg config.Provider, messages []session.ChatMessage) (string, error) {
	ctx, span := c.tracer.Start(ctx, "chat_api_call")
	defer span.End()

	start := time.Now()

	jsonData, err := json.Marshal(Request{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", &Error{Provider: cfg.Name, Kind: KindTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &Error{Provider: cfg.Name, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Provider: cfg.Name, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Provider: cfg.Name, Kind: KindTransport, Err: err}
	}

	c.recordDuration(ctx, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("provider returned error status",
			"provider", cfg.Name, "status", resp.StatusCode)
		return "", &Error{Provider: cfg.Name, Kind: KindHTTPStatus, Status: resp.StatusCode, Body: string(body)}
	}

	var apiResp Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &Error{Provider: cfg.Name, Kind: KindMalformedResponse, Err: err}
	}

	if len(apiResp.Choices) == 0 {
		return "", &Error{Provider: cfg.Name, Kind: KindEmptyChoices}
	}

	c.logger.Info("chat completion succeeded",
		"provider", cfg.Name, "model", cfg.Model,
		"duration_ms", time.Since(start).Milliseconds())

	return apiResp.Choices[0].Message.Content, nil
}

func (c *Client) recordDuration(ctx context.Context, d time.Duration) {
	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(d.Milliseconds()))
	}
}
