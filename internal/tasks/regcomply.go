package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultForwardTimeout = 30 * time.Second

// webhookSecretHeader authenticates forwarded tasks with RegComply.
const webhookSecretHeader = "X-Webhook-Secret"

// RegComplyTask is the payload shape the RegComply task webhook accepts.
type RegComplyTask struct {
	Organization string        `json:"organization"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       string        `json:"status"`
	Risk         string        `json:"risk"`
	DueDate      string        `json:"dueDate"`
	Standards    []string      `json:"standards"`
	RegulationID string        `json:"regulationId"`
	Instructions []Instruction `json:"instructions"`
}

// ForwarderConfig configures the RegComply webhook client.
type ForwarderConfig struct {
	// URL is the RegComply task-creation endpoint. Empty disables
	// forwarding entirely.
	URL string

	// Secret, when set, is sent in the X-Webhook-Secret header.
	Secret string

	// Timeout bounds each delivery attempt. Defaults to 30s.
	Timeout time.Duration
}

// Forwarder delivers generated tasks to the RegComply platform.
type Forwarder struct {
	cfg    ForwarderConfig
	client *http.Client
	logger *zap.Logger
}

// NewForwarder creates a Forwarder.
func NewForwarder(cfg ForwarderConfig, logger *zap.Logger) *Forwarder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultForwardTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forwarder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Enabled reports whether a RegComply endpoint is configured.
func (f *Forwarder) Enabled() bool {
	return f.cfg.URL != ""
}

// Send delivers one task to RegComply. Any non-2xx status is an error.
func (f *Forwarder) Send(ctx context.Context, task RegComplyTask) error {
	if !f.Enabled() {
		return fmt.Errorf("regcomply url not configured")
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.cfg.Secret != "" {
		req.Header.Set(webhookSecretHeader, f.cfg.Secret)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver task: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("regcomply returned status %d", resp.StatusCode)
	}
	return nil
}
