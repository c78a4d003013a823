package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Config holds completion client settings.
type Config struct {
	// Provider selects the wire protocol: "openai" (any OpenAI-compatible
	// endpoint) or "azure" (Azure OpenAI deployments).
	Provider string
	// BaseURL is the API endpoint. For azure this is the resource endpoint
	// and Model names the deployment.
	BaseURL string
	APIKey  string
	Model   string
	// APIVersion applies to the azure provider only.
	APIVersion string
	// Timeout bounds every completion call. Zero disables the bound.
	Timeout time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	switch c.Provider {
	case "openai", "azure":
		return nil
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// Client is a Completer backed by langchaingo's OpenAI client.
type Client struct {
	llm     *openai.LLM
	timeout time.Duration
}

var _ Completer = (*Client)(nil)

// New creates a completion client with the given configuration.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless local endpoints.
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	}
	if cfg.Provider == "azure" {
		opts = append(opts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(cfg.APIVersion),
		)
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return &Client{llm: client, timeout: cfg.Timeout}, nil
}

// Complete issues one chat completion call and returns the trimmed reply
// text. The configured timeout bounds the call regardless of the caller's
// context.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.User))

	var callOpts []llms.CallOption
	if req.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := c.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	reply := strings.TrimSpace(resp.Choices[0].Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
