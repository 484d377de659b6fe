// Package llm is the completion-provider adapter. The rest of the system only
// sees the Provider interface; concrete clients talk to hosted completion
// APIs over HTTP.
package llm

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Completion is one generated reply plus the provider's reported token usage.
// Token counts are zero when the provider does not report them.
type Completion struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// TokensUsed is the combined token count for the call.
func (c Completion) TokensUsed() int { return c.InputTokens + c.OutputTokens }

// Provider sends a system instruction and a user prompt to a hosted
// text-completion model. Implementations do not retry; transport, auth and
// rate-limit failures surface as a single error.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (Completion, error)
}

// Config selects and configures a concrete client.
type Config struct {
	Kind           string `yaml:"kind"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"-"`
	APIKeyEnv      string `yaml:"api_key_env"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

const (
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
)

// New builds a provider client for the configured kind.
func New(cfg Config) (Provider, error) {
	switch cfg.Kind {
	case "anthropic", "":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

// Usage is a snapshot of cumulative provider consumption.
type Usage struct {
	Calls        int64 `json:"call_count"`
	InputTokens  int64 `json:"total_input_tokens"`
	OutputTokens int64 `json:"total_output_tokens"`
}

// Metered wraps a Provider and counts calls and tokens across concurrent
// requests. Only successful completions are counted.
type Metered struct {
	inner        Provider
	calls        atomic.Int64
	inputTokens  atomic.Int64
	outputTokens atomic.Int64
}

func NewMetered(inner Provider) *Metered {
	return &Metered{inner: inner}
}

func (m *Metered) Complete(ctx context.Context, system, prompt string) (Completion, error) {
	c, err := m.inner.Complete(ctx, system, prompt)
	if err != nil {
		return Completion{}, err
	}
	m.calls.Add(1)
	m.inputTokens.Add(int64(c.InputTokens))
	m.outputTokens.Add(int64(c.OutputTokens))
	return c, nil
}

func (m *Metered) Usage() Usage {
	return Usage{
		Calls:        m.calls.Load(),
		InputTokens:  m.inputTokens.Load(),
		OutputTokens: m.outputTokens.Load(),
	}
}

var _ Provider = (*Metered)(nil)
