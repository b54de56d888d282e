// Package reasoning runs the independent keyword, competitor and strategy
// analysis passes against a generative reasoning provider.
package reasoning

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/pkg/anthropic"
)

// Provider turns a system instruction and a user message into free text
// that is expected to contain a JSON object.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

type phaseKey struct{}

// WithPhase tags ctx with the pass name used for cost attribution.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey{}, phase)
}

func phaseFrom(ctx context.Context) string {
	if p, ok := ctx.Value(phaseKey{}).(string); ok {
		return p
	}
	return "reasoning"
}

// AnthropicConfig configures the Claude-backed provider.
type AnthropicConfig struct {
	Name        string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// AnthropicProvider implements Provider with the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	cfg    AnthropicConfig
}

// NewAnthropicProvider creates a provider. Empty fields get defaults.
func NewAnthropicProvider(client anthropic.Client, cfg AnthropicConfig) *AnthropicProvider {
	if cfg.Name == "" {
		cfg.Name = "Claude"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &AnthropicProvider{client: client, cfg: cfg}
}

// Name returns the display name used in provenance.
func (p *AnthropicProvider) Name() string { return p.cfg.Name }

// Complete sends one message and returns the response text. A response cut
// off at the token limit is still returned; the lenient parser recovers
// what it can.
func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	temp := p.cfg.Temperature
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		System:      anthropic.CachedSystem(system),
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "reasoning: complete")
	}

	phase := phaseFrom(ctx)
	resp.Usage.LogCost(p.cfg.Model, phase)
	if resp.Truncated() {
		zap.L().Warn("reasoning: response hit token limit",
			zap.String("phase", phase),
			zap.Int64("max_tokens", p.cfg.MaxTokens),
		)
	}

	text := resp.Text()
	if text == "" {
		return "", eris.New("reasoning: empty response")
	}
	return text, nil
}
