package reasoning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func TestAnthropicProvider_Complete(t *testing.T) {
	mc := &mockClient{}
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 4096 &&
			len(req.System) == 1 && req.System[0].Text == "sys" && req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 && req.Messages[0].Content == "user msg"
	})).Return(&anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: `{"ok":true}`}},
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}, nil)

	p := NewAnthropicProvider(mc, AnthropicConfig{Model: "claude-haiku-4-5-20251001"})
	assert.Equal(t, "Claude", p.Name())

	text, err := p.Complete(WithPhase(context.Background(), "pass_keyword"), "sys", "user msg")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	mc.AssertExpectations(t)
}

func TestAnthropicProvider_TruncatedStillReturned(t *testing.T) {
	mc := &mockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(&anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: `{"a": [1, 2`}},
		StopReason: "max_tokens",
	}, nil)

	p := NewAnthropicProvider(mc, AnthropicConfig{Name: "Claude Sonnet"})
	text, err := p.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, `{"a": [1, 2`, text)
	assert.Equal(t, "Claude Sonnet", p.Name())
}

func TestAnthropicProvider_Errors(t *testing.T) {
	mc := &mockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("529 overloaded")).Once()
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(&anthropic.MessageResponse{}, nil).Once()

	p := NewAnthropicProvider(mc, AnthropicConfig{})

	_, err := p.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reasoning: complete")

	_, err = p.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestPhaseFrom(t *testing.T) {
	assert.Equal(t, "reasoning", phaseFrom(context.Background()))
	assert.Equal(t, "pass_strategy", phaseFrom(WithPhase(context.Background(), "pass_strategy")))
}
