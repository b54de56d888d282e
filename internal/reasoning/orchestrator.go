package reasoning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/evidence-cli/internal/metrics"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/pkg/lenientjson"
)

// DefaultPassTimeout bounds a single provider call.
const DefaultPassTimeout = 60 * time.Second

// Orchestrator runs the three analysis passes.
type Orchestrator struct {
	provider Provider
	timeout  time.Duration
}

// NewOrchestrator creates an Orchestrator. A nil provider makes every pass
// fail without a call.
func NewOrchestrator(p Provider, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultPassTimeout
	}
	return &Orchestrator{provider: p, timeout: timeout}
}

// ProviderName returns the provider's display name, or "AI" without one.
func (o *Orchestrator) ProviderName() string {
	if o.provider == nil {
		return "AI"
	}
	return o.provider.Name()
}

// RunPasses runs the keyword, competitor and strategy passes concurrently
// and always returns exactly three passes in that order. A failing pass is
// marked unsuccessful with an empty output and never affects the others.
func (o *Orchestrator) RunPasses(ctx context.Context, pc PassContext) []model.AnalysisPass {
	types := model.AllPassTypes()
	passes := make([]model.AnalysisPass, len(types))

	var g errgroup.Group
	for i, t := range types {
		g.Go(func() error {
			passes[i] = o.runPass(ctx, t, pc)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("reasoning: passes complete",
		zap.String("topic", pc.Topic),
		zap.Int("succeeded", model.SucceededPasses(passes)),
		zap.Int("total", len(passes)),
	)
	return passes
}

// runPass drives one pass through pending, awaiting_response, parsing and a
// terminal state. There are no retries.
func (o *Orchestrator) runPass(ctx context.Context, t model.PassType, pc PassContext) (pass model.AnalysisPass) {
	pass = model.AnalysisPass{Type: t, Output: map[string]any{}, State: model.PassPending}

	defer func() {
		if r := recover(); r != nil {
			pass = failed(t, model.PassCallFailed, fmt.Sprintf("panic: %v", r))
		}
		metrics.ReasoningPasses.WithLabelValues(string(t), string(pass.State)).Inc()
		if !pass.Success {
			zap.L().Warn("reasoning: pass failed",
				zap.String("pass", string(t)),
				zap.String("state", string(pass.State)),
				zap.String("error", pass.Error),
			)
		}
	}()

	if o.provider == nil {
		return failed(t, model.PassCallFailed, "no reasoning provider configured")
	}

	user := buildPrompt(t, pc)

	pass.State = model.PassAwaiting
	callCtx, cancel := context.WithTimeout(WithPhase(ctx, "pass_"+string(t)), o.timeout)
	defer cancel()

	text, err := o.provider.Complete(callCtx, systemPrompt, user)
	if err != nil {
		return failed(t, model.PassCallFailed, err.Error())
	}

	pass.State = model.PassParsing
	out, err := lenientjson.Parse(text)
	if err != nil {
		return failed(t, model.PassParseFailed, err.Error())
	}

	pass.Output = out
	pass.Success = true
	pass.State = model.PassSucceeded
	return pass
}

func failed(t model.PassType, state model.PassState, msg string) model.AnalysisPass {
	return model.AnalysisPass{
		Type:   t,
		Output: map[string]any{},
		State:  state,
		Error:  msg,
	}
}
