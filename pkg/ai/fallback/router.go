// Package fallback asks a generative model for an intent when the rule chain
// could not produce a confident one. Every path returns a well-formed result.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/pkg/ai/policy"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/classifier"
	"ai-scheduler-be/pkg/llm"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Completer is the model transport: one prompt in, raw text out
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// FromProvider adapts an llm.LLMProvider to a Completer
func FromProvider(p llm.LLMProvider, opts ...llm.Option) Completer {
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
	})
}

type Config struct {
	Timeout      time.Duration
	Retries      int
	Threshold    float64
	HistoryTurns int
}

func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second, Retries: 1, Threshold: 0.5, HistoryTurns: 6}
}

type Router struct {
	completer Completer
	cfg       Config
	validate  *validator.Validate
	log       logger.ILogger
	tracer    trace.Tracer
}

func NewRouter(completer Completer, cfg Config, log logger.ILogger) *Router {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Router{
		completer: completer,
		cfg:       cfg,
		validate:  validator.New(),
		log:       log,
		tracer:    otel.Tracer("ai-scheduler-be/fallback"),
	}
}

// ShouldInvoke reports whether the rule result should be handed to the model.
// A confirmation record keeps the model out entirely: the chain has already
// re-prompted for it.
func (r *Router) ShouldInvoke(rule *intent.Result, ctx classifier.Context) bool {
	if r == nil || r.completer == nil {
		return false
	}
	if active := ctx.Active(); active != nil && active.Kind().IsConfirmation() {
		return false
	}
	return rule.IsUnknown() || rule.Confidence < r.cfg.Threshold
}

// Resolve returns the model's narrowed result, or the safe fallback. The error
// says why the model's answer was not used and is for logging only; a
// cancelled ctx is reported as ctx.Err().
func (r *Router) Resolve(ctx context.Context, raw string, cctx classifier.Context, rule *intent.Result) (*intent.Result, error) {
	ctx, span := r.tracer.Start(ctx, "fallback.Resolve")
	defer span.End()
	if rule != nil {
		span.SetAttributes(attribute.String("intent.rule", string(rule.Intent)))
	}

	active := cctx.Active()
	text, err := r.complete(ctx, BuildPrompt(raw, cctx, r.cfg.HistoryTurns))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return r.fail(span, raw, rule, err)
	}

	plan, err := ParsePlan(text)
	if err == nil {
		err = Validate(r.validate, plan)
	}
	if err != nil {
		return r.fail(span, raw, rule, err)
	}

	name := intent.Name(plan.Intent)
	span.SetAttributes(attribute.String("intent.proposed", plan.Intent))
	// names off the allow-list fail like a malformed reply, except the ones
	// the gate rewrites into a question
	if entry, known := intent.Lookup(name); !known || (!entry.AIAllowed && !policy.Contained(name)) {
		return r.fail(span, raw, rule, fmt.Errorf("%w: %w %q", ErrSchemaInvalid, ErrNotAllowed, name))
	}

	d := policy.Evaluate(name, active, plan.RequiresConfirm)
	if !d.Allowed {
		r.log.Info("FALLBACK", "Plan rejected by policy", map[string]interface{}{
			"intent": plan.Intent,
			"reason": d.BlockReason,
		})
		span.SetAttributes(attribute.String("policy.block_reason", d.BlockReason))
		return rejected(raw, d), fmt.Errorf("%w: %s", ErrRejected, d.BlockReason)
	}

	res := narrow(raw, plan, active, d)
	span.SetAttributes(attribute.String("intent.result", string(res.Intent)))
	r.log.Debug("FALLBACK", "Plan accepted", map[string]interface{}{
		"intent":           plan.Intent,
		"confidence":       res.Confidence,
		"requires_confirm": res.RequiresConfirm,
	})
	return res, nil
}

func (r *Router) fail(span trace.Span, raw string, rule *intent.Result, err error) (*intent.Result, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	level := r.log.Warn
	if errors.Is(err, context.Canceled) {
		level = r.log.Debug
	}
	level("FALLBACK", "Falling back to rule result", map[string]interface{}{
		"error": err.Error(),
	})
	return safeFallback(raw, rule), err
}

// complete calls the model with a per-attempt timeout, retrying transport
// failures up to cfg.Retries times
func (r *Router) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		text, err := r.completer.Complete(callCtx, prompt)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		r.log.Warn("FALLBACK", "Model call failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: %v", ErrTransport, lastErr)
}
