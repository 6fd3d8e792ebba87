package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/filfund/pairrank/internal/domain"
	"github.com/filfund/pairrank/internal/ports"
)

var _ BudgetObserver = (*OTelBudgetObserver)(nil)

// OTelBudgetObserver implements observability for budget operations using
// OpenTelemetry tracing. It creates spans to track budget consumption,
// sets usage attributes, and records events for threshold warnings.
//
// A single instance serves every concurrent request behind a guard, so
// it holds no per-request state: each request's span rides in the
// context PreCheck returns and is recovered in PostCheck.
type OTelBudgetObserver struct {
	metrics ports.MetricsCollector
	model   string
}

// NewOTelBudgetObserver creates a budget observer that tags spans and
// metrics with the given judge model name.
func NewOTelBudgetObserver(metrics ports.MetricsCollector, model string) *OTelBudgetObserver {
	return &OTelBudgetObserver{metrics: metrics, model: model}
}

// PreCheck starts an OpenTelemetry span and records the budget state
// going into the request, including threshold warnings. The span travels
// in the returned context to the matching PostCheck.
func (o *OTelBudgetObserver) PreCheck(ctx context.Context, usage domain.Usage, budget Budget) context.Context {
	tracer := otel.Tracer("budget-guard")
	ctx, span := tracer.Start(ctx, "BudgetGuard.Request")

	o.addSpanAttributes(span, usage, budget)
	o.checkBudgetThresholds(span, usage, budget)
	return ctx
}

// PostCheck finalizes the request's span, records metrics, and handles
// any error conditions that occurred during the request.
func (o *OTelBudgetObserver) PostCheck(
	ctx context.Context,
	usage domain.Usage,
	budget Budget,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	o.addSpanAttributes(span, usage, budget)

	if o.metrics != nil {
		labels := o.createMetricLabels(budget)
		o.metrics.RecordLatency("judge_request", elapsed, labels)
	}

	if err != nil {
		if budgetErr, ok := err.(*domain.BudgetExceededError); ok {
			span.AddEvent("budget.exceeded", trace.WithAttributes(
				attribute.String("limit_type", budgetErr.LimitType),
				attribute.Int64("limit_value", budgetErr.Limit),
				attribute.Int64("used_value", budgetErr.Used),
			))
			span.SetStatus(codes.Error, "Budget limit exceeded")

			if o.metrics != nil {
				labels := o.createMetricLabels(budget)
				labels["limit_type"] = budgetErr.LimitType
				o.metrics.RecordCounter("budget_exceeded_total", 1, labels)
			}
		} else {
			span.SetStatus(codes.Error, err.Error())
		}
		return
	}

	span.AddEvent("budget.usage_tracked", trace.WithAttributes(
		attribute.Int64("tokens_consumed", usage.Tokens),
		attribute.Int64("calls_made", usage.Calls),
	))

	o.updateMetrics(usage, budget)
	span.SetStatus(codes.Ok, "Budget check completed successfully")
}

// addSpanAttributes sets span attributes for budget tracking: current
// usage, remaining budget, and the judge model.
func (o *OTelBudgetObserver) addSpanAttributes(span trace.Span, usage domain.Usage, budget Budget) {
	span.SetAttributes(
		attribute.String("budget.model", o.model),
		attribute.Int64("budget.tokens_used", usage.Tokens),
		attribute.Int64("budget.calls_made", usage.Calls),
	)

	if budget.MaxTokens > 0 {
		span.SetAttributes(
			attribute.Int64("budget.max_tokens", budget.MaxTokens),
			attribute.Int64("budget.remaining_tokens", budget.MaxTokens-usage.Tokens),
		)
	}

	if budget.MaxCalls > 0 {
		span.SetAttributes(
			attribute.Int64("budget.max_calls", budget.MaxCalls),
			attribute.Int64("budget.remaining_calls", budget.MaxCalls-usage.Calls),
		)
	}
}

// checkBudgetThresholds examines usage against warning thresholds and
// generates span events so operators can react before a run is cut off.
func (o *OTelBudgetObserver) checkBudgetThresholds(span trace.Span, usage domain.Usage, budget Budget) {
	const warningThreshold = 0.8
	const criticalThreshold = 0.9

	if budget.MaxTokens > 0 {
		usagePercentage := float64(usage.Tokens) / float64(budget.MaxTokens)
		if usagePercentage >= criticalThreshold {
			span.AddEvent("budget.threshold.critical", trace.WithAttributes(
				attribute.String("resource_type", "tokens"),
				attribute.Float64("usage_percentage", usagePercentage*100),
			))
		} else if usagePercentage >= warningThreshold {
			span.AddEvent("budget.threshold.warning", trace.WithAttributes(
				attribute.String("resource_type", "tokens"),
				attribute.Float64("usage_percentage", usagePercentage*100),
			))
		}
	}

	if budget.MaxCalls > 0 {
		usagePercentage := float64(usage.Calls) / float64(budget.MaxCalls)
		if usagePercentage >= criticalThreshold {
			span.AddEvent("budget.threshold.critical", trace.WithAttributes(
				attribute.String("resource_type", "calls"),
				attribute.Float64("usage_percentage", usagePercentage*100),
			))
		} else if usagePercentage >= warningThreshold {
			span.AddEvent("budget.threshold.warning", trace.WithAttributes(
				attribute.String("resource_type", "calls"),
				attribute.Float64("usage_percentage", usagePercentage*100),
			))
		}
	}
}

// updateMetrics sends current budget usage to the metrics collector.
func (o *OTelBudgetObserver) updateMetrics(usage domain.Usage, budget Budget) {
	if o.metrics == nil {
		return
	}

	labels := o.createMetricLabels(budget)
	o.metrics.RecordGauge("judge_tokens_used", float64(usage.Tokens), labels)
	o.metrics.RecordGauge("judge_calls_used", float64(usage.Calls), labels)

	if budget.MaxTokens > 0 {
		remaining := budget.MaxTokens - usage.Tokens
		o.metrics.RecordGauge("budget_remaining_tokens", float64(remaining), labels)
	}

	if budget.MaxCalls > 0 {
		remaining := budget.MaxCalls - usage.Calls
		o.metrics.RecordGauge("budget_remaining_calls", float64(remaining), labels)
	}
}

// createMetricLabels creates the standard set of metric labels required
// for observability.
func (o *OTelBudgetObserver) createMetricLabels(budget Budget) map[string]string {
	return map[string]string{
		"budget_limit": o.getBudgetLimitLabel(budget),
		"model":        o.model,
	}
}

// getBudgetLimitLabel creates a descriptive label for the current budget limits.
func (o *OTelBudgetObserver) getBudgetLimitLabel(budget Budget) string {
	if budget.MaxTokens > 0 && budget.MaxCalls > 0 {
		return "tokens_and_calls"
	} else if budget.MaxTokens > 0 {
		return "tokens_only"
	} else if budget.MaxCalls > 0 {
		return "calls_only"
	}
	return "unlimited"
}
