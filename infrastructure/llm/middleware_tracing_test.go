package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// capturingCore records the request it receives so tests can inspect
// what the middleware passed through.
type capturingCore struct {
	stubCore
	lastCtx    context.Context
	lastPrompt string
	lastOpts   map[string]any
}

func (c *capturingCore) DoRequest(ctx context.Context, prompt string, opts map[string]any) (string, int, int, error) {
	c.lastCtx = ctx
	c.lastPrompt = prompt
	c.lastOpts = opts
	return c.stubCore.DoRequest(ctx, prompt, opts)
}

func TestTracingMiddleware_PassesThroughSuccess(t *testing.T) {
	core := &stubCore{model: "stub-model", responses: []string{"hello"}}
	wrapped := TracingMiddleware("test-service")(core)

	response, tokensIn, tokensOut, err := wrapped.DoRequest(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", response)
	assert.Equal(t, 10, tokensIn)
	assert.Equal(t, 5, tokensOut)
	assert.Equal(t, 1, core.callCount())
}

func TestTracingMiddleware_PassesThroughError(t *testing.T) {
	providerErr := errors.New("upstream failure")
	core := &stubCore{model: "stub-model", errs: []error{providerErr}}
	wrapped := TracingMiddleware("test-service")(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "prompt", nil)
	require.ErrorIs(t, err, providerErr)
	assert.Equal(t, 1, core.callCount())
}

func TestTracingMiddleware_PropagatesSpanContext(t *testing.T) {
	// The span must reach the wrapped implementation so downstream
	// middleware and providers attach to the same trace.
	core := &capturingCore{stubCore: stubCore{model: "stub-model"}}
	wrapped := TracingMiddleware("test-service")(core)

	opts := map[string]any{"temperature": 0.7}
	_, _, _, err := wrapped.DoRequest(context.Background(), "prompt", opts)
	require.NoError(t, err)

	assert.NotNil(t, trace.SpanFromContext(core.lastCtx))
	assert.Equal(t, "prompt", core.lastPrompt)
	assert.Equal(t, opts, core.lastOpts)
}

func TestTracingMiddleware_DelegatesModel(t *testing.T) {
	core := &stubCore{model: "stub-model"}
	wrapped := TracingMiddleware("test-service")(core)

	assert.Equal(t, "stub-model", wrapped.GetModel())
	wrapped.SetModel("other-model")
	assert.Equal(t, "other-model", wrapped.GetModel())
	assert.Equal(t, "other-model", core.GetModel())
}

func TestTracingMiddleware_WorksInChain(t *testing.T) {
	core := &stubCore{model: "stub-model"}
	chain := TracingMiddleware("test-service")(MetricsMiddleware(nil)(core))

	_, _, _, err := chain.DoRequest(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, core.callCount())
}
