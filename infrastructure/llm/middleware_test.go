package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockMetricsCollector records metrics for assertions.
type mockMetricsCollector struct {
	mu        sync.Mutex
	latencies map[string]time.Duration
	counters  map[string]float64
	gauges    map[string]float64
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		latencies: make(map[string]time.Duration),
		counters:  make(map[string]float64),
		gauges:    make(map[string]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies[fmt.Sprintf("%s:%s", operation, labels["status"])] = duration
}

func (m *mockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s:%s", metric, labels["status"])
	if tokenType, ok := labels["token_type"]; ok {
		key = fmt.Sprintf("%s:%s", metric, tokenType)
	}
	m.counters[key] += value
}

func (m *mockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metric] = value
}

func TestTimeoutMiddleware(t *testing.T) {
	mock := NewMockCoreLLM()
	mock.ResponseDelay = 200 * time.Millisecond

	wrapped := TimeoutMiddleware(20 * time.Millisecond)(mock)

	_, _, _, err := wrapped.DoRequest(context.Background(), "slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutMiddlewarePassesFastRequests(t *testing.T) {
	mock := NewMockCoreLLM()

	wrapped := TimeoutMiddleware(time.Second)(mock)

	response, tokensIn, tokensOut, err := wrapped.DoRequest(context.Background(), "fast", nil)
	require.NoError(t, err)
	assert.Equal(t, "test response", response)
	assert.Equal(t, 10, tokensIn)
	assert.Equal(t, 20, tokensOut)
}

func TestRateLimitMiddleware(t *testing.T) {
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(100), 1)(mock)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, _, _, err := wrapped.DoRequest(context.Background(), "paced", nil)
		require.NoError(t, err)
	}
	// Burst of 1 at 100 rps: the second and third calls wait ~10ms each.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, 3, mock.CallCount)
}

func TestRateLimitMiddlewareRespectsCancellation(t *testing.T) {
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(0.001), 1)(mock)

	// Drain the single burst token.
	_, _, _, err := wrapped.DoRequest(context.Background(), "first", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, _, err = wrapped.DoRequest(ctx, "second", nil)
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount)
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		setupErr   error
		wantStatus string
	}{
		{name: "success", wantStatus: "success"},
		{name: "generic error", setupErr: errors.New("boom"), wantStatus: "error"},
		{name: "timeout error", setupErr: NewProviderError("gateway", ErrorTypeTimeout, 0, "slow", context.DeadlineExceeded), wantStatus: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCoreLLM()
			mock.Error = tt.setupErr
			collector := newMockMetricsCollector()

			wrapped := MetricsMiddleware("gateway", collector)(mock)
			_, _, _, err := wrapped.DoRequest(context.Background(), "hello", nil)

			if tt.setupErr != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Contains(t, collector.latencies, "llm_request:"+tt.wantStatus)
			assert.Equal(t, 1.0, collector.counters["llm_requests_total:"+tt.wantStatus])

			if tt.setupErr == nil {
				assert.Equal(t, 10.0, collector.counters["llm_tokens_total:input"])
				assert.Equal(t, 20.0, collector.counters["llm_tokens_total:output"])
			} else {
				assert.NotContains(t, collector.counters, "llm_tokens_total:input")
			}
		})
	}
}

func TestTracingMiddlewarePassthrough(t *testing.T) {
	mock := NewMockCoreLLM()
	wrapped := TracingMiddleware("arbiter-test")(mock)

	response, tokensIn, tokensOut, err := wrapped.DoRequest(context.Background(), "traced", nil)
	require.NoError(t, err)
	assert.Equal(t, "test response", response)
	assert.Equal(t, 10, tokensIn)
	assert.Equal(t, 20, tokensOut)
	assert.Equal(t, "traced", mock.LastPrompt)

	mock.Error = errors.New("provider down")
	_, _, _, err = wrapped.DoRequest(context.Background(), "traced", nil)
	assert.Error(t, err)
}

func TestMiddlewareDelegatesModelAccess(t *testing.T) {
	for name, mw := range map[string]Middleware{
		"timeout":    TimeoutMiddleware(time.Second),
		"rate_limit": RateLimitMiddleware(rate.Inf, 1),
		"metrics":    MetricsMiddleware("test", newMockMetricsCollector()),
		"tracing":    TracingMiddleware("test"),
	} {
		t.Run(name, func(t *testing.T) {
			mock := NewMockCoreLLM()
			wrapped := mw(mock)

			assert.Equal(t, "test-model", wrapped.GetModel())
			wrapped.SetModel("other-model")
			assert.Equal(t, "other-model", wrapped.GetModel())
		})
	}
}
