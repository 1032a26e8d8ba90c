package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeComparer scripts engine behavior per test.
type fakeComparer struct {
	compareFn func(req domain.ComparisonRequest) domain.ComparisonResult
	batchFn   func(reqs []domain.ComparisonRequest) ([]domain.BatchResult, domain.BatchStats, error)
}

func (f *fakeComparer) Compare(_ context.Context, req domain.ComparisonRequest, _, _ domain.AnswerSource) domain.ComparisonResult {
	return f.compareFn(req)
}

func (f *fakeComparer) CompareBatch(_ context.Context, reqs []domain.ComparisonRequest) ([]domain.BatchResult, domain.BatchStats, error) {
	return f.batchFn(reqs)
}

type fakeCatalog struct {
	models       map[string]domain.ModelDescriptor
	defaultModel string
	health       ports.CatalogHealth
}

func (c *fakeCatalog) ActiveModels() []string {
	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	return ids
}

func (c *fakeCatalog) Model(id string) (domain.ModelDescriptor, bool) {
	descriptor, ok := c.models[id]
	return descriptor, ok
}

func (c *fakeCatalog) Provider(string) (domain.ProviderDescriptor, bool) {
	return domain.ProviderDescriptor{}, false
}

func (c *fakeCatalog) DefaultModel() string        { return c.defaultModel }
func (c *fakeCatalog) Refresh() bool               { return true }
func (c *fakeCatalog) Health() ports.CatalogHealth { return c.health }

func newTestRouter(comparer Comparer) *gin.Engine {
	catalog := &fakeCatalog{
		models: map[string]domain.ModelDescriptor{
			"llama-4-maverick": {ID: "llama-4-maverick", Provider: "openrouter"},
		},
		defaultModel: "llama-4-maverick",
		health:       ports.CatalogHealth{Status: "healthy", ConfigLoaded: true},
	}
	return NewRouter(New(comparer, catalog, slog.New(slog.DiscardHandler)))
}

func successComparer() *fakeComparer {
	return &fakeComparer{
		compareFn: func(req domain.ComparisonRequest) domain.ComparisonResult {
			return domain.ComparisonResult{
				Question:         req.Question,
				AnswerA:          req.AnswerA,
				AnswerB:          req.AnswerB,
				ModelAName:       req.ModelAName,
				ModelBName:       req.ModelBName,
				Verdict:          domain.FirstWins(),
				Reasoning:        "A is better",
				JudgeModel:       "llama-4-maverick",
				ExecutionSeconds: 0.5,
				CreatedAt:        time.Now().UTC(),
			}
		},
	}
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleCompare(t *testing.T) {
	router := newTestRouter(successComparer())

	rec := postJSON(router, "/api/v1/compare", gin.H{
		"input":        "what is Go",
		"response_a":   "a language",
		"response_b":   "a board game",
		"model_a_name": "model-one",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.BetterResponse)
	assert.Equal(t, "A is better", resp.JudgeReasoning)
	assert.Equal(t, "llama-4-maverick", resp.JudgeModelUsed)
	assert.Equal(t, "what is Go", resp.Input)
	assert.Equal(t, "model-one", resp.ModelAName)
	assert.Equal(t, 0.5, resp.ExecutionTime)
}

func TestHandleCompareValidation(t *testing.T) {
	router := newTestRouter(successComparer())

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing input", body: gin.H{"response_a": "a", "response_b": "b"}},
		{name: "missing response a", body: gin.H{"input": "q", "response_b": "b"}},
		{name: "missing response b", body: gin.H{"input": "q", "response_a": "a"}},
		{name: "empty body", body: gin.H{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(router, "/api/v1/compare", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestHandleCompareTimeout(t *testing.T) {
	comparer := &fakeComparer{
		compareFn: func(req domain.ComparisonRequest) domain.ComparisonResult {
			return domain.ComparisonResult{
				Question:   req.Question,
				Verdict:    domain.TimeoutVerdict(30 * time.Second),
				JudgeModel: "llama-4-maverick",
			}
		},
	}
	router := newTestRouter(comparer)

	rec := postJSON(router, "/api/v1/compare", gin.H{
		"input": "q", "response_a": "a", "response_b": "b",
	})

	require.Equal(t, http.StatusRequestTimeout, rec.Code)

	var resp ComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TIMEOUT - Excedeu 30s", resp.BetterResponse)
}

func TestHandleCompareBatch(t *testing.T) {
	comparer := &fakeComparer{
		batchFn: func(reqs []domain.ComparisonRequest) ([]domain.BatchResult, domain.BatchStats, error) {
			results := make([]domain.BatchResult, len(reqs))
			for i, req := range reqs {
				results[i] = domain.BatchResult{
					ID: fmt.Sprintf("id-%d", i),
					ComparisonResult: domain.ComparisonResult{
						Question:   req.Question,
						AnswerA:    req.AnswerA,
						AnswerB:    req.AnswerB,
						Verdict:    domain.FirstWins(),
						JudgeModel: "llama-4-maverick",
					},
				}
			}
			return results, domain.ComputeBatchStats(results), nil
		},
	}
	router := newTestRouter(comparer)

	body := gin.H{"comparisons": []gin.H{
		{"input": "q1", "response_a": "a1", "response_b": "b1"},
		{"input": "q2", "response_a": "a2", "response_b": "b2"},
	}}
	rec := postJSON(router, "/api/v1/compare/batch", body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.TotalComparisons)
	assert.Equal(t, 2, resp.Successful)
	assert.Equal(t, 2, resp.ModelAWins)
	assert.Equal(t, "A", resp.BestModel)
	assert.Equal(t, "id-0", resp.Results[0].ID)
	assert.Equal(t, "q1", resp.Results[0].Input)
}

func TestHandleCompareBatchSize(t *testing.T) {
	router := newTestRouter(successComparer())

	item := gin.H{"input": "q", "response_a": "a", "response_b": "b"}

	t.Run("single item rejected", func(t *testing.T) {
		rec := postJSON(router, "/api/v1/compare/batch", gin.H{"comparisons": []gin.H{item}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("six items rejected", func(t *testing.T) {
		items := make([]gin.H, 6)
		for i := range items {
			items[i] = item
		}
		rec := postJSON(router, "/api/v1/compare/batch", gin.H{"comparisons": items})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("empty rejected", func(t *testing.T) {
		rec := postJSON(router, "/api/v1/compare/batch", gin.H{"comparisons": []gin.H{}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleModels(t *testing.T) {
	router := newTestRouter(successComparer())

	t.Run("list", func(t *testing.T) {
		rec := getPath(router, "/api/v1/models")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "llama-4-maverick", resp["default_model"])
		assert.Equal(t, float64(1), resp["total_count"])
	})

	t.Run("known model", func(t *testing.T) {
		rec := getPath(router, "/api/v1/models/llama-4-maverick")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown model", func(t *testing.T) {
		rec := getPath(router, "/api/v1/models/ghost-model")
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp, "available_models")
	})
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(successComparer())

	t.Run("basic", func(t *testing.T) {
		rec := getPath(router, "/api/v1/health")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp["status"])
		assert.Equal(t, Version, resp["version"])
	})

	t.Run("detailed", func(t *testing.T) {
		rec := getPath(router, "/api/v1/health/detailed")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp, "uptime_seconds")
		assert.Contains(t, resp, "checks")
	})
}

func TestHandleRoot(t *testing.T) {
	router := newTestRouter(successComparer())

	rec := getPath(router, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "endpoints")
}

func TestRecoveryMiddleware(t *testing.T) {
	comparer := &fakeComparer{
		compareFn: func(domain.ComparisonRequest) domain.ComparisonResult {
			panic("engine blew up")
		},
	}
	router := newTestRouter(comparer)

	rec := postJSON(router, "/api/v1/compare", gin.H{
		"input": "q", "response_a": "a", "response_b": "b",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
