package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorandtest/adapters/memory"
	"gorandtest/adapters/rng"
	"gorandtest/app"
	"gorandtest/domain/randtest"
	"gorandtest/internal/config"
	"gorandtest/internal/errors"
	"gorandtest/internal/metrics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	service := app.NewRandTestService(
		memory.NewOutcomeRepository(),
		rng.NewPCGAdapter(),
		metrics.NewRecorder(reg),
		nil,
		config.RunConfig{
			Permutations:    1000,
			Alternative:     randtest.TwoSided,
			Workers:         1,
			TrimPercent:     20,
			MaxPermutations: 10000,
		},
	)
	return NewServer(service, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRunThenFetch(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/randtest",
		`{"group_a":[5,6],"group_b":[8,10],"systematic":true,"alternative":"two_sided"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created randtest.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 2, created.Hits)
	assert.Equal(t, 6, created.Permutations)
	require.NotNil(t, created.PValue)
	assert.InDelta(t, 1.0/3.0, *created.PValue, 1e-12)
	assert.Equal(t, "Systematic", created.Method)

	rec = do(t, s, http.MethodGet, "/api/runs/"+created.RunID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched randtest.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.RunID, fetched.RunID)

	rec = do(t, s, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []randtest.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(t, s, http.MethodGet, "/api/runs/"+created.RunID+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "0.333333")

	rec = do(t, s, http.MethodGet, "/api/runs/"+created.RunID+"/report?format=text", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Number of successes = 2")

	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "randtest_runs_total")
}

func TestRunErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/randtest", `{"group_a":`, http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown field", http.MethodPost, "/api/randtest", `{"group_a":[1],"group_b":[2],"colour":"red"}`, http.StatusBadRequest, errors.CodeInvalidInput},
		{"bad alternative", http.MethodPost, "/api/randtest", `{"group_a":[1],"group_b":[2],"alternative":"up"}`, http.StatusBadRequest, errors.CodeInvalidConfiguration},
		{"zero workers", http.MethodPost, "/api/randtest", `{"group_a":[1],"group_b":[2],"workers":0}`, http.StatusBadRequest, errors.CodeInvalidConfiguration},
		{"over budget", http.MethodPost, "/api/randtest", `{"group_a":[1],"group_b":[2],"permutations":20000}`, http.StatusBadRequest, errors.CodeInvalidConfiguration},
		{"bad run id", http.MethodGet, "/api/runs/nope", "", http.StatusBadRequest, errors.CodeInvalidInput},
		{"unknown run", http.MethodGet, "/api/runs/0190b7c6-5f1e-7cc1-9a0b-3c1d2e3f4a5b", "", http.StatusNotFound, errors.CodeNotFound},
		{"bad limit", http.MethodGet, "/api/runs?limit=-1", "", http.StatusBadRequest, errors.CodeInvalidInput},
		{"bad format", http.MethodGet, "/api/runs/0190b7c6-5f1e-7cc1-9a0b-3c1d2e3f4a5b/report?format=pdf", "", http.StatusBadRequest, errors.CodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
