package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondscreen/internal/config"
	"bondscreen/internal/shared/testutil"
)

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	app, err := New(cfg, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(app.DatasetCache.Stop)
	return app
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	app := newTestApplication(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Services.Bond)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"health", http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{"readiness", http.MethodGet, "/api/health/ready", http.StatusOK, `"dataset_cache"`},
		{"liveness", http.MethodGet, "/api/health/live", http.StatusOK, `"alive"`},
		{"version", http.MethodGet, "/api/version", http.StatusOK, config.AppName},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, `"/errors/not-found"`},
		{"unknown dataset", http.MethodGet, "/api/datasets/0123456789abcdef", http.StatusNotFound, `"DATASET_NOT_FOUND"`},
		{"wrong method", http.MethodDelete, "/api/health", http.StatusMethodNotAllowed, `"/errors/method-not-allowed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app.Router, tt.method, tt.path, "", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestApplication_ScreeningFlow(t *testing.T) {
	app := newTestApplication(t, nil)

	rec := do(t, app.Router, http.MethodPost, "/api/datasets/sample", "", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loaded struct {
		Data struct {
			ID   string `json:"id"`
			Rows int    `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	assert.Equal(t, 17, loaded.Data.Rows)
	id := loaded.Data.ID

	rec = do(t, app.Router, http.MethodPost, "/api/datasets/sample", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("filter all", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodPost, "/api/datasets/"+id+"/filter", "application/json", `{"include_records":false}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"matched":17`)
		assert.NotContains(t, rec.Body.String(), `"records"`)
	})

	t.Run("empty rating selection", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodPost, "/api/datasets/"+id+"/filter", "application/json", `{"criteria":{"credit_ratings":[]}}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"matched":0`)
	})

	t.Run("groups", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodGet, "/api/datasets/"+id+"/groups?by=risk_level", "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"count":4`)
	})

	t.Run("export", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodPost, "/api/datasets/"+id+"/export", "application/json", `{"columns":["ISIN"]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "17", rec.Header().Get("X-Export-Rows"))
		assert.Equal(t, 18, strings.Count(rec.Body.String(), "\n"))
	})

	t.Run("bond details", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodGet, "/api/datasets/"+id+"/bonds/INE07HK07791", "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "KRAZYBEE SERVICES PRIVATE LIMITED")
	})

	t.Run("metrics", func(t *testing.T) {
		rec := do(t, app.Router, http.MethodGet, "/metrics", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dataset_loads")
		assert.Contains(t, rec.Body.String(), "dataset_cache_hits")
	})
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.RPS = 0.001
		cfg.Security.RateLimit.Burst = 1
	})

	first := do(t, app.Router, http.MethodGet, "/api/health", "", "")
	second := do(t, app.Router, http.MethodGet, "/api/health", "", "")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

func TestApplication_CORS(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.AllowedOrigins = []string{"http://screener.local"}
	})

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", "http://screener.local", "http://screener.local"},
		{"foreign origin", "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/datasets/sample", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		})
	}
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, nil)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	resp, err := http.Get(fmt.Sprintf("http://%s/api/health", app.Addr()))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, ctx.Err())

	_, err = http.Get(fmt.Sprintf("http://%s/api/health", app.Addr()))
	assert.Error(t, err)
}

func TestApplication_Start_AddressInUse(t *testing.T) {
	first := newTestApplication(t, nil)
	first.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, first.Start(ctx, cancel))
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := newTestApplication(t, nil)
	second.Server.Addr = first.Addr()

	err := second.Start(ctx, cancel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
