package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"signal-desk/config"
	"signal-desk/internal/dto"
	"signal-desk/internal/repository"
	"signal-desk/internal/service"
	"signal-desk/pkg/cache"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/metrics"
	"signal-desk/pkg/middleware"
	"signal-desk/pkg/notifier"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "s3cret"

func newTestServer(t *testing.T, opts ...func(*config.Config)) *echo.Echo {
	t.Helper()
	metrics.Register()

	cfg := &config.Config{
		API: config.API{APIKey: testAPIKey},
		Signal: config.Signal{
			Symbol:         "NEM",
			Trigger:        "breakout",
			Conviction:     8.7,
			NotifyCooldown: time.Minute,
			ScanConcurrent: 2,
		},
		Backtest: config.Backtest{
			DataDir:          t.TempDir(),
			Cash:             100000,
			Commission:       0.0005,
			Slippage:         0.001,
			PositionFraction: 0.1,
			MaxConcurrency:   2,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	repo := &repository.Repository{
		PortfolioRepo:    repository.NewMemoryPortfolioRepository(),
		TradeJournalRepo: repository.NewNoopTradeJournal(),
	}
	dispatcher := notifier.NewDispatcher(logger.Nop(), time.Second)
	svc := service.NewService(cfg, logger.Nop(), repo, cache.NewCache(time.Minute, time.Minute), dispatcher)

	e := echo.New()
	e.Use(middleware.Metrics(logger.Nop(), 0))
	NewHttpAPIHandler(context.Background(), cfg, logger.Nop(), e, goValidator.New(), svc).SetupRoutes()
	return e
}

func do(e *echo.Echo, method, path, body string, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if apiKey != "" {
		req.Header.Set(middleware.HeaderAPIKey, apiKey)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signal-desk is running")
}

func TestSignal(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantAction string
	}{
		{
			name:       "hardcoded pair buys",
			body:       `{"ticker":"nem","timeframe":"daily","trigger":"Breakout"}`,
			wantStatus: http.StatusOK,
			wantAction: dto.ActionBuy,
		},
		{
			name:       "other ticker holds",
			body:       `{"ticker":"GLD","timeframe":"weekly","trigger":"breakout","quantity":3}`,
			wantStatus: http.StatusOK,
			wantAction: dto.ActionHold,
		},
		{
			name:       "bad timeframe",
			body:       `{"ticker":"NEM","timeframe":"monthly","trigger":"breakout"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative quantity",
			body:       `{"ticker":"NEM","timeframe":"daily","trigger":"breakout","quantity":-1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"ticker":`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/signal", tt.body, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantAction, resp["action"])
			_, hasConviction := resp["conviction"]
			assert.Equal(t, tt.wantAction == dto.ActionBuy, hasConviction)
			assert.NotEmpty(t, resp["reason"])
		})
	}
}

func TestScore(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/score?ticker=nem", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ticker":"NEM","conviction":8.7}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/score", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeEndpointsRequireAPIKey(t *testing.T) {
	e := newTestServer(t)
	body := `{"ticker":"NEM","quantity":5}`

	for _, path := range []string{"/buy", "/sell", "/scan", "/backtest"} {
		rec := do(e, http.MethodPost, path, body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = do(e, http.MethodPost, path, body, "wrong")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestBuySellPortfolio(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/buy", `{"ticker":"nem","quantity":10}`, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ticker":"NEM","side":"BUY","quantity":10,"holding":10}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/sell", `{"ticker":"NEM","quantity":25}`, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ticker":"NEM","side":"SELL","quantity":25,"holding":0}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/sell", `{"ticker":"XYZ","quantity":1}`, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/buy", `{"ticker":"NEM","quantity":0}`, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/portfolio", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"positions":{"NEM":0}}`, rec.Body.String())
}

func TestScan(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/scan", `{"tickers":["GLD","nem"],"timeframe":"daily","trigger":"breakout"}`, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Signals, 2)
	assert.Equal(t, dto.ActionHold, resp.Signals[0].Action)
	assert.Equal(t, dto.ActionBuy, resp.Signals[1].Action)
	assert.Equal(t, 1, resp.Buys)

	rec = do(e, http.MethodPost, "/scan", `{"tickers":[],"timeframe":"daily","trigger":"breakout"}`, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBacktestMissingFile(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodPost, "/backtest", `{"file":"/nonexistent/bars.csv"}`, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "backtest data file not found")
	assert.NotContains(t, rec.Body.String(), "nonexistent")
}

func TestBacktestReadsOnlyFromDataDir(t *testing.T) {
	dataDir := t.TempDir()
	csv := "date,open,high,low,close,volume,signal_score\n" +
		"2024-01-01,100,101,99,100,1000,9\n" +
		"2024-01-02,100,103,99,102,1000,5\n" +
		"2024-01-03,102,106,101,105,1000,1\n" +
		"2024-01-04,105,106,100,104,1000,5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "bars.csv"), []byte(csv), 0o644))
	e := newTestServer(t, func(cfg *config.Config) { cfg.Backtest.DataDir = dataDir })

	// directory parts are dropped, so this resolves to <data_dir>/bars.csv
	body := `{"file":"../../elsewhere/bars.csv","entry_scores":[8],"exit_scores":[2]}`
	rec := do(e, http.MethodPost, "/backtest", body, testAPIKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Bars int `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 4, report.Bars)

	rec = do(e, http.MethodPost, "/backtest", `{"file":".."}`, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveDataFile(t *testing.T) {
	got, err := resolveDataFile("data", "/etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "passwd"), got)

	got, err = resolveDataFile("data", "")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = resolveDataFile("data", "/")
	assert.ErrorIs(t, err, errInvalidDataFile)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	e := newTestServer(t)
	rec := do(e, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestServer(t)
	do(e, http.MethodGet, "/score?ticker=NEM", "", "")

	rec := do(e, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/score",status="200"}`)
}
