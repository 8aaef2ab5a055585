package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/producerfilm/backend/internal/api/handlers"
	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/internal/importer"
	"github.com/producerfilm/backend/internal/intervals"
	"github.com/producerfilm/backend/internal/movies"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/metrics"
	"github.com/producerfilm/backend/pkg/redis"
)

type testEnv struct {
	router  http.Handler
	service *movies.Service
	metrics *metrics.Manager
}

func newTestEnv(t *testing.T, limiter *rate.Limiter) *testEnv {
	t.Helper()
	log := logger.NewNop()
	m := metrics.NewManager()

	cache := redis.NewCache(redis.Disabled(), "test")
	svc := movies.NewService(movies.NewMemoryRepository(), intervals.NewEngine(), cache, m, log, time.Minute)
	imp := importer.New(svc, nil, m, log)

	router := NewRouter(Handlers{
		Health:    handlers.NewHealthHandler(nil, svc, log),
		Movies:    handlers.NewMovieHandler(svc, log),
		Intervals: handlers.NewIntervalHandler(svc, log),
		Import:    handlers.NewImportHandler(imp, log),
	}, m, limiter, log)

	return &testEnv{router: router, service: svc, metrics: m}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) create(t *testing.T, year int, title, producers, winner string) handlers.MovieResponse {
	t.Helper()
	payload, err := json.Marshal(handlers.MovieRequest{Year: year, Title: title, Producers: producers, Winner: winner})
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/api/movies", bytes.NewReader(payload), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp handlers.MovieResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeIntervals(t *testing.T, rec *httptest.ResponseRecorder) contracts.WinnerIntervalResult {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var result contracts.WinnerIntervalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "producerfilm-api", body["service"])
	assert.Equal(t, float64(0), body["movies"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestWinnerInterval_Empty(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/movies/winner-interval", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"min":[],"max":[]}`, rec.Body.String())
}

func TestWinnerInterval_Scenarios(t *testing.T) {
	t.Run("shortest and longest", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.create(t, 1990, "A", "Joel Silver", "yes")
		env.create(t, 1991, "B", "Joel Silver", "yes")
		env.create(t, 2002, "C", "Matthew Vaughn", "yes")
		env.create(t, 2015, "D", "Matthew Vaughn", "yes")

		rec := env.do(t, http.MethodGet, "/api/movies/winner-interval", nil, "")
		assert.JSONEq(t, `{
			"min":[{"producer":"Joel Silver","interval":1,"previousWin":1990,"followingWin":1991}],
			"max":[{"producer":"Matthew Vaughn","interval":13,"previousWin":2002,"followingWin":2015}]
		}`, rec.Body.String())
	})

	t.Run("ties appear in both lists", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.create(t, 2000, "A1", "Producer A", "yes")
		env.create(t, 2001, "A2", "Producer A", "yes")
		env.create(t, 2010, "B1", "Producer B", "yes")
		env.create(t, 2011, "B2", "Producer B", "yes")

		result := decodeIntervals(t, env.do(t, http.MethodGet, "/api/movies/winner-interval", nil, ""))
		assert.Len(t, result.Min, 2)
		assert.Len(t, result.Max, 2)
	})

	t.Run("single win", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.create(t, 2000, "A", "Lonely Producer", "yes")
		env.create(t, 2004, "B", "Lonely Producer", "")

		result := decodeIntervals(t, env.do(t, http.MethodGet, "/api/movies/winner-interval", nil, ""))
		assert.True(t, result.IsEmpty())
	})
}

func TestMovieCRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	created := env.create(t, 1980, "Can't Stop the Music", "Allan Carr", "yes")
	assert.NotZero(t, created.ID)
	assert.Empty(t, created.Studios)

	path := "/api/movies/" + strconv.FormatInt(created.ID, 10)

	rec := env.do(t, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"studios"`)
	assert.Contains(t, rec.Body.String(), `"createdAt"`)

	rec = env.do(t, http.MethodPut, path, strings.NewReader(`{"title":"Renamed","studios":"EMI","winner":"yes"}`), "application/json")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, path, nil, "")
	var got handlers.MovieResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "EMI", got.Studios)
	assert.Equal(t, 1980, got.Year)

	rec = env.do(t, http.MethodDelete, path, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodPut, path, strings.NewReader(`{"title":"X"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMovieValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"blank title", http.MethodPost, "/api/movies", `{"year":2000,"title":"  "}`, http.StatusBadRequest},
		{"year too old", http.MethodPost, "/api/movies", `{"year":1899,"title":"Old"}`, http.StatusBadRequest},
		{"year too far ahead", http.MethodPost, "/api/movies", `{"year":3000,"title":"Future"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/movies", `{"year":`, http.StatusBadRequest},
		{"bad year filter", http.MethodGet, "/api/movies?year=abc", ``, http.StatusBadRequest},
		{"non numeric id", http.MethodGet, "/api/movies/abc", ``, http.StatusNotFound},
		{"zero id", http.MethodGet, "/api/movies/0", ``, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestListEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	env.create(t, 1980, "B", "P", "yes")
	env.create(t, 1980, "A", "P", "")
	env.create(t, 1981, "C", "P", "yes")

	var list []handlers.MovieResponse

	rec := env.do(t, http.MethodGet, "/api/movies", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 3)
	assert.Equal(t, 1981, list[0].Year)

	rec = env.do(t, http.MethodGet, "/api/movies?year=1980", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)

	rec = env.do(t, http.MethodGet, "/api/movies/winners", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = env.do(t, http.MethodGet, "/api/movies/statistics", nil, "")
	assert.JSONEq(t, `{"totalMovies":3,"totalWinners":2,"yearsCount":2,"minYear":1980,"maxYear":1981}`, rec.Body.String())
}

const uploadCSV = "year;title;studios;producers;winner\n" +
	"1990;First;S;Joel Silver;yes\n" +
	"1991;Second;S;Joel Silver;yes\n" +
	"bad;Broken;S;Joel Silver;yes\n"

func TestImport_RawBody(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/movies/import", strings.NewReader(uploadCSV), "text/csv")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Rows)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "line 4")

	result := decodeIntervals(t, env.do(t, http.MethodGet, "/api/movies/winner-interval", nil, ""))
	require.Len(t, result.Min, 1)
	assert.Equal(t, "Joel Silver", result.Min[0].Producer)
}

func TestImport_Multipart(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "movielist.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(uploadCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := env.do(t, http.MethodPost, "/api/movies/import", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "movielist.csv", resp.Source)
	assert.Equal(t, 2, resp.Imported)
}

func TestImport_MultipartTooLarge(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "huge.csv")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 33<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := env.do(t, http.MethodPost, "/api/movies/import", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	count, err := env.service.CountMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestImport_Rejections(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/movies/import", strings.NewReader("foo;bar\n"), "text/csv")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/movies/import?format=xlsx", strings.NewReader(uploadCSV), "text/csv")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/movies/import", strings.NewReader("--x--"), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, rate.NewLimiter(rate.Every(time.Hour), 2))

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/api/movies", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/movies", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// health is outside the limited subrouter
	rec = env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api/movies/winner-interval", nil, "")

	rec := env.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `producerfilm_http_requests_total{method="GET",route="/api/movies/winner-interval",status="200"} 1`)
	assert.Contains(t, body, `producerfilm_interval_cache_total{result="miss"} 1`)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestUnmatchedRequestsAreInstrumented(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = env.do(t, http.MethodPatch, "/api/movies/1", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	body := env.do(t, http.MethodGet, "/metrics", nil, "").Body.String()
	assert.Contains(t, body, `producerfilm_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `producerfilm_http_requests_total{method="PATCH",route="unmatched",status="405"} 1`)
}

func TestPanickingRouteIsCounted(t *testing.T) {
	m := metrics.NewManager()
	r := mux.NewRouter()
	r.HandleFunc("/explode/{id}", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := withMiddleware(r, m, logger.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode/7", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	metricsRec := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsRec.Body.String(),
		`producerfilm_http_requests_total{method="GET",route="/explode/{id}",status="500"} 1`)
}
