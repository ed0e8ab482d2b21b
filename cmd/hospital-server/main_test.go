package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/raycare/hospital/internal/config"
	"github.com/raycare/hospital/internal/domain/catalog"
	"github.com/raycare/hospital/migrations"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		LogLevel:       "disabled",
		CORSOrigins:    []string{"*"},
		BodyLimit:      "1M",
		RequestTimeout: 5 * time.Second,
		HorizonDays:    365,
		TimeZone:       "UTC",
		SeedConfig:     catalog.DefaultSeedConfig(),
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()
	srv, err := newServer(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func do(srv *server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, testConfig())
	assert.Equal(t, "memory", srv.backend)

	rec := do(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "memory", gjson.Get(rec.Body.String(), "backend").String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(srv, http.MethodGet, "/health/db", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "memory", gjson.Get(rec.Body.String(), "backend").String())
}

func TestServer_RegisterAndList(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := do(srv, http.MethodGet, "/doctors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doctors := gjson.Parse(rec.Body.String()).Array()
	require.Len(t, doctors, 3)
	imageID := doctors[0].Get("imageId").String()
	require.NotEmpty(t, imageID)

	body := `{"name":"Ada","condition":"breastcancer","imageId":"` + imageID + `"}`
	rec = do(srv, http.MethodPost, "/patients", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := gjson.Parse(rec.Body.String())
	assert.Equal(t, doctors[0].Get("id").String(), reg.Get("consultation.doctorId").String())
	assert.Equal(t, "/patients/"+reg.Get("id").String(), rec.Header().Get("Location"))

	rec = do(srv, http.MethodGet, "/consultations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Parse(rec.Body.String()).Array(), 1)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = do(srv, http.MethodGet, "/patients/"+reg.Get("id").String()+"/consultation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reg.Get("consultation.id").String(), gjson.Get(rec.Body.String(), "id").String())
}

func firstImage(t *testing.T, srv *server) string {
	t.Helper()
	rec := do(srv, http.MethodGet, "/images", "")
	require.Equal(t, http.StatusOK, rec.Code)
	id := gjson.Get(rec.Body.String(), "0.id").String()
	require.NotEmpty(t, id)
	return id
}

func register(t *testing.T, srv *server, name, condition, imageID string) gjson.Result {
	t.Helper()
	rec := do(srv, http.MethodPost, "/patients",
		`{"name":"`+name+`","condition":"`+condition+`","imageId":"`+imageID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return gjson.Parse(rec.Body.String())
}

// assertReadBackIdentical registers a patient followed by several others and
// checks both read paths return the consultation exactly as it was created.
func assertReadBackIdentical(t *testing.T, srv *server) gjson.Result {
	t.Helper()
	imageID := firstImage(t, srv)

	first := register(t, srv, "Ada", "breastcancer", imageID)
	want := first.Get("consultation").Raw
	require.NotEmpty(t, want)

	for i, condition := range []string{"flu", "headandneckcancer", "breastcancer", "flu", "breastcancer"} {
		register(t, srv, fmt.Sprintf("Patient %d", i), condition, imageID)
	}

	rec := do(srv, http.MethodGet, "/patients/"+first.Get("id").String()+"/consultation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, strings.TrimSpace(rec.Body.String()))

	rec = do(srv, http.MethodGet, "/consultations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := gjson.Get(rec.Body.String(), `#(id=="`+first.Get("consultation.id").String()+`")`)
	require.True(t, listed.Exists(), "consultation missing from listing")
	assert.Equal(t, want, listed.Raw)

	return first.Get("consultation")
}

func TestServer_ConsultationReadBackIsByteIdentical(t *testing.T) {
	srv := newTestServer(t, testConfig())
	assertReadBackIdentical(t, srv)
}

func TestServer_DatesRenderedInSchedulingZone(t *testing.T) {
	cfg := testConfig()
	cfg.TimeZone = "Europe/Stockholm"
	srv := newTestServer(t, cfg)
	loc, err := time.LoadLocation(cfg.TimeZone)
	require.NoError(t, err)

	cons := assertReadBackIdentical(t, srv)

	for _, field := range []string{"registrationDate", "consultationDate"} {
		raw := cons.Get(field).String()
		assert.False(t, strings.HasSuffix(raw, "Z"), "%s rendered in UTC: %s", field, raw)

		at, err := time.Parse(time.RFC3339Nano, raw)
		require.NoError(t, err)
		assert.Equal(t, at.In(loc).Format(time.RFC3339Nano), raw, "%s not in %s", field, loc)
		assert.Zero(t, at.Nanosecond()%1000, "%s finer than microseconds", field)
	}
}

func TestServer_RateLimitCoversRegistration(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.5
	cfg.RateLimitBurst = 2
	srv := newTestServer(t, cfg)
	// The image lookup spends the first token.
	imageID := firstImage(t, srv)

	register(t, srv, "Ada", "flu", imageID)
	rec := do(srv, http.MethodPost, "/patients", `{"name":"Bob","condition":"flu","imageId":"`+imageID+`"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestServer_RateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0
	srv := newTestServer(t, cfg)
	imageID := firstImage(t, srv)

	for i := 0; i < 50; i++ {
		register(t, srv, fmt.Sprintf("Patient %d", i), "flu", imageID)
	}
	assert.Empty(t, do(srv, http.MethodGet, "/rooms", "").Header().Get("X-RateLimit-Limit"))
}

func TestMigrationSource(t *testing.T) {
	assert.Equal(t, fs.FS(migrations.FS), migrationSource(""))

	dir := t.TempDir()
	src := migrationSource(dir)
	names, err := fs.Glob(src, "*.sql")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestServer_FluWithoutDoctorIsInfeasible(t *testing.T) {
	cfg := testConfig()
	cfg.GeneralPractitioners = 0
	srv := newTestServer(t, cfg)

	rec := do(srv, http.MethodGet, "/images", "")
	require.Equal(t, http.StatusOK, rec.Code)
	imageID := gjson.Get(rec.Body.String(), "0.id").String()

	rec = do(srv, http.MethodPost, "/patients", `{"name":"Bob","condition":"flu","imageId":"`+imageID+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(srv, http.MethodGet, "/patients", "")
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestServer_CatalogETag(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := do(srv, http.MethodGet, "/machines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=300")

	rec = do(srv, http.MethodGet, "/machines", "", "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Images can change, so they are not tagged.
	rec = do(srv, http.MethodGet, "/images", "")
	assert.Empty(t, rec.Header().Get("ETag"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestServer_RateLimitSkipsHealth(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	srv := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/rooms", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(srv, http.MethodGet, "/rooms", "").Code)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/health", "").Code)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, testConfig())
	assert.Equal(t, http.StatusNotFound, do(srv, http.MethodGet, "/nope", "").Code)
}

func TestWriteInventory(t *testing.T) {
	inv, err := catalog.Seed(catalog.DefaultSeedConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeInventory(context.Background(), &buf, inv))

	out := buf.String()
	assert.Len(t, gjson.Get(out, "machines").Array(), 2)
	assert.Len(t, gjson.Get(out, "rooms").Array(), 3)
	assert.Len(t, gjson.Get(out, "doctors").Array(), 3)
	assert.Len(t, gjson.Get(out, "images").Array(), 3)
	assert.Equal(t, "advanced", gjson.Get(out, "machines.0.capability").String())
}

func TestNewLogger_Level(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "warn"
	assert.Equal(t, zerolog.WarnLevel, newLogger(cfg).GetLevel())

	cfg.LogLevel = "bogus"
	assert.Equal(t, zerolog.InfoLevel, newLogger(cfg).GetLevel())
}
