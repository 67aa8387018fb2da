package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaleed/mjcatalog/internal/auth"
	"github.com/mvaleed/mjcatalog/internal/config"
	"github.com/mvaleed/mjcatalog/internal/event"
	"github.com/mvaleed/mjcatalog/internal/result"
	"github.com/mvaleed/mjcatalog/internal/service"
	"github.com/mvaleed/mjcatalog/internal/storage/memory"
)

const (
	testClientID     = "catalog-admin"
	testClientSecret = "a-long-enough-client-secret"
)

type testServer struct {
	*Server
	jwt *auth.JWTManager
}

func newTestServer(t *testing.T, rps float64, burst int) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := auth.HashSecret(testClientSecret)
	require.NoError(t, err)

	jwtCfg := auth.DefaultJWTConfig()
	jwtCfg.SecretKey = "test-secret-key-at-least-32-bytes!!"
	jwt := auth.NewJWTManager(jwtCfg)

	clients := []auth.Client{{ID: testClientID, SecretHash: hash, Scopes: []string{auth.ScopeCatalogRead, auth.ScopeCatalogWrite}}}
	catalog := service.New(memory.NewStore().Repositories(), event.NewNoopPublisher(), logger)
	cfg := &config.Config{RateLimitRPS: rps, RateLimitBurst: burst}

	return &testServer{
		Server: NewServer(cfg, catalog, service.NewAuthService(clients, jwt, logger), logger),
		jwt:    jwt,
	}
}

func (ts *testServer) token(t *testing.T, scopes ...string) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(auth.TokenPayload{ClientID: testClientID, Scopes: scopes})
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) Problem {
	t.Helper()
	assert.Equal(t, problemContentType, rec.Header().Get("Content-Type"))
	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, rec.Code, p.Status)
	return p
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.AddHealthCheck("postgres", func(context.Context) error { return errors.New("connection refused") })
	rec = ts.do(t, http.MethodGet, "/health", "", nil)
	p := decodeProblem(t, rec)
	assert.Equal(t, http.StatusServiceUnavailable, p.Status)
	assert.Equal(t, result.LayerInfrastructure, p.Details[0].Layer)
}

func TestIssueToken(t *testing.T) {
	ts := newTestServer(t, 100, 100)

	rec := ts.do(t, http.MethodPost, "/api/v1/auth/token", "",
		service.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp service.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)

	claims, err := ts.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(auth.ScopeCatalogWrite))

	rec = ts.do(t, http.MethodPost, "/api/v1/auth/token", "",
		service.TokenRequest{ClientID: testClientID, ClientSecret: "wrong-secret-value"})
	assert.Equal(t, http.StatusUnauthorized, decodeProblem(t, rec).Status)
}

func TestWriteRoutesRequireWriteScope(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	body := service.AddVersionInput{Version: "6.1", Parameter: "--v 6.1"}

	rec := ts.do(t, http.MethodPost, "/api/v1/versions", "", body)
	assert.Equal(t, http.StatusUnauthorized, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/api/v1/versions", "not-a-jwt", body)
	assert.Equal(t, http.StatusUnauthorized, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/api/v1/versions", ts.token(t, auth.ScopeCatalogRead), body)
	assert.Equal(t, http.StatusForbidden, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/api/v1/versions", ts.token(t, auth.ScopeCatalogWrite), body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestVersionLifecycle(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	rec := ts.do(t, http.MethodPost, "/api/v1/versions", write, service.AddVersionInput{Version: "niji 6", Parameter: "--niji 6"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/versions/niji%206", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v service.VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "niji 6", v.Version)

	rec = ts.do(t, http.MethodGet, "/api/v1/versions/niji%206/exists", "", nil)
	assert.JSONEq(t, `{"exists":true}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/versions", write, service.AddVersionInput{Version: "niji 6", Parameter: "--niji 6"})
	p := decodeProblem(t, rec)
	assert.Equal(t, http.StatusConflict, p.Status)
	assert.Len(t, p.Details, 2, "both version and parameter conflicts are reported")

	rec = ts.do(t, http.MethodDelete, "/api/v1/versions/niji%206", write, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/versions/niji%206", "", nil)
	assert.Equal(t, http.StatusNotFound, decodeProblem(t, rec).Status)
}

func TestAddPropertyReportsEveryError(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	rec := ts.do(t, http.MethodPost, "/api/v1/versions/9/properties", write, propertyRequest{Name: ""})
	p := decodeProblem(t, rec)

	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, http.StatusNotFound, p.MainError.Code)
	assert.Greater(t, len(p.Details), 1)

	layers := map[result.Layer]bool{}
	for _, d := range p.Details {
		layers[d.Layer] = true
	}
	assert.True(t, layers[result.LayerDomain])
	assert.True(t, layers[result.LayerApplication])
}

func TestPropertyRoutes(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/v1/versions", write, service.AddVersionInput{Version: "6", Parameter: "--v 6"}).Code)

	rec := ts.do(t, http.MethodPost, "/api/v1/versions/6/properties", write, propertyRequest{
		Name: "Stylize", Parameters: []string{"--stylize", "--s"}, DefaultValue: "100", MinValue: "0", MaxValue: "1000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/api/v1/versions/6/properties/Stylize", write,
		patchPropertyRequest{Characteristic: "defaultvalue", Value: "250"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prop service.PropertyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prop))
	assert.Equal(t, "250", prop.DefaultValue)

	rec = ts.do(t, http.MethodPatch, "/api/v1/versions/6/properties/Stylize", write,
		patchPropertyRequest{Characteristic: "colour", Value: "red"})
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/versions/6/properties", "", nil)
	var props []service.PropertyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &props))
	assert.Len(t, props, 1)

	assert.Equal(t, http.StatusNoContent,
		ts.do(t, http.MethodDelete, "/api/v1/versions/6/properties/Stylize", write, nil).Code)
}

func TestMalformedJSON(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	rec := ts.do(t, http.MethodPost, "/api/v1/styles", write, `{"name": "Noir",`)
	p := decodeProblem(t, rec)
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, result.LayerPresentation, p.Details[0].Layer)

	rec = ts.do(t, http.MethodPost, "/api/v1/styles", write, `{"name": "Noir", "colour": "black"}`)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)
}

func TestStyleRoutes(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	rec := ts.do(t, http.MethodPost, "/api/v1/styles", write,
		service.StyleInput{Name: "Film Noir", Type: "Photography", Description: "High contrast shadows", Tags: []string{"dark"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/styles/Film%20Noir/tags", write, tagRequest{Tag: "moody"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/v1/styles/Film%20Noir/tags", write, tagRequest{Tag: "moody"})
	assert.Equal(t, http.StatusConflict, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/styles?tags=moody,%20other", "", nil)
	var styles []service.StyleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &styles))
	require.Len(t, styles, 1)
	assert.Equal(t, []string{"dark", "moody"}, styles[0].Tags)

	rec = ts.do(t, http.MethodGet, "/api/v1/styles?type=Photography&keyword=shadow", "", nil)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodPut, "/api/v1/styles/Film%20Noir/description", write, descriptionRequest{Description: "Hard light"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/styles/Film%20Noir/tags/missing", write, nil)
	assert.Equal(t, http.StatusNotFound, decodeProblem(t, rec).Status)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/v1/styles/Film%20Noir", write, nil).Code)
}

func TestStyleNamesWithEscapesStayReachable(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	tests := []struct {
		name string
		path string
	}{
		{name: "100% Analog", path: "100%25%20Analog"},
		{name: "a%41b", path: "a%2541b"},
		{name: "AC/DC Poster", path: "AC%2FDC%20Poster"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/styles", write,
				service.StyleInput{Name: tt.name, Type: "Custom", Tags: []string{"retro"}})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			rec = ts.do(t, http.MethodGet, "/api/v1/styles/"+tt.path, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var style service.StyleResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &style))
			assert.Equal(t, tt.name, style.Name)

			rec = ts.do(t, http.MethodPost, "/api/v1/styles/"+tt.path+"/tags", write, tagRequest{Tag: "grainy"})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/v1/styles/"+tt.path, write, nil).Code)
		})
	}
}

func TestLinkRoutes(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)
	link := "https://example.com/noir.png"

	rec := ts.do(t, http.MethodGet, "/api/v1/links", "", nil)
	assert.Equal(t, http.StatusNotFound, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/api/v1/links", write, service.AddExampleLinkInput{Link: link, Style: "Noir", Version: "6"})
	p := decodeProblem(t, rec)
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Len(t, p.Details, 2, "missing style and missing version")

	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/v1/versions", write, service.AddVersionInput{Version: "6", Parameter: "--v 6"}).Code)
	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/v1/styles", write, service.StyleInput{Name: "Noir", Type: "Photography"}).Code)
	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/v1/links", write, service.AddExampleLinkInput{Link: link, Style: "Noir", Version: "6"}).Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/styles/Noir/links?version=6", "", nil)
	var links []service.ExampleLinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
	assert.Len(t, links, 1)

	rec = ts.do(t, http.MethodGet, "/api/v1/links/exists?link="+url.QueryEscape(link), "", nil)
	assert.JSONEq(t, `{"exists":true}`, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/api/v1/links", write, nil)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodDelete, "/api/v1/styles/Noir/links", write, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}

func TestHistoryRoutes(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	write := ts.token(t, auth.ScopeCatalogWrite)

	rec := ts.do(t, http.MethodGet, "/api/v1/history", "", nil)
	assert.Equal(t, http.StatusNotFound, decodeProblem(t, rec).Status)

	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/v1/versions", write, service.AddVersionInput{Version: "6", Parameter: "--v 6"}).Code)
	rec = ts.do(t, http.MethodPost, "/api/v1/history", write, service.AddPromptHistoryInput{Prompt: "a lighthouse at dusk", Version: "6"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/history/last/1", "", nil)
	var history []service.PromptHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "a lighthouse at dusk", history[0].Prompt)

	rec = ts.do(t, http.MethodGet, "/api/v1/history/last/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/v1/history/last/101", "", nil)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	today := time.Now().UTC().Format(time.DateOnly)
	rec = ts.do(t, http.MethodGet, "/api/v1/history?from="+today+"&to="+today, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/history?from="+today, "", nil)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodDelete, "/api/v1/history?olderThan=soon", write, nil)
	assert.Equal(t, http.StatusBadRequest, decodeProblem(t, rec).Status)

	rec = ts.do(t, http.MethodDelete, "/api/v1/history?olderThan=720h", write, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":0}`, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, 0.001, 2)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/v1/versions", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/v1/versions", "", nil).Code)

	rec := ts.do(t, http.MethodGet, "/api/v1/versions", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, decodeProblem(t, rec).Status)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, 100, 100)
	rec := ts.do(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, decodeProblem(t, rec).Status)
}

func TestIPRateLimiterSweepsIdleVisitors(t *testing.T) {
	l := newIPRateLimiter(1, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))

	now = now.Add(limiterIdleTTL + time.Second)
	assert.True(t, l.allow("10.0.0.2"))
	assert.NotContains(t, l.visitors, "10.0.0.1")
}
