package routes

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"site-panel/internal/app"
	"site-panel/internal/config"
	"site-panel/internal/models"
	deploylogservice "site-panel/internal/services/deploylog_service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	seedEmail    = "admin@painel.com"
	seedPassword = "123456"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	app    *app.App
	router *gin.Engine
	root   string
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		HTTP:     config.HTTP{Port: "4000", GinMode: gin.TestMode},
		Database: config.Database{Driver: "sqlite", Path: filepath.Join(root, "db.sqlite")},
		Auth: config.Auth{
			JWTSecret:    "test-secret",
			SeedEmail:    seedEmail,
			SeedPassword: seedPassword,
		},
		Deploy: config.Deploy{
			SitesRoot: filepath.Join(root, "sites"),
			VhostDir:  filepath.Join(root, "nginx-config"),
		},
		Log: config.Log{Dir: filepath.Join(root, "logs"), Level: "info"},
	}
	for _, m := range mutate {
		m(cfg)
	}

	a, err := app.New(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.NoError(t, a.SeedOperator(context.Background()))

	return &testServer{t: t, app: a, router: SetupRouter(a), root: root}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()

	w := s.doJSON(http.MethodPost, "/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

type deployForm struct {
	domainField string
	domain      string
	archive     []byte
}

func (s *testServer) deploy(token string, form deployForm) *httptest.ResponseRecorder {
	s.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if form.domainField == "" {
		form.domainField = "domain"
	}
	if form.domain != "" {
		require.NoError(s.t, mw.WriteField(form.domainField, form.domain))
	}
	if form.archive != nil {
		fw, err := mw.CreateFormFile("zipfile", "site.zip")
		require.NoError(s.t, err)
		_, err = fw.Write(form.archive)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/deploy", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return s.do(req)
}

func siteZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func (s *testServer) logsFor(token, domain string) string {
	s.t.Helper()

	w := s.doJSON(http.MethodGet, "/logs/"+domain, token, nil)
	require.Equal(s.t, http.StatusOK, w.Code)
	assert.Contains(s.t, w.Header().Get("Content-Type"), "text/plain")
	return w.Body.String()
}

func (s *testServer) sites(token string) []map[string]interface{} {
	s.t.Helper()

	w := s.doJSON(http.MethodGet, "/sites", token, nil)
	require.Equal(s.t, http.StatusOK, w.Code)

	var sites []map[string]interface{}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &sites))
	return sites
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	token := s.login(seedEmail, seedPassword)

	claims, err := s.app.Tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, seedEmail, claims.Subject)
	assert.Equal(t, 2*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestLogin_Rejected(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"wrong password", gin.H{"email": seedEmail, "password": "nope"}},
		{"unknown email", gin.H{"email": "ghost@painel.com", "password": seedPassword}},
		{"missing password", gin.H{"email": seedEmail}},
		{"empty body", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doJSON(http.MethodPost, "/login", "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"invalid credentials"}`, w.Body.String())
		})
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/usuarios"},
		{http.MethodPost, "/usuarios"},
		{http.MethodDelete, "/usuarios/1"},
		{http.MethodPost, "/deploy"},
		{http.MethodGet, "/logs/example.com"},
		{http.MethodGet, "/sites"},
	}

	for _, rt := range routes {
		w := s.doJSON(rt.method, rt.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)

		w = s.doJSON(rt.method, rt.path, "forged.token.value", nil)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestUsers_CRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.doJSON(http.MethodPost, "/usuarios", token, gin.H{"email": "ops@painel.com", "password": "s3cret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "ops@painel.com", created["email"])
	assert.NotZero(t, created["id"])
	assert.Len(t, created, 2)

	// the new operator can log in
	s.login("ops@painel.com", "s3cret")

	w = s.doJSON(http.MethodPost, "/usuarios", token, gin.H{"email": "ops@painel.com", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	s.login("ops@painel.com", "s3cret")

	w = s.doJSON(http.MethodPost, "/usuarios", token, gin.H{"email": "x@painel.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodGet, "/usuarios", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	var users []struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, seedEmail, users[0].Email)
	assert.Equal(t, "ops@painel.com", users[1].Email)

	w = s.doJSON(http.MethodDelete, "/usuarios/"+strconv.FormatUint(uint64(users[1].ID), 10), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.doJSON(http.MethodGet, "/usuarios", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 1)
}

func TestUsers_PasswordTooLong(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.doJSON(http.MethodPost, "/usuarios", token, gin.H{
		"email":    "ops@painel.com",
		"password": strings.Repeat("x", 73),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodGet, "/usuarios", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "ops@painel.com")
}

func TestUsers_DeleteUnknownIsNoContent(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	for _, id := range []string{"9999", "abc", "-1"} {
		w := s.doJSON(http.MethodDelete, "/usuarios/"+id, token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, id)
	}

	w := s.doJSON(http.MethodGet, "/usuarios", token, nil)
	assert.Contains(t, w.Body.String(), seedEmail)
}

func TestDeploy_Success(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.deploy(token, deployForm{
		domain:  "example.com",
		archive: siteZip(t, map[string]string{"index.html": "<h1>hello</h1>"}),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	index, err := os.ReadFile(filepath.Join(s.root, "sites", "example.com", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>hello</h1>", string(index))

	conf, err := os.ReadFile(filepath.Join(s.root, "nginx-config", "example.com.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(conf), "server_name example.com")

	sites := s.sites(token)
	require.Len(t, sites, 1)
	assert.Equal(t, "example.com", sites[0]["domain"])
	assert.Equal(t, models.SiteStatusActive, sites[0]["status"])
	assert.Contains(t, sites[0], "created_at")
	assert.NotContains(t, sites[0], "updated_at")

	logs := s.logsFor(token, "example.com")
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] STATUS: SUCESSO$`, logs)
}

func TestDeploy_LegacyDomainField(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.deploy(token, deployForm{
		domainField: "dominio",
		domain:      "legacy.com.br",
		archive:     siteZip(t, map[string]string{"index.html": "ok"}),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.FileExists(t, filepath.Join(s.root, "nginx-config", "legacy.com.br.conf"))
}

func TestDeploy_BadDomain(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)
	archive := siteZip(t, map[string]string{"index.html": "x"})

	w := s.deploy(token, deployForm{archive: archive})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.deploy(token, deployForm{domain: "../../etc", archive: archive})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.NoDirExists(t, filepath.Join(s.root, "etc"))
	assert.Empty(t, s.sites(token))
}

func TestDeploy_CorruptArchive(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.deploy(token, deployForm{domain: "broken.com", archive: []byte("definitely not a zip")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"deploy failed"}`, w.Body.String())

	logs := s.logsFor(token, "broken.com")
	assert.Contains(t, logs, "STATUS: FALHA - ")
	assert.Contains(t, logs, "zip")
	assert.Empty(t, s.sites(token))
}

func TestDeploy_MissingArchive(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.deploy(token, deployForm{domain: "empty.com"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := s.logsFor(token, "empty.com")
	assert.True(t, strings.HasSuffix(logs, "STATUS: FALHA - no archive uploaded"), logs)
	assert.Empty(t, s.sites(token))
}

func TestDeploy_RedeployOverwrites(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	w := s.deploy(token, deployForm{
		domain:  "example.com",
		archive: siteZip(t, map[string]string{"index.html": "v1", "legacy.html": "old"}),
	})
	require.Equal(t, http.StatusOK, w.Code)
	first := s.sites(token)

	w = s.deploy(token, deployForm{domain: "example.com", archive: []byte("garbage")})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	sitePath := filepath.Join(s.root, "sites", "example.com")
	index, err := os.ReadFile(filepath.Join(sitePath, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(index))
	assert.FileExists(t, filepath.Join(sitePath, "legacy.html"))

	w = s.deploy(token, deployForm{
		domain:  "Example.COM",
		archive: siteZip(t, map[string]string{"index.html": "v2"}),
	})
	require.Equal(t, http.StatusOK, w.Code)

	index, err = os.ReadFile(filepath.Join(sitePath, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(index))
	assert.NoFileExists(t, filepath.Join(sitePath, "legacy.html"))

	second := s.sites(token)
	require.Len(t, second, 1)
	assert.Equal(t, first[0]["id"], second[0]["id"])
	assert.Equal(t, first[0]["created_at"], second[0]["created_at"])

	lines := strings.Split(s.logsFor(token, "example.com"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS: SUCESSO")
	assert.Contains(t, lines[1], "STATUS: FALHA")
	assert.Contains(t, lines[2], "STATUS: SUCESSO")
}

func TestLogs_Empty(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)

	assert.Equal(t, deploylogservice.NoLogsMessage, s.logsFor(token, "never-deployed.com"))
}

func TestSites_NewestFirst(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)
	archive := siteZip(t, map[string]string{"index.html": "x"})

	for _, d := range []string{"a.com", "b.com", "c.com"} {
		require.Equal(t, http.StatusOK, s.deploy(token, deployForm{domain: d, archive: archive}).Code)
	}

	sites := s.sites(token)
	require.Len(t, sites, 3)
	assert.Equal(t, "c.com", sites[0]["domain"])
	assert.Equal(t, "a.com", sites[2]["domain"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.doJSON(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	sqlDB, err := s.app.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = s.doJSON(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	token := s.login(seedEmail, seedPassword)
	require.Equal(t, http.StatusOK, s.deploy(token, deployForm{
		domain:  "metrics.com",
		archive: siteZip(t, map[string]string{"index.html": "x"}),
	}).Code)

	w := s.doJSON(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `site_panel_deploys_total{status="SUCESSO"}`)
	assert.Contains(t, w.Body.String(), "site_panel_deploy_duration_seconds")

	disabled := newTestServer(t, func(c *config.Config) { c.Metrics.Disabled = true })
	w = disabled.doJSON(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/deploy", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := s.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = s.doJSON(http.MethodGet, "/health", "", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
