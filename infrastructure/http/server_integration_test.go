package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"logistica/frontend/login"
	"logistica/frontend/shared/html"
	"logistica/infrastructure/cache"
	"logistica/infrastructure/config"
	"logistica/infrastructure/jsonstore"
	"logistica/infrastructure/sqlite"
	"logistica/models"
)

const adminPassword = "Admin123Logistica"

type integrationEnv struct {
	server *httptest.Server
	db     *sqlite.DB
	store  *jsonstore.Store
}

func setupIntegrationServer(t *testing.T, opts ...func(*config.Config)) (*integrationEnv, *http.Client) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.OpenDB(filepath.Join(dir, "server-integration.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if err := login.UpsertUserPasswordHash(context.Background(), db, "admin", "admin", adminPassword); err != nil {
		t.Fatalf("seed admin user: %v", err)
	}
	if err := login.UpsertUserPasswordHash(context.Background(), db, "operador", "user", "Operador123"); err != nil {
		t.Fatalf("seed plain user: %v", err)
	}

	store, err := jsonstore.Open(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	cfg := config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Address: "127.0.0.1:0", UploadMaxBytes: 1 << 20, ShutdownTimeout: time.Second},
		Session:     config.SessionConfig{TTL: time.Hour},
		Rua08:       config.GridConfig{Buildings: 12, Levels: 5},
		Admin:       config.AdminConfig{Username: "admin"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := NewServer(cfg, db, store, cache.NewUserSessionCache(), cache.NewUserCache())
	ts := httptest.NewServer(s.Handler())
	env := &integrationEnv{server: ts, db: db, store: store}
	t.Cleanup(func() {
		env.server.Close()
		_ = env.db.Close()
	})

	return env, newHTTPClient(t)
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, baseURL, path string, data url.Values) *http.Response {
	t.Helper()
	if data == nil {
		data = url.Values{}
	}
	if token := csrfToken(t, client, baseURL); token != "" {
		data.Set("_csrf", token)
	}
	resp, err := client.PostForm(baseURL+path, data)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func postMultipartFile(t *testing.T, client *http.Client, baseURL, path, fieldName, fileName string, fileContents []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if token := csrfToken(t, client, baseURL); token != "" {
		if err := writer.WriteField("_csrf", token); err != nil {
			t.Fatalf("write csrf multipart field: %v", err)
		}
	}

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create multipart file field: %v", err)
	}
	if _, err := part.Write(fileContents); err != nil {
		t.Fatalf("write multipart file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, &body)
	if err != nil {
		t.Fatalf("build multipart request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST multipart %s failed: %v", path, err)
	}
	return resp
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func csrfToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == html.CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

// loginAs signs in and returns the landing page the server redirected to.
func loginAs(t *testing.T, client *http.Client, baseURL, username, password string) string {
	t.Helper()

	resp := get(t, client, baseURL, "/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postForm(t, client, baseURL, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login 303, got %d", resp.StatusCode)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/app/") {
		t.Fatalf("unexpected login redirect: %s", location)
	}
	return location
}

func expectRedirect(t *testing.T, resp *http.Response, prefix string) string {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 303, got %d: %s", resp.StatusCode, b)
	}
	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, prefix) {
		t.Fatalf("expected redirect to %s, got %s", prefix, location)
	}
	if strings.Contains(location, "error=") {
		t.Fatalf("unexpected error redirect: %s", location)
	}
	return location
}

func countRows(t *testing.T, db *sqlite.DB, query string, args ...any) int64 {
	t.Helper()
	var count int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(query, args...).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func countExportRunsForUserType(t *testing.T, db *sqlite.DB, username, exportType string) int64 {
	t.Helper()
	return countRows(t, db, `
SELECT COUNT(*)
FROM export_runs er
JOIN users u ON u.id = er.user_id
WHERE u.username = ? AND er.export_type = ?`, username, exportType)
}

func TestCSRFPostWithoutTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	// No GET first: no CSRF token available in cookie or form.
	resp, err := client.PostForm(env.server.URL+"/login", url.Values{
		"username": {"admin"},
		"password": {adminPassword},
	})
	if err != nil {
		t.Fatalf("post login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for missing csrf, got %d", resp.StatusCode)
	}
}

func TestCSRFWrongTokenRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)

	resp, err := client.PostForm(env.server.URL+"/app/produtos", url.Values{
		"_csrf": {"not-the-token"},
		"unit":  {"ITJ"},
		"sku":   {"X"},
	})
	if err != nil {
		t.Fatalf("post product: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong csrf, got %d", resp.StatusCode)
	}
}

func TestAdminLandsOnProducts(t *testing.T) {
	env, client := setupIntegrationServer(t)
	if got := loginAs(t, client, env.server.URL, "admin", adminPassword); got != "/app/produtos" {
		t.Fatalf("expected admin landing /app/produtos, got %s", got)
	}

	resp := get(t, client, env.server.URL, "/")
	expectRedirect(t, resp, "/app/produtos")
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/app/agendamentos")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestUserWithoutModulesIsForbidden(t *testing.T) {
	env, client := setupIntegrationServer(t)
	if got := loginAs(t, client, env.server.URL, "operador", "Operador123"); got != "/app/conta" {
		t.Fatalf("expected landing on account page, got %s", got)
	}

	for _, path := range []string{"/app/produtos", "/app/rua08", "/app/admin/usuarios", "/app/relatorios/rua08.csv"} {
		resp := get(t, client, env.server.URL, path)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("GET %s: expected 403, got %d", path, resp.StatusCode)
		}
	}

	resp := get(t, client, env.server.URL, "/app/conta")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected account page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = get(t, client, env.server.URL, "/app/ajuda")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected help page 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestAdminGrantsModules(t *testing.T) {
	env, admin := setupIntegrationServer(t)
	loginAs(t, admin, env.server.URL, "admin", adminPassword)

	resp := postForm(t, admin, env.server.URL, "/app/admin/usuarios", url.Values{
		"username": {"conferente"},
		"name":     {"Conferente"},
		"role":     {"user"},
		"password": {"Conferente1"},
		"modules":  {"conference"},
	})
	expectRedirect(t, resp, "/app/admin/usuarios")

	client := newHTTPClient(t)
	if got := loginAs(t, client, env.server.URL, "conferente", "Conferente1"); got != "/app/conferencia" {
		t.Fatalf("expected landing on conference, got %s", got)
	}

	resp = get(t, client, env.server.URL, "/app/conferencia")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected conference 200, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = get(t, client, env.server.URL, "/app/agendamentos")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected schedules 403, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = postMultipartFile(t, client, env.server.URL, "/app/agendamentos/importar", "fileAgendamento", "agenda.csv", []byte("Data;NFD;Cliente\n01/03/2025;1;Loja\n"))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected import 403 without uploads module, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestOversizedUploadRejected(t *testing.T) {
	env, client := setupIntegrationServer(t, func(c *config.Config) { c.Server.UploadMaxBytes = 512 })
	loginAs(t, client, env.server.URL, "admin", adminPassword)

	big := "SKU;Descrição\n" + strings.Repeat("A1;Produto de teste com descrição longa\n", 100)
	resp := postMultipartFile(t, client, env.server.URL, "/app/produtos/importar", "fileITJ", "Cad_ITJ.csv", []byte(big))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
	if n := countRows(t, env.db, `SELECT COUNT(*) FROM import_runs`); n != 0 {
		t.Fatalf("expected no import run, got %d", n)
	}
}

func TestReturnFlowFromImportToStorage(t *testing.T) {
	env, client := setupIntegrationServer(t)
	base := env.server.URL
	loginAs(t, client, base, "admin", adminPassword)

	resp := postMultipartFile(t, client, base, "/app/produtos/importar", "fileITJ", "Cad_ITJ.csv", []byte("SKU;Descrição\nA1;Produto A\nA2;Produto B\n"))
	expectRedirect(t, resp, "/app/produtos")

	resp = postMultipartFile(t, client, base, "/app/agendamentos/importar", "fileAgendamento", "agenda.csv",
		[]byte("Data;NFD;Cliente;Volumes\n14/03/2025;1001;Loja Centro;2\n"))
	expectRedirect(t, resp, "/app/agendamentos")

	if n := countRows(t, env.db, `SELECT COUNT(*) FROM import_runs WHERE kind IN ('products', 'schedules')`); n != 2 {
		t.Fatalf("expected 2 import runs, got %d", n)
	}

	scheduled, err := jsonstore.Load[models.ReturnSchedule](context.Background(), env.store, jsonstore.Schedules)
	if err != nil {
		t.Fatalf("load schedules: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].NFD != "1001" {
		t.Fatalf("unexpected schedules %+v", scheduled)
	}

	resp = postForm(t, client, base, "/app/conferencia/"+url.PathEscape(scheduled[0].ID), url.Values{
		"receivedVolume": {"2"},
		"productState":   {"Bom"},
	})
	expectRedirect(t, resp, "/app/conferencia/nfd/1001")

	resp = get(t, client, base, "/app/etiquetas/nfd/1001")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf label, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(body, "%PDF") {
		t.Fatalf("label body is not a pdf")
	}

	resp = postForm(t, client, base, "/app/rua08/alocar", url.Values{
		"nfd":      {"1001"},
		"sku":      {"A1"},
		"building": {"3"},
		"level":    {"2"},
		"volume":   {"3"},
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || !strings.Contains(resp.Header.Get("Location"), "error=") {
		t.Fatalf("expected over-allocation rejected, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = postForm(t, client, base, "/app/rua08/alocar", url.Values{
		"nfd":      {"1001"},
		"building": {"3"},
		"level":    {"2"},
		"volume":   {"2"},
	})
	expectRedirect(t, resp, "/app/rua08")

	scheduled, err = jsonstore.Load[models.ReturnSchedule](context.Background(), env.store, jsonstore.Schedules)
	if err != nil {
		t.Fatalf("reload schedules: %v", err)
	}
	if scheduled[0].Status != models.StatusStored {
		t.Fatalf("expected schedule stored, got %+v", scheduled[0])
	}
	allocs, err := jsonstore.Load[models.AllocationEntry](context.Background(), env.store, jsonstore.Allocations)
	if err != nil {
		t.Fatalf("load allocations: %v", err)
	}
	if len(allocs) != 1 || allocs[0].AllocatedVolume != 2 {
		t.Fatalf("over-allocation must not persist, got %+v", allocs)
	}

	resp = get(t, client, base, "/app/relatorios/rua08.csv")
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "R08-P03-N2;3;2;1001") {
		t.Fatalf("unexpected allocation export %d: %s", resp.StatusCode, body)
	}
	if n := countExportRunsForUserType(t, env.db, "admin", "allocations_csv"); n != 1 {
		t.Fatalf("expected one export run, got %d", n)
	}

	resp = get(t, client, base, "/app/admin/auditoria?action=allocation.")
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "allocation.create") {
		t.Fatalf("expected allocation in audit viewer, got %d", resp.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	env, client := setupIntegrationServer(t)
	loginAs(t, client, env.server.URL, "admin", adminPassword)

	resp := postForm(t, client, env.server.URL, "/logout", nil)
	expectRedirect(t, resp, "/login")

	resp = get(t, client, env.server.URL, "/app/produtos")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login after logout, got %d", resp.StatusCode)
	}
	if n := countRows(t, env.db, `SELECT COUNT(*) FROM sessions`); n != 0 {
		t.Fatalf("expected session row deleted, got %d", n)
	}
}
