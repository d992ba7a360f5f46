package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/checktrack/checktrack/internal/app"
	"github.com/checktrack/checktrack/internal/config"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/model"
	"github.com/checktrack/checktrack/internal/users"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	app     *app.App
}

// newTestServer creates a data directory with the default user and returns
// a server over it.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default("Test")
	cfg.Server.JWTSecret = "test-secret"
	cfg.Import.Timezone = "UTC"
	cfg.Git.AutoCommit = false
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))

	usr, err := users.Open(dir, id.UUID{})
	require.NoError(t, err)
	usr.SetHashCost(bcrypt.MinCost)
	_, err = usr.Seed()
	require.NoError(t, err)

	a, err := app.Open(context.Background(), dir, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	a.Users.SetHashCost(bcrypt.MinCost)

	srv, err := New(a)
	require.NoError(t, err)
	return &testServer{t: t, handler: srv.Handler(), app: a}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(path, token, fileName string, content []byte) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(ts.t, err)
	_, err = fw.Write(content)
	require.NoError(ts.t, err)
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(username, password string) string {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	var resp loginResponse
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(ts.t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "ALTAY", "password": users.DefaultPassword})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[loginResponse](t, w)
	assert.Equal(t, users.DefaultUsername, resp.User.Username)
	assert.True(t, resp.User.Permissions.ManageUsers)
	assert.NotContains(t, w.Body.String(), "PasswordHash")

	w = ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "altay", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "altay"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/api/payments", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	token := ts.login(users.DefaultUsername, users.DefaultPassword)
	w := ts.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, users.DefaultUsername, decode[model.User](t, w).Username)
}

func TestPaymentLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)

	w := ts.do(http.MethodPost, "/api/payments", token, gin.H{
		"dueDate":       "2030-01-15",
		"checkNumber":   "CK-100",
		"bank":          "Ziraat Bankası",
		"company":       "ALTAY",
		"businessGroup": "KULU",
		"amount":        "1250.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Payment](t, w)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, "1250.5", created.Amount.String())

	w = ts.do(http.MethodPatch, "/api/payments/"+created.ID+"/status", token, gin.H{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.StatusPaid, decode[model.Payment](t, w).Status)

	w = ts.do(http.MethodPut, "/api/payments/"+created.ID, token, gin.H{
		"dueDate":       "2030-02-15",
		"checkNumber":   "CK-100",
		"bank":          "Halk Bankası",
		"company":       "ALTAY",
		"businessGroup": "KULU",
		"amount":        2000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decode[model.Payment](t, w)
	assert.Equal(t, "Halk Bankası", edited.Bank)
	assert.Equal(t, model.StatusPaid, edited.Status, "edit keeps the status")

	w = ts.do(http.MethodGet, "/api/payments?status=paid&bank=halk%20bankas%C4%B1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listResponse](t, w)
	require.Len(t, list.Payments, 1)
	assert.Equal(t, "2000", list.Summary.PaidAmount.String())

	w = ts.do(http.MethodGet, "/api/payments?status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[listResponse](t, w).Payments)

	w = ts.do(http.MethodDelete, "/api/payments/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodGet, "/api/payments/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddPaymentValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)

	w := ts.do(http.MethodPost, "/api/payments", token, gin.H{
		"dueDate":     "15.01.2030",
		"checkNumber": "CK-1",
		"amount":      0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	assert.Contains(t, body["fields"], "dueDate")
	assert.Contains(t, body["fields"], "bank")

	w = ts.do(http.MethodGet, "/api/payments?status=bounced", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPermissionDenied(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(users.DefaultUsername, users.DefaultPassword)

	w := ts.do(http.MethodPost, "/api/users", admin, gin.H{
		"username":    "viewer",
		"password":    "secret1",
		"permissions": gin.H{"changeStatus": true},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	viewer := ts.login("viewer", "secret1")
	w = ts.do(http.MethodPost, "/api/payments", viewer, gin.H{
		"dueDate": "2030-01-15", "checkNumber": "CK-1", "bank": "B", "company": "C", "businessGroup": "G", "amount": 1,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/users", viewer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPut, "/api/categories/bank", viewer, gin.H{"items": []string{"X"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestImportPreviewAndCommit(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)

	content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "checks.csv"))
	require.NoError(t, err)

	w := ts.upload("/api/imports", token, "checks.csv", content)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pv struct {
		ID       string          `json:"id"`
		Source   string          `json:"source"`
		Payments []model.Payment `json:"payments"`
		Summary  struct {
			Count int `json:"count"`
		} `json:"summary"`
		Dropped int `json:"dropped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pv))
	assert.NotEmpty(t, pv.ID)
	assert.Equal(t, "checks.csv", pv.Source)
	assert.Equal(t, 5, pv.Summary.Count)
	assert.Equal(t, 1, pv.Dropped)

	w = ts.do(http.MethodGet, "/api/payments", token, nil)
	assert.Empty(t, decode[listResponse](t, w).Payments, "preview stores nothing")

	w = ts.do(http.MethodPost, "/api/imports/"+pv.ID+"/commit", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, "/api/payments", token, nil)
	list := decode[listResponse](t, w)
	assert.Len(t, list.Payments, 5)
	assert.Equal(t, "13852.74", list.Summary.TotalAmount.String())

	w = ts.do(http.MethodPost, "/api/imports/"+pv.ID+"/commit", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "a preview commits once")
}

func TestImportRejectsBadFiles(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)

	content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "bad_header.csv"))
	require.NoError(t, err)
	w := ts.upload("/api/imports", token, "bad_header.csv", content)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	assert.Len(t, body["expected"], 7)

	w = ts.upload("/api/imports", token, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.upload("/api/imports", token, "broken.xlsx", []byte("not a zip"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportCommitIsPerUser(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.login(users.DefaultUsername, users.DefaultPassword)
	w := ts.do(http.MethodPost, "/api/users", admin, gin.H{
		"username": "clerk", "password": "secret1", "permissions": gin.H{"add": true},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	clerk := ts.login("clerk", "secret1")

	content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "checks.csv"))
	require.NoError(t, err)
	w = ts.upload("/api/imports", admin, "checks.csv", content)
	require.Equal(t, http.StatusOK, w.Code)
	key := decode[map[string]any](t, w)["id"].(string)

	w = ts.do(http.MethodPost, "/api/imports/"+key+"/commit", clerk, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodDelete, "/api/imports/"+key, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestClearRequiresPassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)
	w := ts.do(http.MethodPost, "/api/payments", token, gin.H{
		"dueDate": "2030-01-15", "checkNumber": "CK-1", "bank": "B", "company": "C", "businessGroup": "G", "amount": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/api/payments/clear", token, gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/api/payments/clear", token, gin.H{"password": users.DefaultPassword})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())
}

func TestBackupAndRestore(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)
	for _, cn := range []string{"CK-1", "CK-2"} {
		w := ts.do(http.MethodPost, "/api/payments", token, gin.H{
			"dueDate": "2030-01-15", "checkNumber": cn, "bank": "B", "company": "C", "businessGroup": "G", "amount": 10,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.do(http.MethodGet, "/api/backup", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "checktrack-backup-")
	saved := w.Body.Bytes()

	w = ts.do(http.MethodPost, "/api/payments/clear", token, gin.H{"password": users.DefaultPassword})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/backup/restore", bytes.NewReader(saved))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"restored":2}`, rec.Body.String())

	w = ts.do(http.MethodGet, "/api/payments", token, nil)
	assert.Len(t, decode[listResponse](t, w).Payments, 2)

	w = ts.do(http.MethodGet, "/api/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
}

func TestUsersAndCategories(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(users.DefaultUsername, users.DefaultPassword)

	w := ts.do(http.MethodPost, "/api/users", token, gin.H{"username": "short", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/users", token, gin.H{"username": "ayse", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)
	ayse := decode[model.User](t, w)

	w = ts.do(http.MethodPost, "/api/users", token, gin.H{"username": "AYSE", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPut, "/api/users/"+ayse.ID, token, gin.H{"permissions": gin.H{"add": true}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.User](t, w).Permissions.Add)

	w = ts.do(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.User](t, w), 2)

	me := decode[model.User](t, ts.do(http.MethodGet, "/api/auth/me", token, nil))
	w = ts.do(http.MethodDelete, "/api/users/"+me.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodDelete, "/api/users/"+ayse.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodPut, "/api/categories/business-group", token, gin.H{"items": []string{"KULU", " ", "KULU", "YENİ"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"KULU", "YENİ"}, decode[model.Category](t, w).Items)

	w = ts.do(http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Category](t, w), 3)

	w = ts.do(http.MethodPut, "/api/categories/colour", token, gin.H{"items": []string{"X"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/activity", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSConfig(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		all     bool
	}{
		{"listed", []string{"http://localhost:3000"}, false},
		{"empty", nil, true},
		{"wildcard", []string{"*"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := corsConfig(tt.origins)
			assert.Equal(t, tt.all, cfg.AllowAllOrigins)
			assert.NoError(t, cfg.Validate())
			if tt.all {
				assert.Empty(t, cfg.AllowOrigins)
				assert.False(t, cfg.AllowCredentials)
			}
		})
	}
}
