package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ledgerly/ledgerly-backend/config"
	"github.com/ledgerly/ledgerly-backend/internal/auditlog"
	"github.com/ledgerly/ledgerly-backend/internal/auth"
	"github.com/ledgerly/ledgerly-backend/internal/importledger"
	"github.com/ledgerly/ledgerly-backend/internal/organization"
)

type nullMailer struct{}

func (nullMailer) SendResetLink(to, token string) error { return nil }

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	roles  *auth.RoleSet
	org    organization.Organization
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&organization.Organization{},
		&auth.Role{},
		&auth.User{},
		&importledger.Import{},
		&auditlog.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	roles, err := auth.SeedRoles(db)
	if err != nil {
		t.Fatalf("seed roles: %v", err)
	}

	org := organization.Organization{Name: "Acme", ContactEmail: "ops@acme.test", Phone: "1", Plan: organization.PlanStarter, Status: organization.StatusActive}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiresHours: 1, CORSOrigin: "http://localhost:5173"}
	router := gin.New()
	Setup(router, db, cfg, roles, nil, nil, nullMailer{})

	return &testApp{router: router, db: db, roles: roles, org: org}
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, email, role string) {
	t.Helper()
	w := a.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"fullName":     "Test Person",
		"organization": "Acme",
		"email":        email,
		"password":     "longenough1",
		"role":         role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body)
	}
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	w := a.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "longenough1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response missing token: %s", w.Body)
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	w := app.request(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
}

func TestRegisterLoginProfile(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice@example.com", "User")
	token := app.login(t, "alice@example.com")

	w := app.request(t, http.MethodGet, "/api/auth/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status %d body %s", w.Code, w.Body)
	}
	var resp struct {
		User auth.Projection `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if resp.User.Email != "alice@example.com" || resp.User.Role != "User" {
		t.Errorf("unexpected profile: %+v", resp.User)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "bob@example.com", "User")

	unknown := app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": "whatever1"})
	wrong := app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "bob@example.com", "password": "wrongwrong"})

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("statuses %d/%d, want 401/401", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Errorf("bodies differ: %s vs %s", unknown.Body, wrong.Body)
	}
}

func TestLoginAfterDisable(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "carol@example.com", "User")
	app.login(t, "carol@example.com")

	if err := app.db.Model(&auth.User{}).Where("email = ?", "carol@example.com").
		Update("status", auth.StatusDisabled).Error; err != nil {
		t.Fatalf("disable: %v", err)
	}

	w := app.request(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "carol@example.com", "password": "longenough1"})
	if w.Code != http.StatusForbidden {
		t.Errorf("status %d, want 403", w.Code)
	}
}

func TestResetPasswordAlwaysGeneric(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "dave@example.com", "User")

	known := app.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{"email": "dave@example.com"})
	unknown := app.request(t, http.MethodPost, "/api/auth/reset-password", "", gin.H{"email": "ghost@example.com"})

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("statuses %d/%d, want 200/200", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ: %s vs %s", known.Body, unknown.Body)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "erin@example.com", "User")

	w := app.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"fullName":     "Erin Again",
		"organization": "Acme",
		"email":        "erin@example.com",
		"password":     "longenough2",
		"role":         "User",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status %d, want 409", w.Code)
	}
}

func TestCreateUserAlias(t *testing.T) {
	app := newTestApp(t)
	w := app.request(t, http.MethodPost, "/api/createuser", "", gin.H{
		"fullName":     "Legacy Client",
		"organization": "Acme",
		"email":        "legacy@example.com",
		"password":     "longenough1",
		"role":         "User",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("status %d, want 201: %s", w.Code, w.Body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/api/auth/profile", "/api/users", "/api/orgs"} {
		w := app.request(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status %d, want 401", path, w.Code)
		}
	}

	w := app.request(t, http.MethodGet, "/api/users", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: status %d, want 401", w.Code)
	}
}

func TestOrgWritesRequireAdminRole(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "user@example.com", "User")
	token := app.login(t, "user@example.com")

	w := app.request(t, http.MethodPost, "/api/createorg", token, gin.H{
		"name":         "Globe",
		"contactEmail": "ops@globe.test",
		"phone":        "1",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("status %d, want 403: %s", w.Code, w.Body)
	}
}

func TestOrgCRUDAsAdmin(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin@example.com", "Admin")
	token := app.login(t, "admin@example.com")

	w := app.request(t, http.MethodPost, "/api/createorg", token, gin.H{
		"name":         "Globe",
		"contactEmail": "ops@globe.test",
		"phone":        "+1 555 0101",
		"plan":         organization.PlanGrowth,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body)
	}

	list := app.request(t, http.MethodGet, "/api/orgs", token, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list: status %d", list.Code)
	}
	var orgs []organization.Organization
	if err := json.Unmarshal(list.Body.Bytes(), &orgs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	found := false
	for _, o := range orgs {
		if o.Name == "Globe" && o.Plan == organization.PlanGrowth {
			found = true
		}
	}
	if !found {
		t.Errorf("created org missing from list: %s", list.Body)
	}
}

func TestUploadAndPastImports(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "uploader@example.com", "User")
	token := app.login(t, "uploader@example.com")

	var user auth.User
	if err := app.db.Where("email = ?", "uploader@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	w := app.request(t, http.MethodPost, "/api/upload", token, gin.H{
		"fileName": "q1.csv",
		"fileType": "text/csv",
		"data":     []gin.H{{"a": 1}, {"a": 2}},
		"userId":   user.ID,
		"userName": user.FullName,
		"orgId":    app.org.ID,
		"orgName":  app.org.Name,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", w.Code, w.Body)
	}
	var created struct {
		Import importledger.Import `json:"import"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if created.Import.Records != 2 || created.Import.Status != importledger.StatusSuccess {
		t.Errorf("unexpected import: %+v", created.Import)
	}

	list := app.request(t, http.MethodGet, fmt.Sprintf("/api/past-imports/%d", app.org.ID), token, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("past-imports: status %d", list.Code)
	}
	var resp struct {
		Imports []importledger.Import `json:"imports"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode past-imports: %v", err)
	}
	if len(resp.Imports) == 0 || resp.Imports[0].FileName != "q1.csv" {
		t.Errorf("newest import not first: %s", list.Body)
	}
}

func TestUploadValidation(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "uploader2@example.com", "User")
	token := app.login(t, "uploader2@example.com")

	w := app.request(t, http.MethodPost, "/api/upload", token, gin.H{
		"fileName": "q1.csv",
		"data":     []gin.H{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400: %s", w.Code, w.Body)
	}
}

func TestAuditLogsSuperAdminOnly(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin2@example.com", "Admin")
	token := app.login(t, "admin2@example.com")

	w := app.request(t, http.MethodGet, "/api/auditlogs", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("admin: status %d, want 403", w.Code)
	}
}

func TestAuditTrailRecordsLogin(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "frank@example.com", "User")
	app.login(t, "frank@example.com")

	var count int64
	app.db.Model(&auditlog.AuditLog{}).Where("action = ? AND status = ?", "auth.login", auditlog.StatusSuccess).Count(&count)
	if count != 1 {
		t.Errorf("login audit entries = %d, want 1", count)
	}
}
