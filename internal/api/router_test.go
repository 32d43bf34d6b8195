package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/kontakty/contacts-api/docs"
	"github.com/kontakty/contacts-api/internal/api/handler"
	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
	"github.com/kontakty/contacts-api/internal/core/service"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// --- Stubs ---

type stubAccounts struct {
	err error
}

func (s *stubAccounts) Login(_ context.Context, username, _ string) (*ports.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.AuthResult{Username: username, Email: username + "@example.com", Token: "tkn"}, nil
}

func (s *stubAccounts) Register(_ context.Context, username, email, _ string) (*ports.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.AuthResult{Username: username, Email: email, Token: "tkn"}, nil
}

type stubContacts struct {
	err error
}

func (s *stubContacts) List(context.Context) ([]*domain.Contact, error) { return nil, s.err }

func (s *stubContacts) Search(context.Context, domain.ContactFilter) ([]*domain.Contact, error) {
	return nil, s.err
}

func (s *stubContacts) Get(_ context.Context, id int64) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Contact{ID: id, CategoryName: domain.CategoryOther}, nil
}

func (s *stubContacts) Create(_ context.Context, in ports.ContactInput) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Contact{ID: 42, Name: in.Name, Email: in.Email, DateOfBirth: in.DateOfBirth}, nil
}

func (s *stubContacts) Update(_ context.Context, id int64, in ports.ContactInput) (*domain.Contact, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Contact{ID: id, Name: in.Name}, nil
}

func (s *stubContacts) Delete(context.Context, int64) error { return s.err }

type stubCategories struct{}

func (stubCategories) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{
		{ID: 1, Name: domain.CategoryBusiness, SubCategories: []domain.SubCategory{{ID: 1, Name: "Boss", CategoryID: 1}}},
		{ID: 2, Name: domain.CategoryPersonal},
	}, nil
}

// --- Helpers ---

type testServer struct {
	e      *echo.Echo
	tokens *service.TokenService
}

func newTestServer(accounts *stubAccounts, contacts *stubContacts) *testServer {
	tokens := service.NewTokenService(service.TokenConfig{SigningKey: testKey, Issuer: "kontakty", Audience: "web"})
	e := NewRouter(Dependencies{
		Log:                zerolog.Nop(),
		Accounts:           accounts,
		Contacts:           contacts,
		Categories:         stubCategories{},
		Tokens:             tokens,
		Readiness:          map[string]handler.Pinger{},
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		Registry:           prometheus.NewRegistry(),
	})
	return &testServer{e: e, tokens: tokens}
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) bearer(t *testing.T, roles ...domain.Role) map[string]string {
	t.Helper()
	token, err := s.tokens.CreateToken(&domain.User{ID: "u1", Username: "jan", Email: "jan@example.com", Roles: roles})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

const contactBody = `{"name":"Jan","lastName":"Kowalski","email":"jan.kowalski@example.com",` +
	`"password":"Haslo#123","categoryId":1,"subCategoryId":2,"phoneNumber":"123-456-789","dateOfBirth":"1990-05-01"}`

// --- Contact routes ---

func TestRouter_MutationsRequireToken(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/contact", contactBody},
		{http.MethodPut, "/api/contact/1", contactBody},
		{http.MethodDelete, "/api/contact/1", ""},
	} {
		rec := s.do(tc.method, tc.path, tc.body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}

	rec := s.do(http.MethodDelete, "/api/contact/1", "", map[string]string{echo.HeaderAuthorization: "Bearer garbage"})
	if rec.Code != http.StatusUnauthorized || decodeError(t, rec).Error != "invalid token" {
		t.Fatalf("expected 401 invalid token, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ReadsAreAnonymous(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	for _, path := range []string{"/api/contact", "/api/contact/search?lastName=Kowal", "/api/contact/3", "/api/category"} {
		if rec := s.do(http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_CreateContact(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	rec := s.do(http.MethodPost, "/api/contact", contactBody, s.bearer(t, domain.RoleUser))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/api/contact/42" {
		t.Fatalf("unexpected Location %q", loc)
	}
}

func TestRouter_TokenWithoutRoleIsForbidden(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	rec := s.do(http.MethodDelete, "/api/contact/1", "", s.bearer(t))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_ValidationEnvelope(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	body := strings.Replace(contactBody, `"Haslo#123"`, `"Abcdefg1"`, 1)
	rec := s.do(http.MethodPost, "/api/contact", body, s.bearer(t, domain.RoleAdministrator))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error != "validation failed" || len(resp.Errors["password"]) != 1 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestRouter_ContactErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		status int
	}{
		{"not found", domain.ErrContactNotFound, http.MethodGet, "/api/contact/9", "", http.StatusNotFound},
		{"non numeric id", nil, http.MethodGet, "/api/contact/abc", "", http.StatusNotFound},
		{"duplicate email", domain.ErrContactExists, http.MethodPost, "/api/contact", contactBody, http.StatusConflict},
		{"update missing", domain.ErrContactNotFound, http.MethodPut, "/api/contact/9", contactBody, http.StatusNotFound},
		{"delete missing", domain.ErrContactNotFound, http.MethodDelete, "/api/contact/9", "", http.StatusNotFound},
		{"store failure", errors.New("pool closed"), http.MethodGet, "/api/contact", "", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(&stubAccounts{}, &stubContacts{err: tc.err})
			rec := s.do(tc.method, tc.path, tc.body, s.bearer(t, domain.RoleUser))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status == http.StatusInternalServerError && decodeError(t, rec).Error != "internal server error" {
				t.Fatalf("internal details must not leak: %s", rec.Body.String())
			}
		})
	}
}

// --- Account routes ---

func TestRouter_AccountErrorMapping(t *testing.T) {
	login := `{"username":"jan","password":"whatever"}`
	register := `{"username":"jan","email":"jan@example.com","password":"Secret#123"}`

	cases := []struct {
		name   string
		err    error
		path   string
		body   string
		status int
		msg    string
	}{
		{"unknown username", domain.ErrInvalidUsername, "/api/account/login", login, http.StatusUnauthorized, "Invalid username!"},
		{"wrong password", domain.ErrInvalidCredentials, "/api/account/login", login, http.StatusUnauthorized, "User not found or/and invalid password!"},
		{"email taken", domain.ErrEmailTaken, "/api/account/register", register, http.StatusBadRequest, "There already exists a user with the same email address."},
		{"username taken", domain.ErrUserExists, "/api/account/register", register, http.StatusConflict, "user already exists"},
		{"provider failure", &domain.ProviderError{Op: "assign role", Err: errors.New("role store offline")}, "/api/account/register", register, http.StatusInternalServerError, "role store offline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(&stubAccounts{err: tc.err}, &stubContacts{})
			rec := s.do(http.MethodPost, tc.path, tc.body, nil)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if got := decodeError(t, rec).Error; got != tc.msg {
				t.Fatalf("expected message %q, got %q", tc.msg, got)
			}
		})
	}
}

func TestRouter_LockoutSetsRetryAfter(t *testing.T) {
	s := newTestServer(&stubAccounts{err: &domain.LockoutError{RetryAfter: 90*time.Second + 300*time.Millisecond}}, &stubContacts{})

	rec := s.do(http.MethodPost, "/api/account/login", `{"username":"jan","password":"x"}`, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "91" {
		t.Fatalf("expected Retry-After 91, got %q", got)
	}
}

// --- Ambient routes ---

func TestRouter_HealthMetricsAndCORS(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	if rec := s.do(http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}

	s.do(http.MethodGet, "/api/contact", "", nil)
	rec := s.do(http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "kontakty_http_requests_total") {
		t.Fatalf("expected http metrics, got %d", rec.Code)
	}

	rec = s.do(http.MethodOptions, "/api/contact", "", map[string]string{
		echo.HeaderOrigin:                     "http://localhost:5173",
		echo.HeaderAccessControlRequestMethod: http.MethodPost,
	})
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("expected CORS origin header, got %q", got)
	}
}

func TestRouter_SwaggerDocument(t *testing.T) {
	s := newTestServer(&stubAccounts{}, &stubContacts{})

	rec := s.do(http.MethodGet, "/swagger/doc.json", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	for _, path := range []string{"/api/contact", "/api/contact/{id}", "/api/account/login", "/api/category"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json misses %s", path)
		}
	}
}
