package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agroMarket/domain"
	"agroMarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

type memSessions map[string]*domain.Session

func (m memSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func newEcho(store SessionStore) *echo.Echo {
	e := echo.New()
	e.Use(JWTSession(testSecret))
	e.Use(LoadSession(store))

	e.GET("/farmer", func(c echo.Context) error {
		return c.String(http.StatusOK, "hello "+CurrentSession(c).Username)
	}, RequireRole(domain.RoleFarmer))
	e.GET("/whoami", func(c echo.Context) error {
		if s := CurrentSession(c); s != nil {
			return c.String(http.StatusOK, s.Username)
		}
		return c.String(http.StatusOK, "anonymous")
	})
	return e
}

func sessionCookie(t *testing.T, userID, username, role, sid string) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateJWT(testSecret, userID, username, role, sid, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: token}
}

func TestRequireRoleRedirectsAnonymous(t *testing.T) {
	e := newEcho(memSessions{})

	req := httptest.NewRequest(http.MethodGet, "/farmer", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRequireRoleRedirectsWrongRole(t *testing.T) {
	store := memSessions{"s1": {ID: "s1", UserID: 4, Username: "amina", Role: domain.RoleCustomer}}
	e := newEcho(store)

	req := httptest.NewRequest(http.MethodGet, "/farmer", nil)
	req.AddCookie(sessionCookie(t, "4", "amina", "customer", "s1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRequireRoleAllowsMatchingSession(t *testing.T) {
	store := memSessions{"s1": {ID: "s1", UserID: 2, Username: "otieno", Role: domain.RoleFarmer}}
	e := newEcho(store)

	req := httptest.NewRequest(http.MethodGet, "/farmer", nil)
	req.AddCookie(sessionCookie(t, "2", "otieno", "farmer", "s1"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "hello otieno" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestLoadSessionIgnoresBadTokens(t *testing.T) {
	store := memSessions{"s1": {ID: "s1", UserID: 2, Username: "otieno", Role: domain.RoleFarmer}}
	e := newEcho(store)

	tests := map[string]*http.Cookie{
		"garbage":        {Name: SessionCookie, Value: "not-a-jwt"},
		"logged out":     sessionCookie(t, "2", "otieno", "farmer", "gone"),
		"user mismatch":  sessionCookie(t, "9", "otieno", "farmer", "s1"),
		"foreign secret": foreignCookie(t),
	}
	for name, cookie := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
				t.Fatalf("expected anonymous, got %d %q", rec.Code, rec.Body.String())
			}
		})
	}
}

func foreignCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateJWT([]byte("other"), "2", "otieno", "farmer", "s1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: token}
}

func TestFlashRoundTrip(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	AddFlash(c, domain.FlashDanger, "Not enough stock for Maize")
	AddFlash(c, domain.FlashSuccess, "Order placed successfully!")

	var flashCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == FlashCookie {
			flashCookie = ck
		}
	}
	if flashCookie == nil {
		t.Fatal("flash cookie not set")
	}

	next := httptest.NewRequest(http.MethodGet, "/orders", nil)
	next.AddCookie(&http.Cookie{Name: FlashCookie, Value: flashCookie.Value})
	nextRec := httptest.NewRecorder()
	nc := e.NewContext(next, nextRec)

	flashes := PopFlashes(nc)
	if len(flashes) != 2 || flashes[0].Category != domain.FlashDanger || flashes[1].Message != "Order placed successfully!" {
		t.Fatalf("unexpected flashes %+v", flashes)
	}

	cleared := false
	for _, ck := range nextRec.Result().Cookies() {
		if ck.Name == FlashCookie && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("flash cookie was not cleared")
	}
}

func TestErrorHandlerAPIReturnsJSON(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/api/v1/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad filter")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"bad filter"`) || !strings.Contains(rec.Body.String(), `"code":"BAD_REQUEST"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestErrorHandlerFallsBackToText(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not Found") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
