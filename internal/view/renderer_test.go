package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agroMarket/domain"
	"agroMarket/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestNewRendererParsesEveryPage(t *testing.T) {
	r, err := NewRenderer("agroMarket")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	for _, name := range []string{
		"home", "about", "login", "register", "dashboard_farmer", "add_product", "edit_product",
		"dashboard_customer", "cart", "checkout", "orders", "farmer_orders", "dashboard_admin", "error",
	} {
		if _, ok := r.pages[name]; !ok {
			t.Errorf("page %q not loaded", name)
		}
	}
	if _, ok := r.pages["layout"]; ok {
		t.Error("layout must not be a page")
	}
}

func TestRenderIncludesFlashesAndNav(t *testing.T) {
	r, err := NewRenderer("agroMarket")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	c := newContext(t)
	middleware.SetSession(c, &domain.Session{ID: "s", UserID: 5, Username: "amina", Role: domain.RoleCustomer})
	middleware.AddFlash(c, domain.FlashSuccess, "Added to cart!")

	view := domain.CartView{
		Items: []domain.CartItemView{{
			ProductID: 1, Name: "Tomatoes", Price: decimal.RequireFromString("2.5"),
			Quantity: 4, Stock: 3, Subtotal: decimal.RequireFromString("10"),
		}},
		GrandTotal: decimal.RequireFromString("10"),
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, "cart", view, c); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Added to cart!", "Tomatoes", "2.50", "10.00", "only 3 left", "/orders", "Logout (amina)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer("agroMarket")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if err := r.Render(&bytes.Buffer{}, "nope", nil, newContext(t)); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRenderAnonymousHome(t *testing.T) {
	r, err := NewRenderer("agroMarket")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, "home", nil, newContext(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), `href="/register"`) {
		t.Fatal("anonymous home should link to register")
	}
}
