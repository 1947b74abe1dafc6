package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupCSRFEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(CSRFMiddleware([]byte("0123456789abcdef0123456789abcdef"), false))
	engine.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, "%s", GetCSRFToken(c))
	})
	engine.POST("/submit", func(c *gin.Context) {
		c.String(http.StatusOK, "submitted")
	})
	engine.PATCH("/edit-uri/:book_id", func(c *gin.Context) {
		c.String(http.StatusOK, "patched")
	})
	return engine
}

func TestCSRFMiddleware_RejectsFormPostWithoutToken(t *testing.T) {
	engine := setupCSRFEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("field=value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if strings.Contains(w.Body.String(), "submitted") {
		t.Error("handler ran despite missing CSRF token")
	}
}

func TestCSRFMiddleware_RejectsJSONRequestWithoutToken(t *testing.T) {
	engine := setupCSRFEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json error body", ct)
	}
}

func TestCSRFMiddleware_AcceptsFormPostWithToken(t *testing.T) {
	engine := setupCSRFEngine(t)

	// Fetch a token and the CSRF cookie from a safe request first
	getReq := httptest.NewRequest(http.MethodGet, "/form", nil)
	getW := httptest.NewRecorder()
	engine.ServeHTTP(getW, getReq)

	token := getW.Body.String()
	if token == "" {
		t.Fatal("no CSRF token issued on GET")
	}
	cookies := getW.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no CSRF cookie issued on GET")
	}

	form := url.Values{"gorilla.csrf.Token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", w.Code, http.StatusOK, w.Body.String())
	}
	if w.Body.String() != "submitted" {
		t.Errorf("body = %q, want submitted", w.Body.String())
	}
}

func TestCSRFMiddleware_RatingAPIExemptFromToken(t *testing.T) {
	engine := setupCSRFEngine(t)

	// PATCH is an unsafe method, but the open rating API must work without
	// any token or cookie
	req := httptest.NewRequest(http.MethodPatch, "/edit-uri/1?new_rating=5", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "patched" {
		t.Errorf("body = %q, want patched", w.Body.String())
	}
}
