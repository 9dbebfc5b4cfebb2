package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecomatch/internal/config"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name             string
		origin           string
		allowed          []string
		allowCredentials bool
		want             string
	}{
		{"wildcard without credentials", "https://app.example.com", []string{"*"}, false, "*"},
		{"wildcard with credentials echoes origin", "https://app.example.com", []string{"*"}, true, "https://app.example.com"},
		{"wildcard with credentials but no origin", "", []string{"*"}, true, "*"},
		{"exact match", "https://app.example.com", []string{"https://app.example.com"}, false, "https://app.example.com"},
		{"case insensitive match", "https://App.Example.com", []string{"https://app.example.com"}, false, "https://App.Example.com"},
		{"no match", "https://evil.example.com", []string{"https://app.example.com"}, false, ""},
		{"empty origin without wildcard", "", []string{"https://app.example.com"}, false, ""},
		{"empty allow list", "https://app.example.com", nil, false, ""},
	}
	for _, tc := range cases {
		got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.allowCredentials)
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	request.Header.Set("Origin", "https://app.example.com")
	engine.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials header, got %q", got)
	}
	if got := recorder.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected max age 600, got %q", got)
	}
}

func TestCORSMiddlewareRejectsUnknownOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins: []string{"https://app.example.com"},
	}))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("Origin", "https://evil.example.com")
	engine.ServeHTTP(recorder, request)

	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected request still served, got %d", recorder.Code)
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())

	var seenInContext string
	engine.GET("/ping", func(c *gin.Context) {
		seenInContext = getRequestID(c)
		c.String(http.StatusOK, "pong")
	})

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	headerID := recorder.Header().Get(requestIDHeader)
	if headerID == "" {
		t.Fatalf("expected generated request id in response header")
	}
	if seenInContext != headerID {
		t.Fatalf("expected context id %q to match header %q", seenInContext, headerID)
	}
}

func TestRequestIDMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set(requestIDHeader, "client-supplied-id")
	engine.ServeHTTP(recorder, request)

	if got := recorder.Header().Get(requestIDHeader); got != "client-supplied-id" {
		t.Fatalf("expected incoming id preserved, got %q", got)
	}
}
