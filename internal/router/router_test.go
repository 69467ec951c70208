package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_MethodDispatch(t *testing.T) {
	r := New()

	r.Get("/plans", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/coupons", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"get route", http.MethodGet, "/plans", http.StatusOK},
		{"post route", http.MethodPost, "/coupons", http.StatusCreated},
		{"wrong method", http.MethodPost, "/plans", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_PathValue(t *testing.T) {
	r := New()

	var got string
	r.Get("/users/{userID}/status", func(w http.ResponseWriter, req *http.Request) {
		got = req.PathValue("userID")
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u-42/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-42", got)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, "in:"+name)
				next.ServeHTTP(w, req)
				order = append(order, "out:"+name)
			})
		}
	}

	r := New(tag("global"))
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}, tag("route"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// Global middleware wraps route middleware, which wraps the handler.
	assert.Equal(t, []string{"in:global", "in:route", "handler", "out:route", "out:global"}, order)
}

func TestRouter_Group(t *testing.T) {
	var order []string

	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	r := New(tag("global"))

	// Group middleware applies only to routes registered through the group.
	api := r.Group(tag("api"))
	api.Get("/grouped", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/bare", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grouped", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"global", "api"}, order)

	order = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bare", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"global"}, order)
}
