package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/posts", dummyHandler())

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/posts", routes[0].Url)
	assert.Equal(t, http.MethodGet, routes[0].Method)
}

func TestRouterProvider_PostAndDeleteAddRoutes(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/posts", dummyHandler())
	rp.Delete("/posts/{id}", dummyHandler())

	routes := rp.GetRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, http.MethodPost, routes[0].Method)
	assert.Equal(t, http.MethodDelete, routes[1].Method)
	assert.Equal(t, "/posts/{id}", routes[1].Url)
}

func TestRouterProvider_MountServesRoutes(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/posts/{id}", dummyHandler())

	r := chi.NewRouter()
	rp.Mount(r)

	req := httptest.NewRequest(http.MethodGet, "/posts/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRouterProvider_MountRejectsWrongMethod(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/posts", dummyHandler())

	r := chi.NewRouter()
	rp.Mount(r)

	req := httptest.NewRequest(http.MethodPut, "/posts", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterProvider_SamePathDifferentMethods(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/posts", dummyHandler())
	rp.Post("/posts", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	r := chi.NewRouter()
	rp.Mount(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/posts", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
