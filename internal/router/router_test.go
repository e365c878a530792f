package router_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-bridge/backend/internal/controllers"
	"github.com/tally-bridge/backend/internal/router"
	"github.com/tally-bridge/backend/internal/tally"
)

// testController returns a Controller whose Tally client points at a dead
// address. Routes that do not talk to Tally work regardless.
func testController() controllers.Controller {
	return controllers.Controller{
		Tally: tally.NewClient("http://localhost:1", time.Second),
	}
}

func attachedEngine(t *testing.T) *gin.Engine {
	r, err := router.Config()
	require.NoError(t, err)

	router.AttachRoutes(testController(), r.Group("/"))
	return r
}

func TestPprofOn(t *testing.T) {
	os.Setenv("ENABLE_PPROF", "true")
	defer os.Unsetenv("ENABLE_PPROF")

	r := attachedEngine(t)

	var routes []string
	for _, route := range r.Routes() {
		routes = append(routes, route.Path)
	}
	assert.Contains(t, routes, "/debug/pprof/")
}

func TestPprofOff(t *testing.T) {
	r := attachedEngine(t)

	for _, route := range r.Routes() {
		assert.NotContains(t, route.Path, "pprof", "pprof routes are registered erroneously! Route: %s", route.Path)
	}
}

// TestCorsSetting checks that setting of CORS works.
// It does not check the actual headers as this is already done in testing of the module.
func TestCorsSetting(t *testing.T) {
	os.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000 https://example.com")
	defer os.Unsetenv("CORS_ALLOW_ORIGINS")

	_, err := router.Config()
	assert.Nil(t, err)
}

func TestGetRoot(t *testing.T) {
	r := attachedEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthz":"/healthz"`)
	assert.Contains(t, w.Body.String(), `"v1":"/v1"`)
}

func TestGetVersion(t *testing.T) {
	r := attachedEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/version", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"0.0.0"`)
}

func TestGetV1(t *testing.T) {
	r := attachedEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sync":"/v1/sync"`)
	assert.Contains(t, w.Body.String(), `"companies":"/v1/companies"`)
}

func TestOptions(t *testing.T) {
	r := attachedEngine(t)

	tests := []struct {
		path  string
		allow string
	}{
		{"/", "OPTIONS, GET"},
		{"/version", "OPTIONS, GET"},
		{"/v1", "OPTIONS, GET"},
		{"/v1/sync", "OPTIONS, POST"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodOptions, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.allow, w.Header().Get("allow"))
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := attachedEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/version", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed")
}

func TestMetrics(t *testing.T) {
	r := attachedEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
