package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *gin.Context) {
	c.String(http.StatusOK, c.Request.Method)
}

func serve(engine *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRegisterGroupsAndMethods(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var groupHits int
	Register(engine,
		[]Middleware{NewMiddleware("v1/internal", func(c *gin.Context) { groupHits++ })},
		[]Route{
			NewRoute(GET, "v1", "drivers/:authority", ok),
			NewRoute(POST, "v1", "jobs", ok),
			NewRoute(PUT, "v1", "jobs/:id", ok),
			NewRoute(PATCH, "v1", "jobs/:id", ok),
			NewRoute(GET, "v1/internal", "health", ok),
		},
	)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/v1/drivers/abc", nil).Code)
	assert.Equal(t, "POST", serve(engine, http.MethodPost, "/v1/jobs", nil).Body.String())
	assert.Equal(t, "PUT", serve(engine, http.MethodPut, "/v1/jobs/1", nil).Body.String())
	assert.Equal(t, "PATCH", serve(engine, http.MethodPatch, "/v1/jobs/1", nil).Body.String())
	assert.Equal(t, 0, groupHits)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/v1/internal/health", nil).Code)
	assert.Equal(t, 1, groupHits)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/v2/drivers/abc", nil).Code)
}

func TestHttpMethodString(t *testing.T) {
	assert.Equal(t, "GET", GET.String())
	assert.Equal(t, "PATCH", PATCH.String())
	assert.Equal(t, "UNKNOWN", HttpMethod(42).String())
}

func TestRequestLogMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Register(engine, []Middleware{NewMiddleware("*", RequestLogMiddleware())}, []Route{NewRoute(GET, "v1", "ping", ok)})

	rec := serve(engine, http.MethodGet, "/v1/ping", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIdHeader))

	rec = serve(engine, http.MethodGet, "/v1/ping", http.Header{RequestIdHeader: {"req-42"}})
	assert.Equal(t, "req-42", rec.Header().Get(RequestIdHeader))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Register(engine, []Middleware{NewMiddleware("*", CORSMiddleware())}, []Route{NewRoute(GET, "v1", "ping", ok)})

	rec := serve(engine, http.MethodGet, "/v1/ping", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(engine, http.MethodOptions, "/v1/ping", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
