package health_check_api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/meetcap/config"
	"github.com/rapidaai/meetcap/pkg/commons"
	"github.com/rapidaai/meetcap/pkg/connectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type downConnector struct{}

func (downConnector) Name() string { return "redis://down" }
func (downConnector) Connect(context.Context) error { return nil }
func (downConnector) Disconnect(context.Context) error { return nil }
func (downConnector) IsConnected(context.Context) bool { return false }

func newEngine(t *testing.T, others ...connectors.Connector) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, err := commons.NewApplicationLogger(commons.Name("test-health"))
	require.NoError(t, err)
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	api := New(&config.AppConfig{Name: "recorder-api", Version: "0.0.1"}, logger,
		connectors.NewPostgresConnectorFromDB(db, logger), others...)
	engine := gin.New()
	engine.GET("/healthz/", api.Healthz)
	engine.GET("/readiness/", api.Readiness)
	return engine
}

func TestHealthz(t *testing.T) {
	engine := newEngine(t, downConnector{})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy":true`)
}

func TestReadiness_Ready(t *testing.T) {
	engine := newEngine(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readiness/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":true`)
}

func TestReadiness_DependencyDown(t *testing.T) {
	engine := newEngine(t, downConnector{})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readiness/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis://down":false`)
}
