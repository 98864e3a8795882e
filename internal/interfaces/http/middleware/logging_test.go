package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioTerm-Annotator/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveLogged(t *testing.T, cfg LoggingConfig, status int, target string) *testutil.MockLogger {
	t.Helper()
	log := testutil.NewMockLogger()

	r := gin.New()
	r.Use(RequestLogging(log, cfg))
	r.GET("/annotate", func(c *gin.Context) { c.Status(status) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(status) })
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(20 * time.Millisecond)
		c.Status(status)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(rec, req)
	return log
}

func TestRequestLogging_SuccessLogsInfo(t *testing.T) {
	t.Parallel()

	log := serveLogged(t, DefaultLoggingConfig(), http.StatusOK, "/annotate?q=diabetes")

	msgs := log.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, "request completed", msgs[0].Message)
}

func TestRequestLogging_ClientErrorLogsWarn(t *testing.T) {
	t.Parallel()

	log := serveLogged(t, DefaultLoggingConfig(), http.StatusBadRequest, "/annotate")
	assert.True(t, log.HasMessage("warn", "request completed with client error"))
}

func TestRequestLogging_ServerErrorLogsError(t *testing.T) {
	t.Parallel()

	log := serveLogged(t, DefaultLoggingConfig(), http.StatusInternalServerError, "/annotate")
	assert.True(t, log.HasMessage("error", "request completed with server error"))
}

func TestRequestLogging_SlowRequestLogsWarn(t *testing.T) {
	t.Parallel()

	cfg := DefaultLoggingConfig()
	cfg.SlowThreshold = time.Millisecond

	log := serveLogged(t, cfg, http.StatusOK, "/slow")
	assert.True(t, log.HasMessageContaining("warn", "slow"))
}

func TestRequestLogging_SkipPaths(t *testing.T) {
	t.Parallel()

	log := serveLogged(t, DefaultLoggingConfig(), http.StatusOK, "/healthz")
	assert.Empty(t, log.GetMessages(), "health probes must not be logged")
}
