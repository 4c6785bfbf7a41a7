package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/telemetry"
)

func TestRecoveryReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"success":false`) || !strings.Contains(resp.Body.String(), `"internal_error"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	if !strings.Contains(buf.String(), `"msg":"panic"`) {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}
