package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/telemetry"
)

func TestErrorEnvelopeAndLogLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	defer telemetry.SetOutput(&buf)()

	r := gin.New()
	r.GET("/bad", func(c *gin.Context) {
		c.Set("ownerId", "guest:g")
		Error(c, http.StatusBadRequest, "validation_error", "imageUrl is required", []string{"imageUrl"})
	})
	r.GET("/down", func(c *gin.Context) {
		Fail(c, http.StatusBadGateway, "vision_unavailable", "down")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/bad", nil))
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != http.StatusBadRequest || body.Success || body.Error.Code != "validation_error" {
		t.Fatalf("unexpected response %d %+v", resp.Code, body)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), `"owner_id":"guest:g"`) {
		t.Fatalf("expected warn log with owner, got %s", buf.String())
	}

	buf.Reset()
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/down", nil))
	if resp.Code != http.StatusBadGateway || !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error log for 5xx, got %d %s", resp.Code, buf.String())
	}
	if strings.Contains(resp.Body.String(), "details") {
		t.Fatalf("details should be omitted: %s", resp.Body.String())
	}
}

func TestNoCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		NoCache(c)
		OK(c, gin.H{"success": true})
	})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	if got := resp.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if resp.Header().Get("Pragma") != "no-cache" || resp.Header().Get("Expires") != "0" {
		t.Fatalf("missing Pragma/Expires headers")
	}
}
