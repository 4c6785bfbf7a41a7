// Package health reports whether the collaborators an analysis needs are usable.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/server/respond"
)

const pingTimeout = 2 * time.Second

// Component states.
const (
	StatusOK          = "ok"
	StatusDown        = "down"
	StatusPlaceholder = "placeholder"
	StatusMemory      = "memory"
)

// Service encapsulates health-related checks.
type Service struct {
	DB               *sql.DB
	LLMConfigured    bool
	VisionConfigured bool
}

// NewService constructs a new health service. A nil db means results are kept in memory.
func NewService(db *sql.DB, llmConfigured, visionConfigured bool) *Service {
	return &Service{DB: db, LLMConfigured: llmConfigured, VisionConfigured: visionConfigured}
}

// Report is the health payload.
type Report struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components"`
}

// Status checks each collaborator. Only an unreachable database makes the service unhealthy;
// missing narrative or vision providers degrade results without failing requests.
func (s *Service) Status(ctx context.Context) Report {
	rep := Report{OK: true, Components: map[string]string{
		"database": StatusMemory,
		"llm":      StatusPlaceholder,
		"vision":   StatusPlaceholder,
	}}
	if s.DB != nil {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pctx); err != nil {
			rep.OK = false
			rep.Components["database"] = StatusDown
		} else {
			rep.Components["database"] = StatusOK
		}
	}
	if s.LLMConfigured {
		rep.Components["llm"] = StatusOK
	}
	if s.VisionConfigured {
		rep.Components["vision"] = StatusOK
	}
	return rep
}

func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		rep := s.Status(c.Request.Context())
		status := http.StatusOK
		if !rep.OK {
			status = http.StatusServiceUnavailable
		}
		respond.NoCache(c)
		respond.JSON(c, status, rep)
	})
}
