package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/server/middleware"
	"tire-backend/internal/shared/server/respond"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/report", h.getReport)
}

func (h *Handler) analyze(c *gin.Context) {
	respond.NoCache(c)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, ErrorCodeValidation, "Geçersiz istek gövdesi.")
		return
	}

	out, err := h.Svc.Analyze(c.Request.Context(), middleware.OwnerIDFromContext(c), req)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Fotoğraf ve lastik bilgileri eksik veya geçersiz.", verr.Fields)
		case errors.Is(err, ErrTireNotDetected):
			respond.Fail(c, http.StatusUnprocessableEntity, ErrorCodeTireNotDetected, "Fotoğrafta lastik tespit edilemedi. Lütfen lastiğin net göründüğü bir fotoğraf yükleyin.")
		case errors.Is(err, ErrVisionUnavailable):
			respond.Fail(c, http.StatusBadGateway, ErrorCodeVisionUnavailable, "Görüntü analizi şu anda kullanılamıyor. Lütfen daha sonra tekrar deneyin.")
		default:
			respond.Fail(c, http.StatusInternalServerError, ErrorCodeInternal, "Analiz tamamlanamadı.")
		}
		return
	}

	if req.DetectOnly {
		respond.OK(c, gin.H{"success": out.Detected})
		return
	}

	c.Set("analysisId", out.Analysis.ID)
	c.Set("degraded", out.Analysis.Result.Degraded)
	respond.OK(c, gin.H{
		"success":    true,
		"data":       out.Analysis.Result,
		"analysisId": out.Analysis.ID,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Fail(c, http.StatusBadRequest, ErrorCodeValidation, "analysis id is required")
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), middleware.OwnerIDFromContext(c), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, ErrorCodeNotFound, "analysis not found")
		default:
			respond.Fail(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch analysis")
		}
		return
	}

	respond.OK(c, gin.H{"success": true, "data": analysis})
}

func (h *Handler) listAnalyses(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)

	limit := queryInt(c, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	analyses, err := h.Svc.List(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		respond.Fail(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to list analyses")
		return
	}

	items := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, gin.H{
			"id":          a.ID,
			"imageUrl":    a.ImageURL,
			"brand":       a.Attributes.Brand,
			"model":       a.Attributes.Model,
			"size":        a.Attributes.Size,
			"safetyScore": a.Result.SafetyScore,
			"degraded":    a.Result.Degraded,
			"createdAt":   a.CreatedAt,
		})
	}
	respond.OK(c, gin.H{
		"success": true,
		"items":   items,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) getReport(c *gin.Context) {
	report, err := h.Svc.Report(c.Request.Context(), middleware.OwnerIDFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Fail(c, http.StatusNotFound, ErrorCodeNotFound, "analysis not found")
		default:
			respond.Fail(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to render report")
		}
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", report)
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
