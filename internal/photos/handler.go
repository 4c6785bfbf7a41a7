// Package photos accepts tire photo uploads and hands back the imageUrl the
// analyze endpoint expects.
package photos

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tire-backend/internal/shared/server/middleware"
	"tire-backend/internal/shared/server/respond"
	"tire-backend/internal/shared/storage/object"
	"tire-backend/internal/shared/telemetry"
	"tire-backend/internal/vision"
)

const (
	maxPhotoBytes  = vision.MaxImageBytes
	formOverhead   = 1 << 20
	presignExpires = 15 * time.Minute
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Presigner issues direct-upload URLs. *s3.Presigner implements it.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
}

// Handler serves photo uploads. Presign is nil when direct uploads are not configured.
type Handler struct {
	Store   object.Store
	Presign Presigner
}

func NewHandler(store object.Store, presign Presigner) *Handler {
	return &Handler{Store: store, Presign: presign}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/photos", h.upload)
	rg.POST("/photos/presign", h.presign)
}

type uploadResponse struct {
	Success     bool   `json:"success"`
	ImageURL    string `json:"imageUrl"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

func (h *Handler) upload(c *gin.Context) {
	if h.Store == nil {
		respond.Fail(c, http.StatusServiceUnavailable, "storage_unavailable", "Fotoğraf yükleme şu anda kullanılamıyor.")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Fail(c, http.StatusRequestEntityTooLarge, "file_too_large", "Fotoğraf en fazla 8 MB olabilir.")
			return
		}
		respond.Fail(c, http.StatusBadRequest, "validation_error", "file is required")
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		respond.Fail(c, http.StatusRequestEntityTooLarge, "file_too_large", "Fotoğraf en fazla 8 MB olabilir.")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "unable to read file")
		return
	}
	defer f.Close()

	owner := middleware.OwnerIDFromContext(c)
	obj, err := h.Store.Save(c.Request.Context(), owner, fileHeader.Filename, f)
	if err != nil {
		switch {
		case errors.Is(err, object.ErrNotImage):
			respond.Fail(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Yalnızca fotoğraf yüklenebilir.")
		default:
			telemetry.Error("photos.save_failed", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"owner_id":   owner,
				"error":      err.Error(),
			})
			respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to store photo")
		}
		return
	}

	telemetry.Info("photos.saved", map[string]any{
		"request_id":   middleware.RequestIDFromContext(c),
		"owner_id":     owner,
		"key":          obj.Key,
		"size":         obj.Size,
		"content_type": obj.ContentType,
	})
	respond.JSON(c, http.StatusCreated, uploadResponse{
		Success:     true,
		ImageURL:    vision.StoreScheme + obj.Key,
		Key:         obj.Key,
		Size:        obj.Size,
		ContentType: obj.ContentType,
	})
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	Success          bool   `json:"success"`
	UploadURL        string `json:"uploadUrl"`
	ImageURL         string `json:"imageUrl"`
	Key              string `json:"key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

func (h *Handler) presign(c *gin.Context) {
	if h.Presign == nil {
		respond.Fail(c, http.StatusNotImplemented, "presign_unavailable", "direct uploads are not configured")
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.ToLower(strings.TrimSpace(req.ContentType))

	if req.FileName == "" {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "fileName is required")
		return
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "contentType is not allowed")
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxPhotoBytes {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit")
		return
	}

	key, err := object.NewKey(middleware.OwnerIDFromContext(c), req.FileName)
	if err != nil {
		respond.Fail(c, http.StatusBadRequest, "validation_error", "invalid fileName")
		return
	}

	url, err := h.Presign.PresignPut(c.Request.Context(), key, req.ContentType, presignExpires)
	if err != nil {
		telemetry.Error("photos.presign_failed", map[string]any{
			"request_id":   middleware.RequestIDFromContext(c),
			"key":          key,
			"content_type": req.ContentType,
			"size_bytes":   req.SizeBytes,
			"error":        err.Error(),
		})
		respond.Fail(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url")
		return
	}

	respond.OK(c, presignResponse{
		Success:          true,
		UploadURL:        url,
		ImageURL:         vision.StoreScheme + key,
		Key:              key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}
