package extraction

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitaltrack/vitaltrack/internal/domain/vitals"
	"github.com/vitaltrack/vitaltrack/internal/platform/auth"
	"github.com/vitaltrack/vitaltrack/internal/platform/genai"
)

// 10 MB cap keeps phone camera photos in and rules out bulk uploads.
const maxDocumentBytes = 10 << 20

type Handler struct {
	extractor *Extractor
	svc       *vitals.Service
}

func NewHandler(extractor *Extractor, svc *vitals.Service) *Handler {
	return &Handler{extractor: extractor, svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/extract", h.Extract)
}

type extractRequest struct {
	// Document is the base64-encoded file content.
	Document string `json:"document"`
	MimeType string `json:"mimeType"`
	// Save controls whether found vitals are written through the normal
	// record path with source=imported.
	Save bool `json:"save"`
}

type extractResponse struct {
	Found  bool                `json:"found"`
	Vitals *vitals.VitalRecord `json:"vitals,omitempty"`
	Saved  bool                `json:"saved"`
}

func (h *Handler) Extract(c echo.Context) error {
	uid, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Document == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document is required")
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}
	doc, err := base64.StdEncoding.DecodeString(req.Document)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "document must be base64-encoded")
	}
	if len(doc) > maxDocumentBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds 10 MB")
	}

	rec, err := h.extractor.Extract(c.Request().Context(), doc, req.MimeType)
	switch {
	case errors.Is(err, ErrFormat):
		// Distinct from connectivity problems: the client should suggest
		// retaking the photo.
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "could not read vitals from document; try a clearer photo")
	case errors.Is(err, genai.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "extraction service unavailable; check your connection")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "extraction failed")
	}

	// No vitals found is a normal outcome (lab reports etc.); nothing may
	// be written in that case.
	if !rec.HasVitals() {
		return c.JSON(http.StatusOK, extractResponse{Found: false})
	}

	resp := extractResponse{Found: true, Vitals: rec}
	if req.Save {
		saved, err := h.svc.Record(c.Request().Context(), uid, rec)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to save extracted vitals")
		}
		resp.Vitals = saved
		resp.Saved = true
	}
	return c.JSON(http.StatusOK, resp)
}
