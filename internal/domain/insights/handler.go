package insights

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitaltrack/vitaltrack/internal/platform/auth"
	"github.com/vitaltrack/vitaltrack/internal/platform/genai"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/insights", h.Narrative)
}

func (h *Handler) Narrative(c echo.Context) error {
	uid, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	text, err := h.svc.Narrative(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, genai.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, "insights service unavailable; check your connection")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate insights")
	}
	return c.JSON(http.StatusOK, map[string]string{"narrative": text})
}
