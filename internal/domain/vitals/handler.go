package vitals

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitaltrack/vitaltrack/internal/platform/auth"
	"github.com/vitaltrack/vitaltrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/vitals", h.Record)
	api.GET("/vitals/latest", h.GetLatest)
	api.PUT("/vitals/latest", h.ReplaceLatest)
	api.DELETE("/vitals/latest", h.DeleteLatest)
	api.GET("/vitals/history", h.ListHistory)
	api.GET("/vitals/history/range", h.ListRange)
	api.GET("/vitals/dashboard", h.Dashboard)
	api.GET("/vitals/export", h.Export)
}

func userID(c echo.Context) (uuid.UUID, error) {
	uid, ok := auth.UserID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return uid, nil
}

func (h *Handler) Record(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var rec VitalRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	saved, err := h.svc.Record(c.Request().Context(), uid, &rec)
	if err != nil {
		if errors.Is(err, ErrEmptyRecord) {
			return echo.NewHTTPError(http.StatusBadRequest, "at least one vital sign is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save vitals")
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *Handler) GetLatest(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	latest, err := h.svc.Latest(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch vitals")
	}
	return c.JSON(http.StatusOK, latest)
}

func (h *Handler) ReplaceLatest(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var rec VitalRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ReplaceLatest(c.Request().Context(), uid, &rec); err != nil {
		if errors.Is(err, ErrEmptyRecord) {
			return echo.NewHTTPError(http.StatusBadRequest, "at least one vital sign is required")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save vitals")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteLatest(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.svc.ClearLatest(c.Request().Context(), uid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete vitals")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHistory(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	items, total, err := h.svc.HistoryPage(c.Request().Context(), uid, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch history")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) ListRange(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be an RFC3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be an RFC3339 timestamp")
	}
	if end.Before(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end must not precede start")
	}
	items, err := h.svc.HistoryRange(c.Request().Context(), uid, start, end)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch history")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Dashboard(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	cards, err := h.svc.Dashboard(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build dashboard")
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *Handler) Export(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	records, err := h.svc.History(c.Request().Context(), uid, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch history")
	}

	stamp := time.Now().Format("2006-01-02")
	switch format := c.QueryParam("format"); format {
	case "", "csv":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="vitals-%s.csv"`, stamp))
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().WriteHeader(http.StatusOK)
		return WriteCSV(c.Response(), records)
	case "json":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="vitals-%s.json"`, stamp))
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c.Response().WriteHeader(http.StatusOK)
		return WriteJSON(c.Response(), records, time.Now())
	case "xlsx":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="vitals-%s.xlsx"`, stamp))
		c.Response().Header().Set(echo.HeaderContentType,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Response().WriteHeader(http.StatusOK)
		return WriteXLSX(c.Response(), records)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv, json, or xlsx")
	}
}
