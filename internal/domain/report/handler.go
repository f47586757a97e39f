package report

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/:resultId", h.Get,
		auth.RequireRole(auth.RoleNurse, auth.RoleDoctor, auth.RolePatient, auth.RoleAdmin))
}

func (h *Handler) Get(c echo.Context) error {
	sess, ok := auth.SessionFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	resultID, err := uuid.Parse(c.Param("resultId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid result id")
	}

	r, err := h.svc.Build(c.Request().Context(), resultID, sess.Role)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}
