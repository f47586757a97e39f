package dashboard

import (
	"net/http"

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
	api.GET("/dashboard", h.Get,
		auth.RequireRole(auth.RoleNurse, auth.RoleDoctor, auth.RolePatient, auth.RoleAdmin))
}

func (h *Handler) Get(c echo.Context) error {
	sess, ok := auth.SessionFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	stats, err := h.svc.Build(c.Request().Context(), sess)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
