package prescription

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
	"github.com/Ganeshcj/Optimedix/pkg/pagination"
)

// Handler serves read-only prescription routes. Creation happens as a side
// effect of the doctor review operation in the screening domain.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin)
	api.GET("/prescriptions", h.List, role)
	api.GET("/prescriptions/:id", h.Get, role)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPrescriptionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	prescriptions, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total := len(prescriptions)
	lo, hi := pg.Slice(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(prescriptions[lo:hi], total, pg))
}
