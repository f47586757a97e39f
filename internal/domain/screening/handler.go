package screening

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ganeshcj/Optimedix/internal/domain/prescription"
	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
	"github.com/Ganeshcj/Optimedix/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := auth.RequireRole(auth.RoleNurse, auth.RoleDoctor, auth.RoleAdmin)
	api.POST("/patients/:id/screenings", h.Screen, auth.RequireRole(auth.RoleNurse))
	api.GET("/screenings", h.List, read)
	api.GET("/screenings/:id", h.Get, read)
	api.POST("/screenings/:id/refer", h.Refer, auth.RequireRole(auth.RoleNurse))
	api.POST("/screenings/:id/review", h.Review, auth.RequireRole(auth.RoleDoctor))
}

// imagePayload is one captured image, base64-encoded.
type imagePayload struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type screenRequest struct {
	LeftImage  *imagePayload `json:"left_image"`
	RightImage *imagePayload `json:"right_image"`
}

func decodeImage(p *imagePayload) (*ai.Image, error) {
	if p == nil {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, err
	}
	mime := p.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &ai.Image{MIMEType: mime, Data: data}, nil
}

func (h *Handler) Screen(c echo.Context) error {
	sess, ok := auth.SessionFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var req screenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	left, err := decodeImage(req.LeftImage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "left_image: invalid base64 data")
	}
	right, err := decodeImage(req.RightImage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "right_image: invalid base64 data")
	}

	result, err := h.svc.Screen(c.Request().Context(), patientID, sess.UserID, ScreenInput{Left: left, Right: right})
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrNoImages):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrPatientNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAnalysisInFlight):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ai.ErrAnalysisFailed):
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	result, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "screening result not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	results, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if status := c.QueryParam("status"); status != "" {
		filtered := results[:0]
		for _, r := range results {
			if r.Status == status {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	total := len(results)
	lo, hi := pg.Slice(total)
	return c.JSON(http.StatusOK, pagination.NewResponse(results[lo:hi], total, pg))
}

func (h *Handler) Refer(c echo.Context) error {
	return h.lifecycle(c, ActionRefer)
}

func (h *Handler) Review(c echo.Context) error {
	return h.lifecycle(c, ActionReview)
}

func (h *Handler) lifecycle(c echo.Context, action string) error {
	sess, ok := auth.SessionFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var result *ScreeningResult
	if action == ActionReview {
		var in prescription.Input
		if err := c.Bind(&in); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		result, err = h.svc.Review(c.Request().Context(), id, sess, in)
	} else {
		result, err = h.svc.Refer(c.Request().Context(), id, sess)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrResultNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRoleNotAllowed):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrUnknownAction):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, result)
}
