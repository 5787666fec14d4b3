package lab

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/lab-requests")
	g.POST("", h.Create, auth.RequirePermission(auth.PermLabCreate))
	g.GET("", h.List, auth.RequirePermission(auth.PermLabRead))
	g.GET("/:requestId", h.Get, auth.RequirePermission(auth.PermLabRead))
	g.PATCH("/:requestId/result", h.UpdateResult, auth.RequirePermission(auth.PermLabUpdate))
}

func (h *Handler) Create(c echo.Context) error {
	id := auth.IdentityFromContext(c.Request().Context())
	if id == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: user not found in request")
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Create(c.Request().Context(), id.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		PatientID: c.QueryParam("patientId"),
		Type:      Type(c.QueryParam("type")),
		Status:    Status(c.QueryParam("status")),
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateResult(c echo.Context) error {
	var in ResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateResult(c.Request().Context(), c.Param("requestId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}
