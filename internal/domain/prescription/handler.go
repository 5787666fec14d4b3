package prescription

import (
	"net/http"
	"time"

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
	g := api.Group("/prescriptions")
	g.POST("", h.Create, auth.RequirePermission(auth.PermPrescriptionCreate))
	g.GET("", h.List, auth.RequirePermission(auth.PermPrescriptionRead))
	g.GET("/:prescriptionId", h.Get, auth.RequirePermission(auth.PermPrescriptionRead))
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
	p, err := h.svc.Create(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	scope := auth.DepartmentScope(auth.IdentityFromContext(ctx))
	p, err := h.svc.Get(ctx, scope, c.Param("prescriptionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	f := Filter{PatientID: c.QueryParam("patientId")}
	if v := c.QueryParam("fromDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return err
		}
		f.FromDate = &t
	}
	if v := c.QueryParam("toDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return err
		}
		end := t.Add(24*time.Hour - time.Millisecond)
		f.ToDate = &end
	}

	scope := auth.DepartmentScope(auth.IdentityFromContext(ctx))
	items, total, err := h.svc.List(ctx, f, scope, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
