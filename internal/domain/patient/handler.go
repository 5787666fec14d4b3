package patient

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
	g := api.Group("/patients")
	g.POST("", h.Create, auth.RequirePermission(auth.PermPatientCreate))
	g.GET("", h.List, auth.RequirePermission(auth.PermPatientRead))
	g.GET("/:patientId", h.Get, auth.RequirePermission(auth.PermPatientRead))
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
	p, err := h.svc.Create(c.Request().Context(), id.TenantID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.GetByPatientID(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	f := Filter{
		PatientID:   c.QueryParam("patientId"),
		Name:        c.QueryParam("name"),
		Phone:       c.QueryParam("phone"),
		Email:       c.QueryParam("email"),
		PatientType: Type(c.QueryParam("patientType")),
		Department:  c.QueryParam("department"),
		DoctorID:    c.QueryParam("doctorId"),
	}
	var err error
	if f.FromDate, err = parseDate(c.QueryParam("fromDate")); err != nil {
		return err
	}
	if f.ToDate, err = parseDate(c.QueryParam("toDate")); err != nil {
		return err
	}
	if f.ToDate != nil {
		// Include the whole end day.
		end := f.ToDate.Add(24*time.Hour - time.Millisecond)
		f.ToDate = &end
	}

	scope := auth.DepartmentScope(auth.IdentityFromContext(ctx))
	patients, total, err := h.svc.List(ctx, f, scope, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg))
}
