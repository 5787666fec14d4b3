package appointment

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	appts := g.Group("/appointments")
	appts.POST("", h.create, auth.RequirePermission(auth.PermAppointmentCreate))
	appts.GET("", h.list, auth.RequirePermission(auth.PermAppointmentRead))
	appts.GET("/:appointmentId", h.get, auth.RequirePermission(auth.PermAppointmentRead))
	appts.PATCH("/:appointmentId", h.update, auth.RequirePermission(auth.PermAppointmentUpdate))
}

func (h *Handler) create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.KindValidation, "Invalid request body")
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) get(c echo.Context) error {
	a, err := h.svc.Get(c.Request().Context(), c.Param("appointmentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) update(c echo.Context) error {
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.KindValidation, "Invalid request body")
	}
	a, err := h.svc.Update(c.Request().Context(), c.Param("appointmentId"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) list(c echo.Context) error {
	f := Filter{
		PatientID: c.QueryParam("patientId"),
		DoctorID:  c.QueryParam("doctorId"),
		Status:    Status(c.QueryParam("status")),
	}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperr.E(apperr.KindValidation, "Invalid date format, expected YYYY-MM-DD")
		}
		f.Date = &d
	}

	p := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p))
}
