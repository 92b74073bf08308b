// Package doctor serves the pages of signed-in doctors.
package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/booking"
	"github.com/jwalitptl/hospital-api/internal/service/catalog"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/user"
)

const MsgProfileUpdated = "Profile updated."

type Handler struct {
	users   *user.Service
	doctors *doctor.Service
	booking *booking.Service
	catalog *catalog.Service
}

func NewHandler(users *user.Service, doctors *doctor.Service, bookingSvc *booking.Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{
		users:   users,
		doctors: doctors,
		booking: bookingSvc,
		catalog: catalogSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("", middleware.RequireRole(model.RoleDoctor))
	{
		doctors.GET("/doctor_dashboard/", h.Dashboard)
		doctors.GET("/doctor/profile/", h.Profile)
		doctors.POST("/doctor/profile/", h.UpdateProfile)
	}
}

// current returns the doctor record of the signed-in user, creating it on
// first visit.
func (h *Handler) current(c *gin.Context) (*model.User, *model.Doctor, error) {
	id, _ := middleware.Identity(c)
	u, err := h.users.Get(c.Request.Context(), id.UserID)
	if err != nil {
		return nil, nil, err
	}
	d, err := h.doctors.ForUser(c.Request.Context(), u)
	if err != nil {
		return nil, nil, err
	}
	return u, d, nil
}

type dashboard struct {
	Doctor       *model.Doctor        `json:"doctor"`
	Appointments []*model.Appointment `json:"appointments"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	_, d, err := h.current(c)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	list, err := h.booking.ForDoctor(c.Request.Context(), d.ID)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, dashboard{Doctor: d, Appointments: list})
}

type profilePage struct {
	Doctor   *model.Doctor    `json:"doctor"`
	Services []*model.Service `json:"services"`
}

func (h *Handler) Profile(c *gin.Context) {
	_, d, err := h.current(c)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	services, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, profilePage{Doctor: d, Services: services})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var form model.DoctorProfileForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	id, _ := middleware.Identity(c)
	u, err := h.users.Get(c.Request.Context(), id.UserID)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	d, err := h.doctors.UpdateProfile(c.Request.Context(), u, form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgProfileUpdated, handler.Redirect{
		RedirectTo: dispatch.PathDoctorDashboard,
		Result:     d,
	}))
}
