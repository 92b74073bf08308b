// Package account serves the signed-in user's own pages.
package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/booking"
	"github.com/jwalitptl/hospital-api/internal/service/catalog"
	"github.com/jwalitptl/hospital-api/internal/service/profile"
	"github.com/jwalitptl/hospital-api/internal/service/user"
)

const (
	MsgProfileUpdated   = "Profile updated."
	MsgPasswordUpdated  = "Your password was successfully updated!"
	MsgEmergencyUpdated = "Emergency contact updated."

	pathProfile          = "/profile/"
	pathEmergencyContact = "/emergency-contact/"
)

type Handler struct {
	users    *user.Service
	profiles *profile.Service
	booking  *booking.Service
	catalog  *catalog.Service
}

func NewHandler(users *user.Service, profiles *profile.Service, bookingSvc *booking.Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{
		users:    users,
		profiles: profiles,
		booking:  bookingSvc,
		catalog:  catalogSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	account := r.Group("", middleware.RequireLogin())
	{
		account.GET("/profile/", h.Profile)
		account.POST("/profile/", h.UpdateProfile)
		account.GET("/appointments/", h.Appointments)
		account.GET("/medical-history/", h.MedicalHistory)
		account.POST("/change-password/", h.ChangePassword)
		account.GET("/emergency-contact/", h.EmergencyContact)
		account.POST("/emergency-contact/", h.UpdateEmergencyContact)
	}
	r.GET("/patient_dashboard/", middleware.RequireRole(model.RolePatient), h.PatientDashboard)
}

func (h *Handler) currentUser(c *gin.Context) (*model.User, error) {
	id, _ := middleware.Identity(c)
	return h.users.Get(c.Request.Context(), id.UserID)
}

func (h *Handler) Profile(c *gin.Context) {
	id, _ := middleware.Identity(c)
	p, _, err := h.profiles.GetOrCreate(c.Request.Context(), id.UserID)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var form model.ProfileForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	id, _ := middleware.Identity(c)
	p, err := h.profiles.Update(c.Request.Context(), id.UserID, form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgProfileUpdated, handler.Redirect{
		RedirectTo: pathProfile,
		Result:     p,
	}))
}

// Appointments lists every appointment tied to the user, latest first.
func (h *Handler) Appointments(c *gin.Context) {
	u, err := h.currentUser(c)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	list, err := h.booking.ForPatientLatestFirst(c.Request.Context(), u)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, list)
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	id, _ := middleware.Identity(c)
	history, err := h.profiles.MedicalHistory(c.Request.Context(), id.UserID)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, history)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, nil)
		return
	}

	id, _ := middleware.Identity(c)
	if err := h.users.ChangePassword(c.Request.Context(), id.UserID, req); err != nil {
		handler.Fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgPasswordUpdated, handler.Redirect{RedirectTo: pathProfile}))
}

func (h *Handler) EmergencyContact(c *gin.Context) {
	id, _ := middleware.Identity(c)
	p, _, err := h.profiles.GetOrCreate(c.Request.Context(), id.UserID)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, model.EmergencyContactForm{
		Name:     p.EmergencyName,
		Relation: p.EmergencyRelation,
		Phone:    p.EmergencyPhone,
	})
}

func (h *Handler) UpdateEmergencyContact(c *gin.Context) {
	var form model.EmergencyContactForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	id, _ := middleware.Identity(c)
	p, err := h.profiles.UpdateEmergencyContact(c.Request.Context(), id.UserID, form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgEmergencyUpdated, handler.Redirect{
		RedirectTo: pathEmergencyContact,
		Result:     p,
	}))
}

type patientDashboard struct {
	Appointments []*model.Appointment `json:"appointments"`
	Services     []*model.Service     `json:"services"`
}

func (h *Handler) PatientDashboard(c *gin.Context) {
	u, err := h.currentUser(c)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	ctx := c.Request.Context()
	appointments, err := h.booking.ForPatient(ctx, u)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	services, err := h.catalog.ListAll(ctx)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, patientDashboard{Appointments: appointments, Services: services})
}
