// Package public serves the pages anyone can reach without signing in.
package public

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/catalog"
	"github.com/jwalitptl/hospital-api/internal/service/contact"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/facility"
)

type Handler struct {
	catalog  *catalog.Service
	contacts *contact.Service
	doctors  *doctor.Service
	facility *facility.Service
	logger   zerolog.Logger
}

func NewHandler(
	catalogSvc *catalog.Service,
	contactSvc *contact.Service,
	doctorSvc *doctor.Service,
	facilitySvc *facility.Service,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		contacts: contactSvc,
		doctors:  doctorSvc,
		facility: facilitySvc,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Index)
	r.GET("/contact/", h.ContactForm)
	r.POST("/contact/", h.SubmitContact)
	r.GET("/services/", h.ListServices)
	r.GET("/services/:slug/", h.ServiceDetail)
	r.POST("/services/:slug/", h.SubmitService)
	r.GET("/doctors/", h.ListDoctors)
	r.GET("/facility/", h.Facility)
}

type landing struct {
	Services []*model.Service `json:"services"`
	Facility *model.Facility  `json:"facility"`
}

func (h *Handler) Index(c *gin.Context) {
	services, err := h.catalog.Newest(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	fac, err := h.facility.Get(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, landing{Services: services, Facility: fac})
}

func (h *Handler) ContactForm(c *gin.Context) {
	handler.OK(c, model.ContactForm{})
}

func (h *Handler) SubmitContact(c *gin.Context) {
	var form model.ContactForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	result, err := h.contacts.Submit(c.Request.Context(), form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	handler.LogDeliveries(h.logger, c, result.Notifications)
	c.JSON(http.StatusCreated, handler.NewMessageResponse(result.Message, result))
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, services)
}

func (h *Handler) ServiceDetail(c *gin.Context) {
	detail, err := h.catalog.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, detail)
}

// SubmitService runs the triage and lab lookup widgets. Results come back
// on the detail itself.
func (h *Handler) SubmitService(c *gin.Context) {
	var req model.TriageRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, req)
		return
	}

	detail, err := h.catalog.Submit(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		handler.Fail(c, err, req)
		return
	}
	handler.OK(c, detail)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, doctors)
}

func (h *Handler) Facility(c *gin.Context) {
	fac, err := h.facility.Get(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, fac)
}
