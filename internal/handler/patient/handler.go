package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
)

const (
	MsgPatientCreated = "Patient created."
	MsgPatientUpdated = "Patient updated."
	MsgPatientDeleted = "Patient deleted."
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("", middleware.RequireRole(model.RoleAdmin))
	{
		patients.GET("/add/", h.NewPatientForm)
		patients.POST("/add/", h.CreatePatient)
		patients.GET("/update/:id/", h.GetPatient)
		patients.POST("/update/:id/", h.UpdatePatient)
		patients.POST("/delete/:id/", h.DeletePatient)
	}
}

func (h *Handler) NewPatientForm(c *gin.Context) {
	handler.OK(c, model.PatientForm{})
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var form model.PatientForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	p, err := h.service.Create(c.Request.Context(), form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	c.JSON(http.StatusCreated, handler.NewMessageResponse(MsgPatientCreated, handler.Redirect{
		RedirectTo: dispatch.PathAdminDashboard,
		Result:     p,
	}))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := handler.ParamID(c, "id", "patient")
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := handler.ParamID(c, "id", "patient")
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	var form model.PatientForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgPatientUpdated, handler.Redirect{
		RedirectTo: dispatch.PathAdminDashboard,
		Result:     p,
	}))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := handler.ParamID(c, "id", "patient")
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.Fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgPatientDeleted, handler.Redirect{RedirectTo: dispatch.PathAdminDashboard}))
}
