// Package admin serves the administrator dashboard and management pages.
package admin

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/catalog"
	"github.com/jwalitptl/hospital-api/internal/service/contact"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
	"github.com/jwalitptl/hospital-api/internal/service/export"
	"github.com/jwalitptl/hospital-api/internal/service/facility"
	"github.com/jwalitptl/hospital-api/internal/service/notification"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	"github.com/jwalitptl/hospital-api/internal/service/user"
)

const (
	MsgSettingsUpdated = "Notification settings updated!"
	MsgContactDeleted  = "Contact message deleted."
	MsgFacilityUpdated = "Facility information updated."
)

type Handler struct {
	users         *user.Service
	contacts      *contact.Service
	patients      *patient.Service
	catalog       *catalog.Service
	facility      *facility.Service
	export        *export.Service
	inbox         *notification.Inbox
}

func NewHandler(
	users *user.Service,
	contacts *contact.Service,
	patients *patient.Service,
	catalogSvc *catalog.Service,
	facilitySvc *facility.Service,
	exportSvc *export.Service,
	inbox *notification.Inbox,
) *Handler {
	return &Handler{
		users:         users,
		contacts:      contacts,
		patients:      patients,
		catalog:       catalogSvc,
		facility:      facilitySvc,
		export:        exportSvc,
		inbox:         inbox,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/admin_dashboard/", h.Dashboard)
		admin.POST("/admin_dashboard/", h.UpdateSettings)

		admin.GET("/contacts/:id/", h.Contact)
		admin.POST("/contacts/:id/delete/", h.DeleteContact)

		manage := admin.Group("/manage")
		{
			manage.GET("/export/patients/csv/", h.ExportPatients)
			manage.GET("/facility/", h.Facility)
			manage.POST("/facility/", h.UpdateFacility)
			manage.GET("/services/", h.ListServices)
			manage.POST("/services/", h.CreateService)
			manage.POST("/lab-samples/", h.CreateLabSample)
		}
	}
}

type settings struct {
	NotificationEmail  string                   `json:"notification_email"`
	NotificationMethod model.NotificationMethod `json:"notification_method"`
}

type dashboard struct {
	Contacts      []*model.Contact      `json:"contacts"`
	Patients      []*model.Patient      `json:"patients"`
	Admin         *model.User           `json:"admin"`
	Settings      settings              `json:"settings"`
	Notifications []*model.Notification `json:"notifications"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := middleware.Identity(c)

	me, err := h.users.Get(ctx, id.UserID)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	contacts, err := h.contacts.List(ctx)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	patients, err := h.patients.List(ctx)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	inbox, err := h.inbox.List(ctx, me.ID)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}

	handler.OK(c, dashboard{
		Contacts:      contacts,
		Patients:      patients,
		Admin:         me,
		Settings:      settings{NotificationEmail: me.NotificationEmail, NotificationMethod: me.NotificationMethod},
		Notifications: inbox,
	})
}

// UpdateSettings keeps any setting left out of the submission.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req model.NotificationSettingsRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, req)
		return
	}

	id, _ := middleware.Identity(c)
	me, err := h.users.UpdateNotificationSettings(c.Request.Context(), id.UserID, req.NotificationEmail, req.NotificationMethod)
	if err != nil {
		handler.Fail(c, err, req)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgSettingsUpdated, handler.Redirect{
		RedirectTo: dispatch.PathAdminDashboard,
		Result:     settings{NotificationEmail: me.NotificationEmail, NotificationMethod: me.NotificationMethod},
	}))
}

func (h *Handler) Contact(c *gin.Context) {
	id, err := handler.ParamID(c, "id", "contact")
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	msg, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, msg)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	id, err := handler.ParamID(c, "id", "contact")
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		handler.Fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgContactDeleted, handler.Redirect{RedirectTo: dispatch.PathAdminDashboard}))
}

// ExportPatients renders the whole file before sending so that a listing
// failure still produces an error response.
func (h *Handler) ExportPatients(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.WritePatients(c.Request.Context(), &buf); err != nil {
		handler.Fail(c, err, nil)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.PatientsFilename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) Facility(c *gin.Context) {
	fac, err := h.facility.GetOrCreate(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, fac)
}

func (h *Handler) UpdateFacility(c *gin.Context) {
	var form model.FacilityForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}

	fac, err := h.facility.Update(c.Request.Context(), form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse(MsgFacilityUpdated, handler.Redirect{
		RedirectTo: dispatch.PathAdminDashboard,
		Result:     fac,
	}))
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, services)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, req)
		return
	}

	svc, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		handler.Fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(svc))
}

func (h *Handler) CreateLabSample(c *gin.Context) {
	var req model.CreateLabSampleRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, req)
		return
	}

	sample, err := h.catalog.CreateLabSample(c.Request.Context(), req)
	if err != nil {
		handler.Fail(c, err, req)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sample))
}
