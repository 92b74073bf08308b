package appointment

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/booking"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

var statuses = []model.AppointmentStatus{
	model.AppointmentStatusPending,
	model.AppointmentStatusConfirmed,
	model.AppointmentStatusCompleted,
	model.AppointmentStatusCancelled,
}

type Handler struct {
	booking *booking.Service
	doctors *doctor.Service
	logger  zerolog.Logger
}

func NewHandler(bookingSvc *booking.Service, doctorSvc *doctor.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		booking: bookingSvc,
		doctors: doctorSvc,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/book-appointment/:doctor_id/", h.DoctorBookingForm)
	r.POST("/book-appointment/:doctor_id/", h.BookWithDoctor)
	r.GET("/appointment/", h.BookingForm)
	r.POST("/appointment/", h.Book)

	admin := r.Group("/admin_appointments", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/", h.List)
		admin.POST("/", h.BulkSetStatus)
	}
}

type doctorBooking struct {
	Doctor *model.Doctor         `json:"doctor"`
	Form   model.AppointmentForm `json:"form"`
}

func (h *Handler) DoctorBookingForm(c *gin.Context) {
	doc, err := h.doctor(c)
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, doctorBooking{Doctor: doc})
}

func (h *Handler) BookWithDoctor(c *gin.Context) {
	id, err := handler.ParamID(c, "doctor_id", "doctor")
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	var form model.AppointmentForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}
	h.book(c, &id, form)
}

type bookingOptions struct {
	Doctors  []*model.Doctor           `json:"doctors"`
	Statuses []model.AppointmentStatus `json:"statuses"`
}

func (h *Handler) BookingForm(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, bookingOptions{Doctors: doctors, Statuses: statuses})
}

func (h *Handler) Book(c *gin.Context) {
	var form model.AppointmentForm
	if err := handler.Bind(c, &form); err != nil {
		handler.Fail(c, err, form)
		return
	}
	h.book(c, nil, form)
}

func (h *Handler) book(c *gin.Context, doctorID *uuid.UUID, form model.AppointmentForm) {
	result, err := h.booking.Book(c.Request.Context(), doctorID, form)
	if err != nil {
		handler.Fail(c, err, form)
		return
	}
	handler.LogDeliveries(h.logger, c, result.Notifications)
	c.JSON(http.StatusCreated, handler.NewMessageResponse(result.Message, result))
}

func (h *Handler) doctor(c *gin.Context) (*model.Doctor, error) {
	id, err := handler.ParamID(c, "doctor_id", "doctor")
	if err != nil {
		return nil, err
	}
	return h.booking.Doctor(c.Request.Context(), id)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.booking.ListAll(c.Request.Context())
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}
	handler.OK(c, list)
}

type bulkResult struct {
	Updated int64 `json:"updated"`
}

func (h *Handler) BulkSetStatus(c *gin.Context) {
	var req model.BulkStatusRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err, req)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("Enter a valid identifier.", err), req)
			return
		}
		ids = append(ids, id)
	}

	n, err := h.booking.BulkSetStatus(c.Request.Context(), ids, model.AppointmentStatus(req.Status))
	if err != nil {
		handler.Fail(c, err, req)
		return
	}
	msg := fmt.Sprintf("%d appointment(s) marked as %s.", n, req.Status)
	c.JSON(http.StatusOK, handler.NewMessageResponse(msg, bulkResult{Updated: n}))
}
