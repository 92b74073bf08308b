package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/model"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

// NewMessageResponse is a success response carrying a user-facing message.
func NewMessageResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// FormError is the data of a rejected submission: what was sent and what
// was wrong with it.
type FormError struct {
	Form   interface{} `json:"form,omitempty"`
	Errors interface{} `json:"errors,omitempty"`
}

// Redirect is the data of a response that tells the client where to go.
type Redirect struct {
	RedirectTo string      `json:"redirect_to"`
	Result     interface{} `json:"result,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

// MsgCorrectErrors is the message of a submission rejected by binding.
const MsgCorrectErrors = "Please correct the errors below."

// Bind decodes the JSON or form body into obj. Binding and validation
// failures come back as a bad request carrying field errors.
func Bind(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		return apperrors.BadRequest(MsgCorrectErrors, err).WithDetails(validator.Fields(err))
	}
	return nil
}

// Fail hands err to the error middleware. A non-nil form is echoed back.
func Fail(c *gin.Context, err error, form interface{}) {
	ginErr := c.Error(err)
	if form != nil {
		ginErr.SetMeta(form)
	}
}

// ParamID parses a uuid path parameter. Malformed ids are reported as
// missing resources.
func ParamID(c *gin.Context, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NotFound(resource, err)
	}
	return id, nil
}

// LogDeliveries reports failed notifications. They never fail the request.
func LogDeliveries(logger zerolog.Logger, c *gin.Context, results []model.DeliveryResult) {
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		logger.Warn().
			Str("request_id", c.GetString("request_id")).
			Str("kind", r.Kind).
			Str("channel", r.Channel).
			Str("recipient", r.Recipient).
			Str("reason", r.Reason).
			Msg("notification not delivered")
	}
}
