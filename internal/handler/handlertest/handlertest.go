// Package handlertest builds an in-memory application for handler tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/app"
	"github.com/jwalitptl/hospital-api/internal/email"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/notification"
	"github.com/jwalitptl/hospital-api/internal/service/user"
	jwtauth "github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

const (
	CookieName = "session"
	AdminEmail = "ops@hospital.test"
)

// Env is a fully wired application backed by memory repositories.
type Env struct {
	Store    *repository.Store
	Outbox   *email.Outbox
	Broker   *messaging.MemoryBroker
	Metrics  *metrics.Metrics
	Services *app.Services
	Logger   zerolog.Logger
	Engine   *gin.Engine
}

func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.RegisterBinding()

	store := memory.NewStore()
	outbox := email.NewOutbox()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })
	m := metrics.New("test")

	svcs := app.NewServices(app.Deps{
		Store:    store,
		Sender:   outbox,
		Renderer: email.MustRenderer(),
		Broker:   broker,
		Metrics:  m,
		Hasher:   security.NewBcryptHasher(bcrypt.MinCost),
		JWT:      jwtauth.NewJWTService("test-secret", "hospital-test", time.Hour),
		Notification: notification.Config{
			From:     "noreply@hospital.test",
			SiteName: "HospitalCare",
			Admins:   []string{AdminEmail},
		},
	})

	logger := zerolog.Nop()
	engine := gin.New()
	engine.Use(
		middleware.ErrorHandler(logger),
		middleware.NewAuthMiddleware(svcs.Auth, CookieName).Authenticate(),
	)

	return &Env{
		Store:    store,
		Outbox:   outbox,
		Broker:   broker,
		Metrics:  m,
		Services: svcs,
		Logger:   logger,
		Engine:   engine,
	}
}

// Routes is where handlers under test register themselves.
func (e *Env) Routes() *gin.RouterGroup {
	return &e.Engine.RouterGroup
}

// SignUp creates a user with the given role and returns it with a valid
// session token.
func (e *Env) SignUp(t *testing.T, username string, role model.Role) (*model.User, string) {
	t.Helper()
	ctx := context.Background()
	u, err := e.Services.Users.Create(ctx, user.CreateInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "password123",
		Role:      role,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
	})
	require.NoError(t, err)
	session, err := e.Services.Auth.Login(ctx, model.LoginRequest{Username: username, Password: "password123"})
	require.NoError(t, err)
	return u, session.Token
}

// Request describes one call against the engine.
type Request struct {
	Method string
	Path   string
	Token  string
	Form   url.Values
	JSON   interface{}
}

func (e *Env) Do(t *testing.T, r Request) *httptest.ResponseRecorder {
	t.Helper()
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	switch {
	case r.JSON != nil:
		body, err := json.Marshal(r.JSON)
		require.NoError(t, err)
		req = httptest.NewRequest(method, r.Path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	case r.Form != nil:
		req = httptest.NewRequest(method, r.Path, strings.NewReader(r.Form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		req = httptest.NewRequest(method, r.Path, nil)
	}
	if r.Token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: r.Token})
	}

	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)
	return w
}

// Get is a shorthand for an optionally authenticated GET.
func (e *Env) Get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.Do(t, Request{Path: path, Token: token})
}

// Post submits an urlencoded form.
func (e *Env) Post(t *testing.T, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return e.Do(t, Request{Method: http.MethodPost, Path: path, Token: token, Form: form})
}

// Envelope is the decoded response body. Data is left raw so tests can
// decode it into whatever shape the endpoint returns.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func Decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// DecodeData decodes the envelope's data into v.
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) Envelope {
	t.Helper()
	env := Decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
	return env
}

// FormErrors is the data of a rejected submission.
type FormErrors struct {
	Form   map[string]interface{} `json:"form"`
	Errors []validator.FieldError `json:"errors"`
}
