package auth

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/handler/handlertest"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/dispatch"
)

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	env := handlertest.New(t)
	NewHandler(env.Services.Auth, CookieConfig{Name: handlertest.CookieName}).RegisterRoutes(env.Routes())
	return env
}

type sessionData struct {
	RedirectTo string `json:"redirect_to"`
	Result     struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	} `json:"result"`
}

func sessionCookie(w *http.Response) *http.Cookie {
	for _, c := range w.Cookies() {
		if c.Name == handlertest.CookieName {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	env := setup(t)

	w := env.Post(t, "/register/", "", url.Values{
		"username":  {"newdoc"},
		"email":     {"newdoc@example.com"},
		"role":      {"doctor"},
		"password1": {"correct-horse"},
		"password2": {"correct-horse"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data sessionData
	handlertest.DecodeData(t, w, &data)
	assert.Equal(t, dispatch.PathDoctorDashboard, data.RedirectTo)
	assert.Equal(t, model.RoleDoctor, data.Result.User.Role)

	cookie := sessionCookie(w.Result())
	require.NotNil(t, cookie)
	assert.Equal(t, data.Result.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestRegister_ValidationDoesNotEchoPasswords(t *testing.T) {
	env := setup(t)

	w := env.Post(t, "/register/", "", url.Values{
		"username":  {"x"},
		"email":     {"not-an-email"},
		"role":      {"patient"},
		"password1": {"correct-horse"},
		"password2": {"different-horse"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var data handlertest.FormErrors
	handlertest.DecodeData(t, w, &data)
	assert.Equal(t, "x", data.Form["username"])
	assert.Equal(t, "", data.Form["password1"])
	assert.NotEmpty(t, data.Errors)
	assert.NotContains(t, w.Body.String(), "correct-horse")
}

func TestLogin(t *testing.T) {
	env := setup(t)
	env.SignUp(t, "pat", model.RolePatient)

	w := env.Post(t, "/login/", "", url.Values{"username": {"pat"}, "password": {"wrong-password"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, auth.MsgInvalidLogin, handlertest.Decode(t, w).Message)

	w = env.Post(t, "/login/", "", url.Values{"username": {"pat"}, "password": {"password123"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data sessionData
	handlertest.DecodeData(t, w, &data)
	assert.Equal(t, dispatch.PathPatientDashboard, data.RedirectTo)
	assert.NotNil(t, sessionCookie(w.Result()))
}

func TestSignedInUsersAreRedirected(t *testing.T) {
	env := setup(t)
	_, token := env.SignUp(t, "pat", model.RolePatient)

	for _, path := range []string{"/login/", "/register/"} {
		w := env.Get(t, path, token)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/", w.Header().Get("Location"), path)
	}
}

func TestDashboardAndLogout(t *testing.T) {
	env := setup(t)
	_, token := env.SignUp(t, "boss", model.RoleAdmin)

	w := env.Get(t, "/dashboard/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/", w.Header().Get("Location"))

	w = env.Get(t, "/dashboard/", token)
	require.Equal(t, http.StatusOK, w.Code)
	var data sessionData
	handlertest.DecodeData(t, w, &data)
	assert.Equal(t, dispatch.PathAdminDashboard, data.RedirectTo)

	w = env.Get(t, "/logout/", token)
	require.Equal(t, http.StatusOK, w.Code)
	handlertest.DecodeData(t, w, &data)
	assert.Equal(t, dispatch.PathIndex, data.RedirectTo)
	cookie := sessionCookie(w.Result())
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	w = env.Get(t, "/dashboard/", token)
	assert.Equal(t, http.StatusFound, w.Code, "revoked token must no longer authenticate")
}
