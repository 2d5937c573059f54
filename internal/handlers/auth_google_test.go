package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/account"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/testkit"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

func googleApp(t *testing.T, info *googleUserInfo, infoErr error) *fiber.App {
	t.Helper()

	accounts := account.NewService(testkit.OpenDB(t))
	_, err := accounts.RegisterClient(context.Background(), account.ClientRegistration{
		Email:    "owner@acme.ng",
		Password: "supersecret",
		Name:     "Owner",
		Country:  "Nigeria",
	})
	require.NoError(t, err)

	h := &GoogleOAuthHandler{
		Accounts:        accounts,
		JWTSecret:       "test-secret",
		Expires:         60,
		GoogleClientID:  "client-id",
		FrontendBaseURL: "http://front.test/",
		UserInfo: func(context.Context, string) (*googleUserInfo, error) {
			return info, infoErr
		},
	}
	app := fiber.New()
	app.Get("/start", h.GoogleStart)
	app.Get("/callback", h.GoogleCallback)
	return app
}

func callback(t *testing.T, app *fiber.App, state, cookieState string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state="+state, nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: cookieState})
	req.AddCookie(&http.Cookie{Name: "oauth_next", Value: "/dashboard"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == utils.CookieName {
			return ck.Value
		}
	}
	return ""
}

func TestGoogleStartRedirectsToConsent(t *testing.T) {
	app := googleApp(t, nil, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/start?next=/jobs", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
	assert.NotEmpty(t, loc.Query().Get("state"))
}

func TestGoogleCallbackSignsInExistingUser(t *testing.T) {
	app := googleApp(t, &googleUserInfo{Email: "Owner@Acme.ng", VerifiedEmail: true}, nil)

	resp := callback(t, app, "s1", "s1")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "http://front.test/dashboard", resp.Header.Get("Location"))

	claims, err := utils.ParseJWT("test-secret", sessionCookie(resp))
	require.NoError(t, err)
	assert.Equal(t, "client", claims.Role)
}

func TestGoogleCallbackUnknownEmailGoesToJoin(t *testing.T) {
	app := googleApp(t, &googleUserInfo{Email: "new@acme.ng", VerifiedEmail: true}, nil)

	resp := callback(t, app, "s1", "s1")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "http://front.test/join?email=new%40acme.ng", resp.Header.Get("Location"))
	assert.Empty(t, sessionCookie(resp))
}

func TestGoogleCallbackFailures(t *testing.T) {
	t.Run("state mismatch", func(t *testing.T) {
		app := googleApp(t, &googleUserInfo{Email: "owner@acme.ng", VerifiedEmail: true}, nil)
		resp := callback(t, app, "s1", "other")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("exchange error", func(t *testing.T) {
		app := googleApp(t, nil, errors.New("boom"))
		resp := callback(t, app, "s1", "s1")
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/login", loc.Path)
		assert.Equal(t, "Google sign-in failed", loc.Query().Get("err"))
	})

	t.Run("unverified email", func(t *testing.T) {
		app := googleApp(t, &googleUserInfo{Email: "owner@acme.ng"}, nil)
		resp := callback(t, app, "s1", "s1")
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Empty(t, sessionCookie(resp))
	})
}
