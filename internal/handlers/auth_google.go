package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/account"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthHandler signs existing users in with Google. Accounts are never
// created here; unknown emails are sent to the join page.
type GoogleOAuthHandler struct {
	Accounts        *account.Service
	JWTSecret       string
	Expires         int
	CookieSecure    bool
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string

	// UserInfo fetches the Google profile for an exchanged code. Tests replace it.
	UserInfo func(ctx context.Context, code string) (*googleUserInfo, error)
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) tempCookie(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	if h.GoogleClientID == "" {
		return fail(c, apperr.New(apperr.ErrNotFound, "Google sign-in is not configured"))
	}
	next := c.Query("next", "/")
	st := randomState(32)

	h.tempCookie(c, "oauth_state", st, 10*60)
	h.tempCookie(c, "oauth_next", next, 10*60)

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOnline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *GoogleOAuthHandler) fetchUserInfo(ctx context.Context, code string) (*googleUserInfo, error) {
	if h.UserInfo != nil {
		return h.UserInfo(ctx, code)
	}

	tok, err := h.oauthCfg().Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	resp, err := h.oauthCfg().Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &gu, nil
}

func (h *GoogleOAuthHandler) frontend(path string, query url.Values) string {
	u := strings.TrimRight(h.FrontendBaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := logger.FromCtx(ctx)

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return fail(c, apperr.Invalid("Missing code or state"))
	}

	stCookie := c.Cookies("oauth_state")
	next := c.Cookies("oauth_next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	if stCookie == "" || stCookie != state {
		return fail(c, apperr.Invalid("Invalid state"))
	}
	h.tempCookie(c, "oauth_state", "", -1)
	h.tempCookie(c, "oauth_next", "", -1)

	gu, err := h.fetchUserInfo(ctx, code)
	if err != nil {
		log.Warn("google sign-in failed", "err", err)
		return c.Redirect(h.frontend("/login", url.Values{"err": {"Google sign-in failed"}}), http.StatusTemporaryRedirect)
	}

	email := utils.NormalizeEmail(gu.Email)
	if email == "" || !gu.VerifiedEmail {
		return c.Redirect(h.frontend("/login", url.Values{"err": {"Google account has no verified email"}}), http.StatusTemporaryRedirect)
	}

	u, err := h.Accounts.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return c.Redirect(h.frontend("/join", url.Values{"email": {email}}), http.StatusTemporaryRedirect)
	}
	if err != nil {
		return fail(c, err)
	}
	if !u.IsActive {
		return c.Redirect(h.frontend("/login", url.Values{"err": {"Account is disabled"}}), http.StatusTemporaryRedirect)
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), u.UserType.Role(), u.ProfileID().String(), h.Expires)
	if err != nil {
		return fail(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})

	return c.Redirect(h.frontend(next, nil), http.StatusTemporaryRedirect)
}
