package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/account"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/utils"
)

type AuthHandler struct {
	Accounts     *account.Service
	JWTSecret    string
	Expires      int
	CookieSecure bool
}

type RegisterTalentReq struct {
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	FullName        string          `json:"fullName"`
	PhoneNumber     string          `json:"phoneNumber"`
	State           string          `json:"state"`
	SkillCategory   string          `json:"skillCategory"`
	Skills          stringList      `json:"skills"`
	YearsExperience flexInt         `json:"yearsExperience"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
	PortfolioURL    string          `json:"portfolioUrl"`
	ResumeURL       string          `json:"resumeUrl"`
}

type RegisterClientReq struct {
	Email          string              `json:"email"`
	Password       string              `json:"password"`
	Name           string              `json:"name"`
	CompanyName    string              `json:"companyName"`
	Country        string              `json:"country"`
	Industry       string              `json:"industry"`
	BudgetRangeMin decimal.NullDecimal `json:"budgetRangeMin"`
	BudgetRangeMax decimal.NullDecimal `json:"budgetRangeMax"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	UserType  models.UserType `json:"userType"`
	ProfileID uuid.UUID       `json:"profileId"`
	Talent    *models.Talent  `json:"talent,omitempty"`
	Client    *models.Client  `json:"client,omitempty"`
}

func toSessionUser(u *models.User) sessionUser {
	return sessionUser{
		ID:        u.ID,
		Email:     u.Email,
		UserType:  u.UserType,
		ProfileID: u.ProfileID(),
		Talent:    u.Talent,
		Client:    u.Client,
	}
}

func (h *AuthHandler) RegisterTalent(c *fiber.Ctx) error {
	var req RegisterTalentReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.Accounts.RegisterTalent(c.UserContext(), account.TalentRegistration{
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		State:           req.State,
		SkillCategory:   req.SkillCategory,
		Skills:          req.Skills,
		YearsExperience: int(req.YearsExperience),
		HourlyRate:      req.HourlyRate,
		PortfolioURL:    req.PortfolioURL,
		ResumeURL:       req.ResumeURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return h.signedIn(c, u, fiber.StatusCreated, "Registration successful")
}

func (h *AuthHandler) RegisterClient(c *fiber.Ctx) error {
	var req RegisterClientReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.Accounts.RegisterClient(c.UserContext(), account.ClientRegistration{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		CompanyName:    req.CompanyName,
		Country:        req.Country,
		Industry:       req.Industry,
		BudgetRangeMin: req.BudgetRangeMin,
		BudgetRangeMax: req.BudgetRangeMax,
	})
	if err != nil {
		return fail(c, err)
	}
	return h.signedIn(c, u, fiber.StatusCreated, "Registration successful")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	fe := apperr.FieldErrors{}
	if req.Email == "" {
		fe.Add("email", "email is required")
	}
	if req.Password == "" {
		fe.Add("password", "password is required")
	}
	if !fe.Empty() {
		return fail(c, apperr.Validation(fe))
	}

	u, err := h.Accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return h.signedIn(c, u, fiber.StatusOK, "Login successful")
}

func (h *AuthHandler) signedIn(c *fiber.Ctx, u *models.User, status int, msg string) error {
	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), u.UserType.Role(), u.ProfileID().String(), h.Expires)
	if err != nil {
		return fail(c, err)
	}
	h.setCookie(c, token, h.Expires*60)
	return ok(c, status, "user", toSessionUser(u), fiber.Map{"message": msg})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieName,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: "Lax",
		MaxAge:   maxAge,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setCookie(c, "", -1)
	return ok(c, fiber.StatusOK, "message", "Logged out")
}

// Session returns the signed-in user with its profile.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	u, err := h.Accounts.FindByID(c.UserContext(), a.UserID)
	if err != nil {
		if apperr.Status(err) == fiber.StatusNotFound {
			return fail(c, apperr.Unauthorized("Session is no longer valid"))
		}
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "user", toSessionUser(u))
}
