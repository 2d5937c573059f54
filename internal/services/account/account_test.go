package account

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/testkit"
)

func validTalent() TalentRegistration {
	return TalentRegistration{
		Email:       "Ada@Example.com",
		Password:    "supersecret",
		FullName:    "Ada Obi",
		PhoneNumber: "08031234567",
		State:       "lagos",
		Skills:      []string{"go", " react "},
	}
}

func TestRegisterTalentDefaults(t *testing.T) {
	svc := NewService(testkit.OpenDB(t))

	u, err := svc.RegisterTalent(context.Background(), validTalent())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, models.UserTypeTalent, u.UserType)
	assert.NotEqual(t, "supersecret", u.Password)
	require.NotNil(t, u.Talent)
	assert.Equal(t, u.ID, u.Talent.UserID)
	assert.Equal(t, "Lagos", u.Talent.State)
	assert.Equal(t, models.SkillTechnical, u.Talent.SkillCategory)
	assert.Equal(t, []string{"go", "react"}, u.Talent.Skills.Slice())
	assert.True(t, u.Talent.HourlyRate.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 0, u.Talent.YearsExperience)
}

func TestRegisterTwiceIsRejected(t *testing.T) {
	svc := NewService(testkit.OpenDB(t))
	ctx := context.Background()

	_, err := svc.RegisterTalent(ctx, validTalent())
	require.NoError(t, err)

	_, err = svc.RegisterClient(ctx, ClientRegistration{
		Email: "ada@example.com", Password: "supersecret", Name: "Ada", Country: "Nigeria",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "User already exists", err.Error())
}

func TestRegisterTalentValidation(t *testing.T) {
	svc := NewService(testkit.OpenDB(t))
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.RegisterTalent(ctx, TalentRegistration{Email: "a@b.co"})
		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, "Missing required fields", err.Error())
		assert.Contains(t, apperr.Fields(err), "fullName")
	})

	t.Run("bad phone state and password", func(t *testing.T) {
		in := validTalent()
		in.PhoneNumber = "12345"
		in.State = "Texas"
		in.Password = "short"
		_, err := svc.RegisterTalent(ctx, in)
		require.ErrorIs(t, err, apperr.ErrValidation)
		fields := apperr.Fields(err)
		assert.Contains(t, fields, "phoneNumber")
		assert.Contains(t, fields, "state")
		assert.Contains(t, fields, "password")
	})

	t.Run("bad skill category", func(t *testing.T) {
		in := validTalent()
		in.SkillCategory = "DESIGN"
		_, err := svc.RegisterTalent(ctx, in)
		assert.Contains(t, apperr.Fields(err), "skillCategory")
	})
}

func TestRegisterClient(t *testing.T) {
	svc := NewService(testkit.OpenDB(t))

	u, err := svc.RegisterClient(context.Background(), ClientRegistration{
		Email:          "cto@acme.ng",
		Password:       "supersecret",
		Name:           "Chidi",
		Country:        "Nigeria",
		CompanyName:    "Acme",
		BudgetRangeMin: decimal.NewNullDecimal(decimal.NewFromInt(100)),
	})
	require.NoError(t, err)
	require.NotNil(t, u.Client)
	assert.Equal(t, models.UserTypeClient, u.UserType)
	assert.Equal(t, 0, u.Client.TotalProjects)
	assert.True(t, u.Client.BudgetRangeMin.Valid)
	assert.False(t, u.Client.BudgetRangeMax.Valid)
}

func TestAuthenticate(t *testing.T) {
	gdb := testkit.OpenDB(t)
	svc := NewService(gdb)
	ctx := context.Background()

	reg, err := svc.RegisterTalent(ctx, validTalent())
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, " ADA@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, reg.Talent.ID, u.ProfileID())

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", reg.ID).Update("is_active", false).Error)
	_, err = svc.Authenticate(ctx, "ada@example.com", "supersecret")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
