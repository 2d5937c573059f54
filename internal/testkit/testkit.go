// Package testkit provides an in-memory database and fixtures for tests.
package testkit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/db"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
)

// OpenDB returns a migrated, private in-memory SQLite database.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	gdb, err := db.Connect("sqlite", dsn, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func Money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// CreateClient inserts a CLIENT user with its profile.
func CreateClient(t testing.TB, gdb *gorm.DB, name string) *models.Client {
	t.Helper()

	u := models.User{
		Email:    uuid.NewString() + "@client.test",
		Password: "x",
		UserType: models.UserTypeClient,
		IsActive: true,
		Client: &models.Client{
			Name:       name,
			Country:    "Nigeria",
			TotalSpent: decimal.Zero,
		},
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u.Client
}

// CreateTalent inserts a TALENT user with its profile.
func CreateTalent(t testing.TB, gdb *gorm.DB, fullName string, skills ...string) *models.Talent {
	t.Helper()

	if skills == nil {
		skills = []string{}
	}
	u := models.User{
		Email:    uuid.NewString() + "@talent.test",
		Password: "x",
		UserType: models.UserTypeTalent,
		IsActive: true,
		Talent: &models.Talent{
			FullName:      fullName,
			PhoneNumber:   "08012345678",
			State:         "Lagos",
			SkillCategory: models.SkillTechnical,
			Skills:        skills,
			HourlyRate:    models.DefaultHourlyRate,
			TotalEarnings: decimal.Zero,
		},
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u.Talent
}

// CreateJob inserts an OPEN job for client.
func CreateJob(t testing.TB, gdb *gorm.DB, clientID uuid.UUID, rate string) *models.Job {
	t.Helper()

	j := models.Job{
		ClientID:       clientID,
		Title:          "Build a landing page",
		Description:    "Next.js landing page with a contact form",
		RequiredSkills: models.StringArray{"react"},
		HourlyRate:     Money(rate),
		Status:         models.JobOpen,
	}
	require.NoError(t, gdb.Create(&j).Error)
	return &j
}

// CreateContract inserts an IN_PROGRESS contract and moves the job along.
func CreateContract(t testing.TB, gdb *gorm.DB, job *models.Job, talentID uuid.UUID, rate string) *models.Contract {
	t.Helper()

	c := models.Contract{
		JobID:      job.ID,
		TalentID:   talentID,
		ClientID:   job.ClientID,
		AgreedRate: Money(rate),
		Status:     models.ContractInProgress,
	}
	require.NoError(t, gdb.Create(&c).Error)
	require.NoError(t, gdb.Model(&models.Job{}).Where("id = ?", job.ID).
		Update("status", models.JobInProgress).Error)
	return &c
}

func ClientActor(c *models.Client) models.Actor {
	return models.Actor{UserID: c.UserID, ProfileID: c.ID, Type: models.UserTypeClient}
}

func TalentActor(tl *models.Talent) models.Actor {
	return models.Actor{UserID: tl.UserID, ProfileID: tl.ID, Type: models.UserTypeTalent}
}
