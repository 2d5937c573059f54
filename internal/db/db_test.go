package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := Connect("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func TestMigrateFreshDatabase(t *testing.T) {
	gdb := openMemory(t)

	require.NoError(t, Migrate(gdb))
	// second run is a no-op
	require.NoError(t, Migrate(gdb))

	for _, m := range models.All() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, gdb.Migrator().HasColumn(&models.Talent{}, "skills"))
	assert.True(t, gdb.Migrator().HasColumn(&models.Job{}, "required_skills"))
}

func TestSkillsColumnRoundTrip(t *testing.T) {
	gdb := openMemory(t)
	require.NoError(t, Migrate(gdb))

	u := models.User{
		Email:    "skills@dev.ng",
		Password: "x",
		UserType: models.UserTypeTalent,
		IsActive: true,
		Talent: &models.Talent{
			FullName:      "Skill Holder",
			PhoneNumber:   "08031234567",
			State:         "Lagos",
			SkillCategory: models.SkillTechnical,
			Skills:        models.StringArray{"go", "react native"},
			HourlyRate:    models.DefaultHourlyRate,
			TotalEarnings: decimal.Zero,
		},
	}
	require.NoError(t, gdb.Create(&u).Error)

	var got models.Talent
	require.NoError(t, gdb.First(&got, "id = ?", u.Talent.ID).Error)
	assert.Equal(t, models.StringArray{"go", "react native"}, got.Skills)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mssql", "x", nil)
	assert.Error(t, err)
}
