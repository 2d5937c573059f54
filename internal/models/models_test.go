package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationTransitions(t *testing.T) {
	tests := []struct {
		from  ApplicationStatus
		to    ApplicationStatus
		actor UserType
		want  bool
	}{
		{ApplicationPending, ApplicationAccepted, UserTypeClient, true},
		{ApplicationPending, ApplicationRejected, UserTypeClient, true},
		{ApplicationPending, ApplicationWithdrawn, UserTypeTalent, true},
		{ApplicationPending, ApplicationAccepted, UserTypeTalent, false},
		{ApplicationPending, ApplicationWithdrawn, UserTypeClient, false},
		{ApplicationAccepted, ApplicationRejected, UserTypeClient, false},
		{ApplicationRejected, ApplicationAccepted, UserTypeClient, false},
		{ApplicationWithdrawn, ApplicationPending, UserTypeTalent, false},
		{ApplicationPending, ApplicationPending, UserTypeClient, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to)+"/"+string(tt.actor), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to, tt.actor))
		})
	}
}

func TestJobTransitions(t *testing.T) {
	assert.True(t, JobOpen.CanTransitionTo(JobCancelled))
	assert.True(t, JobInProgress.CanTransitionTo(JobCompleted))
	assert.True(t, JobInProgress.CanTransitionTo(JobCancelled))
	assert.False(t, JobOpen.CanTransitionTo(JobCompleted))
	assert.False(t, JobCompleted.CanTransitionTo(JobOpen))
	assert.False(t, JobCancelled.CanTransitionTo(JobOpen))

	assert.True(t, JobStatus("OPEN").Valid())
	assert.False(t, JobStatus("open").Valid())
}

func TestStringArrayRoundTrip(t *testing.T) {
	v, err := StringArray{"go", "react native"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"go","react native"}`, v)

	var got StringArray
	require.NoError(t, got.Scan(v))
	assert.Equal(t, []string{"go", "react native"}, got.Slice())

	var empty StringArray
	assert.Equal(t, []string{}, empty.Slice())
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Payment{Amount: decimal.RequireFromString("100.50")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":100.5`)
}

func TestUserTypeRole(t *testing.T) {
	assert.Equal(t, "talent", UserTypeTalent.Role())
	assert.Equal(t, "client", UserTypeClient.Role())
}
