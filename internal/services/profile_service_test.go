package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestGoalsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Goals
	}{
		{"comma text", `"Emergency Fund, Vacation,, Car "`, Goals{"Emergency Fund", "Vacation", "Car"}},
		{"array", `["House", " ", "Retirement"]`, Goals{"House", "Retirement"}},
		{"empty text", `""`, Goals{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Goals
			require.NoError(t, json.Unmarshal([]byte(tt.in), &g))
			assert.Equal(t, tt.want, g)
		})
	}

	var g Goals
	assert.Error(t, json.Unmarshal([]byte(`42`), &g))
}

func TestProfileServiceUpdate(t *testing.T) {
	svc := NewProfileService(quietLogger())
	sess := demoSession(t)

	var in ProfileInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"income": "80,000",
		"goals": "House, Retirement",
		"risk_profile": "HIGH"
	}`), &in))

	u, err := svc.Update(context.Background(), sess, in)
	require.NoError(t, err)

	assert.Equal(t, "Alex Johnson", u.Name)
	assert.Equal(t, core.Rupees(80000), u.Income)
	assert.Equal(t, []string{"House", "Retirement"}, u.Goals)
	assert.Equal(t, core.RiskHigh, u.RiskProfile)

	got, err := svc.Get(sess)
	require.NoError(t, err)
	assert.Equal(t, u, got)
	assert.Equal(t, "1", got.ID)
}

func TestProfileServiceRejectsInvalid(t *testing.T) {
	svc := NewProfileService(quietLogger())
	sess := demoSession(t)
	version := sess.Store.Version()

	blank := "  "
	_, err := svc.Update(context.Background(), sess, ProfileInput{Name: &blank})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	risk := "reckless"
	_, err = svc.Update(context.Background(), sess, ProfileInput{RiskProfile: &risk})
	assert.ErrorIs(t, err, core.ErrInvalidRiskProfile)

	negative := core.Rupees(-1)
	_, err = svc.Update(context.Background(), sess, ProfileInput{Income: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, version, sess.Store.Version())
}
