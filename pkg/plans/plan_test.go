package plans_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muscleai/entitlement/pkg/plans"
)

func TestPlanName_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, plans.PlanBasic.Valid())
	assert.True(t, plans.PlanPro.Valid())
	assert.True(t, plans.PlanVIP.Valid())
	assert.False(t, plans.PlanName("Premium").Valid())
	assert.False(t, plans.PlanName("").Valid())
}

func TestPlanName_BetterOrEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b plans.PlanName
		want bool
	}{
		{"vip beats pro", plans.PlanVIP, plans.PlanPro, true},
		{"pro beats basic", plans.PlanPro, plans.PlanBasic, true},
		{"basic does not beat pro", plans.PlanBasic, plans.PlanPro, false},
		{"equal plans", plans.PlanPro, plans.PlanPro, true},
		{"unknown loses to basic", plans.PlanName("Premium"), plans.PlanBasic, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.BetterOrEqual(tt.b))
		})
	}
}

func TestParsePlanName(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		p, err := plans.ParsePlanName("VIP")
		require.NoError(t, err)
		assert.Equal(t, plans.PlanVIP, p)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, err := plans.ParsePlanName("Gold")
		require.ErrorIs(t, err, plans.ErrUnknownPlan)
	})
}
