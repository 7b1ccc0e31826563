package leavetype_test

import (
	"testing"

	"github.com/LabelNest/NestHR/internal/leavetype"
	leavetypeerrors "github.com/LabelNest/NestHR/internal/leavetype/errors"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_ListForGender(t *testing.T) {
	registry := leavetype.NewRegistry()

	t.Run("male employees do not see menstruation leave", func(t *testing.T) {
		defs := registry.ListForGender(leavetype.GenderMale)

		ids := make([]string, 0, len(defs))
		for _, d := range defs {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{
			leavetype.CasualLeave,
			leavetype.SickLeave,
			leavetype.EarnedLeave,
			leavetype.SpecialLeave,
		}, ids)
	})

	t.Run("female employees see all five types", func(t *testing.T) {
		defs := registry.ListForGender(leavetype.GenderFemale)
		assert.Len(t, defs, 5)
	})
}

func TestRegistry_Get(t *testing.T) {
	registry := leavetype.NewRegistry()

	t.Run("known type", func(t *testing.T) {
		def, err := registry.Get(leavetype.EarnedLeave)
		assert.NoError(t, err)
		assert.Equal(t, 18, def.AnnualQuotaDays)
		assert.True(t, def.CarryForward)
		assert.Equal(t, 30, def.MaxCarryForwardDays)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := registry.Get("Sabbatical")
		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})
}

func TestRegistry_AnnualQuota(t *testing.T) {
	registry := leavetype.NewRegistry()

	quota := registry.AnnualQuota(leavetype.GenderFemale)
	assert.Equal(t, 6, quota[leavetype.CasualLeave])
	assert.Equal(t, 6, quota[leavetype.SickLeave])
	assert.Equal(t, 18, quota[leavetype.EarnedLeave])
	assert.Equal(t, 12, quota[leavetype.MenstruationLeave])
	assert.Equal(t, 1, quota[leavetype.SpecialLeave])
}

func TestRegistry_SummaryText(t *testing.T) {
	registry := leavetype.NewRegistry()

	assert.Equal(t,
		"31 days total (6 CL + 6 SL + 18 EL + 1 SpL)",
		registry.SummaryText(leavetype.GenderMale),
	)
	assert.Equal(t,
		"43 days total (6 CL + 6 SL + 18 EL + 12 ML + 1 SpL)",
		registry.SummaryText(leavetype.GenderFemale),
	)
}
