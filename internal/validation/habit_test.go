package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gvriil/habit-tracker/internal/model"
)

func strPtr(s string) *string { return &s }
func idPtr(n uint64) *uint64  { return &n }

func TestValidatePeriodicity(t *testing.T) {
	assert.Nil(t, ValidatePeriodicity(1))
	assert.Nil(t, ValidatePeriodicity(7))

	v := ValidatePeriodicity(8)
	if assert.NotNil(t, v) {
		assert.Equal(t, RulePeriodicity, v.Rule)
		assert.Equal(t, "periodicity", v.Field)
	}
}

func TestValidateDuration(t *testing.T) {
	assert.Nil(t, ValidateDuration(60))
	assert.Nil(t, ValidateDuration(120))

	v := ValidateDuration(121)
	if assert.NotNil(t, v) {
		assert.Equal(t, RuleDuration, v.Rule)
		assert.Equal(t, "estimated_duration", v.Field)
	}
}

func TestValidateRewardExclusivity(t *testing.T) {
	assert.Nil(t, ValidateRewardExclusivity(nil, nil))
	assert.Nil(t, ValidateRewardExclusivity(strPtr("ice cream"), nil))
	assert.Nil(t, ValidateRewardExclusivity(nil, idPtr(3)))
	// An empty reward string does not count as a reward.
	assert.Nil(t, ValidateRewardExclusivity(strPtr(""), idPtr(3)))

	v := ValidateRewardExclusivity(strPtr("ice cream"), idPtr(3))
	if assert.NotNil(t, v) {
		assert.Equal(t, RuleRewardExclusivity, v.Rule)
	}
}

func TestValidateRelatedHabitIsPleasant(t *testing.T) {
	assert.Nil(t, ValidateRelatedHabitIsPleasant(nil))
	assert.Nil(t, ValidateRelatedHabitIsPleasant(&model.Habit{ID: 3, IsPleasant: true}))

	v := ValidateRelatedHabitIsPleasant(&model.Habit{ID: 3, IsPleasant: false})
	if assert.NotNil(t, v) {
		assert.Equal(t, RuleRelatedIsPleasant, v.Rule)
		assert.Equal(t, "related_habit", v.Field)
	}
}

func TestValidatePleasantHasNoMotivation(t *testing.T) {
	assert.Nil(t, ValidatePleasantHasNoMotivation(false, strPtr("coffee"), nil))
	assert.Nil(t, ValidatePleasantHasNoMotivation(true, nil, nil))

	assert.NotNil(t, ValidatePleasantHasNoMotivation(true, strPtr("coffee"), nil))
	assert.NotNil(t, ValidatePleasantHasNoMotivation(true, nil, idPtr(9)))
}

func TestValidateHabit_Valid(t *testing.T) {
	h := model.Habit{
		Name:              "Morning run",
		Periodicity:       1,
		EstimatedDuration: 90,
		Reward:            strPtr("smoothie"),
	}
	assert.Empty(t, ValidateHabit(h, nil))
}

func TestValidateHabit_CollectsAllViolations(t *testing.T) {
	h := model.Habit{
		Name:              "Broken",
		Periodicity:       10,
		EstimatedDuration: 600,
		Reward:            strPtr("cake"),
		RelatedHabitID:    idPtr(4),
	}
	related := &model.Habit{ID: 4, IsPleasant: false}

	vs := ValidateHabit(h, related)
	assert.Len(t, vs, 4)

	rules := make(map[string]bool, len(vs))
	for _, v := range vs {
		rules[v.Rule] = true
	}
	assert.True(t, rules[RulePeriodicity])
	assert.True(t, rules[RuleDuration])
	assert.True(t, rules[RuleRewardExclusivity])
	assert.True(t, rules[RuleRelatedIsPleasant])
}

func TestValidateHabit_PleasantWithMotivation(t *testing.T) {
	h := model.Habit{
		Name:              "Bubble bath",
		Periodicity:       1,
		EstimatedDuration: 60,
		IsPleasant:        true,
		Reward:            strPtr("more bath"),
	}
	vs := ValidateHabit(h, nil)
	if assert.Len(t, vs, 1) {
		assert.Equal(t, RulePleasantNoMotivation, vs[0].Rule)
	}
}
