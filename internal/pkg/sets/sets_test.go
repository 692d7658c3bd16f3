package sets

import (
	"testing"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"gotest.tools/assert"
)

func TestBuildHorizonNoBudget(t *testing.T) {
	h, err := BuildHorizon(168, 8760, input.RunOfRiver)
	assert.NilError(t, err)
	assert.Equal(t, h.Hours, 168)
	assert.Equal(t, h.BudgetHours, 0)
	assert.Equal(t, h.Periods(), 0)
}

func TestBuildHorizonDefaultsToAvailable(t *testing.T) {
	h, err := BuildHorizon(0, 8760, input.RunOfRiver)
	assert.NilError(t, err)
	assert.Equal(t, h.Hours, 8760)
}

func TestBuildHorizonRoundsUpToBudget(t *testing.T) {
	h, err := BuildHorizon(168, 8760, input.MonthlyBudget)
	assert.NilError(t, err)
	if h.Hours != 730 {
		t.Errorf("BuildHorizon(): FAILED. %d hours != 730 hours", h.Hours)
	} else {
		t.Logf("BuildHorizon(): PASSED. 168 hours rounded up to %d", h.Hours)
	}
	assert.Equal(t, h.Periods(), 1)
}

func TestBuildHorizonDailyBudget(t *testing.T) {
	h, err := BuildHorizon(100, 8760, input.DailyBudget)
	assert.NilError(t, err)
	assert.Equal(t, h.Hours, 120)
	assert.Equal(t, h.Periods(), 5)

	start, end := h.PeriodRange(2)
	assert.Equal(t, start, 48)
	assert.Equal(t, end, 72)
}

func TestBuildHorizonBudgetExceedsData(t *testing.T) {
	_, err := BuildHorizon(100, 110, input.DailyBudget)
	assert.Assert(t, err != nil)
}

func TestFilterPlantsIntersection(t *testing.T) {
	data := input.VREData{
		Profiles: []input.PlantProfile{
			{ID: "a", CF: input.Series{0.1}},
			{ID: "b", CF: input.Series{0.2}},
			{ID: "orphan_profile", CF: input.Series{0.3}},
		},
		Costs: []input.PlantCost{
			{ID: "b", CapacityMW: 50},
			{ID: "a", CapacityMW: 100},
			{ID: "orphan_cost", CapacityMW: 10},
		},
	}

	plants := FilterPlants("solar", data)
	assert.Equal(t, len(plants), 2)
	// ordering follows the profile table
	assert.Equal(t, plants[0].ID, "a")
	assert.Equal(t, plants[0].Cost.CapacityMW, 100.0)
	assert.Equal(t, plants[1].ID, "b")
}

func TestFilterPlantsEmpty(t *testing.T) {
	plants := FilterPlants("wind", input.VREData{})
	assert.Equal(t, len(plants), 0)
}
