package hydro

import (
	"testing"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
	"github.com/ohowland/cep_core/internal/pkg/sets"
	"gotest.tools/assert"
)

func TestRunOfRiverPinsGeneration(t *testing.T) {
	h, err := sets.BuildHorizon(3, 3, input.RunOfRiver)
	assert.NilError(t, err)

	m := lp.New("hydro_test")
	ts := input.Series{100, 120, 80}
	b := New(input.RunOfRiver, h, 0.5, ts, nil, nil)
	assert.NilError(t, b.Attach(m))

	vals := make([]float64, m.NumVars())
	vals[b.Generation(0)] = 50
	vals[b.Generation(1)] = 60
	vals[b.Generation(2)] = 40
	assert.NilError(t, m.SetSolution(vals, 0))

	violated := m.Violated(1e-9)
	if len(violated) != 0 {
		t.Errorf("run of river: FAILED. violated %v", violated)
	} else {
		t.Logf("run of river: PASSED. generation pinned to alpha * reference")
	}

	vals[b.Generation(1)] = 61
	assert.NilError(t, m.SetSolution(vals, 0))
	assert.Equal(t, len(m.Violated(1e-9)), 1)
}

func TestDailyBudgetConstrainsPeriodEnergy(t *testing.T) {
	h, err := sets.BuildHorizon(24, 48, input.DailyBudget)
	assert.NilError(t, err)

	m := lp.New("hydro_test")
	ts := make(input.Series, 24)
	min := make(input.Series, 24)
	max := make(input.Series, 24)
	for i := range ts {
		ts[i] = 100
		min[i] = 0
		max[i] = 400
	}
	b := New(input.DailyBudget, h, 1.0, ts, min, max)
	assert.NilError(t, b.Attach(m))

	// 24 hourly range rows + 1 period budget row
	assert.Equal(t, m.NumConstraints(), 25)

	// shift all the energy into two hours, inside the hourly bounds
	vals := make([]float64, m.NumVars())
	vals[b.Generation(0)] = 400
	vals[b.Generation(1)] = 400
	vals[b.Generation(2)] = 1600
	assert.NilError(t, m.SetSolution(vals, 0))

	// the hourly bound catches hour 3, and the 2400 MWh day is intact
	violated := m.Violated(1e-9)
	assert.Equal(t, len(violated), 1)
	assert.Equal(t, violated[0], "hydro_bounds_h3")
}

func TestBudgetRequiresBoundSeries(t *testing.T) {
	h, err := sets.BuildHorizon(24, 48, input.DailyBudget)
	assert.NilError(t, err)

	m := lp.New("hydro_test")
	ts := make(input.Series, 24)
	b := New(input.DailyBudget, h, 1.0, ts, nil, nil)
	assert.Assert(t, b.Attach(m) != nil)
}

func TestShortReferenceSeriesRejected(t *testing.T) {
	h, err := sets.BuildHorizon(24, 48, input.RunOfRiver)
	assert.NilError(t, err)

	m := lp.New("hydro_test")
	b := New(input.RunOfRiver, h, 1.0, input.Series{1, 2, 3}, nil, nil)
	assert.Assert(t, b.Attach(m) != nil)
}
