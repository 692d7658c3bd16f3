package system

import (
	"testing"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"gotest.tools/assert"
)

func testBundle() *input.Bundle {
	return &input.Bundle{
		Demand:          input.Series{100, 120},
		Nuclear:         input.Series{10, 10},
		Hydro:           input.Series{20, 20},
		OtherRenewables: input.Series{5, 5},
		Solar: input.VREData{
			Profiles: []input.PlantProfile{{ID: "101", CF: input.Series{0.5, 0.6}}},
			Costs:    []input.PlantCost{{ID: "101", CapacityMW: 100, CapexPerKW: 800, FOMPerKW: 10}},
		},
		Wind: input.VREData{
			Profiles: []input.PlantProfile{{ID: "201", CF: input.Series{0.3, 0.4}}},
			Costs:    []input.PlantCost{{ID: "201", CapacityMW: 80, CapexPerKW: 1200, FOMPerKW: 15}},
		},
		Storage: []input.StorageTech{{
			Name: "LiIon", PowerCapex: 300, EnergyCapex: 150, Efficiency: 0.81,
			MinDuration: 1, MaxDuration: 10, MaxPower: 100, Lifetime: 15,
			CostRatio: 0.5, MaxCycles: 5000,
		}},
		Thermal: []input.ThermalUnit{{
			ID: "gascc_1", FuelCost: 3.5, HeatRate: 6.4, CapexPerKW: 950,
			FOMPerKW: 12, VOM: 2.0, MaxCapacity: 500, Lifetime: 30,
		}},
		Scalars: input.Scalars{
			DiscountRate:         0.07,
			VRELifetime:          25,
			AlphaNuclear:         1.0,
			AlphaHydro:           0.5,
			AlphaOtherRenewables: 1.0,
			GenMixTarget:         0.5,
		},
		HydroForm: input.RunOfRiver,
	}
}

func TestBuildComposesAllBlocks(t *testing.T) {
	s, err := Build(testBundle(), Options{GenMixTarget: 0.5})
	assert.NilError(t, err)

	assert.Equal(t, s.Horizon.Hours, 2)
	assert.Assert(t, s.Solar != nil)
	assert.Assert(t, s.Wind != nil)
	assert.Assert(t, s.Thermal != nil)
	assert.Assert(t, s.Storage != nil)
	assert.Assert(t, s.Hydro != nil)
	assert.Assert(t, s.Trade == nil)
	assert.Assert(t, s.Resiliency == nil)
	assert.Assert(t, s.Model.NumConstraints() > 0)
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := Build(testBundle(), Options{GenMixTarget: 0.5})
	assert.NilError(t, err)
	b, err := Build(testBundle(), Options{GenMixTarget: 0.5})
	assert.NilError(t, err)

	if a.Model.NumVars() != b.Model.NumVars() ||
		a.Model.NumConstraints() != b.Model.NumConstraints() ||
		a.Model.NumNonzeros() != b.Model.NumNonzeros() {
		t.Errorf("Build(): FAILED. two builds differ: %d/%d vars, %d/%d rows, %d/%d nonzeros",
			a.Model.NumVars(), b.Model.NumVars(),
			a.Model.NumConstraints(), b.Model.NumConstraints(),
			a.Model.NumNonzeros(), b.Model.NumNonzeros())
	} else {
		t.Logf("Build(): PASSED. identical model dimensions across builds")
	}
}

func TestSupplyBalanceAcceptsThermalOnlyDispatch(t *testing.T) {
	s, err := Build(testBundle(), Options{GenMixTarget: 0})
	assert.NilError(t, err)

	// thermal alone covers demand net of the must-run fleets:
	// nuclear 10, hydro 0.5*20, other renewables 5
	vals := make([]float64, s.Model.NumVars())
	vals[s.Thermal.Capacity(0)] = 95
	vals[s.Thermal.Generation(0, 0)] = 75
	vals[s.Thermal.Generation(0, 1)] = 95
	vals[s.Hydro.Generation(0)] = 10
	vals[s.Hydro.Generation(1)] = 10
	assert.NilError(t, s.Model.SetSolution(vals, 0))

	violated := s.Model.Violated(1e-9)
	if len(violated) != 0 {
		t.Errorf("supply balance: FAILED. violated %v", violated)
	} else {
		t.Logf("supply balance: PASSED.")
	}
}

func TestGenMixShareCapsThermal(t *testing.T) {
	s, err := Build(testBundle(), Options{GenMixTarget: 0.9})
	assert.NilError(t, err)

	// thermal covering the full residual demand exceeds 10% of the
	// 220 MWh horizon, breaking the clean-share cap
	vals := make([]float64, s.Model.NumVars())
	vals[s.Thermal.Capacity(0)] = 95
	vals[s.Thermal.Generation(0, 0)] = 75
	vals[s.Thermal.Generation(0, 1)] = 95
	vals[s.Hydro.Generation(0)] = 10
	vals[s.Hydro.Generation(1)] = 10
	assert.NilError(t, s.Model.SetSolution(vals, 0))

	violated := s.Model.Violated(1e-9)
	assert.Equal(t, len(violated), 1)
	assert.Equal(t, violated[0], "genmix_share")
}

func TestFullCleanTargetForbidsThermal(t *testing.T) {
	s, err := Build(testBundle(), Options{GenMixTarget: 1.0})
	assert.NilError(t, err)

	// any thermal generation at all breaks a 100% clean target
	vals := make([]float64, s.Model.NumVars())
	vals[s.Thermal.Generation(0, 0)] = 1
	vals[s.Hydro.Generation(0)] = 10
	vals[s.Hydro.Generation(1)] = 10
	assert.NilError(t, s.Model.SetSolution(vals, 0))

	violated := s.Model.Violated(1e-9)
	found := false
	for _, name := range violated {
		if name == "genmix_share" {
			found = true
		}
	}
	if !found {
		t.Errorf("genmix target 1.0: FAILED. thermal generation not caught: %v", violated)
	} else {
		t.Logf("genmix target 1.0: PASSED. thermal generation excluded")
	}
}

func TestBuildRejectsTargetOutOfRange(t *testing.T) {
	_, err := Build(testBundle(), Options{GenMixTarget: 1.5})
	assert.Assert(t, err != nil)
}

func TestBuildRejectsOneSidedTrade(t *testing.T) {
	b := testBundle()
	b.ImportsForm = input.TradeCapacityPriceNetLoad
	b.Imports = input.TradeData{
		Capacity: input.Series{50, 50},
		Price:    input.Series{40, 40},
	}
	_, err := Build(b, Options{GenMixTarget: 0.5})
	assert.Assert(t, err != nil)
}

func TestBuildWithTradeAddsSelectors(t *testing.T) {
	b := testBundle()
	b.ImportsForm = input.TradeCapacityPriceNetLoad
	b.ExportsForm = input.TradeCapacityPriceNetLoad
	b.Imports = input.TradeData{Capacity: input.Series{50, 50}, Price: input.Series{40, 40}}
	b.Exports = input.TradeData{Capacity: input.Series{30, 30}, Price: input.Series{35, 35}}

	base, err := Build(testBundle(), Options{GenMixTarget: 0.5})
	assert.NilError(t, err)
	s, err := Build(b, Options{GenMixTarget: 0.5})
	assert.NilError(t, err)

	assert.Assert(t, s.Trade != nil)
	// one deficit selector per hour on top of the storage selectors
	assert.Equal(t, s.Model.NumBinaries(), base.Model.NumBinaries()+2)
}

func TestBuildWithResiliency(t *testing.T) {
	b := testBundle()
	b.Resiliency = true
	b.Scalars.EUEMax = 10
	b.Scalars.CriticalLoadFraction = 1.0
	b.Scalars.PCLSTarget = 0.9

	s, err := Build(b, Options{GenMixTarget: 0.5})
	assert.NilError(t, err)
	assert.Assert(t, s.Resiliency != nil)
}
