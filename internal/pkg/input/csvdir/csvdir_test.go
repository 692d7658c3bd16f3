package csvdir

import (
	"testing"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"gotest.tools/assert"
)

func TestLoadCase(t *testing.T) {
	b, err := Load("./testdata/case")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, b.Hours(), 4)
	assert.Equal(t, b.HydroForm, input.RunOfRiver)
	assert.Assert(t, !b.ImportsForm.Modeled())
	assert.Assert(t, !b.ExportsForm.Modeled())
	assert.Assert(t, !b.Resiliency)

	assert.Equal(t, b.Demand[1], 110.0)
	assert.Equal(t, b.Hydro[2], 18.0)

	assert.Equal(t, len(b.Solar.Profiles), 1)
	assert.Equal(t, b.Solar.Profiles[0].ID, "101")
	assert.Equal(t, b.Solar.Profiles[0].CF[2], 0.62)
	assert.Equal(t, len(b.Wind.Costs), 1)
	assert.Equal(t, b.Wind.Costs[0].CapacityMW, 180.0)
	assert.Equal(t, b.Wind.Costs[0].TransCapCost, 15000.0)

	assert.Equal(t, len(b.Storage), 2)
	li := b.Storage[0]
	assert.Equal(t, li.Name, "Li-Ion")
	assert.Equal(t, li.PowerCapex, 257.0)
	assert.Equal(t, li.MaxCycles, 3500.0)
	assert.Assert(t, li.Coupled)

	assert.Equal(t, len(b.Thermal), 1)
	assert.Equal(t, b.Thermal[0].ID, "gascc_1")
	assert.Equal(t, b.Thermal[0].HeatRate, 6.4)
	assert.Equal(t, b.Thermal[0].Lifetime, 30.0)

	assert.Equal(t, b.Scalars.DiscountRate, 0.06)
	assert.Equal(t, b.Scalars.GenMixTarget, 0.8)
	// defaults for optional parameters absent from the table
	assert.Equal(t, b.Scalars.CriticalLoadFraction, 1.0)
	assert.Equal(t, b.Scalars.PCLSTarget, 0.9)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load("./testdata/nonexistent")
	assert.Assert(t, err != nil)
}
