package cepintegrationtest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ohowland/cep_core/internal/pkg/input/csvdir"
	"github.com/ohowland/cep_core/internal/pkg/msg"
	"github.com/ohowland/cep_core/internal/pkg/results"
	"github.com/ohowland/cep_core/internal/pkg/solve"
	"github.com/ohowland/cep_core/internal/pkg/system"
	"gotest.tools/assert"
)

// The pipeline from CSV case directory to published results, with the
// solver step replaced by a handcrafted feasible point.
func TestCaseToResultsPipeline(t *testing.T) {
	bundle, err := csvdir.Load("input/csvdir/testdata/case")
	assert.NilError(t, err)

	sys, err := system.Build(bundle, system.Options{GenMixTarget: 0})
	assert.NilError(t, err)

	// dispatch the thermal unit against demand net of the must-run
	// fleets, everything else idle
	vals := make([]float64, sys.Model.NumVars())
	peak := 0.0
	for h := 0; h < sys.Horizon.Hours; h++ {
		hydro := bundle.Scalars.AlphaHydro * bundle.Hydro[h]
		nuclear := bundle.Scalars.AlphaNuclear * bundle.Nuclear[h]
		other := bundle.Scalars.AlphaOtherRenewables * bundle.OtherRenewables[h]
		residual := bundle.Demand[h] - hydro - nuclear - other

		vals[sys.Hydro.Generation(h)] = hydro
		vals[sys.Thermal.Generation(0, h)] = residual
		if residual > peak {
			peak = residual
		}
	}
	vals[sys.Thermal.Capacity(0)] = peak
	assert.NilError(t, sys.Model.SetSolution(vals, 0))
	assert.Equal(t, len(sys.Model.Violated(1e-6)), 0)

	r, err := results.Collect(sys, "integration", solve.Outcome{Condition: solve.Optimal})
	assert.NilError(t, err)
	assert.Equal(t, r.Hours, sys.Horizon.Hours)
	assert.Equal(t, r.ThermalMW, peak)

	// results reach subscribers through the run publisher
	runPID, err := uuid.NewUUID()
	assert.NilError(t, err)
	subPID, err := uuid.NewUUID()
	assert.NilError(t, err)

	pubsub := msg.NewPublisher(runPID)
	defer pubsub.Close()
	inbox := pubsub.Subscribe(subPID, msg.Result)
	pubsub.Publish(msg.Result, r)

	m := <-inbox
	got, ok := m.Payload().(*results.Results)
	assert.Assert(t, ok)
	if got.RunID != r.RunID {
		t.Errorf("pipeline: FAILED. published run %s != collected run %s", got.RunID, r.RunID)
	} else {
		t.Logf("pipeline: PASSED. case loaded, composed, collected, and published")
	}
}
