// Package system composes the technology formulation blocks into one
// solvable model: it builds the index sets, attaches every block in a
// fixed order, ties them together through the hourly supply balance
// and the annual clean-share constraint, and assembles the total cost
// objective.
package system

import (
	"fmt"
	"log"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
	"github.com/ohowland/cep_core/internal/pkg/sets"
	"github.com/ohowland/cep_core/internal/pkg/tech"
	"github.com/ohowland/cep_core/internal/pkg/tech/baseload"
	"github.com/ohowland/cep_core/internal/pkg/tech/hydro"
	"github.com/ohowland/cep_core/internal/pkg/tech/resiliency"
	"github.com/ohowland/cep_core/internal/pkg/tech/storage"
	"github.com/ohowland/cep_core/internal/pkg/tech/thermal"
	"github.com/ohowland/cep_core/internal/pkg/tech/trade"
	"github.com/ohowland/cep_core/internal/pkg/tech/vre"
)

// Options are the per-scenario build parameters. A new scenario means
// a new Build; systems are never mutated after construction.
type Options struct {
	Hours        int     // 0 selects the full available horizon
	GenMixTarget float64 // required clean share of annual demand
}

// DefaultOptions derives scenario parameters from the bundle scalars.
func DefaultOptions(b *input.Bundle) Options {
	return Options{GenMixTarget: b.Scalars.GenMixTarget}
}

// System is a fully composed model instance for one scenario.
type System struct {
	Model   *lp.Model
	Horizon sets.Horizon
	Target  float64

	Solar           *vre.Block
	Wind            *vre.Block
	Thermal         *thermal.Block
	Storage         *storage.Block
	Hydro           *hydro.Block
	Nuclear         *baseload.Block
	OtherRenewables *baseload.Block
	Trade           *trade.Block      // nil when trade is not modeled
	Resiliency      *resiliency.Block // nil when disabled

	demand input.Series
}

// Build composes a fresh system from the bundle and scenario options.
// It is a pure function of its inputs: building twice from the same
// data yields identical models.
func Build(b *input.Bundle, opts Options) (*System, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if opts.GenMixTarget < 0 || opts.GenMixTarget > 1 {
		return nil, fmt.Errorf("system: genmix target %.3f outside [0, 1]", opts.GenMixTarget)
	}
	if b.ImportsForm.Modeled() != b.ExportsForm.Modeled() {
		return nil, fmt.Errorf("system: imports and exports must be modeled together (imports %v, exports %v)", b.ImportsForm, b.ExportsForm)
	}

	horizon, err := sets.BuildHorizon(opts.Hours, b.Hours(), b.HydroForm)
	if err != nil {
		return nil, err
	}
	hours := horizon.Hours

	s := &System{
		Horizon: horizon,
		Target:  opts.GenMixTarget,
		Model:   lp.New(fmt.Sprintf("cep_%dh", hours)),
		demand:  b.Demand,
	}

	solarPlants := sets.FilterPlants("solar", b.Solar)
	windPlants := sets.FilterPlants("wind", b.Wind)

	r := b.Scalars.DiscountRate
	s.Solar = vre.New("solar", solarPlants, hours, r, b.Scalars.VRELifetime)
	s.Wind = vre.New("wind", windPlants, hours, r, b.Scalars.VRELifetime)
	s.Thermal = thermal.New(b.Thermal, hours, r, peakNetLoad(b, hours))
	s.Storage = storage.New(b.Storage, hours, r)
	s.Hydro = hydro.New(b.HydroForm, horizon, b.Scalars.AlphaHydro, b.Hydro, b.HydroMin, b.HydroMax)
	s.Nuclear = baseload.New("nuclear", b.Scalars.AlphaNuclear, b.Nuclear, hours)
	s.OtherRenewables = baseload.New("other_renewables", b.Scalars.AlphaOtherRenewables, b.OtherRenewables, hours)
	if b.Resiliency {
		s.Resiliency = resiliency.New(b.Demand, hours, b.Scalars.CriticalLoadFraction, b.Scalars.PCLSTarget, b.Scalars.EUEMax)
	}

	blocks := []tech.Block{s.Solar, s.Wind, s.Thermal, s.Storage, s.Hydro, s.Nuclear, s.OtherRenewables}
	if s.Resiliency != nil {
		blocks = append(blocks, s.Resiliency)
	}
	for _, blk := range blocks {
		if err := blk.Attach(s.Model); err != nil {
			return nil, err
		}
	}

	// Trade attaches last: its disjunction references the net load of
	// every attached generating block.
	if b.ImportsForm.Modeled() {
		bigM := b.Scalars.BigM
		if bigM <= 0 {
			bigM = deriveBigM(b, solarPlants, windPlants, hours)
			log.Printf("[System] big-M constant not configured, derived %.0f from input data", bigM)
		}
		s.Trade = trade.New(b.Imports, b.Exports, b.Demand, hours, bigM, s.netLoadAt)
		if err := s.Trade.Attach(s.Model); err != nil {
			return nil, err
		}
		blocks = append(blocks, s.Trade)
	}

	s.addSupplyBalance(blocks)
	s.addGenMixShare()
	s.Model.Minimize(s.objective(blocks))

	log.Printf("[System] composed %d-hour system: %d variables (%d binary), %d constraints",
		hours, s.Model.NumVars(), s.Model.NumBinaries(), s.Model.NumConstraints())
	return s, nil
}

// Demand returns the demand parameter at hour h (0-based).
func (s *System) Demand(h int) float64 {
	return s.demand[h]
}

// netLoadAt is demand minus must-run generation: available VRE,
// nuclear, other renewables, and hydro.
func (s *System) netLoadAt(h int) lp.Expr {
	e := lp.Expr{Const: s.demand[h]}
	e.AddScaled(s.Solar.AvailabilityAt(h), -1)
	e.AddScaled(s.Wind.AvailabilityAt(h), -1)
	e.AddConst(-s.Nuclear.At(h))
	e.AddConst(-s.OtherRenewables.At(h))
	e.AddScaled(s.Hydro.BalanceAt(h), -1)
	return e
}

// addSupplyBalance ties every block's hourly contribution to demand
// with an equality per hour.
func (s *System) addSupplyBalance(blocks []tech.Block) {
	for h := 0; h < s.Horizon.Hours; h++ {
		e := lp.Expr{}
		for _, blk := range blocks {
			e.AddExpr(blk.BalanceAt(h))
		}
		s.Model.Equal(fmt.Sprintf("supply_balance_h%d", h+1), e, s.demand[h])
	}
}

// addGenMixShare caps thermal generation (plus imports when trade is
// modeled) at (1 - target) of annual demand including storage losses.
func (s *System) addGenMixShare() {
	e := s.Thermal.TotalGeneration()
	if s.Trade != nil {
		e.AddExpr(s.Trade.TotalImports())
	}

	share := 1 - s.Target
	totalDemand := 0.0
	for h := 0; h < s.Horizon.Hours; h++ {
		totalDemand += s.demand[h]
		e.AddScaled(s.Storage.NetChargeAt(h), -share)
	}
	s.Model.AtMost("genmix_share", e, share*totalDemand)
}

func (s *System) objective(blocks []tech.Block) lp.Expr {
	obj := lp.Expr{}
	for _, blk := range blocks {
		obj.AddExpr(blk.FixedCost())
		obj.AddExpr(blk.VariableCost())
	}
	return obj
}

// peakNetLoad is the largest hourly demand net of the must-run
// reference series, used by the thermal feasibility override.
func peakNetLoad(b *input.Bundle, hours int) float64 {
	peak := 0.0
	for h := 0; h < hours; h++ {
		nl := b.Demand[h] -
			b.Scalars.AlphaNuclear*b.Nuclear[h] -
			b.Scalars.AlphaHydro*b.Hydro[h] -
			b.Scalars.AlphaOtherRenewables*b.OtherRenewables[h]
		if nl > peak {
			peak = nl
		}
	}
	return peak
}

// deriveBigM bounds the net load magnitude from the data: peak demand
// on the positive side, total selectable VRE nameplate plus the trade
// interconnection limits on the negative side.
func deriveBigM(b *input.Bundle, solar, wind []sets.Plant, hours int) float64 {
	peakDemand := 0.0
	for h := 0; h < hours; h++ {
		if b.Demand[h] > peakDemand {
			peakDemand = b.Demand[h]
		}
	}
	nameplate := 0.0
	for _, p := range solar {
		nameplate += p.Cost.CapacityMW
	}
	for _, p := range wind {
		nameplate += p.Cost.CapacityMW
	}
	peakTrade := 0.0
	for h := 0; h < hours; h++ {
		if c := b.Imports.Capacity[h]; c > peakTrade {
			peakTrade = c
		}
		if c := b.Exports.Capacity[h]; c > peakTrade {
			peakTrade = c
		}
	}
	return peakDemand + nameplate + peakTrade + 1
}
