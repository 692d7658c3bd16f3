// Package thermal models dispatchable thermal units: a sized capacity
// per unit, hourly generation capped by that capacity, fuel and O&M
// costs, and a per-unit fixed charge rate derived from the unit
// lifetime.
package thermal

import (
	"fmt"
	"log"
	"math"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
	"github.com/ohowland/cep_core/internal/pkg/tech"
)

// Block is the formulation block for the thermal fleet.
type Block struct {
	units       []input.ThermalUnit
	hours       int
	rate        float64
	peakNetLoad float64
	capacity    []lp.Var
	gen         [][]lp.Var // [unit][hour]
}

// New returns an unattached block. peakNetLoad is the maximum hourly
// demand net of must-run generation; it drives the feasibility
// override on the capacity upper bound.
func New(units []input.ThermalUnit, hours int, discountRate, peakNetLoad float64) *Block {
	return &Block{
		units:       units,
		hours:       hours,
		rate:        discountRate,
		peakNetLoad: peakNetLoad,
	}
}

func (b *Block) Name() string { return "thermal" }

// Attach declares per-unit capacity and hourly generation variables.
// With a single unit whose allowed capacity cannot cover the peak net
// load, the upper bound is lifted to the peak with a logged warning
// instead of producing a structurally infeasible model.
func (b *Block) Attach(m *lp.Model) error {
	if b.hours <= 0 {
		return fmt.Errorf("thermal: horizon must be positive")
	}

	fleetMax := 0.0
	for _, u := range b.units {
		fleetMax += u.MaxCapacity
	}

	b.capacity = make([]lp.Var, len(b.units))
	for i, u := range b.units {
		upper := u.MaxCapacity
		if len(b.units) == 1 && b.peakNetLoad > fleetMax {
			upper = b.peakNetLoad
			log.Printf("[Thermal] warning: single unit %s cannot cover peak net load, capacity upper bound lifted from %.1f MW to %.1f MW", u.ID, u.MaxCapacity, upper)
		}
		b.capacity[i] = m.Continuous(fmt.Sprintf("thermal_cap_%s", u.ID), u.MinCapacity, upper)
	}
	if len(b.units) > 1 && b.peakNetLoad > fleetMax {
		log.Printf("[Thermal] warning: fleet capacity limit %.1f MW may be insufficient for peak net load %.1f MW", fleetMax, b.peakNetLoad)
	}

	b.gen = make([][]lp.Var, len(b.units))
	for i, u := range b.units {
		b.gen[i] = make([]lp.Var, b.hours)
		for h := 0; h < b.hours; h++ {
			b.gen[i][h] = m.Continuous(fmt.Sprintf("thermal_gen_%s_h%d", u.ID, h+1), 0, math.Inf(1))
		}
	}

	// generation(h, u) <= installed capacity(u)
	for i, u := range b.units {
		for h := 0; h < b.hours; h++ {
			e := lp.Expr{}
			e.AddTerm(b.gen[i][h], 1)
			e.AddTerm(b.capacity[i], -1)
			m.AtMost(fmt.Sprintf("thermal_capgen_%s_h%d", u.ID, h+1), e, 0)
		}
	}
	return nil
}

// FixedCost annualizes unit capex with a per-unit fixed charge rate
// and adds fixed O&M.
func (b *Block) FixedCost() lp.Expr {
	e := lp.Expr{}
	for i, u := range b.units {
		fcr := tech.CRF(b.rate, u.Lifetime)
		e.AddTerm(b.capacity[i], fcr*tech.MWToKW*u.CapexPerKW+tech.MWToKW*u.FOMPerKW)
	}
	return e
}

// VariableCost is fuel (price times heat rate) plus variable O&M per
// MWh generated.
func (b *Block) VariableCost() lp.Expr {
	e := lp.Expr{}
	for i, u := range b.units {
		perMWh := u.FuelCost*u.HeatRate + u.VOM
		for h := 0; h < b.hours; h++ {
			e.AddTerm(b.gen[i][h], perMWh)
		}
	}
	return e
}

// BalanceAt contributes the fleet generation at hour h.
func (b *Block) BalanceAt(h int) lp.Expr {
	e := lp.Expr{}
	for i := range b.units {
		e.AddTerm(b.gen[i][h], 1)
	}
	return e
}

// TotalGeneration sums generation over all units and hours, for the
// clean-share constraint.
func (b *Block) TotalGeneration() lp.Expr {
	e := lp.Expr{}
	for i := range b.units {
		for h := 0; h < b.hours; h++ {
			e.AddTerm(b.gen[i][h], 1)
		}
	}
	return e
}

// Units returns the unit table in model order.
func (b *Block) Units() []input.ThermalUnit { return b.units }

// Capacity returns the sized capacity variable for unit i.
func (b *Block) Capacity(i int) lp.Var { return b.capacity[i] }

// Generation returns the generation variable for unit i at hour h.
func (b *Block) Generation(i, h int) lp.Var { return b.gen[i][h] }
