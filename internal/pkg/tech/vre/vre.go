// Package vre models a class of variable renewable plants (solar or
// wind) as a continuous site selection problem: each candidate site
// contributes its capacity factor profile scaled by a selection
// fraction, and hourly generation plus curtailment must equal the
// selected availability.
package vre

import (
	"fmt"
	"math"

	"github.com/ohowland/cep_core/internal/pkg/lp"
	"github.com/ohowland/cep_core/internal/pkg/sets"
	"github.com/ohowland/cep_core/internal/pkg/tech"
)

// Block is the formulation block for one VRE class.
type Block struct {
	name   string
	plants []sets.Plant
	hours  int
	fcr    float64

	frac []lp.Var
	gen  []lp.Var
	curt []lp.Var
}

// New returns an unattached block. The fixed charge rate is derived
// from the shared VRE lifetime and discount rate.
func New(name string, plants []sets.Plant, hours int, discountRate, lifetime float64) *Block {
	return &Block{
		name:   name,
		plants: plants,
		hours:  hours,
		fcr:    tech.CRF(discountRate, lifetime),
	}
}

func (b *Block) Name() string { return b.name }

// Attach declares selection fractions per site, hourly generation and
// curtailment, and the hourly availability balance.
func (b *Block) Attach(m *lp.Model) error {
	if b.hours <= 0 {
		return fmt.Errorf("%s: horizon must be positive", b.name)
	}

	b.frac = make([]lp.Var, len(b.plants))
	for k, p := range b.plants {
		b.frac[k] = m.Continuous(fmt.Sprintf("%s_frac_%s", b.name, p.ID), 0, 1)
	}

	b.gen = make([]lp.Var, b.hours)
	b.curt = make([]lp.Var, b.hours)
	for h := 0; h < b.hours; h++ {
		b.gen[h] = m.Continuous(fmt.Sprintf("%s_gen_h%d", b.name, h+1), 0, math.Inf(1))
		b.curt[h] = m.Continuous(fmt.Sprintf("%s_curt_h%d", b.name, h+1), 0, math.Inf(1))
	}

	// gen(h) + curt(h) == sum_k CF(h,k) * capacity(k) * frac(k)
	for h := 0; h < b.hours; h++ {
		e := lp.Expr{}
		e.AddTerm(b.gen[h], 1)
		e.AddTerm(b.curt[h], 1)
		e.AddExpr(b.scaledAvailability(h, -1))
		m.Equal(fmt.Sprintf("%s_avail_h%d", b.name, h+1), e, 0)
	}
	return nil
}

func (b *Block) scaledAvailability(h int, sign float64) lp.Expr {
	e := lp.Expr{}
	for k, p := range b.plants {
		e.AddTerm(b.frac[k], sign*p.CF[h]*p.Cost.CapacityMW)
	}
	return e
}

// FixedCost annualizes site capex (plus the transmission adder) and
// adds fixed O&M, both prorated by the selection fraction.
func (b *Block) FixedCost() lp.Expr {
	e := lp.Expr{}
	for k, p := range b.plants {
		capex := b.fcr * (tech.MWToKW*p.Cost.CapexPerKW + p.Cost.TransCapCost)
		fom := tech.MWToKW * p.Cost.FOMPerKW
		e.AddTerm(b.frac[k], (capex+fom)*p.Cost.CapacityMW)
	}
	return e
}

// VariableCost is zero: VRE has no fuel or per-MWh O&M cost.
func (b *Block) VariableCost() lp.Expr { return lp.Expr{} }

// BalanceAt contributes the delivered (post-curtailment) generation.
func (b *Block) BalanceAt(h int) lp.Expr {
	e := lp.Expr{}
	e.AddTerm(b.gen[h], 1)
	return e
}

// AvailabilityAt is the pre-curtailment available generation at hour h,
// used by the system net load expression.
func (b *Block) AvailabilityAt(h int) lp.Expr {
	return b.scaledAvailability(h, 1)
}

// Plants returns the candidate site set in model order.
func (b *Block) Plants() []sets.Plant { return b.plants }

// Fraction returns the selection fraction variable for site k.
func (b *Block) Fraction(k int) lp.Var { return b.frac[k] }

// Generation returns the delivered generation variable at hour h.
func (b *Block) Generation(h int) lp.Var { return b.gen[h] }

// Curtailment returns the curtailment variable at hour h.
func (b *Block) Curtailment(h int) lp.Var { return b.curt[h] }
