// Package resiliency adds an optional load-shedding block: an hourly
// shed variable entering the supply balance, a served-share floor on
// critical load, and an annual cap on unserved energy.
package resiliency

import (
	"fmt"
	"math"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
)

// Block is the resiliency formulation block.
type Block struct {
	demand       input.Series
	hours        int
	critical     float64 // fraction of load treated as critical
	servedTarget float64 // required served share of critical load
	eueMax       float64 // MWh of allowed unserved energy

	shed []lp.Var
}

// New returns an unattached block.
func New(demand input.Series, hours int, critical, servedTarget, eueMax float64) *Block {
	return &Block{
		demand:       demand,
		hours:        hours,
		critical:     critical,
		servedTarget: servedTarget,
		eueMax:       eueMax,
	}
}

func (b *Block) Name() string { return "resiliency" }

// Attach declares the hourly shed variable, the critical-load served
// share floor, and the unserved-energy cap.
func (b *Block) Attach(m *lp.Model) error {
	if b.hours <= 0 {
		return fmt.Errorf("resiliency: horizon must be positive")
	}

	b.shed = make([]lp.Var, b.hours)
	for h := 0; h < b.hours; h++ {
		b.shed[h] = m.Continuous(fmt.Sprintf("resiliency_shed_h%d", h+1), 0, math.Inf(1))
	}

	// sum_h (load(h) - shed(h)) >= target * critical * sum_h load(h)
	totalLoad := 0.0
	e := lp.Expr{}
	for h := 0; h < b.hours; h++ {
		totalLoad += b.demand[h]
		e.AddTerm(b.shed[h], -1)
	}
	e.AddConst(totalLoad)
	m.AtLeast("resiliency_pcls", e, b.servedTarget*b.critical*totalLoad)

	// sum_h shed(h) <= EUE_max
	e = lp.Expr{}
	for h := 0; h < b.hours; h++ {
		e.AddTerm(b.shed[h], 1)
	}
	m.AtMost("resiliency_max_eue", e, b.eueMax)
	return nil
}

// FixedCost is zero.
func (b *Block) FixedCost() lp.Expr { return lp.Expr{} }

// VariableCost is zero: shedding is bounded, not priced.
func (b *Block) VariableCost() lp.Expr { return lp.Expr{} }

// BalanceAt contributes the shed volume on the supply side.
func (b *Block) BalanceAt(h int) lp.Expr {
	e := lp.Expr{}
	e.AddTerm(b.shed[h], 1)
	return e
}

// Shed returns the shed variable at hour h.
func (b *Block) Shed(h int) lp.Var { return b.shed[h] }
