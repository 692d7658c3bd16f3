// Package hydro models large hydropower under one of three
// formulations: run-of-river generation pinned to the scaled reference
// series, or flexible dispatch inside hourly bounds with daily or
// monthly energy budgets equal to the scaled reference allocation.
package hydro

import (
	"fmt"
	"math"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
	"github.com/ohowland/cep_core/internal/pkg/sets"
)

// Block is the formulation block for large hydro.
type Block struct {
	form    input.HydroFormulation
	horizon sets.Horizon
	alpha   float64
	ts      input.Series
	min     input.Series
	max     input.Series

	gen []lp.Var
}

// New returns an unattached block. min and max are only consulted by
// the budget formulations.
func New(form input.HydroFormulation, horizon sets.Horizon, alpha float64, ts, min, max input.Series) *Block {
	return &Block{form: form, horizon: horizon, alpha: alpha, ts: ts, min: min, max: max}
}

func (b *Block) Name() string { return "hydro" }

// Attach declares hourly generation and the formulation's constraints.
func (b *Block) Attach(m *lp.Model) error {
	hours := b.horizon.Hours
	if hours <= 0 {
		return fmt.Errorf("hydro: horizon must be positive")
	}
	if len(b.ts) < hours {
		return fmt.Errorf("hydro: reference series has %d hours, horizon needs %d", len(b.ts), hours)
	}

	b.gen = make([]lp.Var, hours)
	for h := 0; h < hours; h++ {
		b.gen[h] = m.Continuous(fmt.Sprintf("hydro_gen_h%d", h+1), 0, math.Inf(1))
	}

	switch b.form {
	case input.RunOfRiver:
		for h := 0; h < hours; h++ {
			e := lp.Expr{}
			e.AddTerm(b.gen[h], 1)
			m.Equal(fmt.Sprintf("hydro_ror_h%d", h+1), e, b.alpha*b.ts[h])
		}
	case input.DailyBudget, input.MonthlyBudget:
		if len(b.min) < hours || len(b.max) < hours {
			return fmt.Errorf("hydro: budget formulation requires min and max bound series of %d hours", hours)
		}
		for h := 0; h < hours; h++ {
			e := lp.Expr{}
			e.AddTerm(b.gen[h], 1)
			m.Range(fmt.Sprintf("hydro_bounds_h%d", h+1), b.alpha*b.min[h], e, b.alpha*b.max[h])
		}
		for p := 0; p < b.horizon.Periods(); p++ {
			start, end := b.horizon.PeriodRange(p)
			e := lp.Expr{}
			budget := 0.0
			for h := start; h < end; h++ {
				e.AddTerm(b.gen[h], 1)
				budget += b.alpha * b.ts[h]
			}
			m.Equal(fmt.Sprintf("hydro_budget_p%d", p+1), e, budget)
		}
	default:
		return fmt.Errorf("hydro: unsupported formulation %v", b.form)
	}
	return nil
}

// FixedCost is zero: the reference fleet is existing capacity.
func (b *Block) FixedCost() lp.Expr { return lp.Expr{} }

// VariableCost is zero.
func (b *Block) VariableCost() lp.Expr { return lp.Expr{} }

// BalanceAt contributes the hourly generation.
func (b *Block) BalanceAt(h int) lp.Expr {
	e := lp.Expr{}
	e.AddTerm(b.gen[h], 1)
	return e
}

// Generation returns the generation variable at hour h.
func (b *Block) Generation(h int) lp.Var { return b.gen[h] }
