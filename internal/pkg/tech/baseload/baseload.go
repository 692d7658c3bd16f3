// Package baseload models must-run reference fleets (nuclear, other
// renewables) whose hourly output is the scaled historical series. The
// block carries no decision variables; its balance contribution is a
// constant.
package baseload

import (
	"fmt"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
)

// Block is a constant-output technology.
type Block struct {
	name  string
	alpha float64
	ts    input.Series
	hours int
}

// New returns an unattached block.
func New(name string, alpha float64, ts input.Series, hours int) *Block {
	return &Block{name: name, alpha: alpha, ts: ts, hours: hours}
}

func (b *Block) Name() string { return b.name }

// Attach validates the series against the horizon; there is nothing to
// declare.
func (b *Block) Attach(m *lp.Model) error {
	if len(b.ts) < b.hours {
		return fmt.Errorf("%s: reference series has %d hours, horizon needs %d", b.name, len(b.ts), b.hours)
	}
	return nil
}

// FixedCost is zero: the reference fleet is existing capacity.
func (b *Block) FixedCost() lp.Expr { return lp.Expr{} }

// VariableCost is zero.
func (b *Block) VariableCost() lp.Expr { return lp.Expr{} }

// BalanceAt contributes the scaled reference output.
func (b *Block) BalanceAt(h int) lp.Expr {
	return lp.Expr{Const: b.alpha * b.ts[h]}
}

// At returns the scaled reference output at hour h.
func (b *Block) At(h int) float64 {
	return b.alpha * b.ts[h]
}
