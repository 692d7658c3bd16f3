// Package tech defines the contract every technology formulation block
// satisfies, plus the financial helpers the blocks share.
package tech

import (
	"math"

	"github.com/ohowland/cep_core/internal/pkg/lp"
)

// MWToKW converts $/kW cost figures onto MW capacity variables.
const MWToKW = 1000.0

// Block is one technology's contribution to the system model. Attach
// declares the block's variables and feasibility constraints; the cost
// and balance methods are only valid after Attach.
type Block interface {
	Name() string

	Attach(m *lp.Model) error

	// FixedCost is the annualized capex plus fixed O&M expression.
	FixedCost() lp.Expr

	// VariableCost is the per-MWh production cost expression.
	VariableCost() lp.Expr

	// BalanceAt is the signed supply-side contribution at hour h
	// (0-based): generation and discharge positive, charging negative.
	BalanceAt(h int) lp.Expr
}

// CRF returns the capital recovery factor r(1+r)^L / ((1+r)^L - 1),
// annuitizing a capital cost over lifetime L years at discount rate r.
func CRF(rate, lifetime float64) float64 {
	f := math.Pow(1+rate, lifetime)
	return rate * f / (f - 1)
}
