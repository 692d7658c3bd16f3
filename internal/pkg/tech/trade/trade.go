// Package trade models cross-border electricity exchange under the
// capacity/price/net-load formulation: hourly import and export
// volumes bounded by interconnection capacity, priced by hourly market
// series, with a shared binary selector that forbids importing and
// exporting in the same hour. The selector is tied to the system net
// load through a big-M disjunction, so imports only occur in deficit
// hours and exports only in surplus hours.
package trade

import (
	"fmt"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
)

// epsilon separates the two sides of the net-load disjunction.
const epsilon = 1e-6

// Block is the joint imports/exports formulation block.
type Block struct {
	imports input.TradeData
	exports input.TradeData
	demand  input.Series
	hours   int
	bigM    float64
	netLoad func(h int) lp.Expr

	imp []lp.Var
	exp []lp.Var
	bin []lp.Var
}

// New returns an unattached block. netLoad supplies the system net
// load expression per hour; the composer provides it once every
// generating block is constructed. bigM must dominate the largest
// possible net load magnitude.
func New(imports, exports input.TradeData, demand input.Series, hours int, bigM float64, netLoad func(h int) lp.Expr) *Block {
	return &Block{
		imports: imports,
		exports: exports,
		demand:  demand,
		hours:   hours,
		bigM:    bigM,
		netLoad: netLoad,
	}
}

func (b *Block) Name() string { return "trade" }

// Attach declares hourly import/export volumes, the shared selector,
// and the net-load disjunction.
func (b *Block) Attach(m *lp.Model) error {
	if b.hours <= 0 {
		return fmt.Errorf("trade: horizon must be positive")
	}
	if b.bigM <= 0 {
		return fmt.Errorf("trade: big-M constant must be positive")
	}

	maxExportCap := 0.0
	for h := 0; h < b.hours; h++ {
		if b.exports.Capacity[h] > maxExportCap {
			maxExportCap = b.exports.Capacity[h]
		}
	}

	b.imp = make([]lp.Var, b.hours)
	b.exp = make([]lp.Var, b.hours)
	b.bin = make([]lp.Var, b.hours)
	for h := 0; h < b.hours; h++ {
		b.imp[h] = m.Continuous(fmt.Sprintf("trade_imp_h%d", h+1), 0, b.imports.Capacity[h])
		b.exp[h] = m.Continuous(fmt.Sprintf("trade_exp_h%d", h+1), 0, b.exports.Capacity[h])
		b.bin[h] = m.Binary(fmt.Sprintf("trade_deficit_h%d", h+1))
	}

	for h := 0; h < b.hours; h++ {
		// net_load(h) <= M * y(h)
		e := b.netLoad(h)
		e.AddTerm(b.bin[h], -b.bigM)
		m.AtMost(fmt.Sprintf("trade_bigm_pos_h%d", h+1), e, 0)

		// -net_load(h) + eps <= M * (1 - y(h))
		e = lp.Expr{}
		e.AddScaled(b.netLoad(h), -1)
		e.AddTerm(b.bin[h], b.bigM)
		m.AtMost(fmt.Sprintf("trade_bigm_neg_h%d", h+1), e, b.bigM-epsilon)

		// imports only in deficit hours, bounded by demand
		e = lp.Expr{}
		e.AddTerm(b.imp[h], 1)
		e.AddTerm(b.bin[h], -b.demand[h])
		m.AtMost(fmt.Sprintf("trade_imp_netload_h%d", h+1), e, 0)

		// exports only in surplus hours, bounded by the peak export cap
		e = lp.Expr{}
		e.AddTerm(b.exp[h], 1)
		e.AddTerm(b.bin[h], maxExportCap)
		m.AtMost(fmt.Sprintf("trade_exp_netload_h%d", h+1), e, maxExportCap)
	}
	return nil
}

// FixedCost is zero: interconnection capacity is existing.
func (b *Block) FixedCost() lp.Expr { return lp.Expr{} }

// VariableCost is the import bill minus the export revenue.
func (b *Block) VariableCost() lp.Expr {
	e := lp.Expr{}
	for h := 0; h < b.hours; h++ {
		e.AddTerm(b.imp[h], b.imports.Price[h])
		e.AddTerm(b.exp[h], -b.exports.Price[h])
	}
	return e
}

// ImportCost is the hourly-priced import bill alone.
func (b *Block) ImportCost() lp.Expr {
	e := lp.Expr{}
	for h := 0; h < b.hours; h++ {
		e.AddTerm(b.imp[h], b.imports.Price[h])
	}
	return e
}

// ExportRevenue is the hourly-priced export revenue alone.
func (b *Block) ExportRevenue() lp.Expr {
	e := lp.Expr{}
	for h := 0; h < b.hours; h++ {
		e.AddTerm(b.exp[h], b.exports.Price[h])
	}
	return e
}

// BalanceAt contributes imports minus exports.
func (b *Block) BalanceAt(h int) lp.Expr {
	e := lp.Expr{}
	e.AddTerm(b.imp[h], 1)
	e.AddTerm(b.exp[h], -1)
	return e
}

// TotalImports sums import volume over the horizon, for the
// clean-share accounting.
func (b *Block) TotalImports() lp.Expr {
	e := lp.Expr{}
	for h := 0; h < b.hours; h++ {
		e.AddTerm(b.imp[h], 1)
	}
	return e
}

// Import returns the import volume variable at hour h.
func (b *Block) Import(h int) lp.Var { return b.imp[h] }

// Export returns the export volume variable at hour h.
func (b *Block) Export(h int) lp.Var { return b.exp[h] }

// Deficit returns the net-load selector at hour h: 1 in deficit hours,
// 0 in surplus hours.
func (b *Block) Deficit(h int) lp.Var { return b.bin[h] }
