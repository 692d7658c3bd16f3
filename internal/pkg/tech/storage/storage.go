// Package storage models grid storage technologies: sized charge
// power, discharge power, and energy capacity per technology, with an
// hourly state-of-charge balance under a cyclical horizon, a binary
// charge/discharge disjunction, duration bounds, and a lifetime cycle
// budget.
package storage

import (
	"fmt"
	"math"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
	"github.com/ohowland/cep_core/internal/pkg/tech"
)

// Block is the formulation block for the storage portfolio.
type Block struct {
	techs []input.StorageTech
	hours int
	rate  float64

	pcha []lp.Var // sized charging power per tech (MW)
	pdis []lp.Var // sized discharging power per tech (MW)
	ecap []lp.Var // sized energy capacity per tech (MWh)

	pc  [][]lp.Var // [tech][hour] charging power
	pd  [][]lp.Var // [tech][hour] discharging power
	soc [][]lp.Var // [tech][hour] state of charge
	bin [][]lp.Var // [tech][hour] charge/discharge selector
}

// New returns an unattached block.
func New(techs []input.StorageTech, hours int, discountRate float64) *Block {
	return &Block{techs: techs, hours: hours, rate: discountRate}
}

func (b *Block) Name() string { return "storage" }

// Attach declares sizing and hourly operation variables and the full
// constraint set for every technology.
func (b *Block) Attach(m *lp.Model) error {
	if b.hours <= 0 {
		return fmt.Errorf("storage: horizon must be positive")
	}

	n := len(b.techs)
	b.pcha = make([]lp.Var, n)
	b.pdis = make([]lp.Var, n)
	b.ecap = make([]lp.Var, n)
	b.pc = make([][]lp.Var, n)
	b.pd = make([][]lp.Var, n)
	b.soc = make([][]lp.Var, n)
	b.bin = make([][]lp.Var, n)

	for j, t := range b.techs {
		b.pcha[j] = m.Continuous(fmt.Sprintf("storage_pcha_%s", t.Name), 0, t.MaxPower)
		b.pdis[j] = m.Continuous(fmt.Sprintf("storage_pdis_%s", t.Name), 0, t.MaxPower)
		b.ecap[j] = m.Continuous(fmt.Sprintf("storage_ecap_%s", t.Name), 0, math.Inf(1))

		b.pc[j] = make([]lp.Var, b.hours)
		b.pd[j] = make([]lp.Var, b.hours)
		b.soc[j] = make([]lp.Var, b.hours)
		b.bin[j] = make([]lp.Var, b.hours)
		for h := 0; h < b.hours; h++ {
			b.pc[j][h] = m.Continuous(fmt.Sprintf("storage_pc_%s_h%d", t.Name, h+1), 0, math.Inf(1))
			b.pd[j][h] = m.Continuous(fmt.Sprintf("storage_pd_%s_h%d", t.Name, h+1), 0, math.Inf(1))
			b.soc[j][h] = m.Continuous(fmt.Sprintf("storage_soc_%s_h%d", t.Name, h+1), 0, math.Inf(1))
			b.bin[j][h] = m.Binary(fmt.Sprintf("storage_mode_%s_h%d", t.Name, h+1))
		}
	}

	for j, t := range b.techs {
		b.attachTech(m, j, t)
	}
	return nil
}

func (b *Block) attachTech(m *lp.Model, j int, t input.StorageTech) {
	sqrtEff := math.Sqrt(t.Efficiency)

	for h := 0; h < b.hours; h++ {
		// PC(h) <= Pcha, PD(h) <= Pdis
		e := lp.Expr{}
		e.AddTerm(b.pc[j][h], 1)
		e.AddTerm(b.pcha[j], -1)
		m.AtMost(fmt.Sprintf("storage_maxcha_%s_h%d", t.Name, h+1), e, 0)

		e = lp.Expr{}
		e.AddTerm(b.pd[j][h], 1)
		e.AddTerm(b.pdis[j], -1)
		m.AtMost(fmt.Sprintf("storage_maxdis_%s_h%d", t.Name, h+1), e, 0)

		// Charge/discharge disjunction on the binary selector.
		e = lp.Expr{}
		e.AddTerm(b.pc[j][h], 1)
		e.AddTerm(b.bin[j][h], -t.MaxPower)
		m.AtMost(fmt.Sprintf("storage_chargest_%s_h%d", t.Name, h+1), e, 0)

		e = lp.Expr{}
		e.AddTerm(b.pd[j][h], 1)
		e.AddTerm(b.bin[j][h], t.MaxPower)
		m.AtMost(fmt.Sprintf("storage_dischargest_%s_h%d", t.Name, h+1), e, t.MaxPower)

		// SOC(h) <= Ecap
		e = lp.Expr{}
		e.AddTerm(b.soc[j][h], 1)
		e.AddTerm(b.ecap[j], -1)
		m.AtMost(fmt.Sprintf("storage_maxsoc_%s_h%d", t.Name, h+1), e, 0)

		// SOC balance, cyclical at the first hour:
		// SOC(h) = SOC(h-1) + sqrt(eff)*PC(h) - PD(h)/sqrt(eff)
		prev := h - 1
		if h == 0 {
			prev = b.hours - 1
		}
		e = lp.Expr{}
		e.AddTerm(b.soc[j][h], 1)
		e.AddTerm(b.soc[j][prev], -1)
		e.AddTerm(b.pc[j][h], -sqrtEff)
		e.AddTerm(b.pd[j][h], 1/sqrtEff)
		m.Equal(fmt.Sprintf("storage_socbalance_%s_h%d", t.Name, h+1), e, 0)
	}

	// Duration bounds: MinDur*Pdis/sqrt(eff) <= Ecap <= MaxDur*Pdis/sqrt(eff)
	e := lp.Expr{}
	e.AddTerm(b.ecap[j], 1)
	e.AddTerm(b.pdis[j], -t.MinDuration/sqrtEff)
	m.AtLeast(fmt.Sprintf("storage_minecap_%s", t.Name), e, 0)

	e = lp.Expr{}
	e.AddTerm(b.ecap[j], 1)
	e.AddTerm(b.pdis[j], -t.MaxDuration/sqrtEff)
	m.AtMost(fmt.Sprintf("storage_maxecap_%s", t.Name), e, 0)

	// Lifetime cycle budget: sum_h PD(h) <= (MaxCycles/Lifetime)*Ecap
	e = lp.Expr{}
	for h := 0; h < b.hours; h++ {
		e.AddTerm(b.pd[j][h], 1)
	}
	e.AddTerm(b.ecap[j], -t.MaxCycles/t.Lifetime)
	m.AtMost(fmt.Sprintf("storage_maxcycles_%s", t.Name), e, 0)

	// Coupled technologies size charge and discharge power together.
	if t.Coupled {
		e = lp.Expr{}
		e.AddTerm(b.pcha[j], 1)
		e.AddTerm(b.pdis[j], -1)
		m.Equal(fmt.Sprintf("storage_coupled_%s", t.Name), e, 0)
	}
}

// FixedCost annualizes power capex split across the charge and
// discharge sides by the cost ratio, plus energy capex, plus fixed O&M
// split the same way.
func (b *Block) FixedCost() lp.Expr {
	e := lp.Expr{}
	for j, t := range b.techs {
		crf := tech.CRF(b.rate, t.Lifetime)
		e.AddTerm(b.pcha[j], crf*tech.MWToKW*t.CostRatio*t.PowerCapex+tech.MWToKW*t.CostRatio*t.FOM)
		e.AddTerm(b.pdis[j], crf*tech.MWToKW*(1-t.CostRatio)*t.PowerCapex+tech.MWToKW*(1-t.CostRatio)*t.FOM)
		e.AddTerm(b.ecap[j], crf*tech.MWToKW*t.EnergyCapex)
	}
	return e
}

// VariableCost charges O&M per MWh discharged.
func (b *Block) VariableCost() lp.Expr {
	e := lp.Expr{}
	for j, t := range b.techs {
		for h := 0; h < b.hours; h++ {
			e.AddTerm(b.pd[j][h], t.VOM)
		}
	}
	return e
}

// BalanceAt contributes discharge minus charge across technologies.
func (b *Block) BalanceAt(h int) lp.Expr {
	e := lp.Expr{}
	for j := range b.techs {
		e.AddTerm(b.pd[j][h], 1)
		e.AddTerm(b.pc[j][h], -1)
	}
	return e
}

// NetChargeAt is charge minus discharge across technologies, the
// storage-loss term of the clean-share accounting.
func (b *Block) NetChargeAt(h int) lp.Expr {
	e := lp.Expr{}
	for j := range b.techs {
		e.AddTerm(b.pc[j][h], 1)
		e.AddTerm(b.pd[j][h], -1)
	}
	return e
}

// Techs returns the technology table in model order.
func (b *Block) Techs() []input.StorageTech { return b.techs }

// ChargePower returns the sized charging power variable for tech j.
func (b *Block) ChargePower(j int) lp.Var { return b.pcha[j] }

// DischargePower returns the sized discharging power variable for tech j.
func (b *Block) DischargePower(j int) lp.Var { return b.pdis[j] }

// EnergyCapacity returns the sized energy capacity variable for tech j.
func (b *Block) EnergyCapacity(j int) lp.Var { return b.ecap[j] }

// Charge returns the hourly charging variable for tech j at hour h.
func (b *Block) Charge(j, h int) lp.Var { return b.pc[j][h] }

// Discharge returns the hourly discharging variable for tech j at hour h.
func (b *Block) Discharge(j, h int) lp.Var { return b.pd[j][h] }

// SOC returns the state-of-charge variable for tech j at hour h.
func (b *Block) SOC(j, h int) lp.Var { return b.soc[j][h] }

// Mode returns the charge/discharge selector for tech j at hour h.
func (b *Block) Mode(j, h int) lp.Var { return b.bin[j][h] }
