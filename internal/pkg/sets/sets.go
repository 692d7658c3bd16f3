// Package sets builds the index sets the formulation blocks operate
// over: the hour horizon, the budget periods partitioning it, and the
// candidate plant sets shared between profile and cost tables.
package sets

import (
	"fmt"
	"log"

	"github.com/ohowland/cep_core/internal/pkg/input"
)

// Horizon is the hour set 1..Hours with an optional budget partition.
type Horizon struct {
	Hours       int
	BudgetHours int // 0 when no budget formulation is active
}

// BuildHorizon resolves the requested hour count against the available
// data and the hydro formulation. A requested count of 0 means the full
// available horizon. Under a budget formulation the count is rounded up
// to a whole number of budget intervals; rounding past the available
// data is a fatal error.
func BuildHorizon(requested, available int, f input.HydroFormulation) (Horizon, error) {
	if available <= 0 {
		return Horizon{}, fmt.Errorf("sets: no hourly data available")
	}
	hours := requested
	if hours <= 0 || hours > available {
		hours = available
	}

	budget := f.BudgetHours()
	if budget > 0 && hours%budget != 0 {
		rounded := ((hours / budget) + 1) * budget
		log.Printf("[Sets] warning: horizon of %d hours is not a multiple of the %d-hour budget interval, rounding up to %d", hours, budget, rounded)
		if rounded > available {
			return Horizon{}, fmt.Errorf("sets: budget-adjusted horizon %d exceeds the %d hours of available data", rounded, available)
		}
		hours = rounded
	}
	return Horizon{Hours: hours, BudgetHours: budget}, nil
}

// Periods returns the number of budget periods, 0 without a budget.
func (h Horizon) Periods() int {
	if h.BudgetHours == 0 {
		return 0
	}
	return h.Hours / h.BudgetHours
}

// PeriodRange returns the half-open hour index range [start, end) of
// budget period p (0-based).
func (h Horizon) PeriodRange(p int) (int, int) {
	start := p * h.BudgetHours
	return start, start + h.BudgetHours
}

// Plant is a candidate VRE site present in both the profile and the
// cost tables.
type Plant struct {
	ID   string
	CF   input.Series
	Cost input.PlantCost
}

// FilterPlants intersects the profile and cost tables of one VRE
// class. Plants present in only one table are dropped with a logged
// warning; ordering follows the profile table for determinism.
func FilterPlants(class string, data input.VREData) []Plant {
	costs := make(map[string]input.PlantCost, len(data.Costs))
	for _, c := range data.Costs {
		costs[c.ID] = c
	}

	plants := make([]Plant, 0, len(data.Profiles))
	matched := make(map[string]bool, len(data.Profiles))
	for _, p := range data.Profiles {
		c, ok := costs[p.ID]
		if !ok {
			log.Printf("[Sets] warning: %s plant %q has a capacity factor profile but no cost row, dropping", class, p.ID)
			continue
		}
		matched[p.ID] = true
		plants = append(plants, Plant{ID: p.ID, CF: p.CF, Cost: c})
	}
	for _, c := range data.Costs {
		if !matched[c.ID] {
			log.Printf("[Sets] warning: %s plant %q has a cost row but no capacity factor profile, dropping", class, c.ID)
		}
	}
	return plants
}
