package input

import "fmt"

// HydroFormulation selects how large-hydro dispatch is constrained.
type HydroFormulation int

const (
	RunOfRiver HydroFormulation = iota
	DailyBudget
	MonthlyBudget
)

const (
	runOfRiverName    = "RunOfRiverFormulation"
	dailyBudgetName   = "DailyBudgetFormulation"
	monthlyBudgetName = "MonthlyBudgetFormulation"
)

// ParseHydroFormulation converts a configuration string into a closed
// enum value. Unknown strings are fatal configuration errors.
func ParseHydroFormulation(s string) (HydroFormulation, error) {
	switch s {
	case runOfRiverName:
		return RunOfRiver, nil
	case dailyBudgetName:
		return DailyBudget, nil
	case monthlyBudgetName:
		return MonthlyBudget, nil
	}
	return 0, fmt.Errorf("input: unknown hydro formulation %q (valid: %s, %s, %s)",
		s, runOfRiverName, dailyBudgetName, monthlyBudgetName)
}

func (f HydroFormulation) String() string {
	switch f {
	case RunOfRiver:
		return runOfRiverName
	case DailyBudget:
		return dailyBudgetName
	case MonthlyBudget:
		return monthlyBudgetName
	}
	return "UnknownHydroFormulation"
}

// BudgetHours returns the aggregation interval for budget formulations,
// or 0 for run-of-river.
func (f HydroFormulation) BudgetHours() int {
	switch f {
	case DailyBudget:
		return 24
	case MonthlyBudget:
		return 730
	}
	return 0
}

// TradeFormulation selects how imports or exports are modeled.
type TradeFormulation int

const (
	TradeNotModeled TradeFormulation = iota
	TradeCapacityPriceNetLoad
)

const (
	notModelName             = "NotModel"
	capacityPriceNetLoadName = "CapacityPriceNetLoadFormulation"
)

// ParseTradeFormulation converts a configuration string into a closed
// enum value.
func ParseTradeFormulation(s string) (TradeFormulation, error) {
	switch s {
	case notModelName:
		return TradeNotModeled, nil
	case capacityPriceNetLoadName:
		return TradeCapacityPriceNetLoad, nil
	}
	return 0, fmt.Errorf("input: unknown trade formulation %q (valid: %s, %s)",
		s, notModelName, capacityPriceNetLoadName)
}

func (f TradeFormulation) String() string {
	switch f {
	case TradeNotModeled:
		return notModelName
	case TradeCapacityPriceNetLoad:
		return capacityPriceNetLoadName
	}
	return "UnknownTradeFormulation"
}

// Modeled reports whether the component participates in the system.
func (f TradeFormulation) Modeled() bool {
	return f != TradeNotModeled
}
