package input

import "fmt"

// Series is an hourly time series, index 0 is hour 1.
type Series []float64

// PlantProfile is the hourly capacity factor trace for one candidate
// VRE site.
type PlantProfile struct {
	ID string
	CF Series
}

// PlantCost holds the cost and capacity characteristics of one
// candidate VRE site.
type PlantCost struct {
	ID            string
	CapacityMW    float64 // nameplate capacity (MW)
	CapexPerKW    float64 // overnight capital cost (US$/kW)
	FOMPerKW      float64 // fixed O&M (US$/kW-yr)
	TransCapCost  float64 // transmission interconnection adder (US$/MW)
}

// VREData pairs the profile and cost tables for one VRE class. The two
// tables may disagree on plant membership; the set initializer
// intersects them.
type VREData struct {
	Profiles []PlantProfile
	Costs    []PlantCost
}

// StorageTech holds the property column for one storage technology.
type StorageTech struct {
	Name        string
	PowerCapex  float64 // US$/kW
	EnergyCapex float64 // US$/kWh
	Efficiency  float64 // round-trip, (0, 1]
	MinDuration float64 // hours
	MaxDuration float64 // hours
	MaxPower    float64 // MW bound used in the charge/discharge disjunction
	FOM         float64 // US$/kW-yr
	VOM         float64 // US$/MWh discharged
	Lifetime    float64 // years
	CostRatio   float64 // share of power capex assigned to the charging side
	MaxCycles   float64 // full cycles over the technology lifetime
	Coupled     bool    // charge and discharge power capacities forced equal
}

// ThermalUnit holds one row of the thermal unit table.
type ThermalUnit struct {
	ID          string
	FuelCost    float64 // US$/MMBtu
	HeatRate    float64 // MMBtu/MWh
	CapexPerKW  float64 // US$/kW
	FOMPerKW    float64 // US$/kW-yr
	VOM         float64 // US$/MWh
	MinCapacity float64 // MW
	MaxCapacity float64 // MW
	Lifetime    float64 // years
}

// TradeData carries the hourly interconnection limits and prices for
// one trade direction.
type TradeData struct {
	Capacity Series // MW
	Price    Series // US$/MWh
}

// Scalars holds the single-valued parameters of the system.
type Scalars struct {
	DiscountRate         float64 // r
	VRELifetime          float64 // years, shared by solar and wind
	AlphaNuclear         float64 // scaling on the nuclear reference series
	AlphaHydro           float64 // scaling on the large-hydro reference series
	AlphaOtherRenewables float64 // scaling on the other-renewables series
	GenMixTarget         float64 // default clean-share target, overridable per scenario
	EUEMax               float64 // MWh of allowed unserved energy (resiliency)
	CriticalLoadFraction float64 // share of load treated as critical (resiliency)
	PCLSTarget           float64 // served share of critical load (resiliency)
	BigM                 float64 // trade disjunction constant; 0 derives it from data
}

// Bundle is the full input data set for one system build.
type Bundle struct {
	Demand          Series
	Nuclear         Series
	Hydro           Series
	HydroMin        Series // required by budget hydro formulations
	HydroMax        Series // required by budget hydro formulations
	OtherRenewables Series

	Solar VREData
	Wind  VREData

	Storage []StorageTech
	Thermal []ThermalUnit

	Scalars Scalars

	HydroForm   HydroFormulation
	ImportsForm TradeFormulation
	ExportsForm TradeFormulation
	Imports     TradeData
	Exports     TradeData

	Resiliency bool
}

// Hours returns the raw demand horizon before any budget rounding.
func (b *Bundle) Hours() int {
	return len(b.Demand)
}

// Validate checks the bundle for fatal configuration errors. Length
// mismatches between series and the demand horizon, out-of-range
// technology properties, and missing required tables are fatal.
// Recoverable inconsistencies (plant set mismatch, horizon rounding)
// are not checked here; the set initializer corrects those with a
// logged warning.
func (b *Bundle) Validate() error {
	n := b.Hours()
	if n == 0 {
		return fmt.Errorf("input: demand series is empty")
	}
	if err := checkSeries("nuclear", b.Nuclear, n); err != nil {
		return err
	}
	if err := checkSeries("large hydro", b.Hydro, n); err != nil {
		return err
	}
	if err := checkSeries("other renewables", b.OtherRenewables, n); err != nil {
		return err
	}
	if b.HydroForm.BudgetHours() > 0 {
		if err := checkSeries("hydro min", b.HydroMin, n); err != nil {
			return err
		}
		if err := checkSeries("hydro max", b.HydroMax, n); err != nil {
			return err
		}
	}
	if b.ImportsForm.Modeled() {
		if err := checkSeries("import capacity", b.Imports.Capacity, n); err != nil {
			return err
		}
		if err := checkSeries("import price", b.Imports.Price, n); err != nil {
			return err
		}
	}
	if b.ExportsForm.Modeled() {
		if err := checkSeries("export capacity", b.Exports.Capacity, n); err != nil {
			return err
		}
		if err := checkSeries("export price", b.Exports.Price, n); err != nil {
			return err
		}
	}

	for _, p := range append(append([]PlantProfile{}, b.Solar.Profiles...), b.Wind.Profiles...) {
		if len(p.CF) < n {
			return fmt.Errorf("input: capacity factor series for plant %q has %d hours, demand has %d", p.ID, len(p.CF), n)
		}
	}

	for _, j := range b.Storage {
		if j.Efficiency <= 0 || j.Efficiency > 1 {
			return fmt.Errorf("input: storage %q round-trip efficiency %.3f outside (0, 1]", j.Name, j.Efficiency)
		}
		if j.MinDuration > j.MaxDuration {
			return fmt.Errorf("input: storage %q min duration %.1f exceeds max duration %.1f", j.Name, j.MinDuration, j.MaxDuration)
		}
		if j.Lifetime <= 0 {
			return fmt.Errorf("input: storage %q lifetime must be positive", j.Name)
		}
	}

	for _, u := range b.Thermal {
		if u.MinCapacity > u.MaxCapacity {
			return fmt.Errorf("input: thermal unit %q min capacity %.1f exceeds max capacity %.1f", u.ID, u.MinCapacity, u.MaxCapacity)
		}
		if u.Lifetime <= 0 {
			return fmt.Errorf("input: thermal unit %q lifetime must be positive", u.ID)
		}
	}

	if b.Scalars.DiscountRate <= 0 {
		return fmt.Errorf("input: discount rate must be positive")
	}
	if b.Scalars.VRELifetime <= 0 {
		return fmt.Errorf("input: VRE lifetime must be positive")
	}
	if b.Scalars.GenMixTarget < 0 || b.Scalars.GenMixTarget > 1 {
		return fmt.Errorf("input: genmix target %.3f outside [0, 1]", b.Scalars.GenMixTarget)
	}
	if b.Resiliency {
		if b.Scalars.PCLSTarget <= 0 || b.Scalars.PCLSTarget > 1 {
			return fmt.Errorf("input: PCLS target %.3f outside (0, 1]", b.Scalars.PCLSTarget)
		}
		if b.Scalars.CriticalLoadFraction <= 0 || b.Scalars.CriticalLoadFraction > 1 {
			return fmt.Errorf("input: critical load fraction %.3f outside (0, 1]", b.Scalars.CriticalLoadFraction)
		}
	}
	return nil
}

func checkSeries(name string, s Series, n int) error {
	if len(s) < n {
		return fmt.Errorf("input: %s series has %d hours, demand has %d", name, len(s), n)
	}
	return nil
}
