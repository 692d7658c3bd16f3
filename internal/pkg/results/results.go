// Package results extracts a typed results object from a solved
// system. Extraction is gated on an optimal termination; anything else
// is refused with the violated constraints logged for diagnosis.
package results

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/cep_core/internal/pkg/solve"
	"github.com/ohowland/cep_core/internal/pkg/system"
)

const feasTolerance = 1e-6

// ProblemInfo counts the solved model's dimensions.
type ProblemInfo struct {
	Variables   int `json:"variables" bson:"variables"`
	Binaries    int `json:"binaries" bson:"binaries"`
	Constraints int `json:"constraints" bson:"constraints"`
	Nonzeros    int `json:"nonzeros" bson:"nonzeros"`
}

// PlantSelection is the sized outcome for one candidate VRE site.
type PlantSelection struct {
	ID         string  `json:"id" bson:"id"`
	Fraction   float64 `json:"fraction" bson:"fraction"`
	SelectedMW float64 `json:"selected_mw" bson:"selected_mw"`
}

// StorageCapacity is the sized outcome for one storage technology.
type StorageCapacity struct {
	Tech        string  `json:"tech" bson:"tech"`
	ChargeMW    float64 `json:"charge_mw" bson:"charge_mw"`
	DischargeMW float64 `json:"discharge_mw" bson:"discharge_mw"`
	EnergyMWh   float64 `json:"energy_mwh" bson:"energy_mwh"`
}

// HourlyDispatch is one hour of the solved operating schedule.
type HourlyDispatch struct {
	Hour            int     `json:"hour" bson:"hour"`
	Demand          float64 `json:"demand" bson:"demand"`
	Solar           float64 `json:"solar" bson:"solar"`
	Wind            float64 `json:"wind" bson:"wind"`
	Thermal         float64 `json:"thermal" bson:"thermal"`
	Hydro           float64 `json:"hydro" bson:"hydro"`
	Nuclear         float64 `json:"nuclear" bson:"nuclear"`
	OtherRenewables float64 `json:"other_renewables" bson:"other_renewables"`
	Charge          float64 `json:"charge" bson:"charge"`
	Discharge       float64 `json:"discharge" bson:"discharge"`
	Imports         float64 `json:"imports" bson:"imports"`
	Exports         float64 `json:"exports" bson:"exports"`
	Curtailment     float64 `json:"curtailment" bson:"curtailment"`
	Shed            float64 `json:"shed" bson:"shed"`
}

// AnnualGeneration totals the operating schedule by technology, in MWh
// over the solved horizon.
type AnnualGeneration struct {
	Solar           float64 `json:"solar" bson:"solar"`
	Wind            float64 `json:"wind" bson:"wind"`
	Thermal         float64 `json:"thermal" bson:"thermal"`
	Hydro           float64 `json:"hydro" bson:"hydro"`
	Nuclear         float64 `json:"nuclear" bson:"nuclear"`
	OtherRenewables float64 `json:"other_renewables" bson:"other_renewables"`
	Discharge       float64 `json:"discharge" bson:"discharge"`
	Imports         float64 `json:"imports" bson:"imports"`
	Exports         float64 `json:"exports" bson:"exports"`
	Curtailment     float64 `json:"curtailment" bson:"curtailment"`
}

// CostBreakdown splits the objective by technology and cost class, in
// US$/yr.
type CostBreakdown struct {
	SolarFixed      float64 `json:"solar_fixed" bson:"solar_fixed"`
	WindFixed       float64 `json:"wind_fixed" bson:"wind_fixed"`
	ThermalFixed    float64 `json:"thermal_fixed" bson:"thermal_fixed"`
	StorageFixed    float64 `json:"storage_fixed" bson:"storage_fixed"`
	ThermalVariable float64 `json:"thermal_variable" bson:"thermal_variable"`
	StorageVariable float64 `json:"storage_variable" bson:"storage_variable"`
	ImportCost      float64 `json:"import_cost" bson:"import_cost"`
	ExportRevenue   float64 `json:"export_revenue" bson:"export_revenue"`
}

// Results is the complete outcome of one solved scenario.
type Results struct {
	RunID        uuid.UUID     `json:"run_id" bson:"run_id"`
	Case         string        `json:"case" bson:"case"`
	Termination  string        `json:"termination" bson:"termination"`
	Objective    float64       `json:"objective" bson:"objective"`
	GenMixTarget float64       `json:"genmix_target" bson:"genmix_target"`
	Hours        int           `json:"hours" bson:"hours"`
	WallTime     time.Duration `json:"wall_time" bson:"wall_time"`

	SolarMW   float64 `json:"solar_mw" bson:"solar_mw"`
	WindMW    float64 `json:"wind_mw" bson:"wind_mw"`
	ThermalMW float64 `json:"thermal_mw" bson:"thermal_mw"`

	SolarPlants []PlantSelection  `json:"solar_plants" bson:"solar_plants"`
	WindPlants  []PlantSelection  `json:"wind_plants" bson:"wind_plants"`
	Storage     []StorageCapacity `json:"storage" bson:"storage"`

	Dispatch   []HourlyDispatch `json:"dispatch" bson:"dispatch"`
	Generation AnnualGeneration `json:"generation" bson:"generation"`
	Costs      CostBreakdown    `json:"costs" bson:"costs"`
	Problem    ProblemInfo      `json:"problem" bson:"problem"`
}

// IsOptimal reports whether the run terminated at a proven optimum.
func (r *Results) IsOptimal() bool {
	return r.Termination == solve.Optimal.String()
}

// Collect extracts results from a solved system. A non-optimal outcome
// refuses extraction and logs the constraints violated at the current
// (typically zero) variable values to aid diagnosis.
func Collect(s *system.System, caseName string, out solve.Outcome) (*Results, error) {
	if out.Condition != solve.Optimal {
		violated := s.Model.Violated(feasTolerance)
		log.Printf("[Results] termination %s, refusing extraction; %d constraints violated at current values", out.Condition, len(violated))
		for i, name := range violated {
			if i >= 20 {
				log.Printf("[Results]   ... %d more", len(violated)-20)
				break
			}
			log.Printf("[Results]   violated: %s", name)
		}
		return nil, fmt.Errorf("results: cannot extract from %s termination", out.Condition)
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	m := s.Model
	r := &Results{
		RunID:        pid,
		Case:         caseName,
		Termination:  out.Condition.String(),
		Objective:    out.Objective,
		GenMixTarget: s.Target,
		Hours:        s.Horizon.Hours,
		WallTime:     out.WallTime,
		Problem: ProblemInfo{
			Variables:   m.NumVars(),
			Binaries:    m.NumBinaries(),
			Constraints: m.NumConstraints(),
			Nonzeros:    m.NumNonzeros(),
		},
	}

	for k, p := range s.Solar.Plants() {
		frac := m.Value(s.Solar.Fraction(k))
		r.SolarPlants = append(r.SolarPlants, PlantSelection{ID: p.ID, Fraction: frac, SelectedMW: frac * p.Cost.CapacityMW})
		r.SolarMW += frac * p.Cost.CapacityMW
	}
	for k, p := range s.Wind.Plants() {
		frac := m.Value(s.Wind.Fraction(k))
		r.WindPlants = append(r.WindPlants, PlantSelection{ID: p.ID, Fraction: frac, SelectedMW: frac * p.Cost.CapacityMW})
		r.WindMW += frac * p.Cost.CapacityMW
	}
	for i := range s.Thermal.Units() {
		r.ThermalMW += m.Value(s.Thermal.Capacity(i))
	}
	for j, t := range s.Storage.Techs() {
		r.Storage = append(r.Storage, StorageCapacity{
			Tech:        t.Name,
			ChargeMW:    m.Value(s.Storage.ChargePower(j)),
			DischargeMW: m.Value(s.Storage.DischargePower(j)),
			EnergyMWh:   m.Value(s.Storage.EnergyCapacity(j)),
		})
	}

	r.Dispatch = make([]HourlyDispatch, s.Horizon.Hours)
	for h := 0; h < s.Horizon.Hours; h++ {
		d := &r.Dispatch[h]
		d.Hour = h + 1
		d.Solar = m.Value(s.Solar.Generation(h))
		d.Wind = m.Value(s.Wind.Generation(h))
		d.Curtailment = m.Value(s.Solar.Curtailment(h)) + m.Value(s.Wind.Curtailment(h))
		d.Hydro = m.Eval(s.Hydro.BalanceAt(h))
		d.Nuclear = s.Nuclear.At(h)
		d.OtherRenewables = s.OtherRenewables.At(h)
		d.Thermal = m.Eval(s.Thermal.BalanceAt(h))
		for j := range s.Storage.Techs() {
			d.Charge += m.Value(s.Storage.Charge(j, h))
			d.Discharge += m.Value(s.Storage.Discharge(j, h))
		}
		if s.Trade != nil {
			d.Imports = m.Value(s.Trade.Import(h))
			d.Exports = m.Value(s.Trade.Export(h))
		}
		if s.Resiliency != nil {
			d.Shed = m.Value(s.Resiliency.Shed(h))
		}
		d.Demand = s.Demand(h)

		r.Generation.Solar += d.Solar
		r.Generation.Wind += d.Wind
		r.Generation.Thermal += d.Thermal
		r.Generation.Hydro += d.Hydro
		r.Generation.Nuclear += d.Nuclear
		r.Generation.OtherRenewables += d.OtherRenewables
		r.Generation.Discharge += d.Discharge
		r.Generation.Imports += d.Imports
		r.Generation.Exports += d.Exports
		r.Generation.Curtailment += d.Curtailment
	}

	r.Costs = CostBreakdown{
		SolarFixed:      m.Eval(s.Solar.FixedCost()),
		WindFixed:       m.Eval(s.Wind.FixedCost()),
		ThermalFixed:    m.Eval(s.Thermal.FixedCost()),
		StorageFixed:    m.Eval(s.Storage.FixedCost()),
		ThermalVariable: m.Eval(s.Thermal.VariableCost()),
		StorageVariable: m.Eval(s.Storage.VariableCost()),
	}
	if s.Trade != nil {
		r.Costs.ImportCost = m.Eval(s.Trade.ImportCost())
		r.Costs.ExportRevenue = m.Eval(s.Trade.ExportRevenue())
	}
	return r, nil
}
