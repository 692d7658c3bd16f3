// Package csvdir loads an input bundle from a directory of CSV tables.
//
// The directory layout mirrors the canonical case format: one file per
// table, a formulations table selecting the hydro and trade modes, and
// a scalars table keyed by parameter name.
package csvdir

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ohowland/cep_core/internal/pkg/input"
)

const (
	formulationsFile    = "formulations.csv"
	cfSolarFile         = "cf_solar.csv"
	cfWindFile          = "cf_wind.csv"
	capSolarFile        = "cap_solar.csv"
	capWindFile         = "cap_wind.csv"
	loadFile            = "load_data.csv"
	nuclearFile         = "nuclear_data.csv"
	largeHydroFile      = "large_hydro_data.csv"
	largeHydroMaxFile   = "large_hydro_max.csv"
	largeHydroMinFile   = "large_hydro_min.csv"
	otherRenewablesFile = "other_renewables_data.csv"
	storageFile         = "storage_data.csv"
	thermalFile         = "thermal_data.csv"
	scalarsFile         = "scalars.csv"
	capImportsFile      = "cap_imports.csv"
	priceImportsFile    = "price_imports.csv"
	capExportsFile      = "cap_exports.csv"
	priceExportsFile    = "price_exports.csv"
)

// Load reads every table the selected formulations require and returns
// a validated bundle.
func Load(dir string) (*input.Bundle, error) {
	b := &input.Bundle{}

	forms, err := readKeyValue(join(dir, formulationsFile), "Component", "Formulation")
	if err != nil {
		return nil, fmt.Errorf("csvdir: formulations: %w", err)
	}
	if b.HydroForm, err = input.ParseHydroFormulation(forms["Hydro"]); err != nil {
		return nil, err
	}
	if b.ImportsForm, err = input.ParseTradeFormulation(forms["Imports"]); err != nil {
		return nil, err
	}
	if b.ExportsForm, err = input.ParseTradeFormulation(forms["Exports"]); err != nil {
		return nil, err
	}

	if b.Demand, err = readSeries(join(dir, loadFile), "Load"); err != nil {
		return nil, err
	}
	if b.Nuclear, err = readSeries(join(dir, nuclearFile), "Nuclear"); err != nil {
		return nil, err
	}
	if b.Hydro, err = readSeries(join(dir, largeHydroFile), "LargeHydro"); err != nil {
		return nil, err
	}
	if b.OtherRenewables, err = readSeries(join(dir, otherRenewablesFile), "OtherRenewables"); err != nil {
		return nil, err
	}
	if b.HydroForm.BudgetHours() > 0 {
		if b.HydroMax, err = readSeries(join(dir, largeHydroMaxFile), "LargeHydroMax"); err != nil {
			return nil, err
		}
		if b.HydroMin, err = readSeries(join(dir, largeHydroMinFile), "LargeHydroMin"); err != nil {
			return nil, err
		}
	}

	if b.Solar.Profiles, err = readProfiles(join(dir, cfSolarFile)); err != nil {
		return nil, err
	}
	if b.Wind.Profiles, err = readProfiles(join(dir, cfWindFile)); err != nil {
		return nil, err
	}
	if b.Solar.Costs, err = readPlantCosts(join(dir, capSolarFile)); err != nil {
		return nil, err
	}
	if b.Wind.Costs, err = readPlantCosts(join(dir, capWindFile)); err != nil {
		return nil, err
	}

	if b.Storage, err = readStorage(join(dir, storageFile)); err != nil {
		return nil, err
	}
	if b.Thermal, err = readThermal(join(dir, thermalFile)); err != nil {
		return nil, err
	}

	scalars, err := readKeyValue(join(dir, scalarsFile), "Parameter", "Value")
	if err != nil {
		return nil, fmt.Errorf("csvdir: scalars: %w", err)
	}
	if err := fillScalars(&b.Scalars, scalars); err != nil {
		return nil, err
	}
	b.Resiliency = b.Scalars.EUEMax > 0

	if b.ImportsForm.Modeled() {
		if b.Imports.Capacity, err = readSeries(join(dir, capImportsFile), "Imports"); err != nil {
			return nil, err
		}
		if b.Imports.Price, err = readSeries(join(dir, priceImportsFile), "Imports_price"); err != nil {
			return nil, err
		}
	}
	if b.ExportsForm.Modeled() {
		if b.Exports.Capacity, err = readSeries(join(dir, capExportsFile), "Exports"); err != nil {
			return nil, err
		}
		if b.Exports.Price, err = readSeries(join(dir, priceExportsFile), "Exports_price"); err != nil {
			return nil, err
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[Input] loaded %d-hour case from %v", b.Hours(), dir)
	return b, nil
}

func join(dir, file string) string {
	return strings.TrimRight(dir, "/") + "/" + file
}

func readAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdir: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvdir: %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csvdir: %s: no data rows", path)
	}
	return records, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("csvdir: column %q not found in header %v", name, header)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// readSeries reads an hourly table with a leading hour column and the
// named value column. Rows must be in hour order.
func readSeries(path, valueCol string) (input.Series, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(records[0], valueCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make(input.Series, 0, len(records)-1)
	for _, rec := range records[1:] {
		v, err := parseFloat(rec[col])
		if err != nil {
			return nil, fmt.Errorf("csvdir: %s row %d: %w", path, len(out)+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// readProfiles reads a capacity factor table: one Hour column followed
// by one column per plant.
func readProfiles(path string) ([]input.PlantProfile, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	header := records[0]
	profiles := make([]input.PlantProfile, 0, len(header)-1)
	for c := 1; c < len(header); c++ {
		profiles = append(profiles, input.PlantProfile{
			ID: strings.TrimSpace(header[c]),
			CF: make(input.Series, 0, len(records)-1),
		})
	}
	for _, rec := range records[1:] {
		for c := 1; c < len(header); c++ {
			v, err := parseFloat(rec[c])
			if err != nil {
				return nil, fmt.Errorf("csvdir: %s plant %s: %w", path, header[c], err)
			}
			profiles[c-1].CF = append(profiles[c-1].CF, v)
		}
	}
	return profiles, nil
}

// readPlantCosts reads a site characteristics table keyed by sc_gid.
func readPlantCosts(path string) ([]input.PlantCost, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	header := records[0]
	id, err := columnIndex(header, "sc_gid")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	capacity, err := columnIndex(header, "capacity")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	capex, err := columnIndex(header, "CAPEX_M")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fom, err := columnIndex(header, "FOM_M")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	trans, err := columnIndex(header, "trans_cap_cost")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make([]input.PlantCost, 0, len(records)-1)
	for _, rec := range records[1:] {
		p := input.PlantCost{ID: strings.TrimSpace(rec[id])}
		if p.CapacityMW, err = parseFloat(rec[capacity]); err != nil {
			return nil, fmt.Errorf("csvdir: %s plant %s: %w", path, p.ID, err)
		}
		if p.CapexPerKW, err = parseFloat(rec[capex]); err != nil {
			return nil, fmt.Errorf("csvdir: %s plant %s: %w", path, p.ID, err)
		}
		if p.FOMPerKW, err = parseFloat(rec[fom]); err != nil {
			return nil, fmt.Errorf("csvdir: %s plant %s: %w", path, p.ID, err)
		}
		if p.TransCapCost, err = parseFloat(rec[trans]); err != nil {
			return nil, fmt.Errorf("csvdir: %s plant %s: %w", path, p.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// readStorage reads the wide storage property table: properties as
// rows, technologies as columns.
func readStorage(path string) ([]input.StorageTech, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	header := records[0]
	techs := make([]input.StorageTech, 0, len(header)-1)
	for c := 1; c < len(header); c++ {
		techs = append(techs, input.StorageTech{Name: strings.TrimSpace(header[c])})
	}
	for _, rec := range records[1:] {
		prop := strings.TrimSpace(rec[0])
		for c := 1; c < len(header); c++ {
			v, err := parseFloat(rec[c])
			if err != nil {
				return nil, fmt.Errorf("csvdir: %s property %s tech %s: %w", path, prop, header[c], err)
			}
			t := &techs[c-1]
			switch prop {
			case "P_Capex":
				t.PowerCapex = v
			case "E_Capex":
				t.EnergyCapex = v
			case "Eff":
				t.Efficiency = v
			case "Min_Duration":
				t.MinDuration = v
			case "Max_Duration":
				t.MaxDuration = v
			case "Max_P":
				t.MaxPower = v
			case "FOM":
				t.FOM = v
			case "VOM":
				t.VOM = v
			case "Lifetime":
				t.Lifetime = v
			case "CostRatio":
				t.CostRatio = v
			case "MaxCycles":
				t.MaxCycles = v
			case "Coupled":
				t.Coupled = v != 0
			default:
				log.Printf("[Input] warning: unknown storage property %q ignored", prop)
			}
		}
	}
	return techs, nil
}

// readThermal reads the thermal unit table, one row per unit.
func readThermal(path string) ([]input.ThermalUnit, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	header := records[0]
	cols := map[string]int{}
	for _, name := range []string{"Plant_id", "FuelCost", "HeatRate", "Capex", "FOM", "VOM", "MinCapacity", "MaxCapacity", "LifeTime"} {
		i, err := columnIndex(header, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cols[name] = i
	}

	out := make([]input.ThermalUnit, 0, len(records)-1)
	for _, rec := range records[1:] {
		u := input.ThermalUnit{ID: strings.TrimSpace(rec[cols["Plant_id"]])}
		fields := []struct {
			name string
			dst  *float64
		}{
			{"FuelCost", &u.FuelCost},
			{"HeatRate", &u.HeatRate},
			{"Capex", &u.CapexPerKW},
			{"FOM", &u.FOMPerKW},
			{"VOM", &u.VOM},
			{"MinCapacity", &u.MinCapacity},
			{"MaxCapacity", &u.MaxCapacity},
			{"LifeTime", &u.Lifetime},
		}
		for _, f := range fields {
			v, err := parseFloat(rec[cols[f.name]])
			if err != nil {
				return nil, fmt.Errorf("csvdir: %s unit %s column %s: %w", path, u.ID, f.name, err)
			}
			*f.dst = v
		}
		out = append(out, u)
	}
	return out, nil
}

// readKeyValue reads a two-column lookup table.
func readKeyValue(path, keyCol, valueCol string) (map[string]string, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, err
	}
	ki, err := columnIndex(records[0], keyCol)
	if err != nil {
		return nil, err
	}
	vi, err := columnIndex(records[0], valueCol)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(records)-1)
	for _, rec := range records[1:] {
		out[strings.TrimSpace(rec[ki])] = strings.TrimSpace(rec[vi])
	}
	return out, nil
}

func fillScalars(s *input.Scalars, raw map[string]string) error {
	required := []struct {
		name string
		dst  *float64
	}{
		{"r", &s.DiscountRate},
		{"LifeTimeVRE", &s.VRELifetime},
		{"AlphaNuclear", &s.AlphaNuclear},
		{"AlphaLargHy", &s.AlphaHydro},
		{"AlphaOtheRe", &s.AlphaOtherRenewables},
		{"GenMix_Target", &s.GenMixTarget},
	}
	for _, f := range required {
		v, ok := raw[f.name]
		if !ok {
			return fmt.Errorf("csvdir: scalars: missing parameter %q", f.name)
		}
		parsed, err := parseFloat(v)
		if err != nil {
			return fmt.Errorf("csvdir: scalars: parameter %q: %w", f.name, err)
		}
		*f.dst = parsed
	}

	optional := []struct {
		name string
		dst  *float64
		def  float64
	}{
		{"EUE_max", &s.EUEMax, 0},
		{"CriticalLoadFraction", &s.CriticalLoadFraction, 1.0},
		{"PCLS_Target", &s.PCLSTarget, 0.9},
		{"BigM", &s.BigM, 0},
	}
	for _, f := range optional {
		v, ok := raw[f.name]
		if !ok {
			*f.dst = f.def
			continue
		}
		parsed, err := parseFloat(v)
		if err != nil {
			return fmt.Errorf("csvdir: scalars: parameter %q: %w", f.name, err)
		}
		*f.dst = parsed
	}
	return nil
}
