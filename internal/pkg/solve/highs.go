package solve

import (
	"fmt"
	"log"
	"time"

	highs "github.com/bartolsthoorn/gohighs/highs"
	"github.com/ohowland/cep_core/internal/pkg/lp"
)

// HiGHS solves models through the HiGHS bindings.
type HiGHS struct{}

// NewHiGHS returns the HiGHS-backed solver.
func NewHiGHS() *HiGHS {
	return &HiGHS{}
}

// Solve lowers the model to the solver's matrix form, runs it, and on
// an optimal termination writes the column values back.
func (s *HiGHS) Solve(m *lp.Model, opts Options) (Outcome, error) {
	hm := m.Lower()

	solveOpts := []highs.SolveOption{highs.WithOutput(opts.Verbose)}
	if opts.TimeLimit > 0 {
		solveOpts = append(solveOpts, highs.WithTimeLimit(opts.TimeLimit.Seconds()))
	}
	if opts.MIPRelGap > 0 {
		solveOpts = append(solveOpts, highs.WithMIPRelGap(opts.MIPRelGap))
	}
	if opts.Threads > 0 {
		solveOpts = append(solveOpts, highs.WithThreads(opts.Threads))
	}

	start := time.Now()
	sol, err := hm.Solve(solveOpts...)
	elapsed := time.Since(start)
	if err != nil {
		return Outcome{}, fmt.Errorf("solve: %w", err)
	}

	out := Outcome{
		Condition: mapStatus(sol.Status),
		WallTime:  elapsed,
	}
	if out.Condition == Optimal {
		if err := m.SetSolution(sol.ColValues, sol.Objective); err != nil {
			return Outcome{}, err
		}
		out.Objective = sol.Objective
	}
	log.Printf("[Solve] %s finished %s in %s", m.Name(), out.Condition, elapsed.Round(time.Millisecond))
	return out, nil
}

func mapStatus(status highs.ModelStatus) TerminationCondition {
	switch status {
	case highs.ModelStatusOptimal:
		return Optimal
	case highs.ModelStatusInfeasible:
		return Infeasible
	case highs.ModelStatusUnbounded:
		return Unbounded
	case highs.ModelStatusTimeLimit:
		return TimeLimit
	}
	return Unknown
}
