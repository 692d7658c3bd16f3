// Package solve invokes the MIP solver on a composed model and maps
// its termination status. Non-optimal termination is an outcome, not
// an error: callers decide whether to extract, relax, or abort.
package solve

import (
	"time"

	"github.com/ohowland/cep_core/internal/pkg/lp"
)

// TerminationCondition classifies how the solver finished.
type TerminationCondition int

const (
	Unknown TerminationCondition = iota
	Optimal
	Infeasible
	Unbounded
	TimeLimit
)

func (c TerminationCondition) String() string {
	switch c {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case TimeLimit:
		return "time limit"
	}
	return "unknown"
}

// Options configure a single solve.
type Options struct {
	TimeLimit time.Duration // 0 means no limit
	MIPRelGap float64       // 0 keeps the solver default
	Threads   int           // 0 keeps the solver default
	Verbose   bool
}

// Outcome reports the solver's termination.
type Outcome struct {
	Condition TerminationCondition
	Objective float64
	WallTime  time.Duration
}

// Solver runs a composed model. On an optimal termination the solution
// values are written back onto the model.
type Solver interface {
	Solve(m *lp.Model, opts Options) (Outcome, error)
}
