package lp

import (
	"fmt"
	"math"

	highs "github.com/bartolsthoorn/gohighs/highs"
)

// Kind classifies a decision variable.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

// Var is a handle to a model column. Handles are ordered by creation.
type Var int

// Term is a coefficient applied to a variable.
type Term struct {
	Var   Var
	Coeff float64
}

// Expr is a linear expression: a sum of terms plus a constant.
type Expr struct {
	Terms []Term
	Const float64
}

// AddTerm appends coeff*v to the expression.
func (e *Expr) AddTerm(v Var, coeff float64) {
	e.Terms = append(e.Terms, Term{Var: v, Coeff: coeff})
}

// AddConst adds a constant to the expression.
func (e *Expr) AddConst(c float64) {
	e.Const += c
}

// AddExpr appends another expression.
func (e *Expr) AddExpr(other Expr) {
	e.Terms = append(e.Terms, other.Terms...)
	e.Const += other.Const
}

// AddScaled appends k*other.
func (e *Expr) AddScaled(other Expr, k float64) {
	for _, t := range other.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coeff: k * t.Coeff})
	}
	e.Const += k * other.Const
}

type column struct {
	name  string
	kind  Kind
	lower float64
	upper float64
}

type row struct {
	name  string
	expr  Expr
	lower float64
	upper float64
}

// Model holds a MIP/LP under construction. Columns and rows keep their
// creation order, so two builds from the same inputs produce identical
// matrices.
type Model struct {
	name     string
	cols     []column
	rows     []row
	obj      Expr
	solution []float64
	objValue float64
	solved   bool
}

// New returns an empty model.
func New(name string) *Model {
	return &Model{name: name}
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Continuous adds a continuous variable bounded to [lower, upper].
func (m *Model) Continuous(name string, lower, upper float64) Var {
	m.cols = append(m.cols, column{name: name, kind: Continuous, lower: lower, upper: upper})
	return Var(len(m.cols) - 1)
}

// Binary adds a 0/1 variable.
func (m *Model) Binary(name string) Var {
	m.cols = append(m.cols, column{name: name, kind: Binary, lower: 0, upper: 1})
	return Var(len(m.cols) - 1)
}

// VarName returns the name given to v at creation.
func (m *Model) VarName(v Var) string {
	return m.cols[v].name
}

// Equal adds the constraint expr == rhs.
func (m *Model) Equal(name string, e Expr, rhs float64) {
	m.rows = append(m.rows, row{name: name, expr: e, lower: rhs, upper: rhs})
}

// AtMost adds the constraint expr <= rhs.
func (m *Model) AtMost(name string, e Expr, rhs float64) {
	m.rows = append(m.rows, row{name: name, expr: e, lower: math.Inf(-1), upper: rhs})
}

// AtLeast adds the constraint expr >= rhs.
func (m *Model) AtLeast(name string, e Expr, rhs float64) {
	m.rows = append(m.rows, row{name: name, expr: e, lower: rhs, upper: math.Inf(1)})
}

// Range adds the constraint lower <= expr <= upper.
func (m *Model) Range(name string, lower float64, e Expr, upper float64) {
	m.rows = append(m.rows, row{name: name, expr: e, lower: lower, upper: upper})
}

// Minimize sets the objective expression.
func (m *Model) Minimize(e Expr) {
	m.obj = e
}

// NumVars returns the number of columns.
func (m *Model) NumVars() int { return len(m.cols) }

// NumBinaries returns the number of 0/1 columns.
func (m *Model) NumBinaries() int {
	n := 0
	for _, c := range m.cols {
		if c.kind == Binary {
			n++
		}
	}
	return n
}

// NumConstraints returns the number of rows.
func (m *Model) NumConstraints() int { return len(m.rows) }

// NumNonzeros returns the number of nonzero matrix entries after
// merging duplicate terms within each row.
func (m *Model) NumNonzeros() int {
	n := 0
	for _, r := range m.rows {
		n += len(compact(r.expr.Terms))
	}
	return n
}

// compact merges duplicate variables in a term list, preserving the
// order of first appearance.
func compact(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	index := make(map[Var]int, len(terms))
	for _, t := range terms {
		if t.Coeff == 0 {
			continue
		}
		if i, ok := index[t.Var]; ok {
			out[i].Coeff += t.Coeff
			continue
		}
		index[t.Var] = len(out)
		out = append(out, t)
	}
	return out
}

// Lower translates the model into the solver's matrix form. Row
// constants are folded into the row bounds.
func (m *Model) Lower() *highs.Model {
	hm := &highs.Model{}

	hm.ColCosts = make([]float64, len(m.cols))
	hm.ColLower = make([]float64, len(m.cols))
	hm.ColUpper = make([]float64, len(m.cols))
	mip := false
	for i, c := range m.cols {
		hm.ColLower[i] = c.lower
		hm.ColUpper[i] = c.upper
		if c.kind == Binary {
			mip = true
		}
	}
	for _, t := range compact(m.obj.Terms) {
		hm.ColCosts[t.Var] += t.Coeff
	}
	hm.Offset = m.obj.Const

	if mip {
		hm.VarTypes = make([]highs.VariableType, len(m.cols))
		for i, c := range m.cols {
			if c.kind == Binary {
				hm.VarTypes[i] = highs.Integer
			} else {
				hm.VarTypes[i] = highs.Continuous
			}
		}
	}

	for _, r := range m.rows {
		terms := compact(r.expr.Terms)
		cols := make([]int, len(terms))
		vals := make([]float64, len(terms))
		for i, t := range terms {
			cols[i] = int(t.Var)
			vals[i] = t.Coeff
		}
		hm.AddSparseRow(r.lower-r.expr.Const, cols, vals, r.upper-r.expr.Const)
	}
	return hm
}

// SetSolution stores column values written back by a solver.
func (m *Model) SetSolution(values []float64, objective float64) error {
	if len(values) != len(m.cols) {
		return fmt.Errorf("lp: solution has %d values, model has %d columns", len(values), len(m.cols))
	}
	m.solution = values
	m.objValue = objective
	m.solved = true
	return nil
}

// Solved reports whether a solution has been stored.
func (m *Model) Solved() bool { return m.solved }

// Objective returns the stored objective value.
func (m *Model) Objective() float64 { return m.objValue }

// Value returns the solved value of v. Zero before SetSolution.
func (m *Model) Value(v Var) float64 {
	if m.solution == nil {
		return 0
	}
	return m.solution[v]
}

// Eval evaluates e at the stored solution.
func (m *Model) Eval(e Expr) float64 {
	total := e.Const
	for _, t := range e.Terms {
		total += t.Coeff * m.Value(t.Var)
	}
	return total
}

// Violated returns the names of constraints whose bounds are broken by
// more than tol at the stored solution.
func (m *Model) Violated(tol float64) []string {
	var names []string
	for _, r := range m.rows {
		v := m.Eval(r.expr)
		if v < r.lower-tol || v > r.upper+tol {
			names = append(names, r.name)
		}
	}
	return names
}
