package lp

import (
	"math"
	"testing"

	"gotest.tools/assert"
)

func TestVariableOrdering(t *testing.T) {
	m := New("ordering")
	a := m.Continuous("a", 0, 10)
	b := m.Binary("b")
	c := m.Continuous("c", -1, 1)

	assert.Equal(t, int(a), 0)
	assert.Equal(t, int(b), 1)
	assert.Equal(t, int(c), 2)
	assert.Equal(t, m.VarName(b), "b")
	assert.Equal(t, m.NumVars(), 3)
	assert.Equal(t, m.NumBinaries(), 1)
}

func TestCompactMergesDuplicates(t *testing.T) {
	terms := []Term{{Var: 0, Coeff: 1}, {Var: 1, Coeff: 2}, {Var: 0, Coeff: 3}, {Var: 2, Coeff: 0}}
	out := compact(terms)

	assert.Equal(t, len(out), 2)
	assert.Equal(t, out[0].Var, Var(0))
	assert.Equal(t, out[0].Coeff, 4.0)
	assert.Equal(t, out[1].Var, Var(1))
}

func TestLowerFoldsRowConstant(t *testing.T) {
	m := New("fold")
	x := m.Continuous("x", 0, math.Inf(1))

	e := Expr{}
	e.AddTerm(x, 2)
	e.AddConst(5)
	m.Equal("balance", e, 11)

	hm := m.Lower()
	assert.Equal(t, hm.RowLower[0], 6.0)
	assert.Equal(t, hm.RowUpper[0], 6.0)
	assert.Equal(t, len(hm.ConstMatrix), 1)
	assert.Equal(t, hm.ConstMatrix[0].Val, 2.0)
}

func TestLowerObjective(t *testing.T) {
	m := New("objective")
	x := m.Continuous("x", 0, 1)
	y := m.Continuous("y", 0, 1)

	obj := Expr{}
	obj.AddTerm(x, 3)
	obj.AddTerm(y, 4)
	obj.AddTerm(x, 1)
	obj.AddConst(7)
	m.Minimize(obj)

	hm := m.Lower()
	assert.Equal(t, hm.ColCosts[0], 4.0)
	assert.Equal(t, hm.ColCosts[1], 4.0)
	assert.Equal(t, hm.Offset, 7.0)
	assert.Assert(t, !hm.Maximize)
}

func TestLowerVarTypesOnlyForMIP(t *testing.T) {
	m := New("pure_lp")
	m.Continuous("x", 0, 1)
	assert.Equal(t, len(m.Lower().VarTypes), 0)

	m2 := New("mip")
	m2.Continuous("x", 0, 1)
	m2.Binary("b")
	assert.Equal(t, len(m2.Lower().VarTypes), 2)
}

func TestDeterministicLowering(t *testing.T) {
	build := func() *Model {
		m := New("repeat")
		x := m.Continuous("x", 0, 5)
		y := m.Continuous("y", 0, 5)
		e := Expr{}
		e.AddTerm(y, 1)
		e.AddTerm(x, 2)
		m.AtMost("cap", e, 4)
		obj := Expr{}
		obj.AddTerm(x, 1)
		m.Minimize(obj)
		return m
	}

	a := build().Lower()
	b := build().Lower()

	assert.Equal(t, len(a.ConstMatrix), len(b.ConstMatrix))
	for i := range a.ConstMatrix {
		if a.ConstMatrix[i] != b.ConstMatrix[i] {
			t.Errorf("Lower(): FAILED. entry %d differs: %v != %v", i, a.ConstMatrix[i], b.ConstMatrix[i])
		}
	}
	t.Logf("Lower(): PASSED. identical matrix across rebuilds")
}

func TestEvalAndViolated(t *testing.T) {
	m := New("eval")
	x := m.Continuous("x", 0, 10)
	y := m.Continuous("y", 0, 10)

	e := Expr{}
	e.AddTerm(x, 1)
	e.AddTerm(y, 1)
	m.AtMost("sum_cap", e, 5)

	err := m.SetSolution([]float64{4, 3}, 0)
	assert.NilError(t, err)

	assert.Equal(t, m.Eval(e), 7.0)
	violated := m.Violated(1e-6)
	assert.Equal(t, len(violated), 1)
	assert.Equal(t, violated[0], "sum_cap")
}

func TestSetSolutionLengthMismatch(t *testing.T) {
	m := New("mismatch")
	m.Continuous("x", 0, 1)
	err := m.SetSolution([]float64{1, 2}, 0)
	assert.Assert(t, err != nil)
}
