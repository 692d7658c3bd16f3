package baseload

import (
	"testing"

	"github.com/ohowland/cep_core/internal/pkg/input"
	"github.com/ohowland/cep_core/internal/pkg/lp"
	"gotest.tools/assert"
)

func TestBalanceIsScaledReference(t *testing.T) {
	b := New("nuclear", 0.8, input.Series{1000, 900}, 2)
	m := lp.New("baseload_test")
	assert.NilError(t, b.Attach(m))

	assert.Equal(t, m.NumVars(), 0)
	assert.Equal(t, b.BalanceAt(0).Const, 800.0)
	assert.Equal(t, b.At(1), 720.0)
}

func TestShortSeriesRejected(t *testing.T) {
	b := New("other_renewables", 1.0, input.Series{10}, 24)
	m := lp.New("baseload_test")
	assert.Assert(t, b.Attach(m) != nil)
}
