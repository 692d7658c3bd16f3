package solve

import (
	"testing"

	highs "github.com/bartolsthoorn/gohighs/highs"
	"gotest.tools/assert"
)

func TestTerminationConditionStrings(t *testing.T) {
	assert.Equal(t, Optimal.String(), "optimal")
	assert.Equal(t, Infeasible.String(), "infeasible")
	assert.Equal(t, Unbounded.String(), "unbounded")
	assert.Equal(t, TimeLimit.String(), "time limit")
	assert.Equal(t, Unknown.String(), "unknown")
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, mapStatus(highs.ModelStatusOptimal), Optimal)
	assert.Equal(t, mapStatus(highs.ModelStatusInfeasible), Infeasible)
	assert.Equal(t, mapStatus(highs.ModelStatusUnbounded), Unbounded)
	assert.Equal(t, mapStatus(highs.ModelStatusTimeLimit), TimeLimit)
}
