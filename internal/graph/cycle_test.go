package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapPred(m map[string]string) PredecessorFunc {
	return func(id string) (string, bool) {
		p, ok := m[id]
		return p, ok
	}
}

func TestDetectCycle_ChainTerminates(t *testing.T) {
	pred := mapPred(map[string]string{
		"d1": "d2",
		"d2": "d3",
	})

	assert.Nil(t, DetectCycle("d1", pred))
	assert.Nil(t, DetectCycle("d3", pred))
}

func TestDetectCycle_ThreeNodeLoop(t *testing.T) {
	pred := mapPred(map[string]string{
		"d1": "d2",
		"d2": "d3",
		"d3": "d1",
	})

	cycle := DetectCycle("d1", pred)
	require.NotNil(t, cycle)
	assert.Equal(t, []string{"d1", "d2", "d3", "d1"}, cycle)
}

func TestDetectCycle_SelfLoop(t *testing.T) {
	pred := mapPred(map[string]string{"d1": "d1"})

	assert.Equal(t, []string{"d1", "d1"}, DetectCycle("d1", pred))
}

func TestDetectCycle_TailIntoLoop(t *testing.T) {
	// d0 hangs off a loop it is not part of; the reported cycle starts at
	// the first repeated node, not at the walk origin.
	pred := mapPred(map[string]string{
		"d0": "d1",
		"d1": "d2",
		"d2": "d1",
	})

	cycle := DetectCycle("d0", pred)
	require.NotNil(t, cycle)
	assert.Equal(t, []string{"d1", "d2", "d1"}, cycle)
}

func TestCheckAll_FindsCycleUnreachableFromEarlierNodes(t *testing.T) {
	// A save-time sweep must catch a loop even when the first nodes
	// examined sit on terminating chains.
	pred := mapPred(map[string]string{
		"a": "b",
		"x": "y",
		"y": "x",
	})

	cycle := CheckAll([]string{"a", "b", "x", "y"}, pred)
	require.NotNil(t, cycle)
	assert.GreaterOrEqual(t, len(cycle), 3)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
}

func TestCheckAll_AcyclicForest(t *testing.T) {
	pred := mapPred(map[string]string{
		"b": "a",
		"c": "b",
		"e": "d",
	})

	assert.Nil(t, CheckAll([]string{"a", "b", "c", "d", "e"}, pred))
}

// naiveHasCycle re-walks the chain with a fresh visited set, the obviously
// correct reference for the property test.
func naiveHasCycle(start string, m map[string]string) bool {
	seen := map[string]bool{}
	node := start
	for {
		if seen[node] {
			return true
		}
		seen[node] = true
		next, ok := m[node]
		if !ok {
			return false
		}
		node = next
	}
}

func TestDetectCycle_MatchesNaiveReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 300; trial++ {
		n := rng.Intn(12) + 1
		m := make(map[string]string)
		ids := make([]string, n)
		for i := 0; i < n; i++ {
			ids[i] = fmt.Sprintf("d%d", i)
		}
		for _, id := range ids {
			// ~40% of nodes get a random predecessor, self-loops allowed.
			if rng.Intn(10) < 4 {
				m[id] = ids[rng.Intn(n)]
			}
		}
		pred := mapPred(m)

		for _, id := range ids {
			got := DetectCycle(id, pred)
			want := naiveHasCycle(id, m)
			assert.Equal(t, want, got != nil, "start %s graph %v", id, m)
			if got != nil {
				assert.Equal(t, got[0], got[len(got)-1], "cycle must close on itself")
			}
		}

		sweep := CheckAll(ids, pred)
		anyCycle := false
		for _, id := range ids {
			if naiveHasCycle(id, m) {
				anyCycle = true
				break
			}
		}
		assert.Equal(t, anyCycle, sweep != nil, "full sweep graph %v", m)
	}
}
