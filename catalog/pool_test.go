package catalog

import (
	"testing"

	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

func TestPool_ForDimension_FiltersAndPreservesOrder(t *testing.T) {
	items := []types.Item{
		{ID: "s1", Dimension: types.DimensionSecurity},
		{ID: "f1", Dimension: types.DimensionFunctional},
		{ID: "s2", Dimension: types.DimensionSecurity},
	}
	pool := NewPool(items)

	got := pool.ForDimension(types.DimensionSecurity)
	if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s2" {
		t.Fatalf("ForDimension = %+v, want [s1 s2] in order", got)
	}
}

func TestPool_All_ReturnsEverything(t *testing.T) {
	items := []types.Item{{ID: "a"}, {ID: "b"}}
	pool := NewPool(items)
	if pool.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pool.Len())
	}
	if len(pool.All()) != 2 {
		t.Fatalf("All() length = %d, want 2", len(pool.All()))
	}
}

func TestPool_IsolatedFromCallerMutation(t *testing.T) {
	items := []types.Item{{ID: "a"}}
	pool := NewPool(items)
	items[0].ID = "mutated"
	if pool.All()[0].ID != "a" {
		t.Errorf("pool was affected by caller's slice mutation: %+v", pool.All()[0])
	}
}
