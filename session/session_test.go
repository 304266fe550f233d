package session

import (
	"testing"
	"time"

	"github.com/One-Up-Dev/ai-process-tester-apt/convergence"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

func testPool(n int) []types.Item {
	items := make([]types.Item, n)
	lo, hi := -2.0, 2.0
	for i := 0; i < n; i++ {
		beta := lo + (hi-lo)*float64(i)/float64(n-1)
		items[i] = types.Item{
			ID:        itemID(i),
			Dimension: types.DimensionSecurity,
			Alpha:     2.0,
			Beta:      beta,
			Gamma:     0,
		}
	}
	return items
}

func itemID(i int) string {
	return "item-" + string(rune('a'+i))
}

func TestSession_RecordResponseUpdatesAbilityAndSE(t *testing.T) {
	s := New(types.DimensionSecurity, testPool(5), convergence.DefaultConfig())

	if err := s.RecordResponse(itemID(0), true); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.ResponseCount != 1 {
		t.Errorf("ResponseCount = %d, want 1", snap.ResponseCount)
	}
	if !snap.Administered[itemID(0)] {
		t.Error("administered set missing item-a after recording it")
	}
}

func TestSession_RejectsDuplicateItem(t *testing.T) {
	s := New(types.DimensionSecurity, testPool(5), convergence.DefaultConfig())
	if err := s.RecordResponse(itemID(0), true); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}
	if err := s.RecordResponse(itemID(0), false); err == nil {
		t.Error("RecordResponse() error = nil, want error for re-administered item")
	}
}

func TestSession_RejectsItemOutsidePool(t *testing.T) {
	s := New(types.DimensionSecurity, testPool(5), convergence.DefaultConfig())
	if err := s.RecordResponse("not-in-pool", true); err == nil {
		t.Error("RecordResponse() error = nil, want error for item outside the pool")
	}
}

func TestSession_AvailableItemsShrinksAsAdministered(t *testing.T) {
	s := New(types.DimensionSecurity, testPool(5), convergence.DefaultConfig())
	if got := len(s.AvailableItems()); got != 5 {
		t.Fatalf("AvailableItems() len = %d, want 5", got)
	}

	if err := s.RecordResponse(itemID(0), true); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}
	if got := len(s.AvailableItems()); got != 4 {
		t.Errorf("AvailableItems() len = %d, want 4 after one administered", got)
	}
}

func TestSession_ConvergedAtIndexIsMonotoneOnceSet(t *testing.T) {
	cfg := convergence.Config{SEThreshold: 10, MaxTests: 2, Timeout: time.Hour, StableWindow: 5, StableDelta: 0.1}
	s := New(types.DimensionSecurity, testPool(5), cfg)

	if err := s.RecordResponse(itemID(0), true); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}
	if err := s.RecordResponse(itemID(1), false); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}

	snap := s.Snapshot()
	if snap.ConvergedAtIndex == nil {
		t.Fatal("ConvergedAtIndex = nil, want set after MaxTests reached")
	}
	firstIdx := *snap.ConvergedAtIndex

	if err := s.RecordResponse(itemID(2), true); err != nil {
		t.Fatalf("RecordResponse() error = %v", err)
	}
	snap = s.Snapshot()
	if snap.ConvergedAtIndex == nil || *snap.ConvergedAtIndex != firstIdx {
		t.Errorf("ConvergedAtIndex changed after being set: got %v, want unchanged at %d", snap.ConvergedAtIndex, firstIdx)
	}
}

func TestSession_ResultReportsConfidenceInterval(t *testing.T) {
	s := New(types.DimensionSecurity, testPool(5), convergence.DefaultConfig())
	for i := 0; i < 5; i++ {
		if err := s.RecordResponse(itemID(i), i%2 == 0); err != nil {
			t.Fatalf("RecordResponse() error = %v", err)
		}
	}

	result := s.Result()
	wantWidth := 1.96 * result.SE * 2
	gotWidth := result.CIUpper - result.CILower
	if diff := gotWidth - wantWidth; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("CI width = %v, want %v", gotWidth, wantWidth)
	}
	if result.NTests != 5 {
		t.Errorf("NTests = %d, want 5", result.NTests)
	}
	if result.Dimension != types.DimensionSecurity {
		t.Errorf("Dimension = %v, want security", result.Dimension)
	}
}

func TestSession_ThetaNeverExceedsFourInMagnitude(t *testing.T) {
	pool := testPool(9)
	s := New(types.DimensionSecurity, pool, convergence.DefaultConfig())
	for _, item := range pool {
		if err := s.RecordResponse(item.ID, true); err != nil {
			t.Fatalf("RecordResponse() error = %v", err)
		}
	}

	snap := s.Snapshot()
	if snap.Theta > 4 || snap.Theta < -4 {
		t.Errorf("theta = %v, want within [-4, 4]", snap.Theta)
	}
}
