package ability

import (
	"math"
	"testing"

	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

func spreadPool(n int) []types.Item {
	items := make([]types.Item, n)
	lo, hi := -2.0, 2.0
	for i := 0; i < n; i++ {
		beta := lo + (hi-lo)*float64(i)/float64(n-1)
		items[i] = types.Item{
			ID:        "item",
			Dimension: types.DimensionSecurity,
			Alpha:     2.0,
			Beta:      beta,
			Gamma:     0,
		}
	}
	return items
}

func TestEstimate_FewerThanThreeUsesEAP(t *testing.T) {
	items := spreadPool(2)
	_, _, method, converged := Estimate(items, []int{1, 0})
	if method != MethodEAP {
		t.Errorf("method = %v, want eap", method)
	}
	if !converged {
		t.Error("EAP branch must always report converged")
	}
}

func TestEstimate_UnanimousUsesEAP(t *testing.T) {
	items := spreadPool(5)
	_, _, method, _ := Estimate(items, []int{1, 1, 1, 1, 1})
	if method != MethodEAP {
		t.Errorf("method = %v, want eap for unanimous responses", method)
	}
}

func TestEstimate_UnanimousSignMatchesResponse(t *testing.T) {
	items := spreadPool(5)

	thetaPass, _, _, _ := Estimate(items, []int{1, 1, 1, 1, 1})
	if thetaPass <= 0 {
		t.Errorf("all-pass theta = %v, want > 0", thetaPass)
	}

	thetaFail, _, _, _ := Estimate(items, []int{0, 0, 0, 0, 0})
	if thetaFail >= 0 {
		t.Errorf("all-fail theta = %v, want < 0", thetaFail)
	}
}

func TestEstimate_MixedResponsesUsesMLE(t *testing.T) {
	items := spreadPool(10)
	responses := []int{1, 0, 1, 0, 1, 0, 1, 0, 1, 0}
	theta, se, method, converged := Estimate(items, responses)

	if method != MethodMLE {
		t.Errorf("method = %v, want mle", method)
	}
	if !converged {
		t.Error("expected MLE to converge on a well-conditioned mixed pool")
	}
	if math.Abs(theta) >= 1.5 {
		t.Errorf("theta = %v, want |theta| < 1.5", theta)
	}
	if se <= 0 || math.IsNaN(se) || math.IsInf(se, 0) {
		t.Errorf("se = %v, want finite positive", se)
	}
}

func TestEstimate_ThetaAlwaysClamped(t *testing.T) {
	items := spreadPool(10)
	responses := []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	theta, _, _, _ := Estimate(items, responses)
	if theta < thetaMin || theta > thetaMax {
		t.Errorf("theta = %v, want within [%v, %v]", theta, thetaMin, thetaMax)
	}
}

func TestEstimate_NeverPanicsOnDegenerateItems(t *testing.T) {
	items := []types.Item{
		{ID: "a", Dimension: types.DimensionSecurity, Alpha: 1, Beta: 0, Gamma: 0},
		{ID: "b", Dimension: types.DimensionSecurity, Alpha: 1, Beta: 0, Gamma: 0},
		{ID: "c", Dimension: types.DimensionSecurity, Alpha: 1, Beta: 0, Gamma: 0},
	}
	theta, se, _, _ := Estimate(items, []int{1, 0, 1})
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		t.Errorf("theta = %v, want finite", theta)
	}
	if math.IsNaN(se) {
		t.Errorf("se = %v, want not NaN", se)
	}
}

func TestEap_NoItemsApproximatesStandardNormalPrior(t *testing.T) {
	theta, se := eap(nil, nil)
	if math.Abs(theta) > 1e-9 {
		t.Errorf("theta = %v, want ~0 by symmetry", theta)
	}
	if math.Abs(se-1) > 0.05 {
		t.Errorf("se = %v, want ~1 (the standard-normal prior)", se)
	}
}
