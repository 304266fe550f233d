package ability

import (
	"math"

	"github.com/One-Up-Dev/ai-process-tester-apt/irt"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// Method names the branch that actually produced an estimate.
type Method string

const (
	MethodMLE Method = "mle"
	MethodEAP Method = "eap"
)

const (
	thetaMin      = -4.0
	thetaMax      = 4.0
	mleTolerance  = 1e-3
	mleMaxIter    = 100
	mleStepHalves = 10
	// hessianFloor below this magnitude the Newton-Raphson step is
	// considered numerically unsafe and the outer loop gives up on MLE.
	hessianFloor = 1e-10

	eapGridPoints  = 41
	probabilityLow = 1e-10
	probabilityHi  = 1 - 1e-10
)

// Estimate computes an ability estimate from items and the binary
// responses administered against them (responses[i] corresponds to
// items[i]). It implements the three-branch selection rule: fewer than 3
// responses or a unanimous response vector routes straight to EAP;
// otherwise MLE is attempted and EAP is the fallback if MLE cannot
// converge.
func Estimate(items []types.Item, responses []int) (theta, se float64, method Method, converged bool) {
	if len(responses) < 3 || allSame(responses) {
		theta, se = eap(items, responses)
		return theta, se, MethodEAP, true
	}

	theta, se, converged = mle(items, responses)
	if converged {
		return theta, se, MethodMLE, true
	}

	theta, se = eap(items, responses)
	return theta, se, MethodEAP, true
}

func allSame(responses []int) bool {
	if len(responses) == 0 {
		return true
	}
	first := responses[0]
	for _, r := range responses[1:] {
		if r != first {
			return false
		}
	}
	return true
}

func clampTheta(theta float64) float64 {
	if theta < thetaMin {
		return thetaMin
	}
	if theta > thetaMax {
		return thetaMax
	}
	return theta
}

func clampProbability(p float64) float64 {
	if p < probabilityLow {
		return probabilityLow
	}
	if p > probabilityHi {
		return probabilityHi
	}
	return p
}

// mle runs Newton-Raphson with step-halving on the log-likelihood surface.
// It reports converged=false (never panicking) when the Hessian surrogate
// is too small to propose a safe step, or when the iteration cap is hit
// without the accepted update falling below tolerance.
func mle(items []types.Item, responses []int) (theta, se float64, converged bool) {
	theta = 0

	for iter := 0; iter < mleMaxIter; iter++ {
		g, h := gradientAndHessian(theta, items, responses)
		if math.Abs(h) < hessianFloor {
			return theta, irt.StandardError(irt.TotalInformation(theta, items)), false
		}

		delta := -g / h
		baseLL := irt.LogLikelihood(theta, items, responses)

		var step float64
		accepted := false
		for k := 0; k < mleStepHalves; k++ {
			candidateStep := delta / math.Pow(2, float64(k))
			candidateTheta := clampTheta(theta + candidateStep)
			candidateLL := irt.LogLikelihood(candidateTheta, items, responses)
			if candidateLL >= baseLL-1e-10 {
				step = candidateStep
				accepted = true
				break
			}
		}
		if !accepted {
			step = delta / math.Pow(2, float64(mleStepHalves-1))
		}

		newTheta := clampTheta(theta + step)
		moved := math.Abs(newTheta - theta)
		theta = newTheta

		if moved < mleTolerance {
			return theta, irt.StandardError(irt.TotalInformation(theta, items)), true
		}
	}

	return theta, irt.StandardError(irt.TotalInformation(theta, items)), false
}

// gradientAndHessian evaluates the log-likelihood gradient and the
// observed-information Hessian surrogate at theta.
func gradientAndHessian(theta float64, items []types.Item, responses []int) (g, h float64) {
	for idx, item := range items {
		p := clampProbability(irt.ICC(theta, item.Alpha, item.Beta, item.Gamma))
		pStar := (p - item.Gamma) / (1 - item.Gamma)
		g += item.Alpha * (pStar / p) * (float64(responses[idx]) - p)
	}
	h = -irt.TotalInformation(theta, items)
	return g, h
}

// eap discretizes theta on a 41-point grid over [-4, 4] under a
// standard-normal prior and returns the posterior mean and its standard
// deviation. If every grid weight underflows to zero it returns the prior
// itself (theta=0, se=1), matching the failure semantics for degenerate
// inputs.
func eap(items []types.Item, responses []int) (theta, se float64) {
	const (
		lo   = thetaMin
		hi   = thetaMax
		step = (hi - lo) / (eapGridPoints - 1)
	)

	var sumW, sumWTheta float64
	grid := make([]float64, eapGridPoints)
	weights := make([]float64, eapGridPoints)

	for i := 0; i < eapGridPoints; i++ {
		gridTheta := lo + float64(i)*step
		grid[i] = gridTheta

		likelihood := 1.0
		for idx, item := range items {
			p := clampProbability(irt.ICC(gridTheta, item.Alpha, item.Beta, item.Gamma))
			if responses[idx] == 1 {
				likelihood *= p
			} else {
				likelihood *= 1 - p
			}
		}

		w := likelihood * normalPDF(gridTheta) * step
		weights[i] = w
		sumW += w
		sumWTheta += w * gridTheta
	}

	if sumW <= 0 {
		return 0, 1
	}

	mean := sumWTheta / sumW

	var variance float64
	for i := 0; i < eapGridPoints; i++ {
		d := grid[i] - mean
		variance += weights[i] * d * d
	}
	variance /= sumW

	return mean, math.Sqrt(variance)
}

func normalPDF(x float64) float64 {
	const invSqrt2Pi = 0.3989422804014327
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}
