package irt

import (
	"math"

	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// exponentClamp bounds the logistic exponent so ICC saturates at its
// limits instead of overflowing or underflowing through math.Exp.
const exponentClamp = 500

// probabilityFloor and probabilityCeil bound any probability before it is
// passed to math.Log, preventing -Inf from a 0 or 1 input.
const (
	probabilityFloor = 1e-10
	probabilityCeil  = 1 - 1e-10
)

// normalizationSlope is the conventional IRT constant (1.7) used to align
// the logistic ability scale with the normal-ogive scale when mapping
// theta onto a 0-100 score. It must not be changed.
const normalizationSlope = 1.7

// clampExponent bounds x to [-exponentClamp, exponentClamp].
func clampExponent(x float64) float64 {
	if x > exponentClamp {
		return exponentClamp
	}
	if x < -exponentClamp {
		return -exponentClamp
	}
	return x
}

// clampProbability bounds p to [probabilityFloor, probabilityCeil].
func clampProbability(p float64) float64 {
	if p < probabilityFloor {
		return probabilityFloor
	}
	if p > probabilityCeil {
		return probabilityCeil
	}
	return p
}

// logistic is the standard logistic function sigma(x) = 1 / (1 + e^-x).
func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-clampExponent(x)))
}

// ICC evaluates the three-parameter item characteristic curve
//
//	P(theta) = gamma + (1-gamma) * sigma(alpha * (theta - beta))
//
// The result always lies in [gamma, 1] for any finite theta, alpha > 0,
// and gamma in [0, 1).
func ICC(theta, alpha, beta, gamma float64) float64 {
	p := gamma + (1-gamma)*logistic(alpha*(theta-beta))
	if p < gamma {
		return gamma
	}
	if p > 1 {
		return 1
	}
	return p
}

// FisherInformation evaluates the expected information a single item
// provides about theta under the 3-PL model:
//
//	I(theta) = alpha^2 * (P*^2 / P) * (1 - P),  P* = (P - gamma) / (1 - gamma)
//
// Guessing dilutes information: when P is at or beyond its [gamma, 1]
// range (only possible from numerical corner cases), information is
// defined to be 0 rather than computed, since the standard 3-PL formula
// is undefined there.
func FisherInformation(theta, alpha, beta, gamma float64) float64 {
	p := ICC(theta, alpha, beta, gamma)
	if p <= gamma || p >= 1 {
		return 0
	}
	pStar := (p - gamma) / (1 - gamma)
	return alpha * alpha * (pStar * pStar / p) * (1 - p)
}

// TotalInformation sums FisherInformation over every item in items at the
// given theta. An empty slice yields 0.
func TotalInformation(theta float64, items []types.Item) float64 {
	var total float64
	for _, item := range items {
		total += FisherInformation(theta, item.Alpha, item.Beta, item.Gamma)
	}
	return total
}

// StandardError returns 1/sqrt(totalInformation), or +Inf when
// totalInformation is 0 (no information at all about theta).
func StandardError(totalInformation float64) float64 {
	if totalInformation <= 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(totalInformation)
}

// NormalizedScore maps an ability estimate onto a 0-100 scale via
//
//	N(theta) = 100 / (1 + exp(-1.7*theta))
//
// N is strictly increasing, N(0) = 50, N(-Inf) = 0, N(+Inf) = 100. The
// exponent is clamped the same way ICC's is, so extreme theta saturate
// rather than overflow.
func NormalizedScore(theta float64) float64 {
	score := 100 / (1 + math.Exp(-clampExponent(normalizationSlope*theta)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// LogLikelihood returns the log-likelihood of the binary response vector
// responses (each 0 or 1) given the administered items at theta. Each
// per-item probability is clamped into [1e-10, 1-1e-10] before taking its
// logarithm, so a perfectly-predicted or perfectly-contradicted response
// never produces -Inf.
func LogLikelihood(theta float64, items []types.Item, responses []int) float64 {
	var ll float64
	for idx, item := range items {
		p := clampProbability(ICC(theta, item.Alpha, item.Beta, item.Gamma))
		if responses[idx] == 1 {
			ll += math.Log(p)
		} else {
			ll += math.Log(1 - p)
		}
	}
	return ll
}
