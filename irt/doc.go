// Package irt implements the three-parameter logistic Item Response
// Theory model: the item characteristic curve, Fisher information, total
// information, standard error, the ability-to-score mapping, and
// log-likelihood.
//
// Every function here is a pure, allocation-free computation over plain
// floats — no state, no I/O, safe to call from any goroutine. Numerical
// guards (exponent clamping, probability clamping) are applied at the
// boundary of every function so callers never observe NaN from a finite
// input; the one Inf result is StandardError's +Inf for non-positive
// information.
//
//	p := irt.ICC(theta, alpha, beta, gamma)
//	info := irt.FisherInformation(theta, alpha, beta, gamma)
package irt
