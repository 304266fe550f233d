// Package ability estimates a latent ability theta and its standard error
// from a set of administered items and the binary responses they
// produced.
//
// Estimate picks between two branches: maximum-likelihood estimation with
// Newton-Raphson and step-halving damping, and expected-a-posteriori
// estimation over a fixed 41-point grid under a standard-normal prior. The
// selection rule and both branches are numerically guarded so that
// degenerate inputs (too few responses, unanimous responses, zero
// information) fall back rather than panic or return NaN.
package ability
