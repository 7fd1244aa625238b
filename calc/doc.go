// Package calc holds the closed-form calculators of the dashboard: Bayesian
// updating, Kelly bet sizing, proportion confidence intervals, the market
// frenzy heat score, and Pearson correlation.
//
// Every function takes an immutable parameter record, clamps it, and returns
// a result value. None of them can fail; degenerate inputs produce zeros.
package calc
