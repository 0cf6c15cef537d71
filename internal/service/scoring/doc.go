// Package scoring implements predictive lead scoring.
//
// A tenant's converted contacts give a baseline ConversionPattern. Each open
// contact is scored against it with six independent signals whose weights
// sum to 100, and the weighted mean drives the conversion probability,
// days-to-close estimate, risk tier, confidence and recommendations.
//
// Everything below Service is pure: signals.go, pattern.go, scorer.go and
// recommendations.go take fetched rows and a clock and return values. All
// tuning constants live in policy.go.
package scoring
