// Package abtest runs two-variant campaign experiments.
//
// A test moves draft → running → completed and never backwards. Each
// variant stores the id of the campaign whose counters measure it, and
// evaluation compares the two campaigns on the test's winning criterion
// with a 5% relative tolerance.
package abtest
