// Package scoring computes posting priority scores for product listings.
//
// Scoring is pure: the same item and lookup tables always produce the same
// score, so batches may be scored concurrently without locking. Five weighted
// components (hype, brand tier, recency, engagement, scarcity) combine into a
// base that source-reliability and category multipliers scale into a 0-100
// score, with a small bonus when a limited-edition drop is detected moving
// from its announcement to its release. Any internal panic is converted into
// a zero score with an error note in the breakdown; scoring never takes the
// pipeline down.
package scoring
