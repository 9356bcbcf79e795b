// Package peaks finds elevated plateaus in one-dimensional elevation
// profiles using a prominence criterion.
//
// 🚀 What is a peak here?
//
//	A maximal run of (near-)equal samples whose neighbors are lower, and
//	whose drop towards the lowest point on each side, before the profile
//	rises above the plateau again, is at least MinProminence.
//
//	    5 5 5                 FindMaxima([0 0 0 5 5 5 0 0 0], {MinProminence: 4})
//	    ┌───┐                 → [{Start: 3, End: 5, Height: 5, Base: 0}]
//	0 0 0   0 0 0
//
// ✨ Rules:
//   - Samples within FlatnessTolerance of a run's first sample join the run.
//   - NoData samples (NaN) break runs, never belong to a peak and end the
//     outward search on that side.
//   - A plateau touching the profile end (or NoData) on one side is judged
//     on the other side's drop only; one touching both is never a peak.
//   - The threshold is inclusive: drop ≥ MinProminence qualifies.
//   - Peaks are returned ordered by Start.
//
// Performance:
//
//   - Time:   O(n·r) worst case, r = number of candidate plateaus; O(n)
//     for typical profiles.
//   - Memory: O(n).
package peaks
