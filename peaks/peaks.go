package peaks

import (
	"math"
)

// Peak is a qualifying plateau in a profile.
//
// Start and End are inclusive sample indices within the profile. Height
// is the plateau maximum. Base is the elevation the peak stands above:
// Height minus the smallest drop over the available sides.
type Peak struct {
	Start  int
	End    int
	Height float64
	Base   float64
}

// Prominence returns Height − Base.
func (p Peak) Prominence() float64 {
	return p.Height - p.Base
}

// Center returns the midpoint of the plateau in sample units, measured
// from the start of the profile to the middle of the covered pixels.
func (p Peak) Center() float64 {
	return float64(p.Start+p.End+1) / 2
}

// Width returns the number of samples in the plateau.
func (p Peak) Width() int {
	return p.End - p.Start + 1
}

// Options configures FindMaxima.
//
// Fields:
//   - MinProminence:     minimum drop on each available side (inclusive).
//   - FlatnessTolerance: maximum deviation from a run's first sample for a
//     sample to join the plateau; 0 means exact equality.
type Options struct {
	MinProminence     float64
	FlatnessTolerance float64
}

// DefaultOptions returns MinProminence=0.1 and exact-equality plateaus.
func DefaultOptions() Options {
	return Options{
		MinProminence:     0.1,
		FlatnessTolerance: 0,
	}
}

type run struct {
	start, end int
	height     float64
}

// FindMaxima returns the peaks of profile in order of Start.
// An empty, degenerate or all-NoData profile yields no peaks.
func FindMaxima(profile []float64, opts Options) []Peak {
	if len(profile) == 0 {
		return nil
	}
	var out []Peak
	for _, r := range plateaus(profile, opts.FlatnessTolerance) {
		if !isLocalMax(profile, r) {
			continue
		}
		leftDrop, leftOK := drop(profile, r, -1)
		rightDrop, rightOK := drop(profile, r, +1)
		if !leftOK && !rightOK {
			continue
		}
		minDrop := math.Inf(1)
		qualifies := true
		if leftOK {
			qualifies = qualifies && leftDrop >= opts.MinProminence
			minDrop = math.Min(minDrop, leftDrop)
		}
		if rightOK {
			qualifies = qualifies && rightDrop >= opts.MinProminence
			minDrop = math.Min(minDrop, rightDrop)
		}
		if !qualifies {
			continue
		}
		out = append(out, Peak{
			Start:  r.start,
			End:    r.end,
			Height: r.height,
			Base:   r.height - minDrop,
		})
	}
	return out
}

// plateaus groups consecutive valid samples into runs.
func plateaus(p []float64, tol float64) []run {
	var runs []run
	for i := 0; i < len(p); {
		if math.IsNaN(p[i]) {
			i++
			continue
		}
		ref := p[i]
		r := run{start: i, end: i, height: ref}
		j := i + 1
		for j < len(p) && !math.IsNaN(p[j]) && math.Abs(p[j]-ref) <= tol {
			r.end = j
			r.height = math.Max(r.height, p[j])
			j++
		}
		runs = append(runs, r)
		i = j
	}
	return runs
}

// isLocalMax reports whether the samples adjacent to r are lower than it.
// A missing neighbor (profile end or NoData) does not disqualify.
func isLocalMax(p []float64, r run) bool {
	if l := r.start - 1; l >= 0 && !math.IsNaN(p[l]) && p[l] >= r.height {
		return false
	}
	if rt := r.end + 1; rt < len(p) && !math.IsNaN(p[rt]) && p[rt] >= r.height {
		return false
	}
	return true
}

// drop walks outward from r in direction dir until the profile rises above
// the plateau, hits NoData, or ends, and returns the plateau height minus
// the lowest sample passed. ok is false when no sample was passed.
func drop(p []float64, r run, dir int) (float64, bool) {
	i := r.start - 1
	if dir > 0 {
		i = r.end + 1
	}
	lowest := math.Inf(1)
	passed := 0
	for ; i >= 0 && i < len(p); i += dir {
		v := p[i]
		if math.IsNaN(v) || v > r.height {
			break
		}
		lowest = math.Min(lowest, v)
		passed++
	}
	if passed == 0 {
		return 0, false
	}
	return r.height - lowest, true
}
