package formant

import "github.com/tgeczy/speechbox/internal/dsp"

// Sweep-bandwidth widening limits, capping Q so a resonator doesn't ring
// uncontrollably while a formant end-target sweeps it upward across a
// token's duration. The reference implementation's bandwidthForSweep
// constants are not present in the available source; these limits are a
// reconstruction grounded in the documented intent (§4.3: "bandwidth
// computed from a cap on Q and minimum/maximum bandwidth limits"), recorded
// in DESIGN.md.
const (
	sweepQMaxF1 = 12.0
	sweepQMaxF2 = 14.0
	sweepQMaxF3 = 16.0

	sweepBwMinF1 = 60.0
	sweepBwMinF2 = 70.0
	sweepBwMinF3 = 80.0

	sweepBwMax = 400.0
)

// bandwidthForSweep widens bw so that freq/bw never exceeds qMax, clamped
// to [bwMin, sweepBwMax]. Used when a formant has an active end-target
// (FrameEx EndCfN/EndPfN is finite), where an unwidened bandwidth would
// otherwise let the resonator ring audibly as its center frequency moves.
func bandwidthForSweep(freq, bw, qMax, bwMin, bwMax float64) float64 {
	if freq <= 0 || qMax <= 0 {
		return bw
	}
	minBwForQ := freq / qMax
	out := bw
	if out < minBwForQ {
		out = minBwForQ
	}
	if out < bwMin {
		out = bwMin
	}
	if out > bwMax {
		out = bwMax
	}
	return out
}

func clamp(v, lo, hi float64) float64 { return dsp.Clamp(v, lo, hi) }
