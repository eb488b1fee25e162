package formant

import (
	"math"

	"github.com/tgeczy/speechbox/internal/dsp"
	"github.com/tgeczy/speechbox/internal/frame"
)

// Parallel is the six-independent-resonator bank used for fricatives and
// bursts, each contributing output-minus-input times its own amplitude.
type Parallel struct {
	r1, r2, r3, r4, r5, r6 *dsp.Resonator
}

// NewParallel creates a parallel bank for the given sample rate.
func NewParallel(sampleRate int) *Parallel {
	return &Parallel{
		r1: dsp.NewResonator(sampleRate),
		r2: dsp.NewResonator(sampleRate),
		r3: dsp.NewResonator(sampleRate),
		r4: dsp.NewResonator(sampleRate),
		r5: dsp.NewResonator(sampleRate),
		r6: dsp.NewResonator(sampleRate),
	}
}

// Reset clears all resonator delay-line state.
func (p *Parallel) Reset() {
	p.r1.Reset()
	p.r2.Reset()
	p.r3.Reset()
	p.r4.Reset()
	p.r5.Reset()
	p.r6.Reset()
}

// Decay drains residual ringing across all parallel sections.
func (p *Parallel) Decay(factor float64) {
	p.r1.Decay(factor)
	p.r2.Decay(factor)
	p.r3.Decay(factor)
	p.r4.Decay(factor)
	p.r5.Decay(factor)
	p.r6.Decay(factor)
}

// Next advances the parallel bank by one sample.
func (p *Parallel) Next(fr *frame.Frame, ex *frame.FrameEx, input float64) float64 {
	input /= 2.0

	pb1, pb2, pb3 := fr.Pb1, fr.Pb2, fr.Pb3
	if ex != nil {
		if !math.IsNaN(ex.EndPf1) {
			pb1 = bandwidthForSweep(fr.Pf1, pb1, sweepQMaxF1, sweepBwMinF1, sweepBwMax)
		}
		if !math.IsNaN(ex.EndPf2) {
			pb2 = bandwidthForSweep(fr.Pf2, pb2, sweepQMaxF2, sweepBwMinF2, sweepBwMax)
		}
		if !math.IsNaN(ex.EndPf3) {
			pb3 = bandwidthForSweep(fr.Pf3, pb3, sweepQMaxF3, sweepBwMinF3, sweepBwMax)
		}
	}

	var output float64
	output += (p.r1.Resonate(input, fr.Pf1, pb1, true) - input) * fr.Pa1
	output += (p.r2.Resonate(input, fr.Pf2, pb2, true) - input) * fr.Pa2
	output += (p.r3.Resonate(input, fr.Pf3, pb3, true) - input) * fr.Pa3
	output += (p.r4.Resonate(input, fr.Pf4, fr.Pb4, true) - input) * fr.Pa4
	output += (p.r5.Resonate(input, fr.Pf5, fr.Pb5, true) - input) * fr.Pa5
	output += (p.r6.Resonate(input, fr.Pf6, fr.Pb6, true) - input) * fr.Pa6
	return dsp.FadeValue(output, input, fr.ParallelBypass)
}
