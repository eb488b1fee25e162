// player.go implements the Go-native replacement for the original C
// opaque-handle playback API: a Player owns its own resonator banks,
// glottal source and frame queue, and renders queued frames to PCM.

package speechbox

import (
	"time"

	"github.com/tgeczy/speechbox/internal/dsp"
	"github.com/tgeczy/speechbox/internal/formant"
	"github.com/tgeczy/speechbox/internal/frame"
	"github.com/tgeczy/speechbox/internal/glottal"
)

// Type aliases re-export the frame package's wire types at the root, so
// callers never need to import internal/frame directly.
type (
	Frame       = frame.Frame
	FrameEx     = frame.FrameEx
	VoicingTone = frame.VoicingTone
)

// fastRandomSeed matches the reference implementation's dedicated PRNG
// seed, kept separate from math/rand so synthesis output does not depend
// on process-global random state.
const fastRandomSeed = 98765

// Player renders a queue of Frame/FrameEx tuples to 16-bit PCM at a fixed
// sample rate. It owns its own resonator banks, glottal source and frame
// queue; it is not safe for concurrent use by multiple goroutines, but
// distinct Players run independently.
type Player struct {
	sampleRate int
	manager    *frame.Manager
	gen        *formant.WaveGenerator
	closed     bool
}

// NewPlayer creates a Player at sampleRate, which must be one of the rates
// the resonator and filter designs in internal/dsp have been tuned
// against.
func NewPlayer(sampleRate int) (*Player, error) {
	if !validSampleRate(sampleRate) {
		return nil, ErrInvalidSampleRate
	}

	mgr := frame.NewManager()
	rng := dsp.NewFastRandom(fastRandomSeed)
	src := glottal.NewSource(sampleRate, rng)
	cascade := formant.NewCascade(sampleRate)
	parallel := formant.NewParallel(sampleRate)
	gen := formant.New(sampleRate, mgr, src, cascade, parallel, rng)

	return &Player{
		sampleRate: sampleRate,
		manager:    mgr,
		gen:        gen,
	}, nil
}

// samplesFromDuration converts a time.Duration to a sample count at p's
// sample rate, rounding to the nearest sample.
func (p *Player) samplesFromDuration(d time.Duration) int {
	return int(d.Seconds()*float64(p.sampleRate) + 0.5)
}

// QueueFrame enqueues a frame (nil means silence) with the given minimum
// hold duration and crossfade duration. If purge is true, the pending
// queue and any in-progress crossfade are cleared first and a fade to
// silence is inserted, so Synthesize reaches a clean silence boundary
// before anything queued afterward begins.
func (p *Player) QueueFrame(fr *Frame, minDuration, fadeDuration time.Duration, userIndex int, purge bool) {
	p.QueueFrameEx(fr, nil, minDuration, fadeDuration, userIndex, purge)
}

// QueueFrameEx is QueueFrame with an explicit FrameEx. A nil ex uses the
// manager's neutral default voice-quality/formant-sweep settings.
func (p *Player) QueueFrameEx(fr *Frame, ex *FrameEx, minDuration, fadeDuration time.Duration, userIndex int, purge bool) {
	if p.closed {
		return
	}
	min := p.samplesFromDuration(minDuration)
	fade := p.samplesFromDuration(fadeDuration)
	p.manager.QueueFrame(fr, ex, min, fade, userIndex, purge)
}

// Synthesize fills buf with as many samples as the queue currently has
// available, returning the count written. It never blocks: once the
// queue drains to empty it stops early rather than waiting for more
// frames to be queued.
func (p *Player) Synthesize(buf []int16) (int, error) {
	if p.closed {
		return 0, ErrPlayerClosed
	}
	return p.gen.Generate(buf), nil
}

// LastIndex returns the userIndex of the most recently activated frame,
// letting callers track playback progress against the indices they
// passed to QueueFrame.
func (p *Player) LastIndex() int {
	return p.manager.LastIndex()
}

// Close releases the Player. Further calls to QueueFrame are ignored and
// Synthesize returns ErrPlayerClosed.
func (p *Player) Close() error {
	p.closed = true
	return nil
}

// SetVoicingTone applies per-voice DSP-level quality parameters (speaker
// identity knobs smoothed internally rather than per-frame). A nil tone
// resets to DefaultVoicingTone.
func (p *Player) SetVoicingTone(tone *VoicingTone) {
	t := frame.DefaultVoicingTone()
	if tone != nil {
		t = tone.Clamped()
	}
	p.gen.SetVoicingTone(t)
}

// VoicingTone returns the Player's current voicing tone.
func (p *Player) VoicingTone() VoicingTone {
	return p.gen.VoicingTone()
}

// DSPVersion returns the synthesizer DSP revision, bumped whenever the
// DSP algorithm changes in a way callers may want to detect (e.g. before
// trusting a cached VoicingTone blob across a version upgrade).
func DSPVersion() uint32 {
	return frame.DSPVersion
}
