package frame

import (
	"math"
	"sync"

	. "github.com/tgeczy/speechbox/internal/dsp"
)

// QueuedFrame is one entry in FrameManager's pending queue: a frame (nil
// means silence, per the NULL-frame contract) plus its timing and identity.
type QueuedFrame struct {
	Frame       *Frame
	Ex          *FrameEx
	MinSamples  int
	FadeSamples int
	UserIndex   int
}

// Manager is a thread-safe FIFO of pending frames plus one active frame,
// crossfading per-sample between the active tail and an incoming head. It
// is the sole synchronization point in a Player: mutations (QueueFrame) and
// reads (CurrentFrame) are mutually exclusive under a single mutex, held
// only for O(1) critical sections.
//
// Manager is not safe for concurrent reads and writes from multiple
// goroutines beyond the mutual exclusion the mutex itself provides around
// each call; callers needing independent queues create independent
// Managers, matching the rest of this module.
type Manager struct {
	mu sync.Mutex

	queue []QueuedFrame

	hasActive  bool
	active     QueuedFrame
	activeLeft int // samples remaining at full (non-fading) duration

	fading      bool
	incoming    QueuedFrame
	fadeElapsed int
	fadeTotal   int

	curFields [NumFields]float64
	curEx     FrameEx

	lastIndex int
	purged    bool
}

// NewManager creates an empty frame queue.
func NewManager() *Manager {
	return &Manager{curEx: DefaultFrameEx()}
}

// QueueFrame enqueues a frame (nil = silence). If purge is true, the
// pending queue and any in-progress fade are cleared first and a synthesized
// silence frame using fadeSamples is inserted, so the renderer fades to
// silence gracefully before continuing with anything queued afterward.
func (m *Manager) QueueFrame(f *Frame, ex *FrameEx, minSamples, fadeSamples, userIndex int, purge bool) {
	if fadeSamples < 1 {
		fadeSamples = 1
	}
	if minSamples < 0 {
		minSamples = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if purge {
		m.queue = m.queue[:0]
		m.fading = false
		m.purged = true
		m.queue = append(m.queue, QueuedFrame{
			Frame: nil, Ex: nil,
			MinSamples: 1, FadeSamples: fadeSamples, UserIndex: userIndex,
		})
	}

	m.queue = append(m.queue, QueuedFrame{
		Frame: f, Ex: ex,
		MinSamples: minSamples, FadeSamples: fadeSamples, UserIndex: userIndex,
	})
}

// CheckAndClearPurgeFlag reports whether a purge happened since the last
// call, clearing the flag. Exposed so external listeners can detect
// interrupts even when frames continue immediately afterward.
func (m *Manager) CheckAndClearPurgeFlag() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.purged
	m.purged = false
	return p
}

// LastIndex returns the userIndex of the most recently activated frame.
func (m *Manager) LastIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastIndex
}

func (m *Manager) promoteNext() {
	if len(m.queue) == 0 {
		return
	}
	next := m.queue[0]
	m.queue = m.queue[1:]

	if !m.hasActive {
		m.active = next
		m.activeLeft = next.MinSamples
		m.hasActive = true
		m.lastIndex = next.UserIndex
		if next.Frame != nil {
			var fx [NumFields]float64 = next.Frame.Fields()
			m.curFields = fx
		}
		if next.Ex != nil {
			m.curEx = *next.Ex
		}
		return
	}

	m.fading = true
	m.incoming = next
	m.lastIndex = next.UserIndex
	m.fadeElapsed = 0
	m.fadeTotal = next.FadeSamples
	if m.fadeTotal < 1 {
		m.fadeTotal = 1
	}
}

// CurrentFrame advances the manager by exactly one output sample and
// returns the crossfaded frame/ex observed at that sample. frame is nil
// for silence (no active frame and nothing queued, or the active slot is
// an explicit silence entry holding only the last resonator coefficients).
func (m *Manager) CurrentFrame() (*Frame, *FrameEx, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasActive {
		m.promoteNext()
		if !m.hasActive {
			return nil, nil, 0
		}
	}

	if m.fading {
		t := float64(m.fadeElapsed+1) / float64(m.fadeTotal)
		if t > 1 {
			t = 1
		}
		out, ex := m.blend(m.incoming, t)
		m.curFields = out
		m.curEx = ex
		m.fadeElapsed++
		if m.fadeElapsed >= m.fadeTotal {
			m.active = m.incoming
			m.activeLeft = m.active.MinSamples
			m.lastIndex = m.active.UserIndex
			m.fading = false
		}
	} else {
		m.activeLeft--
		if m.activeLeft <= 0 {
			if len(m.queue) == 0 {
				// Queue drained: release the active slot so the caller sees
				// silence and can stop.
				m.hasActive = false
				m.active = QueuedFrame{}
				return nil, nil, m.lastIndex
			}
			m.promoteNext()
		}
	}

	idx := m.lastIndex
	if m.active.Frame == nil {
		return nil, nil, idx
	}
	var fr Frame
	fr.SetFields(m.curFields)
	ex := m.curEx
	return &fr, &ex, idx
}

// blend interpolates all 47 fields and the FrameEx between active and
// incoming at ratio t in [0,1], using the field-category curve described in
// the frame manager's crossfade semantics: amplitudes get an
// attack/release-asymmetric or equal-power curve, formant frequencies an
// ease-in-out S-curve, bandwidths a slightly faster curve than their
// frequencies, nasal parameters a slower curve, and trans*Scale values
// compress the ramp into the first fraction of the window.
func (m *Manager) blend(to QueuedFrame, t float64) ([NumFields]float64, FrameEx) {
	fromFields := m.curFields
	fromEx := m.curEx

	var toFields [NumFields]float64
	toEx := DefaultFrameEx()
	if to.Frame != nil {
		toFields = to.Frame.Fields()
	} else {
		// NULL-frame contract: hold the already-current coefficients (which
		// are themselves held-over from the last sounding frame whenever the
		// active slot is already silence), ramp only amplitude/gain fields
		// toward zero.
		toFields = fromFields
		for _, i := range []int{4, 5, 6, 25, 38, 39, 40, 41, 42, 43, 45} {
			toFields[i] = 0
		}
	}
	if to.Ex != nil {
		toEx = *to.Ex
	}

	freqCurve := easeInOut(t)
	bwCurve := easeInOut(math.Min(1, t*1.1))
	nasalCurve := easeInOut(t * t)

	ampRatio := t
	if toEx.TransAmplitudeMode == 1 {
		ampRatio = equalPowerRatio(t)
	}
	if to.Frame == nil {
		// Fading to silence: only amplitude/gain fields move, formants hold.
		ampRatio = scaledRamp(t, 1.0)
	}

	var out [NumFields]float64
	out[0] = FadeValue(fromFields[0], toFields[0], freqCurve)   // voicePitch
	out[1] = FadeValue(fromFields[1], toFields[1], freqCurve)   // endVoicePitch
	out[2] = FadeValue(fromFields[2], toFields[2], freqCurve)   // vibratoPitchOffset
	out[3] = FadeValue(fromFields[3], toFields[3], freqCurve)   // vibratoSpeed
	out[4] = FadeValue(fromFields[4], toFields[4], ampRatio)    // voiceAmplitude
	out[5] = FadeValue(fromFields[5], toFields[5], ampRatio)    // aspirationAmplitude
	out[6] = FadeValue(fromFields[6], toFields[6], ampRatio)    // voiceTurbulenceAmplitude
	out[7] = FadeValue(fromFields[7], toFields[7], freqCurve)   // glottalOpenQuotient

	for i := 8; i <= 13; i++ { // cf1..cf6
		scale := transScaleFor(i, toEx)
		out[i] = FadeValue(fromFields[i], toFields[i], freqCurveScaled(t, scale))
	}
	for i := 14; i <= 19; i++ { // cb1..cb6
		out[i] = FadeValue(fromFields[i], toFields[i], bwCurve)
	}
	for i := 20; i <= 24; i++ { // cfN0,cbN0,cfNP,cbNP,caNP
		out[i] = FadeValue(fromFields[i], toFields[i], nasalCurve)
	}
	out[25] = FadeValue(fromFields[25], toFields[25], ampRatio) // fricationAmplitude
	for i := 26; i <= 31; i++ { // pf1..pf6
		out[i] = FadeValue(fromFields[i], toFields[i], freqCurve)
	}
	for i := 32; i <= 37; i++ { // pb1..pb6
		out[i] = FadeValue(fromFields[i], toFields[i], bwCurve)
	}
	for i := 38; i <= 43; i++ { // pa1..pa6
		out[i] = FadeValue(fromFields[i], toFields[i], ampRatio)
	}
	out[44] = FadeValue(fromFields[44], toFields[44], ampRatio) // parallelBypass
	out[45] = FadeValue(fromFields[45], toFields[45], ampRatio) // preFormantGain
	out[46] = FadeValue(fromFields[46], toFields[46], ampRatio) // outputGain

	exOut := FrameEx{
		Creakiness:  FadeValue(fromEx.Creakiness, toEx.Creakiness, t),
		Breathiness: FadeValue(fromEx.Breathiness, toEx.Breathiness, t),
		Jitter:      FadeValue(fromEx.Jitter, toEx.Jitter, t),
		Shimmer:     FadeValue(fromEx.Shimmer, toEx.Shimmer, t),
		Sharpness:   FadeValue(fromEx.Sharpness, toEx.Sharpness, t),
		EndCf1:      toEx.EndCf1, EndCf2: toEx.EndCf2, EndCf3: toEx.EndCf3,
		EndPf1: toEx.EndPf1, EndPf2: toEx.EndPf2, EndPf3: toEx.EndPf3,
		TransF1Scale: toEx.TransF1Scale, TransF2Scale: toEx.TransF2Scale,
		TransF3Scale: toEx.TransF3Scale, TransNasalScale: toEx.TransNasalScale,
		TransAmplitudeMode: toEx.TransAmplitudeMode,
	}
	return out, exOut
}

func transScaleFor(fieldIdx int, ex FrameEx) float64 {
	switch fieldIdx {
	case 9: // cf2
		return ex.TransF2Scale
	case 10: // cf3
		return ex.TransF3Scale
	default:
		return ex.TransF1Scale
	}
}

// freqCurveScaled applies a trans*Scale compression: when scale<1 the ramp
// reaches its target within the first `scale` fraction of the window and
// holds thereafter; scale>=1 behaves like a plain ease-in-out curve.
func freqCurveScaled(t, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	rt := t / scale
	if rt > 1 {
		rt = 1
	}
	return easeInOut(rt)
}

func scaledRamp(t, scale float64) float64 {
	return freqCurveScaled(t, scale)
}

// easeInOut is a raised-cosine S-curve mapping [0,1] to [0,1].
func easeInOut(t float64) float64 {
	return 0.5 * (1 - math.Cos(math.Pi*t))
}

// equalPowerRatio yields a constant-power crossfade ratio (sin^2), used for
// amplitude fields when FrameEx.TransAmplitudeMode signals a voicing-source
// transition rather than a steady-state glide.
func equalPowerRatio(t float64) float64 {
	s := math.Sin(t * math.Pi / 2)
	return s * s
}
