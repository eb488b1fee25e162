// frontend.go implements the IPA-to-frame frontend: load a language pack
// once, drive any number of Players from it.

package speechbox

import (
	"time"

	"github.com/tgeczy/speechbox/internal/emit"
	"github.com/tgeczy/speechbox/internal/frame"
	"github.com/tgeczy/speechbox/internal/ipa"
	"github.com/tgeczy/speechbox/internal/pack"
	"github.com/tgeczy/speechbox/internal/prosody"
	"github.com/tgeczy/speechbox/internal/token"
)

// QueueOptions controls one QueueIPA/QueueIPAEx call: speaking rate, base
// pitch, intonation strength and clause-final contour shape.
type QueueOptions struct {
	// Speed is a speaking-rate multiplier: segment durations are divided
	// by it, so 2.0 halves them; 0 or less uses 1.0.
	Speed float64
	// BasePitchHz is the speaker's reference F0; 0 uses 120 Hz.
	BasePitchHz float64
	// Inflection scales pitch excursion around BasePitchHz; 1.0 is neutral.
	Inflection float64
	// ClauseType selects the prosody model's phrase-final contour: "."
	// (statement), "," (continuation), "?" (question) or "!" (exclamation).
	// Any other value (including "") falls back to "." 's region table.
	ClauseType string
	// UserIndexBase is added to each token's position to form the
	// userIndex passed to FrameCallback/FrameExCallback.
	UserIndexBase int
	// Purge, when true, clears the target Player's pending queue and
	// fades to silence before this utterance's frames begin.
	Purge bool
}

const (
	defaultBasePitchHz = 120.0
	defaultInflection  = 1.0
)

// FrameCallback receives one emitted frame tuple. frame is nil for
// silence.
type FrameCallback func(frame *Frame, durationMs, fadeMs float64, userIndex int)

// FrameExCallback is FrameCallback with the accompanying FrameEx.
type FrameExCallback func(frame *Frame, ex *FrameEx, durationMs, fadeMs float64, userIndex int)

// Frontend turns IPA transcription text into Frame sequences, driven by a
// language pack of phoneme definitions, normalization rules and prosody
// settings. A Frontend loads its pack once and can drive any number of
// Players; it never touches a Player's internals directly beyond calling
// QueueFrame/QueueFrameEx, so callers remain free to queue synthesized
// frames of their own alongside frontend-produced ones.
//
// Frontend is not safe for concurrent use by multiple goroutines.
type Frontend struct {
	pack *pack.LanguagePack

	lang         *pack.Language
	voiceProfile *pack.VoiceProfile
	defaultEx    frame.FrameEx

	closed bool
}

// NewFrontend loads the language pack directory at packDir (phonemes.yaml,
// lang/*.yaml, dict/*-stress.tsv).
func NewFrontend(packDir string) (*Frontend, error) {
	lp, err := pack.Load(packDir)
	if err != nil {
		return nil, err
	}
	return &Frontend{
		pack:      lp,
		defaultEx: frame.DefaultFrameEx(),
	}, nil
}

// Close releases the Frontend. Further calls return ErrFrontendClosed.
func (f *Frontend) Close() error {
	f.closed = true
	return nil
}

// SetLanguage resolves tag against the loaded pack (walking "default" then
// each hyphen-prefix of tag) and makes it the active language. A failed
// call leaves the previously active language in place.
func (f *Frontend) SetLanguage(tag string) error {
	if f.closed {
		return ErrFrontendClosed
	}
	lang, err := f.pack.ResolveLanguage(tag)
	if err != nil {
		return ErrUnknownLanguage
	}
	f.lang = lang
	return nil
}

// SetVoiceProfile makes the named voice profile active, rescaling formants,
// bandwidths and pitch by phoneme class on every frame built afterward. An
// empty name clears the active profile back to the phoneme table's
// unscaled values.
func (f *Frontend) SetVoiceProfile(name string) error {
	if f.closed {
		return ErrFrontendClosed
	}
	if name == "" {
		f.voiceProfile = nil
		return nil
	}
	vp, ok := f.pack.VoiceProfiles[name]
	if !ok {
		return ErrUnknownVoiceProfile
	}
	f.voiceProfile = vp
	return nil
}

// VoiceProfileNames returns the names of every voice profile in the loaded
// pack.
func (f *Frontend) VoiceProfileNames() []string {
	names := make([]string, 0, len(f.pack.VoiceProfiles))
	for name := range f.pack.VoiceProfiles {
		names = append(names, name)
	}
	return names
}

// SetFrameExDefaults sets the baseline voice-quality modulators applied to
// every frame built afterward, before per-phoneme FrameEx contributions are
// added on top.
func (f *Frontend) SetFrameExDefaults(creak, breath, jitter, shimmer, sharpness float64) {
	f.defaultEx.Creakiness = creak
	f.defaultEx.Breathiness = breath
	f.defaultEx.Jitter = jitter
	f.defaultEx.Shimmer = shimmer
	f.defaultEx.Sharpness = sharpness
}

// VoicingTone returns the active voice profile's voicing tone, or
// DefaultVoicingTone if the active profile (or no profile) doesn't specify
// one.
func (f *Frontend) VoicingTone() (VoicingTone, error) {
	if f.closed {
		return VoicingTone{}, ErrFrontendClosed
	}
	if f.voiceProfile != nil && f.voiceProfile.VoicingTone != nil {
		return *f.voiceProfile.VoicingTone, nil
	}
	return frame.DefaultVoicingTone(), nil
}

// QueueIPA normalizes ipaText, tokenizes it, computes timing and pitch, and
// queues the resulting frames onto p one at a time (nil frame = silence),
// converting each tuple's millisecond duration/fade to the time.Duration
// p.QueueFrameEx expects. cb is invoked once per queued tuple, in queuing
// order, so callers can track playback progress (e.g. for captions)
// without holding a back-reference from the emitted tokens to p. A failed
// call (no language selected) leaves p's queue unchanged.
func (f *Frontend) QueueIPA(p *Player, ipaText string, opts QueueOptions, cb FrameCallback) error {
	return f.queueIPA(p, ipaText, opts, func(fr *Frame, ex *FrameEx, durationMs, fadeMs float64, userIndex int) {
		if cb != nil {
			cb(fr, durationMs, fadeMs, userIndex)
		}
	})
}

// QueueIPAEx is QueueIPA with the accompanying FrameEx delivered to cb.
func (f *Frontend) QueueIPAEx(p *Player, ipaText string, opts QueueOptions, cb FrameExCallback) error {
	return f.queueIPA(p, ipaText, opts, emit.Callback(cb))
}

func (f *Frontend) queueIPA(p *Player, ipaText string, opts QueueOptions, cb emit.Callback) error {
	if f.closed {
		return ErrFrontendClosed
	}
	if f.lang == nil {
		return ErrNoLanguageSelected
	}

	speed := opts.Speed
	if speed <= 0 {
		speed = 1.0
	}
	basePitch := opts.BasePitchHz
	if basePitch <= 0 {
		basePitch = defaultBasePitchHz
	}
	inflection := opts.Inflection
	if inflection <= 0 {
		inflection = defaultInflection
	}

	normalized := ipa.Normalize(ipaText, f.pack.NormalizerPack(f.lang))
	tokens := token.Build(normalized, f.pack, f.lang.Settings)
	infos := prosody.Compute(tokens, f.lang.Settings, speed, basePitch, inflection, opts.ClauseType)

	cfg := emit.Config{
		DefaultEx:    f.defaultEx,
		VoiceProfile: f.voiceProfile,
		Settings:     f.lang.Settings,
	}

	purge := opts.Purge
	emit.Emit(tokens, infos, cfg, opts.UserIndexBase, func(fr *frame.Frame, ex *frame.FrameEx, durationMs, fadeMs float64, userIndex int) {
		p.QueueFrameEx(fr, ex, durationFromMs(durationMs), durationFromMs(fadeMs), userIndex, purge)
		purge = false
		cb(fr, ex, durationMs, fadeMs, userIndex)
	})
	return nil
}

// durationFromMs converts an emit-produced millisecond duration to a
// time.Duration.
func durationFromMs(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
