package prosody

import (
	"math"

	"github.com/tgeczy/speechbox/internal/pack"
	"github.com/tgeczy/speechbox/internal/token"
)

// Info is the computed timing and pitch contour for one token, consumed
// by the emit package when building its frame(s).
type Info struct {
	DurationMs            float64
	VoicePitch            float64
	EndVoicePitch          float64
	FujisakiPhraseCommand float64
	FujisakiAccentCommand float64
}

// percentToHz converts an eSpeak-ToBI-style percent-scale pitch target
// (0 = an octave below base, 50 = base, 100 = an octave above) to Hz.
func percentToHz(basePitch, percent float64) float64 {
	return basePitch * math.Pow(2, (percent-50)/50)
}

func isVoiced(t token.Token) bool {
	return t.Phoneme != nil && !t.Silence
}

// Compute computes timing and pitch for every token, given the utterance
// speed, base pitch (Hz), inflection (0..1) and clause type ("." "?" "!"
// etc., used by the final-boundary shaping of several models).
func Compute(tokens []token.Token, settings pack.Settings, speed, basePitch, inflection float64, clauseType string) []Info {
	infos := make([]Info, len(tokens))
	for i, t := range tokens {
		class := pack.ClassSilence
		stress := 0
		if t.Phoneme != nil {
			class = t.Phoneme.Class
			stress = t.Stress
		}
		infos[i].DurationMs = durationFor(class, stress, false, settings, speed)
	}
	applyContextDurationAdjustments(tokens, infos, settings)

	switch settings.PitchModel {
	case pack.PitchLegacyTimeBased:
		computeLegacyPitch(tokens, infos, settings, basePitch, inflection, clauseType)
	case pack.PitchFujisakiBartman:
		computeFujisakiPitch(tokens, infos, basePitch, inflection)
	case pack.PitchKlattHat:
		computeKlattHatPitch(tokens, infos, basePitch, inflection, clauseType)
	default:
		computeEspeakToBIPitch(tokens, infos, settings, basePitch, inflection, clauseType)
	}

	applyToneOverlay(tokens, infos, settings, basePitch)
	return infos
}

// applyContextDurationAdjustments shortens unstressed vowels before a
// liquid/nasal and semivowel offglides between vowel and vowel/liquid, and
// splits a tied diphthong's nucleus/offglide into a 40/20 ms ratio.
func applyContextDurationAdjustments(tokens []token.Token, infos []Info, settings pack.Settings) {
	for i, t := range tokens {
		if t.Phoneme == nil {
			continue
		}
		if t.Phoneme.Class == pack.ClassVowel && t.Stress == 0 && i+1 < len(tokens) {
			next := tokens[i+1]
			if next.Phoneme != nil && (next.Phoneme.Class == pack.ClassLiquid || next.Phoneme.Class == pack.ClassNasal) {
				infos[i].DurationMs *= 0.85
			}
		}
		if t.Phoneme.Class == pack.ClassSemivowel && i > 0 && i+1 < len(tokens) {
			prev, next := tokens[i-1], tokens[i+1]
			prevVowel := prev.Phoneme != nil && prev.Phoneme.Class == pack.ClassVowel
			nextOK := next.Phoneme != nil && (next.Phoneme.Class == pack.ClassVowel || next.Phoneme.Class == pack.ClassLiquid)
			if prevVowel && nextOK {
				infos[i].DurationMs *= 0.7
			}
		}
		if t.TiedNext && i+1 < len(tokens) {
			infos[i].DurationMs = 40
			infos[i+1].DurationMs = 20
		}
	}
}

// voicedTimeline returns, for each token, the accumulated voiced duration
// (ms) at its start and end — the x-axis every pitch model interpolates
// over, so successive voiced tokens never show a pitch discontinuity.
func voicedTimeline(tokens []token.Token, infos []Info) (starts, ends []float64, total float64) {
	starts = make([]float64, len(tokens))
	ends = make([]float64, len(tokens))
	acc := 0.0
	for i, t := range tokens {
		starts[i] = acc
		if isVoiced(t) {
			acc += infos[i].DurationMs
		}
		ends[i] = acc
	}
	return starts, ends, acc
}

// computeEspeakToBIPitch drives the region interpolation from the pack's
// per-clause-type intonation table (§3): a flat pre-head run, a rise into
// the nucleus accent, the accent itself (boosted by inflection), and a
// boundary tone carried by the tail — all read from settings.IntonationTable
// keyed by clauseType, falling back to "." when the clause type is unset or
// has no table entry.
func computeEspeakToBIPitch(tokens []token.Token, infos []Info, settings pack.Settings, basePitch, inflection float64, clauseType string) {
	starts, ends, total := voicedTimeline(tokens, infos)
	if total <= 0 {
		total = 1
	}
	nucleusIdx := firstPrimaryStress(tokens)
	region := intonationRegionFor(settings, clauseType)

	percentAt := func(t float64) float64 {
		frac := t / total
		switch {
		case nucleusIdx < 0:
			return region.Head
		default:
			nucleusFrac := starts[nucleusIdx] / total
			switch {
			case frac < nucleusFrac*0.5:
				return region.PreHead
			case frac < nucleusFrac:
				return region.Head
			case frac < nucleusFrac+0.15:
				return region.Nucleus + 15*inflection
			default:
				return region.Tail
			}
		}
	}
	for i := range tokens {
		infos[i].VoicePitch = percentToHz(basePitch, percentAt(starts[i]))
		infos[i].EndVoicePitch = percentToHz(basePitch, percentAt(ends[i]))
	}
}

// intonationRegionFor resolves the clause type's intonation region from
// the pack's table, falling back to "." and finally to the built-in
// defaults so a pack that defines no table at all still gets sensible
// region percents.
func intonationRegionFor(settings pack.Settings, clauseType string) pack.IntonationRegion {
	if settings.IntonationTable != nil {
		if r, ok := settings.IntonationTable[clauseType]; ok {
			return r
		}
		if r, ok := settings.IntonationTable["."]; ok {
			return r
		}
	}
	return pack.DefaultIntonationTable()["."]
}

func firstPrimaryStress(tokens []token.Token) int {
	for i, t := range tokens {
		if t.Stress == 1 {
			return i
		}
	}
	return -1
}

func computeLegacyPitch(tokens []token.Token, infos []Info, settings pack.Settings, basePitch, inflection float64, clauseType string) {
	starts, ends, total := voicedTimeline(tokens, infos)
	k := 0.3 * settings.LegacyPitchInflectionScale
	decline := func(tMs float64) float64 {
		tSec := tMs / 1000.0
		return basePitch / (1 + k*tSec)
	}
	accentDecay := 1.0
	for i := range tokens {
		s, e := decline(starts[i]), decline(ends[i])
		if tokens[i].Stress == 1 {
			s *= 1 + 0.15*accentDecay
			e *= 1 + 0.15*accentDecay
			accentDecay *= 0.9
		}
		infos[i].VoicePitch = s
		infos[i].EndVoicePitch = e
	}
	for i := 1; i < len(tokens); i++ {
		if isVoiced(tokens[i-1]) && isVoiced(tokens[i]) {
			infos[i].VoicePitch = infos[i-1].EndVoicePitch
		}
	}
	if len(tokens) > 0 && total > 0 {
		last := len(tokens) - 1
		switch clauseType {
		case "?":
			infos[last].EndVoicePitch *= 1 + 0.30*inflection
		case "!":
			infos[last].EndVoicePitch *= 1 + 0.10*inflection
		}
	}
}

// computeFujisakiPitch keeps the flat per-token base pitch and emits
// impulse-like phrase/accent commands at syllable boundaries; the glottal
// source's per-sample filtering turns these into the actual contour.
func computeFujisakiPitch(tokens []token.Token, infos []Info, basePitch, inflection float64) {
	for i := range tokens {
		infos[i].VoicePitch = basePitch
		infos[i].EndVoicePitch = basePitch
	}
	phraseEmitted := false
	for i, t := range tokens {
		if !isVoiced(t) {
			continue
		}
		if !phraseEmitted {
			infos[i].FujisakiPhraseCommand = 1.0
			phraseEmitted = true
		}
		if t.Stress == 1 {
			infos[i].FujisakiAccentCommand = 0.5 + 0.5*inflection
		} else if t.Stress == 2 {
			infos[i].FujisakiAccentCommand = 0.25 + 0.25*inflection
		}
	}
}

func computeKlattHatPitch(tokens []token.Token, infos []Info, basePitch, inflection float64, clauseType string) {
	nucleusIdx := firstPrimaryStress(tokens)
	lastVoiced := -1
	for i, t := range tokens {
		if isVoiced(t) {
			lastVoiced = i
		}
	}
	for i := range tokens {
		var v float64
		switch {
		case nucleusIdx < 0:
			v = basePitch
		case i < nucleusIdx:
			v = basePitch * 0.92
		case i >= nucleusIdx && i < lastVoiced:
			v = basePitch * (1 + 0.15*inflection)
		default:
			v = basePitch * 0.85
		}
		infos[i].VoicePitch = v
		infos[i].EndVoicePitch = v
	}
	if lastVoiced >= 0 {
		switch clauseType {
		case "?":
			infos[lastVoiced].EndVoicePitch = basePitch * (1 + 0.35*inflection)
		case ".":
			infos[lastVoiced].EndVoicePitch = basePitch * 0.75
		}
	}
	for i := 1; i < len(tokens); i++ {
		if isVoiced(tokens[i-1]) && isVoiced(tokens[i]) {
			infos[i].VoicePitch = infos[i-1].EndVoicePitch
		}
	}
}

// applyToneOverlay spreads a syllable's tone-table contour across its
// voiced duration, added to (relative) or replacing (absolute) the
// model's base pitch at that point.
func applyToneOverlay(tokens []token.Token, infos []Info, settings pack.Settings, basePitch float64) {
	if !settings.TonalMode || settings.ToneTable == nil {
		return
	}
	for i, t := range tokens {
		if t.Tone == "" {
			continue
		}
		entries, ok := settings.ToneTable[t.Tone]
		if !ok || len(entries) == 0 {
			continue
		}
		start := evalToneContour(entries, 0, basePitch)
		end := evalToneContour(entries, 100, basePitch)
		if entries[0].Relative {
			infos[i].VoicePitch += start
			infos[i].EndVoicePitch += end
		} else {
			infos[i].VoicePitch = start
			infos[i].EndVoicePitch = end
		}
	}
}

func evalToneContour(entries []pack.ToneEntry, percent float64, basePitch float64) float64 {
	if len(entries) == 1 {
		return toneValue(entries[0], basePitch)
	}
	for i := 1; i < len(entries); i++ {
		a, b := entries[i-1], entries[i]
		if percent <= b.AtPercent || i == len(entries)-1 {
			span := b.AtPercent - a.AtPercent
			if span <= 0 {
				return toneValue(b, basePitch)
			}
			t := (percent - a.AtPercent) / span
			va, vb := toneValue(a, basePitch), toneValue(b, basePitch)
			return va + t*(vb-va)
		}
	}
	return toneValue(entries[len(entries)-1], basePitch)
}

func toneValue(e pack.ToneEntry, basePitch float64) float64 {
	if e.Relative {
		return e.Value
	}
	return percentToHz(basePitch, e.Value)
}
