package pack

import (
	"fmt"
	"strings"

	"github.com/tgeczy/speechbox/internal/ipa"
)

// GapMode selects when a stop-closure silence token is inserted before a
// stop or affricate (§4.7).
type GapMode string

const (
	GapAlways          GapMode = "always"
	GapAfterVowel      GapMode = "after-vowel"
	GapVowelAndCluster GapMode = "vowel-and-cluster"
	GapNone            GapMode = "none"
)

// PitchModel selects the prosody package's F0 contour generator (§4.8).
type PitchModel string

const (
	PitchEspeakToBI     PitchModel = "espeak-tobi"
	PitchLegacyTimeBased PitchModel = "legacy"
	PitchFujisakiBartman PitchModel = "fujisaki"
	PitchKlattHat        PitchModel = "klatt-hat"
)

// ToneEntry is one point of a tonal language's pitch contour, either an
// absolute percent-scale target or an offset from the base pitch.
type ToneEntry struct {
	AtPercent float64
	Value     float64
	Relative  bool
}

// IntonationRegion holds the eSpeak-ToBI model's four percent-scale pitch
// targets for one clause type: the flat run before the first stressed
// syllable, the rise into it, the nucleus accent itself, and the boundary
// tone carried by everything after it.
type IntonationRegion struct {
	PreHead float64
	Head    float64
	Nucleus float64
	Tail    float64
}

// DefaultIntonationTable returns the eSpeak-ToBI model's built-in
// per-clause-type intonation tables, keyed by clause type ("." "," "?"
// "!"), used whenever a pack supplies none of its own.
func DefaultIntonationTable() map[string]IntonationRegion {
	return map[string]IntonationRegion{
		".": {PreHead: 40, Head: 55, Nucleus: 55, Tail: 30},
		",": {PreHead: 40, Head: 55, Nucleus: 55, Tail: 45},
		"?": {PreHead: 40, Head: 50, Nucleus: 50, Tail: 75},
		"!": {PreHead: 45, Head: 60, Nucleus: 65, Tail: 35},
	}
}

// Settings holds the per-language-tag knobs that steer normalization,
// token insertion, prosody and trajectory limiting.
type Settings struct {
	StripHyphens        bool
	TonalMode           bool
	GapMode             GapMode
	GapAfterNasal       bool
	PostStopAspiration  bool
	AutoTieDiphthongs   bool
	TrillModulationMs   float64
	PitchModel          PitchModel
	LegacyPitchInflectionScale float64
	PrimaryStressDiv    float64
	SecondaryStressDiv  float64
	LengthenedScale     float64
	TrajectoryLimiting  bool
	TrajectoryRateHzPerMs float64
	ToneTable           map[string][]ToneEntry
	IntonationTable     map[string]IntonationRegion
}

// DefaultSettings returns the reference implementation's documented
// defaults, so an override-free language tag still synthesizes sensibly.
func DefaultSettings() Settings {
	return Settings{
		StripHyphens:       true,
		GapMode:            GapVowelAndCluster,
		GapAfterNasal:      false,
		PostStopAspiration: true,
		AutoTieDiphthongs:  true,
		TrillModulationMs:  28.0,
		PitchModel:         PitchEspeakToBI,
		LegacyPitchInflectionScale: 0.58,
		PrimaryStressDiv:   1.4,
		SecondaryStressDiv: 1.1,
		LengthenedScale:    1.05,
		TrajectoryLimiting: true,
		TrajectoryRateHzPerMs: 50.0,
		IntonationTable:    DefaultIntonationTable(),
	}
}

// Language is one resolved lang/<tag>.yaml entry: settings overrides plus
// normalization rules layered on top of the shared phoneme inventory.
type Language struct {
	Tag              string
	Settings         Settings
	PreReplacements  []ipa.Rule
	Aliases          []ipa.Rule
	Replacements     []ipa.Rule
}

// LanguagePack is the full immutable, shareable artifact loaded from a
// pack directory: the phoneme inventory, voice profiles, and the set of
// per-language overrides resolvable by tag.
type LanguagePack struct {
	Phonemes      map[string]*PhonemeDef
	VoiceProfiles map[string]*VoiceProfile
	Languages     map[string]*Language
	StressDicts   map[string]map[string]int // tag -> word -> stress digit
}

// HasPhoneme implements ipa.Inventory.
func (p *LanguagePack) HasPhoneme(key string) bool {
	_, ok := p.Phonemes[key]
	return ok
}

// ClassOf implements ipa.Inventory.
func (p *LanguagePack) ClassOf(key string) string {
	if def, ok := p.Phonemes[key]; ok {
		return string(def.Class)
	}
	return ""
}

// ResolveLanguage walks "default" then each hyphen-prefix of tag in order
// (e.g. "en-us-south" → "default", "en", "en-us", "en-us-south"), merging
// settings and normalization rules so more specific tags override less
// specific ones. Returns an error if no "default" entry exists.
func (p *LanguagePack) ResolveLanguage(tag string) (*Language, error) {
	def, ok := p.Languages["default"]
	if !ok {
		return nil, fmt.Errorf("pack: no default language entry")
	}
	merged := &Language{
		Tag:      tag,
		Settings: def.Settings,
	}
	merged.PreReplacements = append(merged.PreReplacements, def.PreReplacements...)
	merged.Aliases = append(merged.Aliases, def.Aliases...)
	merged.Replacements = append(merged.Replacements, def.Replacements...)

	for _, prefix := range tagPrefixes(tag) {
		if prefix == "default" {
			continue
		}
		lang, ok := p.Languages[prefix]
		if !ok {
			continue
		}
		merged.Settings = mergeSettings(merged.Settings, lang.Settings)
		merged.PreReplacements = append(merged.PreReplacements, lang.PreReplacements...)
		merged.Aliases = append(merged.Aliases, lang.Aliases...)
		merged.Replacements = append(merged.Replacements, lang.Replacements...)
	}
	return merged, nil
}

// tagPrefixes returns "default" followed by each hyphen-prefix of tag from
// shortest to longest, e.g. "en-us" → ["default", "en", "en-us"].
func tagPrefixes(tag string) []string {
	out := []string{"default"}
	parts := strings.Split(tag, "-")
	for i := range parts {
		out = append(out, strings.Join(parts[:i+1], "-"))
	}
	return out
}

// mergeSettings returns override unchanged: the more specific tag's
// Settings replace base as a whole. Load seeds every language file's
// Settings from DefaultSettings() before its YAML keys are applied (see
// loadLanguage), so a key omitted from a more specific file takes the
// DefaultSettings value, not the value of the parent tag's file.
func mergeSettings(base, override Settings) Settings {
	return override
}
