package pack

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tgeczy/speechbox/internal/frame"
	"github.com/tgeczy/speechbox/internal/ipa"
	"gopkg.in/yaml.v3"
)

// Load reads a pack directory (phonemes.yaml, lang/*.yaml, dict/*.tsv) and
// returns an immutable LanguagePack. An empty phoneme table is treated as
// a load failure, not a silently-empty pack, since nothing downstream can
// synthesize without it.
func Load(dir string) (*LanguagePack, error) {
	phonemesPath := filepath.Join(dir, "phonemes.yaml")
	raw, err := os.ReadFile(phonemesPath)
	if err != nil {
		return nil, fmt.Errorf("pack: reading %s: %w", phonemesPath, err)
	}

	var top rawTop
	if err := yaml.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("pack: parsing %s: %w", phonemesPath, err)
	}
	if len(top.Phonemes) == 0 {
		return nil, fmt.Errorf("pack: %s defines no phonemes", phonemesPath)
	}

	lp := &LanguagePack{
		Phonemes:      map[string]*PhonemeDef{},
		VoiceProfiles: map[string]*VoiceProfile{},
		Languages:     map[string]*Language{},
		StressDicts:   map[string]map[string]int{},
	}
	for key, rp := range top.Phonemes {
		lp.Phonemes[key] = rp.toPhonemeDef(key)
	}
	for name, rvp := range top.VoiceProfiles {
		lp.VoiceProfiles[name] = rvp.toVoiceProfile(name)
	}

	langDir := filepath.Join(dir, "lang")
	entries, _ := os.ReadDir(langDir)
	foundDefault := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		tag := strings.TrimSuffix(e.Name(), ".yaml")
		lang, err := loadLanguage(filepath.Join(langDir, e.Name()), tag, DefaultSettings())
		if err != nil {
			return nil, err
		}
		lp.Languages[tag] = lang
		if tag == "default" {
			foundDefault = true
		}
	}
	if !foundDefault {
		lp.Languages["default"] = &Language{Tag: "default", Settings: DefaultSettings()}
	}

	dictDir := filepath.Join(dir, "dict")
	dictEntries, _ := os.ReadDir(dictDir)
	for _, e := range dictEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "-stress.tsv") {
			continue
		}
		tag := strings.TrimSuffix(e.Name(), "-stress.tsv")
		m, err := loadStressDict(filepath.Join(dictDir, e.Name()))
		if err != nil {
			return nil, err
		}
		lp.StressDicts[tag] = m
	}

	return lp, nil
}

func loadStressDict(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pack: reading %s: %w", path, err)
	}
	defer f.Close()

	m := map[string]int{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		m[parts[0]] = n
	}
	return m, scanner.Err()
}

// --- raw YAML shapes ---

type rawTop struct {
	Phonemes      map[string]rawPhoneme      `yaml:"phonemes"`
	VoiceProfiles map[string]rawVoiceProfile `yaml:"voiceProfiles"`
}

type rawPhoneme struct {
	Class             string             `yaml:"class"`
	IsVoicelessStop   bool               `yaml:"isVoicelessStop"`
	AspirationKey     string             `yaml:"aspirationKey"`
	AutoTieOffglide   bool               `yaml:"autoTieOffglide"`
	OffglideSemivowel string             `yaml:"offglideSemivowel"`
	CopyAdjacent      bool               `yaml:"copyAdjacent"`
	TrillCapable      bool               `yaml:"trillCapable"`
	Burst             *rawBurst          `yaml:"burst"`
	VoiceBar          *rawVoiceBar       `yaml:"voiceBar"`
	FrameEx           map[string]float64 `yaml:"frameEx"`
	Fields            map[string]float64 `yaml:",inline"`
}

type rawBurst struct {
	DurationMs         float64 `yaml:"durationMs"`
	FricationAmplitude float64 `yaml:"fricationAmplitude"`
	Cf3                float64 `yaml:"cf3"`
	Cf4                float64 `yaml:"cf4"`
}

type rawVoiceBar struct {
	DurationMs     float64 `yaml:"durationMs"`
	VoiceAmplitude float64 `yaml:"voiceAmplitude"`
}

func (rp rawPhoneme) toPhonemeDef(key string) *PhonemeDef {
	p := &PhonemeDef{
		Key:               key,
		Class:             Class(rp.Class),
		IsVoicelessStop:   rp.IsVoicelessStop,
		AspirationKey:     rp.AspirationKey,
		AutoTieOffglide:   rp.AutoTieOffglide,
		OffglideSemivowel: rp.OffglideSemivowel,
		CopyAdjacent:      rp.CopyAdjacent,
		TrillCapable:      rp.TrillCapable,
	}
	for name, v := range rp.Fields {
		p.SetField(name, v)
	}
	if rp.Burst != nil {
		p.Burst = &BurstParams{
			DurationMs:         rp.Burst.DurationMs,
			FricationAmplitude: rp.Burst.FricationAmplitude,
			Cf3:                rp.Burst.Cf3,
			Cf4:                rp.Burst.Cf4,
		}
	}
	if rp.VoiceBar != nil {
		p.VoiceBar = &VoiceBarParams{
			DurationMs:     rp.VoiceBar.DurationMs,
			VoiceAmplitude: rp.VoiceBar.VoiceAmplitude,
		}
	}
	for name, v := range rp.FrameEx {
		applyExField(&p.Ex, &p.ExSet, name, v)
	}
	return p
}

func applyExField(ex *frame.FrameEx, set *uint8, name string, v float64) {
	switch name {
	case "creakiness":
		ex.Creakiness = v
		*set |= exBitCreak
	case "breathiness":
		ex.Breathiness = v
		*set |= exBitBreath
	case "jitter":
		ex.Jitter = v
		*set |= exBitJitter
	case "shimmer":
		ex.Shimmer = v
		*set |= exBitShimmer
	case "sharpness":
		ex.Sharpness = v
		*set |= exBitSharpness
	}
}

type rawVoiceProfile struct {
	ClassScales      map[string]rawClassScale     `yaml:"classScales"`
	PhonemeOverrides map[string]map[string]float64 `yaml:"phonemeOverrides"`
	VoicingTone      map[string]float64            `yaml:"voicingTone"`
}

type rawClassScale struct {
	CfMul         []float64 `yaml:"cf_mul"`
	PfMul         []float64 `yaml:"pf_mul"`
	CbMul         []float64 `yaml:"cb_mul"`
	PbMul         []float64 `yaml:"pb_mul"`
	VoicePitchMul float64   `yaml:"voicePitch_mul"`
}

func (rvp rawVoiceProfile) toVoiceProfile(name string) *VoiceProfile {
	vp := &VoiceProfile{
		Name:             name,
		ClassScales:      map[Class]ClassScale{},
		PhonemeOverrides: rvp.PhonemeOverrides,
	}
	for cls, rcs := range rvp.ClassScales {
		cs := neutralClassScale()
		copyInto(cs.CfMul[:], rcs.CfMul)
		copyInto(cs.PfMul[:], rcs.PfMul)
		copyInto(cs.CbMul[:], rcs.CbMul)
		copyInto(cs.PbMul[:], rcs.PbMul)
		if rcs.VoicePitchMul != 0 {
			cs.VoicePitchMul = rcs.VoicePitchMul
		}
		vp.ClassScales[Class(cls)] = cs
	}
	return vp
}

func copyInto(dst []float64, src []float64) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		if src[i] != 0 {
			dst[i] = src[i]
		}
	}
}

type rawLanguage struct {
	Settings        rawSettings            `yaml:"settings"`
	PreReplacements []rawRule              `yaml:"preReplacements"`
	Aliases         []rawRule              `yaml:"aliases"`
	Replacements    []rawRule              `yaml:"replacements"`
}

type rawSettings struct {
	StripHyphens               *bool    `yaml:"stripHyphens"`
	TonalMode                  *bool    `yaml:"tonalMode"`
	GapMode                    *string  `yaml:"gapMode"`
	GapAfterNasal              *bool    `yaml:"gapAfterNasal"`
	PostStopAspiration         *bool    `yaml:"postStopAspiration"`
	AutoTieDiphthongs          *bool    `yaml:"autoTieDiphthongs"`
	TrillModulationMs          *float64 `yaml:"trillModulationMs"`
	PitchModel                 *string  `yaml:"pitchModel"`
	LegacyPitchInflectionScale *float64 `yaml:"legacyPitchInflectionScale"`
	PrimaryStressDiv           *float64 `yaml:"primaryStressDiv"`
	SecondaryStressDiv         *float64 `yaml:"secondaryStressDiv"`
	LengthenedScale            *float64 `yaml:"lengthenedScale"`
	TrajectoryLimiting         *bool    `yaml:"trajectoryLimiting"`
	TrajectoryRateHzPerMs      *float64 `yaml:"trajectoryRateHzPerMs"`
	ToneContours               map[string][]rawToneEntry `yaml:"toneContours"`
	Intonation                 map[string]rawIntonationRegion `yaml:"intonation"`
}

// rawIntonationRegion is one clause type's entry in the language YAML's
// intonation table (see pack.IntonationRegion).
type rawIntonationRegion struct {
	PreHead float64 `yaml:"preHead"`
	Head    float64 `yaml:"head"`
	Nucleus float64 `yaml:"nucleus"`
	Tail    float64 `yaml:"tail"`
}

// rawToneEntry is one point of a toneContours entry in the language YAML:
// either an absolute percent-scale pitch target or an offset from the
// token's base pitch, at a given percent of the tone's voiced span.
type rawToneEntry struct {
	AtPercent float64 `yaml:"atPercent"`
	Value     float64 `yaml:"value"`
	Relative  bool    `yaml:"relative"`
}

type rawRule struct {
	From        string   `yaml:"from"`
	To          []string `yaml:"to"`
	AtWordStart bool     `yaml:"atWordStart"`
	AtWordEnd   bool     `yaml:"atWordEnd"`
	BeforeClass string   `yaml:"beforeClass"`
	AfterClass  string   `yaml:"afterClass"`
}

func (r rawRule) toRule() ipa.Rule {
	return ipa.Rule{
		From: r.From,
		To:   r.To,
		Cond: ipa.Condition{
			AtWordStart: r.AtWordStart,
			AtWordEnd:   r.AtWordEnd,
			BeforeClass: r.BeforeClass,
			AfterClass:  r.AfterClass,
		},
	}
}

// toToneTable converts the raw toneContours YAML section into the
// ToneEntry slices prosody.applyToneOverlay interpolates across, sorting
// each contour by AtPercent so later code can assume monotonic input.
func toToneTable(raw map[string][]rawToneEntry) map[string][]ToneEntry {
	out := make(map[string][]ToneEntry, len(raw))
	for tone, entries := range raw {
		converted := make([]ToneEntry, len(entries))
		for i, e := range entries {
			converted[i] = ToneEntry{AtPercent: e.AtPercent, Value: e.Value, Relative: e.Relative}
		}
		sort.Slice(converted, func(i, j int) bool { return converted[i].AtPercent < converted[j].AtPercent })
		out[tone] = converted
	}
	return out
}

func loadLanguage(path, tag string, inherited Settings) (*Language, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pack: reading %s: %w", path, err)
	}
	var rl rawLanguage
	if err := yaml.Unmarshal(raw, &rl); err != nil {
		return nil, fmt.Errorf("pack: parsing %s: %w", path, err)
	}

	settings := inherited
	s := rl.Settings
	if s.StripHyphens != nil {
		settings.StripHyphens = *s.StripHyphens
	}
	if s.TonalMode != nil {
		settings.TonalMode = *s.TonalMode
	}
	if s.GapMode != nil {
		settings.GapMode = GapMode(*s.GapMode)
	}
	if s.GapAfterNasal != nil {
		settings.GapAfterNasal = *s.GapAfterNasal
	}
	if s.PostStopAspiration != nil {
		settings.PostStopAspiration = *s.PostStopAspiration
	}
	if s.AutoTieDiphthongs != nil {
		settings.AutoTieDiphthongs = *s.AutoTieDiphthongs
	}
	if s.TrillModulationMs != nil {
		settings.TrillModulationMs = *s.TrillModulationMs
	}
	if s.PitchModel != nil {
		settings.PitchModel = PitchModel(*s.PitchModel)
	}
	if s.LegacyPitchInflectionScale != nil {
		settings.LegacyPitchInflectionScale = *s.LegacyPitchInflectionScale
	}
	if s.PrimaryStressDiv != nil {
		settings.PrimaryStressDiv = *s.PrimaryStressDiv
	}
	if s.SecondaryStressDiv != nil {
		settings.SecondaryStressDiv = *s.SecondaryStressDiv
	}
	if s.LengthenedScale != nil {
		settings.LengthenedScale = *s.LengthenedScale
	}
	if s.TrajectoryLimiting != nil {
		settings.TrajectoryLimiting = *s.TrajectoryLimiting
	}
	if s.TrajectoryRateHzPerMs != nil {
		settings.TrajectoryRateHzPerMs = *s.TrajectoryRateHzPerMs
	}
	if len(s.ToneContours) > 0 {
		settings.ToneTable = toToneTable(s.ToneContours)
	}
	if len(s.Intonation) > 0 {
		table := make(map[string]IntonationRegion, len(s.Intonation))
		for clause, r := range s.Intonation {
			table[clause] = IntonationRegion{PreHead: r.PreHead, Head: r.Head, Nucleus: r.Nucleus, Tail: r.Tail}
		}
		settings.IntonationTable = table
	}

	lang := &Language{Tag: tag, Settings: settings}
	for _, r := range rl.PreReplacements {
		lang.PreReplacements = append(lang.PreReplacements, r.toRule())
	}
	for _, r := range rl.Aliases {
		lang.Aliases = append(lang.Aliases, r.toRule())
	}
	for _, r := range rl.Replacements {
		lang.Replacements = append(lang.Replacements, r.toRule())
	}
	return lang, nil
}

// NormalizerPack builds the ipa.Pack view of lang for use with ipa.Normalize.
func (lp *LanguagePack) NormalizerPack(lang *Language) ipa.Pack {
	return ipa.Pack{
		Inventory:       lp,
		PreReplacements: lang.PreReplacements,
		Aliases:         lang.Aliases,
		Replacements:    lang.Replacements,
		StripHyphens:    lang.Settings.StripHyphens,
		TonalMode:       lang.Settings.TonalMode,
	}
}
