package pack

import "github.com/tgeczy/speechbox/internal/frame"

// Class categorizes a phoneme for token-insertion and prosody rules
// (gap insertion, aspiration, timing classes, trajectory-limit exemptions).
type Class string

const (
	ClassVowel     Class = "vowel"
	ClassStop      Class = "stop"
	ClassAffricate Class = "affricate"
	ClassFricative Class = "fricative"
	ClassNasal     Class = "nasal"
	ClassLiquid    Class = "liquid"
	ClassSemivowel Class = "semivowel"
	ClassTap       Class = "tap"
	ClassTrill     Class = "trill"
	ClassSilence   Class = "silence"
	ClassOther     Class = "other"
)

// fieldIndex maps Frame/FrameEx field names, as they appear in phonemes.yaml,
// to their position in frame.Frame.Fields()/SetFields(). Kept alongside
// frame.Frame rather than duplicated, since the pack only ever needs to set
// a sparse subset of the 47 fields.
var fieldIndex = map[string]int{
	"voicePitch": 0, "endVoicePitch": 1, "vibratoPitchOffset": 2, "vibratoSpeed": 3,
	"voiceAmplitude": 4, "aspirationAmplitude": 5, "voiceTurbulenceAmplitude": 6, "glottalOpenQuotient": 7,
	"cf1": 8, "cf2": 9, "cf3": 10, "cf4": 11, "cf5": 12, "cf6": 13,
	"cb1": 14, "cb2": 15, "cb3": 16, "cb4": 17, "cb5": 18, "cb6": 19,
	"cfN0": 20, "cbN0": 21, "cfNP": 22, "cbNP": 23, "caNP": 24,
	"fricationAmplitude": 25,
	"pf1": 26, "pf2": 27, "pf3": 28, "pf4": 29, "pf5": 30, "pf6": 31,
	"pb1": 32, "pb2": 33, "pb3": 34, "pb4": 35, "pb5": 36, "pb6": 37,
	"pa1": 38, "pa2": 39, "pa3": 40, "pa4": 41, "pa5": 42, "pa6": 43,
	"parallelBypass": 44, "preFormantGain": 45, "outputGain": 46,
}

// BurstParams describes the short release transient a stop or affricate
// phoneme inserts before its following segment: a brief frication pulse at
// the consonant's place of articulation.
type BurstParams struct {
	DurationMs         float64
	FricationAmplitude float64
	Cf3, Cf4           float64
}

// VoiceBarParams describes the low-frequency voicing murmur present during
// the closure of a voiced stop.
type VoiceBarParams struct {
	DurationMs     float64
	VoiceAmplitude float64
}

// PhonemeDef is one entry of a LanguagePack's phoneme inventory: a sparse
// overlay of Frame/FrameEx fields (only FieldSet/ExSet bits are
// authoritative) plus classification flags consumed by the token builder,
// prosody model and frame emitter.
type PhonemeDef struct {
	Key   string
	Class Class

	Fields   [frame.NumFields]float64
	FieldSet uint64 // bit i set => Fields[i] is an explicit override

	Ex    frame.FrameEx
	ExSet uint8 // bits: 0 creak 1 breath 2 jitter 3 shimmer 4 sharpness

	IsVoicelessStop bool
	AspirationKey   string // e.g. "h"; empty disables post-stop aspiration insertion

	Burst    *BurstParams
	VoiceBar *VoiceBarParams

	AutoTieOffglide    bool // participates in auto-tie diphthong formation
	OffglideSemivowel  string
	CopyAdjacent       bool // inherits unset fields from nearest real neighbor
	TrillCapable       bool
}

const (
	exBitCreak = 1 << iota
	exBitBreath
	exBitJitter
	exBitShimmer
	exBitSharpness
)

// SetField writes value into the field named by the phonemes.yaml key
// (lowerCamel Frame field name) and marks it present. Unknown names are
// ignored: packs may carry forward-compatible keys a given DSP version
// doesn't understand yet.
func (p *PhonemeDef) SetField(name string, value float64) {
	if i, ok := fieldIndex[name]; ok {
		p.Fields[i] = value
		p.FieldSet |= 1 << uint(i)
	}
}

// HasField reports whether bit i of FieldSet is set.
func (p *PhonemeDef) HasField(i int) bool {
	return p.FieldSet&(1<<uint(i)) != 0
}

// ApplyTo overwrites f's fields with this phoneme's explicit fields,
// leaving the others as they are, and returns FieldSet, the mask of which
// fields were written.
func (p *PhonemeDef) ApplyTo(f *frame.Frame) uint64 {
	v := f.Fields()
	for i := 0; i < frame.NumFields; i++ {
		if p.HasField(i) {
			v[i] = p.Fields[i]
		}
	}
	f.SetFields(v)
	return p.FieldSet
}
