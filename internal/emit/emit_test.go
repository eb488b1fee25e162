package emit

import (
	"testing"

	"github.com/tgeczy/speechbox/internal/frame"
	"github.com/tgeczy/speechbox/internal/pack"
	"github.com/tgeczy/speechbox/internal/prosody"
	"github.com/tgeczy/speechbox/internal/token"
)

func TestEmitSilenceTokenProducesNilFrame(t *testing.T) {
	tokens := []token.Token{{Silence: true}}
	infos := []prosody.Info{{DurationMs: 40}}

	var got []*frame.Frame
	var durations []float64
	Emit(tokens, infos, Config{Settings: pack.DefaultSettings()}, 0, func(f *frame.Frame, ex *frame.FrameEx, d, fade float64, idx int) {
		got = append(got, f)
		durations = append(durations, d)
	})
	if len(got) != 1 || got[0] != nil {
		t.Fatalf("expected one nil frame, got %+v", got)
	}
	if durations[0] != 40 {
		t.Fatalf("got duration %v", durations[0])
	}
}

func TestEmitRegularTokenAppliesVoiceProfile(t *testing.T) {
	def := &pack.PhonemeDef{Class: pack.ClassVowel}
	def.SetField("cf1", 500)
	tokens := []token.Token{{Phoneme: def, Key: "a"}}
	infos := []prosody.Info{{DurationMs: 60, VoicePitch: 110, EndVoicePitch: 110}}

	vp := &pack.VoiceProfile{
		ClassScales: map[pack.Class]pack.ClassScale{
			pack.ClassVowel: func() pack.ClassScale {
				cs := pack.ClassScale{VoicePitchMul: 1}
				cs.CfMul[0] = 2.0
				for i := 1; i < 6; i++ {
					cs.CfMul[i] = 1
					cs.PfMul[i] = 1
					cs.CbMul[i] = 1
					cs.PbMul[i] = 1
				}
				cs.PfMul[0] = 1
				cs.CbMul[0] = 1
				cs.PbMul[0] = 1
				return cs
			}(),
		},
	}

	var got *frame.Frame
	Emit(tokens, infos, Config{VoiceProfile: vp, Settings: pack.DefaultSettings()}, 0, func(f *frame.Frame, ex *frame.FrameEx, d, fade float64, idx int) {
		got = f
	})
	if got == nil || got.Cf1 != 1000 {
		t.Fatalf("expected cf1 scaled to 1000, got %+v", got)
	}
}

func TestEmitDetectsVoicingTransition(t *testing.T) {
	voiced := &pack.PhonemeDef{Class: pack.ClassVowel}
	voiced.SetField("voiceAmplitude", 1.0)
	voiceless := &pack.PhonemeDef{Class: pack.ClassFricative}
	voiceless.SetField("voiceAmplitude", 0.0)

	tokens := []token.Token{{Phoneme: voiced, Key: "a"}, {Phoneme: voiceless, Key: "s"}}
	infos := []prosody.Info{{DurationMs: 60}, {DurationMs: 45}}

	var modes []int
	Emit(tokens, infos, Config{Settings: pack.DefaultSettings()}, 0, func(f *frame.Frame, ex *frame.FrameEx, d, fade float64, idx int) {
		modes = append(modes, ex.TransAmplitudeMode)
	})
	if len(modes) != 2 || modes[0] != 0 || modes[1] != 1 {
		t.Fatalf("got %v", modes)
	}
}
