package prosody

import (
	"testing"

	"github.com/tgeczy/speechbox/internal/pack"
	"github.com/tgeczy/speechbox/internal/token"
)

func vowelToken(stress int) token.Token {
	return token.Token{Phoneme: &pack.PhonemeDef{Class: pack.ClassVowel}, Stress: stress}
}

func TestComputeNoGapsAtVoicedBoundaries(t *testing.T) {
	tokens := []token.Token{vowelToken(1), vowelToken(0), vowelToken(2)}
	for _, model := range []pack.PitchModel{pack.PitchEspeakToBI, pack.PitchLegacyTimeBased, pack.PitchFujisakiBartman, pack.PitchKlattHat} {
		settings := pack.DefaultSettings()
		settings.PitchModel = model
		infos := Compute(tokens, settings, 1.0, 110.0, 0.5, ".")
		for i := 1; i < len(infos); i++ {
			if infos[i].VoicePitch != infos[i-1].EndVoicePitch {
				t.Errorf("model %s: gap at boundary %d: %v != %v", model, i, infos[i].VoicePitch, infos[i-1].EndVoicePitch)
			}
		}
	}
}

func TestComputeDurationDividesByStress(t *testing.T) {
	settings := pack.DefaultSettings()
	tokens := []token.Token{vowelToken(1)}
	infos := Compute(tokens, settings, 1.0, 110, 0.5, ".")
	want := 60.0 / settings.PrimaryStressDiv
	if infos[0].DurationMs != want {
		t.Errorf("got %v want %v", infos[0].DurationMs, want)
	}
}

func TestComputeEmptyTokensReturnsEmpty(t *testing.T) {
	infos := Compute(nil, pack.DefaultSettings(), 1.0, 110, 0.5, ".")
	if len(infos) != 0 {
		t.Fatalf("expected empty, got %d", len(infos))
	}
}

func TestComputeEspeakToBIClauseTypeChangesTailContour(t *testing.T) {
	tokens := []token.Token{vowelToken(1), vowelToken(0)}
	settings := pack.DefaultSettings()
	settings.PitchModel = pack.PitchEspeakToBI

	statement := Compute(tokens, settings, 1.0, 110.0, 0.5, ".")
	question := Compute(tokens, settings, 1.0, 110.0, 0.5, "?")

	last := len(tokens) - 1
	if statement[last].EndVoicePitch == question[last].EndVoicePitch {
		t.Fatalf("expected statement and question tails to differ, both got %v", statement[last].EndVoicePitch)
	}
	if question[last].EndVoicePitch <= statement[last].EndVoicePitch {
		t.Errorf("expected question tail pitch to rise above statement tail: question=%v statement=%v",
			question[last].EndVoicePitch, statement[last].EndVoicePitch)
	}
}

func TestComputeEspeakToBIUnknownClauseTypeFallsBackToDefault(t *testing.T) {
	tokens := []token.Token{vowelToken(1), vowelToken(0)}
	settings := pack.DefaultSettings()
	settings.PitchModel = pack.PitchEspeakToBI

	unknown := Compute(tokens, settings, 1.0, 110.0, 0.5, "")
	statement := Compute(tokens, settings, 1.0, 110.0, 0.5, ".")
	last := len(tokens) - 1
	if unknown[last].EndVoicePitch != statement[last].EndVoicePitch {
		t.Errorf("expected empty clause type to fall back to \".\" region, got %v vs %v",
			unknown[last].EndVoicePitch, statement[last].EndVoicePitch)
	}
}
