package token

import (
	"testing"

	"github.com/tgeczy/speechbox/internal/pack"
)

func testPack() *pack.LanguagePack {
	return &pack.LanguagePack{
		Phonemes: map[string]*pack.PhonemeDef{
			"a": {Key: "a", Class: pack.ClassVowel},
			"p": {Key: "p", Class: pack.ClassStop, IsVoicelessStop: true, AspirationKey: "h"},
			"h": {Key: "h", Class: pack.ClassOther},
		},
	}
}

func TestBuildVoicelessStopPlusVowelInsertsGapAndAspiration(t *testing.T) {
	lp := testPack()
	settings := pack.DefaultSettings()
	settings.GapMode = pack.GapAlways
	tokens := Build("pa", lp, settings)

	var keys []string
	for _, tok := range tokens {
		if tok.Silence {
			keys = append(keys, "<gap>")
			continue
		}
		keys = append(keys, tok.Key)
	}
	want := []string{"<gap>", "p", "h", "a"}
	if len(keys) != len(want) {
		t.Fatalf("got %v want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v want %v", keys, want)
		}
	}
}

func TestBuildEmptyInputProducesNoTokens(t *testing.T) {
	lp := testPack()
	tokens := Build("", lp, pack.DefaultSettings())
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %d", len(tokens))
	}
}

func TestBuildSingleVowelCarriesStress(t *testing.T) {
	lp := testPack()
	tokens := Build("ˈa", lp, pack.DefaultSettings())
	if len(tokens) != 1 || tokens[0].Key != "a" || tokens[0].Stress != 1 {
		t.Fatalf("got %+v", tokens)
	}
}

func TestBuildGapModeNoneSkipsGap(t *testing.T) {
	lp := testPack()
	settings := pack.DefaultSettings()
	settings.GapMode = pack.GapNone
	settings.PostStopAspiration = false
	tokens := Build("pa", lp, settings)
	if len(tokens) != 2 || tokens[0].Key != "p" || tokens[1].Key != "a" {
		t.Fatalf("got %+v", tokens)
	}
}
