package pack

import (
	"os"
	"path/filepath"
	"testing"
)

const testPhonemesYAML = `
phonemes:
  a:
    class: vowel
    cf1: 800
    cf2: 1200
    voiceAmplitude: 1.0
  p:
    class: stop
    isVoicelessStop: true
    aspirationKey: h
    burst:
      durationMs: 6
      fricationAmplitude: 0.4
  h:
    class: other
    aspirationAmplitude: 0.6
voiceProfiles:
  default:
    classScales:
      vowel:
        cf_mul: [1.0, 1.1, 1.0, 1.0, 1.0, 1.0]
        voicePitch_mul: 1.0
`

const testDefaultLangYAML = `
settings:
  stripHyphens: true
  gapMode: vowel-and-cluster
aliases:
  - from: "aa"
    to: ["a"]
`

func writeTestPack(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "phonemes.yaml"), []byte(testPhonemesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	langDir := filepath.Join(dir, "lang")
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(langDir, "default.yaml"), []byte(testDefaultLangYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadParsesPhonemesAndFields(t *testing.T) {
	lp, err := Load(writeTestPack(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, ok := lp.Phonemes["a"]
	if !ok {
		t.Fatal("missing phoneme a")
	}
	if a.Class != ClassVowel {
		t.Errorf("class = %q", a.Class)
	}
	if !a.HasField(fieldIndex["cf1"]) || a.Fields[fieldIndex["cf1"]] != 800 {
		t.Errorf("cf1 not set correctly: %+v", a.Fields[fieldIndex["cf1"]])
	}
}

func TestLoadParsesBurstParams(t *testing.T) {
	lp, err := Load(writeTestPack(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := lp.Phonemes["p"]
	if p.Burst == nil || p.Burst.DurationMs != 6 {
		t.Fatalf("burst not parsed: %+v", p.Burst)
	}
	if !p.IsVoicelessStop || p.AspirationKey != "h" {
		t.Fatalf("voiceless stop flags not parsed: %+v", p)
	}
}

func TestLoadRejectsEmptyPhonemeTable(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "phonemes.yaml"), []byte("phonemes: {}\n"), 0o644)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for empty phoneme table")
	}
}

func TestResolveLanguageFallsBackToDefault(t *testing.T) {
	lp, err := Load(writeTestPack(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lang, err := lp.ResolveLanguage("en-us")
	if err != nil {
		t.Fatalf("ResolveLanguage: %v", err)
	}
	if !lang.Settings.StripHyphens {
		t.Error("expected stripHyphens inherited from default")
	}
	if len(lang.Aliases) != 1 || lang.Aliases[0].From != "aa" {
		t.Errorf("aliases not inherited: %+v", lang.Aliases)
	}
}

func TestLoadParsesVoiceProfile(t *testing.T) {
	lp, err := Load(writeTestPack(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	vp, ok := lp.VoiceProfiles["default"]
	if !ok {
		t.Fatal("missing default voice profile")
	}
	cs, ok := vp.ClassScales[ClassVowel]
	if !ok || cs.CfMul[1] != 1.1 {
		t.Errorf("class scale not parsed: %+v", cs)
	}
}

const testTonalLangYAML = `
settings:
  stripHyphens: true
  tonalMode: true
  toneContours:
    "1":
      - atPercent: 0
        value: 55
      - atPercent: 100
        value: 55
    "4":
      - atPercent: 0
        value: 80
      - atPercent: 100
        value: 20
`

func TestLoadParsesToneContours(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "phonemes.yaml"), []byte(testPhonemesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	langDir := filepath.Join(dir, "lang")
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(langDir, "default.yaml"), []byte(testTonalLangYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	lp, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lang, err := lp.ResolveLanguage("default")
	if err != nil {
		t.Fatalf("ResolveLanguage: %v", err)
	}
	if !lang.Settings.TonalMode {
		t.Fatal("expected tonalMode true")
	}
	entries, ok := lang.Settings.ToneTable["4"]
	if !ok || len(entries) != 2 {
		t.Fatalf("tone 4 not parsed: %+v", entries)
	}
	if entries[0].AtPercent != 0 || entries[0].Value != 80 {
		t.Errorf("tone 4 first entry = %+v", entries[0])
	}
	if entries[1].AtPercent != 100 || entries[1].Value != 20 {
		t.Errorf("tone 4 last entry = %+v", entries[1])
	}
}
