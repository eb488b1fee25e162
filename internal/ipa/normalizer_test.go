package ipa

import "testing"

type fakeInventory struct {
	has     map[string]bool
	classes map[string]string
}

func (f *fakeInventory) HasPhoneme(key string) bool { return f.has[key] }
func (f *fakeInventory) ClassOf(key string) string   { return f.classes[key] }

func TestNormalizeTieBarVariant(t *testing.T) {
	got := Normalize("a͜ɪ", Pack{})
	want := "a" + string(tieBar) + "ɪ"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNormalizeStripsBracketsAndCodes(t *testing.T) {
	got := Normalize("t(foo)e|s%t", Pack{})
	if got != "test" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeStressAndLength(t *testing.T) {
	got := Normalize("'a:b,c", Pack{})
	want := string(primaryStress) + "a" + string(lengthMark) + "b" + string(secondaryStress) + "c"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNormalizeStripsAllophoneDigitsOutsideTonalMode(t *testing.T) {
	got := Normalize("a2b3", Pack{TonalMode: false})
	if got != "ab" {
		t.Fatalf("got %q", got)
	}
	got = Normalize("a2b3", Pack{TonalMode: true})
	if got != "a2b3" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("a   b\tc", Pack{})
	if got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeAliasPicksFirstPresentTarget(t *testing.T) {
	inv := &fakeInventory{has: map[string]bool{"b": true}}
	p := Pack{
		Inventory: inv,
		Aliases: []Rule{
			{From: "a", To: []string{"z", "b"}},
		},
	}
	got := Normalize("a", p)
	if got != "b" {
		t.Fatalf("got %q want b", got)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inv := &fakeInventory{has: map[string]bool{"b": true}}
	p := Pack{
		Inventory: inv,
		Aliases: []Rule{
			{From: "a", To: []string{"b"}},
		},
	}
	cases := []string{"", "a", "'a:b,c", "t(x)e|s%t_:n", "a͜ɪ"}
	for _, c := range cases {
		once := Normalize(c, p)
		twice := Normalize(once, p)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", c, once, twice)
		}
	}
}

func TestNormalizeInvalidUTF8BecomesReplacementChar(t *testing.T) {
	got := Normalize("a\xffb", Pack{})
	want := "a�b"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
