package dsp

import (
	"math"
	"testing"
)

func TestResonatorBIBOStable(t *testing.T) {
	r := NewResonator(22050)
	var out float64
	for i := 0; i < 5000; i++ {
		impulse := 0.0
		if i == 0 {
			impulse = 1.0
		}
		out = r.Resonate(impulse, 700, 90, true)
		if math.IsNaN(out) || math.IsInf(out, 0) {
			t.Fatalf("sample %d: got %v", i, out)
		}
		if math.Abs(out) > 1e6 {
			t.Fatalf("sample %d: unbounded output %v", i, out)
		}
	}
}

func TestResonatorDisabledOnInvalidParams(t *testing.T) {
	r := NewResonator(22050)
	out := r.Resonate(1.0, math.NaN(), 90, true)
	if out != 1.0 {
		t.Fatalf("expected passthrough on NaN freq, got %v", out)
	}
}

func TestFadeValueClampsNonFinite(t *testing.T) {
	if v := FadeValue(math.NaN(), 5, 0.5); v != 5 {
		t.Fatalf("got %v, want 5", v)
	}
	if v := FadeValue(1, 3, 0.5); v != 2 {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	d := NewDCBlocker(0.9995)
	var last float64
	for i := 0; i < 10000; i++ {
		last = d.Process(1.0)
	}
	if math.Abs(last) > 0.01 {
		t.Fatalf("DC offset not removed: %v", last)
	}
}

func TestFastRandomDeterministic(t *testing.T) {
	a := NewFastRandom(98765)
	b := NewFastRandom(98765)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("same seed produced divergent sequences at step %d", i)
		}
	}
}

func TestAsymmetricSmootherAsymmetry(t *testing.T) {
	s := NewAsymmetricSmoother(22050, 1.0, 50.0)
	s.Process(0)
	up := s.Process(1.0)
	s2 := NewAsymmetricSmoother(22050, 1.0, 50.0)
	s2.Process(1.0)
	down := s2.Process(0.0)
	if up < 1-down {
		t.Fatalf("expected faster attack than release: attack step=%v release step=%v", up, 1-down)
	}
}
