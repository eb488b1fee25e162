package glottal

import (
	"testing"

	"github.com/tgeczy/speechbox/internal/dsp"
	"github.com/tgeczy/speechbox/internal/frame"
)

func TestSourceLastTurbulenceTracksGatedSignal(t *testing.T) {
	s := NewSource(22050, dsp.NewFastRandom(1))
	fr := &frame.Frame{
		VoicePitch: 110, VoiceAmplitude: 1.0, GlottalOpenQuotient: 0.4,
		AspirationAmplitude: 0.5, VoiceTurbulenceAmplitude: 1.0,
	}
	ex := frame.DefaultFrameEx()

	var sawNonZero bool
	for i := 0; i < 1000; i++ {
		out := s.Next(fr, &ex)
		turb := s.LastTurbulence()
		if turb != 0 {
			sawNonZero = true
		}
		// Turbulence only contributes a fraction of the total output, it
		// should never exceed the combined signal in magnitude by much.
		if turb != 0 && turb > out+1 {
			t.Fatalf("sample %d: turbulence %v implausibly larger than output %v", i, turb, out)
		}
	}
	if !sawNonZero {
		t.Fatal("expected turbulence to be nonzero at some point during the open phase")
	}
}

func TestSourceNilFrameIsSilence(t *testing.T) {
	s := NewSource(22050, dsp.NewFastRandom(1))
	if out := s.Next(nil, nil); out != 0 {
		t.Fatalf("expected 0 for nil frame, got %v", out)
	}
}

func TestSourceResetClearsTurbulence(t *testing.T) {
	s := NewSource(22050, dsp.NewFastRandom(1))
	fr := &frame.Frame{VoicePitch: 110, VoiceAmplitude: 1.0, AspirationAmplitude: 1.0, VoiceTurbulenceAmplitude: 1.0}
	ex := frame.DefaultFrameEx()
	for i := 0; i < 200; i++ {
		s.Next(fr, &ex)
	}
	s.Reset()
	if s.LastTurbulence() != 0 {
		t.Fatalf("expected LastTurbulence() == 0 after Reset, got %v", s.LastTurbulence())
	}
}
