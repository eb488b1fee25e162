package frame

import "testing"

func TestManagerConsecutiveNullFramesDoNotPanic(t *testing.T) {
	m := NewManager()
	m.QueueFrame(nil, nil, 1, 4, 1, true)
	m.QueueFrame(nil, nil, 1, 4, 2, false)

	for i := 0; i < 16; i++ {
		fr, _, _ := m.CurrentFrame()
		if fr != nil {
			t.Fatalf("sample %d: expected silence, got a sounding frame", i)
		}
	}
}

func TestManagerHoldsCoefficientsAcrossSilenceChain(t *testing.T) {
	m := NewManager()
	voiced := &Frame{VoiceAmplitude: 1.0, Cf1: 700, Cf2: 1200, Cf3: 2500}
	m.QueueFrame(voiced, nil, 4, 2, 1, false)
	for i := 0; i < 4; i++ {
		m.CurrentFrame()
	}

	m.QueueFrame(nil, nil, 1, 4, 2, false)
	m.QueueFrame(nil, nil, 1, 4, 3, false)

	for i := 0; i < 16; i++ {
		fr, _, _ := m.CurrentFrame()
		if fr != nil && (fr.Cf1 == 0 || fr.Cf2 == 0) {
			t.Fatalf("sample %d: held coefficients collapsed to zero unexpectedly: %+v", i, fr)
		}
	}
}

func TestManagerCrossfadesBetweenSoundingFrames(t *testing.T) {
	m := NewManager()
	a := &Frame{VoiceAmplitude: 1.0, Cf1: 700}
	b := &Frame{VoiceAmplitude: 1.0, Cf1: 900}
	m.QueueFrame(a, nil, 4, 4, 1, false)
	m.QueueFrame(b, nil, 4, 4, 2, false)

	var sawMid bool
	for i := 0; i < 16; i++ {
		fr, _, idx := m.CurrentFrame()
		if fr == nil {
			continue
		}
		if idx == 2 && fr.Cf1 > 700 && fr.Cf1 < 900 {
			sawMid = true
		}
	}
	if !sawMid {
		t.Fatal("expected an in-between Cf1 value while crossfading into frame 2")
	}
}
