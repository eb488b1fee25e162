package speechbox

import (
	"errors"
	"testing"
	"time"
)

func TestNewPlayer_ValidSampleRates(t *testing.T) {
	rates := []int{8000, 11025, 16000, 22050, 24000, 32000, 44100, 48000}
	for _, sr := range rates {
		p, err := NewPlayer(sr)
		if err != nil {
			t.Fatalf("NewPlayer(%d) unexpected error: %v", sr, err)
		}
		if p == nil {
			t.Fatalf("NewPlayer(%d) returned nil player", sr)
		}
	}
}

func TestNewPlayer_InvalidSampleRate(t *testing.T) {
	_, err := NewPlayer(44101)
	if !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("got error %v, want ErrInvalidSampleRate", err)
	}
}

func TestPlayer_SynthesizeEmptyQueueProducesNothing(t *testing.T) {
	p, err := NewPlayer(22050)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]int16, 64)
	n, err := p.Synthesize(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("got %d samples from an empty queue, want 0", n)
	}
}

func TestPlayer_QueueFrameProducesExpectedSampleCount(t *testing.T) {
	p, err := NewPlayer(22050)
	if err != nil {
		t.Fatal(err)
	}
	f := &Frame{VoiceAmplitude: 1.0, VoicePitch: 110, EndVoicePitch: 110, Cf1: 700, Cf2: 1200, Cf3: 2500}
	p.QueueFrame(f, 50*time.Millisecond, 4*time.Millisecond, 1, false)

	buf := make([]int16, 4096)
	total := 0
	for {
		n, err := p.Synthesize(buf)
		if err != nil {
			t.Fatal(err)
		}
		total += n
		if n < len(buf) {
			break
		}
	}
	// 50ms at 22050Hz is ~1102 samples; the fade-to-silence tail adds a few
	// more. Assert a generous lower bound rather than an exact count.
	if total < 900 {
		t.Fatalf("got %d samples, want at least 900", total)
	}
}

func TestPlayer_LastIndexTracksActiveFrame(t *testing.T) {
	p, err := NewPlayer(22050)
	if err != nil {
		t.Fatal(err)
	}
	f := &Frame{VoiceAmplitude: 1.0, VoicePitch: 110, EndVoicePitch: 110}
	p.QueueFrame(f, 10*time.Millisecond, 2*time.Millisecond, 7, false)

	buf := make([]int16, 1024)
	p.Synthesize(buf)
	if got := p.LastIndex(); got != 7 {
		t.Fatalf("LastIndex() = %d, want 7", got)
	}
}

func TestPlayer_ClosedRejectsOperations(t *testing.T) {
	p, err := NewPlayer(22050)
	if err != nil {
		t.Fatal(err)
	}
	p.Close()

	buf := make([]int16, 16)
	if _, err := p.Synthesize(buf); !errors.Is(err, ErrPlayerClosed) {
		t.Fatalf("Synthesize after Close: got %v, want ErrPlayerClosed", err)
	}
}

func TestPlayer_VoicingToneRoundTrip(t *testing.T) {
	p, err := NewPlayer(22050)
	if err != nil {
		t.Fatal(err)
	}
	tone := p.VoicingTone()
	tone.HighShelfGainDb = 8.0
	p.SetVoicingTone(&tone)

	got := p.VoicingTone()
	if got.HighShelfGainDb != 8.0 {
		t.Fatalf("HighShelfGainDb = %v, want 8.0", got.HighShelfGainDb)
	}
}

func TestDSPVersion(t *testing.T) {
	if v := DSPVersion(); v == 0 {
		t.Fatal("DSPVersion() returned 0")
	}
}
