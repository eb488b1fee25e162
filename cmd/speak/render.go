package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tgeczy/speechbox"
)

type renderOptions struct {
	packDir    string
	lang       string
	voice      string
	ipaText    string
	speed      float64
	pitch      float64
	inflection float64
	sampleRate int
	outPath    string
}

const renderChunkSamples = 4096

func renderToWav(opts renderOptions, logger *log.Logger) error {
	fe, err := speechbox.NewFrontend(opts.packDir)
	if err != nil {
		return fmt.Errorf("load pack: %w", err)
	}
	defer fe.Close()

	if err := fe.SetLanguage(opts.lang); err != nil {
		return fmt.Errorf("set language %q: %w", opts.lang, err)
	}
	if opts.voice != "" {
		if err := fe.SetVoiceProfile(opts.voice); err != nil {
			return fmt.Errorf("set voice profile %q: %w", opts.voice, err)
		}
	}

	player, err := speechbox.NewPlayer(opts.sampleRate)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	defer player.Close()

	if tone, err := fe.VoicingTone(); err == nil {
		player.SetVoicingTone(&tone)
	}

	frameCount := 0
	qopts := speechbox.QueueOptions{
		Speed:      opts.speed,
		BasePitchHz: opts.pitch,
		Inflection: opts.inflection,
	}
	err = fe.QueueIPA(player, opts.ipaText, qopts, func(f *speechbox.Frame, durationMs, fadeMs float64, userIndex int) {
		frameCount++
	})
	if err != nil {
		return fmt.Errorf("queue ipa: %w", err)
	}
	logger.Info("queued", "frames", frameCount)

	out, err := os.Create(opts.outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.outPath, err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, opts.sampleRate, 16, 1, 1)
	defer enc.Close()

	buf := make([]int16, renderChunkSamples)
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: opts.sampleRate},
		SourceBitDepth: 16,
	}

	total := 0
	for {
		n, err := player.Synthesize(buf)
		if err != nil {
			return fmt.Errorf("synthesize: %w", err)
		}
		if n == 0 {
			break
		}
		intBuf.Data = intBuf.Data[:0]
		for _, s := range buf[:n] {
			intBuf.Data = append(intBuf.Data, int(s))
		}
		if err := enc.Write(intBuf); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
		total += n
		if n < len(buf) {
			break
		}
	}

	logger.Info("wrote wav", "path", opts.outPath, "samples", total)
	return nil
}
