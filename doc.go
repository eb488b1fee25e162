// Package speechbox implements a formant (Klatt-style cascade/parallel)
// speech synthesizer in pure Go.
//
// Synthesis runs in two layers. A Player accepts pre-built Frame records
// — 47-field resonator/source parameter sets — and renders them to PCM
// sample-by-sample, crossfading between queued frames. A Frontend sits on
// top of that and turns IPA transcription text into the Frame sequence a
// Player consumes, driven by a language pack of phoneme definitions,
// normalization rules and prosody settings.
//
// # Frame-based rendering
//
// A Player owns its own resonator banks, glottal source and frame queue;
// it is not safe for concurrent use by multiple goroutines, but distinct
// Players run independently. QueueFrame/QueueFrameEx enqueue one frame at
// a time; Synthesize pulls from the queue, crossfading over each frame's
// configured fade window, and produces as many samples as the queue has
// available.
//
// # Text-to-frame frontend
//
// A Frontend loads a language pack directory once and can drive any
// number of Players. QueueIPA normalizes the input IPA text, tokenizes it,
// computes timing and pitch, and emits frames through a callback — it
// never talks to a Player's internals directly, so callers remain free to
// queue synthesized frames of their own alongside frontend-produced ones.
package speechbox
