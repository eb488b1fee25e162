// Package emit turns a token sequence plus its computed prosody into the
// (frame, frameEx, durationMs, fadeMs, userIndex) tuples a Player consumes:
// silence/closure handling, trill micro-frame expansion, dense frame
// construction with voice-profile scaling, trajectory limiting, and
// FrameEx mixing.
package emit
