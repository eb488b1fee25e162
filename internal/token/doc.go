// Package token walks a normalized IPA string and builds the token
// sequence FrameEmitter consumes: phoneme lookups, stress marks, tone
// strings, and the stop-gap/aspiration/hiatus insertions and post-passes
// described in the specification's TokenBuilder section.
package token
