// errors.go defines public error types for the speechbox package.

package speechbox

import "errors"

// Public error types for player and frontend operations.
var (
	// ErrInvalidSampleRate indicates an unsupported sample rate.
	ErrInvalidSampleRate = errors.New("speechbox: invalid sample rate")

	// ErrPlayerClosed indicates an operation on a Player after Close.
	ErrPlayerClosed = errors.New("speechbox: player closed")

	// ErrFrontendClosed indicates an operation on a Frontend after Close.
	ErrFrontendClosed = errors.New("speechbox: frontend closed")

	// ErrUnknownLanguage indicates SetLanguage was called with a tag that
	// resolves to no language entry (not even "default").
	ErrUnknownLanguage = errors.New("speechbox: unknown language tag")

	// ErrUnknownVoiceProfile indicates SetVoiceProfile was called with a
	// name absent from the loaded pack's voiceProfiles table.
	ErrUnknownVoiceProfile = errors.New("speechbox: unknown voice profile")

	// ErrNoLanguageSelected indicates QueueIPA was called before any
	// successful SetLanguage call.
	ErrNoLanguageSelected = errors.New("speechbox: no language selected")
)

// validSampleRate returns true if the sample rate is one the resonator and
// filter designs in internal/dsp have been tuned against.
func validSampleRate(sr int) bool {
	switch sr {
	case 8000, 11025, 16000, 22050, 24000, 32000, 44100, 48000:
		return true
	default:
		return false
	}
}
