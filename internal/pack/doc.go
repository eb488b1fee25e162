// Package pack loads language packs: the phoneme inventory, per-language
// overrides, voice profiles and stress dictionaries that drive the ipa,
// token, prosody and emit packages. A LanguagePack is immutable after
// Load and safe to share by reference across many Frontend instances.
package pack
