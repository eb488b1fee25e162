// Package ipa normalizes raw UTF-8 IPA transcription text into a canonical
// UTF-32 form over a language pack's phoneme inventory, ready for
// tokenization. Normalization is pack-driven: alias tables, replacement
// rules and stress/length rewrites all come from the loaded pack, not from
// hardcoded phoneme knowledge.
package ipa
