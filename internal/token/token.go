package token

import (
	"github.com/tgeczy/speechbox/internal/pack"
)

// Token is one phonetic unit produced by Build, consumed by the emit
// package to construct synthesizer frames.
type Token struct {
	Phoneme       *pack.PhonemeDef
	Key           string
	Stress        int // 0 none, 1 primary, 2 secondary
	Tone          string
	NewWord       bool
	Silence       bool
	PreStopGap    bool
	CopyAdjacent  bool
	TiedNext      bool // this token and the following one form a diphthong
	SemivowelFrom string
}

const (
	tieBar        = '͡'
	primaryStress = 'ˈ'
	secondaryStress = 'ˌ'
	lengthMark    = 'ː'
)

func isToneRune(r rune) bool {
	return (r >= '˥' && r <= '˩') || (r >= '1' && r <= '5')
}

// Build tokenizes s against lp's phoneme inventory under settings,
// performing the full insertion and post-pass pipeline from §4.7.
func Build(s string, lp *pack.LanguagePack, settings pack.Settings) []Token {
	var tokens []Token
	runes := []rune(s)

	pendingStress := 0
	newWord := true
	lastSyllableStart := -1

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ' ':
			newWord = true
			i++
			continue
		case r == primaryStress:
			pendingStress = 1
			i++
			continue
		case r == secondaryStress:
			pendingStress = 2
			i++
			continue
		case isToneRune(r):
			if lastSyllableStart >= 0 {
				tokens[lastSyllableStart].Tone += string(r)
			}
			i++
			continue
		}

		key, n := lookupPhoneme(runes, i, lp)
		if n == 0 {
			// No match: skip the codepoint rather than stall tokenization.
			i++
			continue
		}
		def := lp.Phonemes[key]
		tok := Token{Phoneme: def, Key: key, Stress: pendingStress, NewWord: newWord}
		pendingStress = 0
		newWord = false
		if def != nil && def.Class == pack.ClassVowel && tok.Stress > 0 {
			lastSyllableStart = len(tokens)
		} else if def != nil && def.Class == pack.ClassVowel {
			lastSyllableStart = len(tokens)
		}

		insertStopGapIfNeeded(&tokens, def, tok.Stress, settings)
		tokens = append(tokens, tok)
		insertPostStopAspiration(&tokens, lp, settings)
		insertVowelHiatusGap(&tokens, def)

		i += n
	}

	if settings.AutoTieDiphthongs {
		autoTieDiphthongs(tokens, lp)
	}
	copyAdjacentCorrection(tokens)
	return tokens
}

// lookupPhoneme greedily matches the longest phoneme key at position i:
// tied trigram (c1 tieBar c2), then length-marked bigram (c lengthMark),
// then a single codepoint.
func lookupPhoneme(runes []rune, i int, lp *pack.LanguagePack) (string, int) {
	if i+2 < len(runes) && runes[i+1] == tieBar {
		key := string(runes[i]) + string(tieBar) + string(runes[i+2])
		if lp.HasPhoneme(key) {
			return key, 3
		}
	}
	if i+1 < len(runes) && runes[i+1] == lengthMark {
		key := string(runes[i]) + string(lengthMark)
		if lp.HasPhoneme(key) {
			return key, 2
		}
	}
	key := string(runes[i])
	if lp.HasPhoneme(key) {
		return key, 1
	}
	return "", 0
}

func isUnstressed(stress int) bool { return stress == 0 }

// insertStopGapIfNeeded appends a silence token with PreStopGap set before
// a stop/affricate, per the configured GapMode. lastIndex is never
// advanced past the gap (the caller's loop tracks position in runes, not
// token count, so this is automatic here).
func insertStopGapIfNeeded(tokens *[]Token, def *pack.PhonemeDef, stress int, settings pack.Settings) {
	if def == nil || (def.Class != pack.ClassStop && def.Class != pack.ClassAffricate) {
		return
	}
	if !isUnstressed(stress) {
		return
	}
	switch settings.GapMode {
	case pack.GapNone:
		return
	case pack.GapAlways:
	case pack.GapAfterVowel, pack.GapVowelAndCluster:
		if len(*tokens) == 0 {
			return
		}
		prev := (*tokens)[len(*tokens)-1]
		if prev.Phoneme == nil {
			return
		}
		ok := prev.Phoneme.Class == pack.ClassVowel
		if settings.GapMode == pack.GapVowelAndCluster {
			switch prev.Phoneme.Class {
			case pack.ClassFricative, pack.ClassStop, pack.ClassLiquid:
				ok = true
			case pack.ClassNasal:
				ok = ok || settings.GapAfterNasal
			}
		}
		if !ok {
			return
		}
	default:
		return
	}
	*tokens = append(*tokens, Token{Silence: true, PreStopGap: true})
}

// insertPostStopAspiration inserts an aspiration token right after a
// voiceless stop whose AspirationKey names a phoneme in the pack. It runs
// as soon as the stop is appended, so the following phoneme is not
// checked: the token is inserted before vowels, stops, affricates and
// voiceless segments alike, and at the end of the input.
func insertPostStopAspiration(tokens *[]Token, lp *pack.LanguagePack, settings pack.Settings) {
	if !settings.PostStopAspiration || len(*tokens) == 0 {
		return
	}
	n := len(*tokens)
	cur := (*tokens)[n-1]
	if cur.Phoneme == nil || cur.Phoneme.Class != pack.ClassStop || !cur.Phoneme.IsVoicelessStop {
		return
	}
	if cur.Phoneme.AspirationKey == "" {
		return
	}
	aspDef, ok := lp.Phonemes[cur.Phoneme.AspirationKey]
	if !ok {
		return
	}
	*tokens = append(*tokens, Token{Phoneme: aspDef, Key: cur.Phoneme.AspirationKey})
}

// insertVowelHiatusGap inserts a brief silence between adjacent vowels
// within a word when the second vowel is explicitly stressed.
func insertVowelHiatusGap(tokens *[]Token, def *pack.PhonemeDef) {
	n := len(*tokens)
	if n < 2 || def == nil || def.Class != pack.ClassVowel {
		return
	}
	cur := (*tokens)[n-1]
	prev := (*tokens)[n-2]
	if cur.NewWord || prev.Phoneme == nil || prev.Phoneme.Class != pack.ClassVowel {
		return
	}
	if cur.Stress == 0 {
		return
	}
	gap := Token{Silence: true}
	*tokens = append((*tokens)[:n-1], gap, cur)
}

// autoTieDiphthongs marks a vowel followed by a high-vowel offglide within
// the same word as a tied pair, optionally remapping the offglide to its
// configured semivowel.
func autoTieDiphthongs(tokens []Token, lp *pack.LanguagePack) {
	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		if a.Phoneme == nil || a.Phoneme.Class != pack.ClassVowel {
			continue
		}
		if b.Phoneme == nil || !b.Phoneme.AutoTieOffglide || b.NewWord {
			continue
		}
		tokens[i].TiedNext = true
		if sv, ok := lp.Phonemes[b.Phoneme.OffglideSemivowel]; ok && b.Phoneme.OffglideSemivowel != "" {
			tokens[i+1].SemivowelFrom = b.Key
			tokens[i+1].Phoneme = sv
			tokens[i+1].Key = b.Phoneme.OffglideSemivowel
		}
	}
}

// copyAdjacentCorrection fills tokens flagged CopyAdjacent from the
// nearest real phoneme neighbor, preferring the following one.
func copyAdjacentCorrection(tokens []Token) {
	for i := range tokens {
		if tokens[i].Phoneme == nil || !tokens[i].Phoneme.CopyAdjacent {
			continue
		}
		if j := nearestRealPhoneme(tokens, i, 1); j >= 0 {
			tokens[i].Phoneme = tokens[j].Phoneme
			continue
		}
		if j := nearestRealPhoneme(tokens, i, -1); j >= 0 {
			tokens[i].Phoneme = tokens[j].Phoneme
		}
	}
}

func nearestRealPhoneme(tokens []Token, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(tokens); j += dir {
		if tokens[j].Phoneme != nil && !tokens[j].Phoneme.CopyAdjacent {
			return j
		}
	}
	return -1
}
