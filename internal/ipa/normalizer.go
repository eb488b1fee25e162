package ipa

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Runes over IPA punctuation this package rewrites or strips. Named so the
// pipeline steps below read like the algorithm they implement rather than a
// wall of literals.
const (
	tieBarVariant = '͜' // combining double breve below, normalized away
	tieBar        = '͡' // combining double inverted breve, the canonical tie
	primaryStress = 'ˈ'
	secondaryStress = 'ˌ'
	lengthMark    = 'ː'
	zwj           = '‍'
	zwnj          = '‌'
)

// Inventory reports whether a phoneme key exists in a language pack, used
// to pick the first viable alternative in a Rule's To list. Satisfied by
// *pack.LanguagePack without an import cycle.
type Inventory interface {
	HasPhoneme(key string) bool
	ClassOf(key string) string
}

// Condition restricts when a Rule fires. Zero value means unconditional.
type Condition struct {
	AtWordStart bool
	AtWordEnd   bool
	BeforeClass string
	AfterClass  string
}

// Rule rewrites From to the first entry of To whose key exists in the
// pack's phoneme inventory (To entries are tried in order).
type Rule struct {
	From string
	To   []string
	Cond Condition
}

// Pack is the subset of a loaded language pack the normalizer consumes.
type Pack struct {
	Inventory        Inventory
	PreReplacements  []Rule
	Aliases          []Rule
	Replacements     []Rule
	StripHyphens     bool
	TonalMode        bool
}

// Normalize runs the 12-step pipeline from raw UTF-8 IPA text to a
// canonical string over p's phoneme inventory. Invalid UTF-8 sequences
// become U+FFFD, per step 1.
func Normalize(input string, p Pack) string {
	s := toValidUTF8(input)
	s = normalizeTieBars(s)
	s = applyRules(s, p.PreReplacements, p.Inventory)
	s = stripJoiners(s)
	s = stripBracketsAndCodes(s)
	if p.StripHyphens {
		s = stripHyphens(s)
	}
	s = rewriteStressAndLength(s)
	s = rewriteSyllabicFallbacks(s)
	s = stripAllophoneDigits(s, p.TonalMode)
	s = collapseWhitespace(s)
	s = applyRules(s, sortLongestFirst(p.Aliases), p.Inventory)
	s = applyRules(s, p.Replacements, p.Inventory)
	return s
}

func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteRune('�')
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func normalizeTieBars(s string) string {
	return strings.ReplaceAll(s, string(tieBarVariant), string(tieBar))
}

func stripJoiners(s string) string {
	return strings.NewReplacer(string(zwj), "", string(zwnj), "").Replace(s)
}

func stripBracketsAndCodes(s string) string {
	var b strings.Builder
	depth := 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth > 0 {
			continue
		}
		switch r {
		case '|':
			if i+1 < len(runes) && runes[i+1] == '|' {
				i++
				b.WriteRune(' ')
			}
			continue
		case '%', '=':
			continue
		case '_':
			if i+1 < len(runes) && runes[i+1] == ':' {
				i++
			}
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	out = strings.ReplaceAll(out, "  ", " ")
	return out
}

func stripHyphens(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

func rewriteStressAndLength(s string) string {
	r := strings.NewReplacer(
		"'", string(primaryStress),
		",", string(secondaryStress),
		":", string(lengthMark),
	)
	return r.Replace(s)
}

var syllabicFallbacks = []struct{ from, to string }{
	{"l̩", "əl"},
	{"ə͡l", "əl"},
	{"ʊ͡l", "əl"},
}

func rewriteSyllabicFallbacks(s string) string {
	for _, f := range syllabicFallbacks {
		s = strings.ReplaceAll(s, f.from, f.to)
	}
	return s
}

func stripAllophoneDigits(s string, tonalMode bool) string {
	var b strings.Builder
	for _, r := range s {
		if r == '2' && !tonalMode {
			continue
		}
		if r >= '1' && r <= '5' && !tonalMode {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func sortLongestFirst(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].From) > utf8.RuneCountInString(out[j].From)
	})
	return out
}

// applyRules scans s left to right, and at each position tries every rule
// whose From matches (tie bars matched leniently: a pattern containing a
// tie bar also matches the same text without it) and whose Cond is
// satisfied, replacing with the first To alternative present in inv.
func applyRules(s string, rules []Rule, inv Inventory) string {
	if len(rules) == 0 {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); {
		matched := false
		for _, rule := range rules {
			if target, n, ok := matchRule(runes, i, rule, inv); ok {
				if !condHolds(runes, i, i+n, rule.Cond, inv) {
					continue
				}
				b.WriteString(target)
				i += n
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

// matchRule tries to match rule.From at position i, first literally then
// with tie bars stripped from both pattern and candidate text (lenient tie
// matching), and returns the chosen replacement plus consumed rune count.
func matchRule(runes []rune, i int, rule Rule, inv Inventory) (string, int, bool) {
	from := []rune(rule.From)
	if n, ok := runesMatch(runes, i, from); ok {
		if target, ok := chooseTarget(rule.To, inv); ok {
			return target, n, true
		}
	}
	if strings.ContainsRune(rule.From, tieBar) {
		bare := []rune(strings.ReplaceAll(rule.From, string(tieBar), ""))
		if n, ok := runesMatch(runes, i, bare); ok {
			if target, ok := chooseTarget(rule.To, inv); ok {
				return target, n, true
			}
		}
	}
	return "", 0, false
}

func runesMatch(runes []rune, i int, pattern []rune) (int, bool) {
	if i+len(pattern) > len(runes) {
		return 0, false
	}
	for k, r := range pattern {
		if runes[i+k] != r {
			return 0, false
		}
	}
	return len(pattern), true
}

func chooseTarget(to []string, inv Inventory) (string, bool) {
	if len(to) == 0 {
		return "", false
	}
	if inv == nil {
		return to[0], true
	}
	for _, t := range to {
		if inv.HasPhoneme(t) {
			return t, true
		}
	}
	return to[len(to)-1], true
}

func condHolds(runes []rune, start, end int, c Condition, inv Inventory) bool {
	if c.AtWordStart && !atWordStart(runes, start) {
		return false
	}
	if c.AtWordEnd && !atWordEnd(runes, end) {
		return false
	}
	if c.BeforeClass != "" {
		r, ok := neighborClassRune(runes, end, 1)
		if !ok || inv == nil || inv.ClassOf(string(r)) != c.BeforeClass {
			return false
		}
	}
	if c.AfterClass != "" {
		r, ok := neighborClassRune(runes, start, -1)
		if !ok || inv == nil || inv.ClassOf(string(r)) != c.AfterClass {
			return false
		}
	}
	return true
}

// neighborClassRune returns the nearest non-stress-mark rune at or beyond
// boundary in the given direction (+1 forward, -1 backward), used for
// beforeClass/afterClass conditions. Class membership is checked over
// single codepoints: stress marks are transparent, matching §4.6.
func neighborClassRune(runes []rune, boundary, dir int) (rune, bool) {
	i := boundary
	if dir < 0 {
		i--
	}
	for i >= 0 && i < len(runes) {
		if !isStressOrLength(runes[i]) {
			return runes[i], true
		}
		i += dir
	}
	return 0, false
}

func atWordStart(runes []rune, i int) bool {
	j := i - 1
	for j >= 0 && isStressOrLength(runes[j]) {
		j--
	}
	return j < 0 || runes[j] == ' '
}

func atWordEnd(runes []rune, i int) bool {
	j := i
	for j < len(runes) && isStressOrLength(runes[j]) {
		j++
	}
	return j >= len(runes) || runes[j] == ' '
}

func isStressOrLength(r rune) bool {
	return r == primaryStress || r == secondaryStress || r == lengthMark
}
