package trigger

import (
	"slices"
	"strings"
	"unicode"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// IsPhraseIn reports whether phrase occurs in text as a contiguous run of
// whole words. Matching ignores case and treats every punctuation character
// as a word separator, so "big, news!" is found in "BIG NEWS today" but
// "cat" is not found in "category". A phrase with no words never matches.
func IsPhraseIn(phrase, text string) bool {
	want := words(phrase)
	if len(want) == 0 {
		return false
	}
	have := words(text)
	for i := 0; i+len(want) <= len(have); i++ {
		if slices.Equal(have[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

// words lowercases s and splits it on punctuation and whitespace.
// Runs of separators collapse, so no empty words are produced.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || isPunct(r)
	})
}

func isPunct(r rune) bool {
	if r < unicode.MaxASCII {
		return strings.ContainsRune(asciiPunctuation, r)
	}
	return unicode.IsPunct(r)
}
