// Package tokenizer splits free text into the atomic tokens used for span
// alignment and BIO labeling.
//
// The grammar is an ordered alternation. At each position the first
// alternative that matches wins, so structured values (secret keys, money,
// percentages) are kept whole before generic word and number splitting is
// tried. Changing the order changes every downstream span and label, so the
// pattern is treated as a data format.
package tokenizer

import "regexp"

// Pattern is the token grammar, in priority order:
//
//  1. secret-key literal        sk-<alnum>
//  2. currency-unit markers     S$ SGD
//  3. bare currency symbol      $
//  4. percentage                12%
//  5. number with magnitude     12  12.5  12k  3M
//  6. word                      letters with -/_ joined alnum segments
//  7. bare integer
//  8. any other single character that is neither space nor word character
//
// Digits, letters and spaces follow Unicode classes for the catch-all rule
// so that no non-space character outside a word is ever dropped.
const Pattern = `sk-[A-Za-z0-9]+` +
	`|S\$|SGD` +
	`|\$` +
	`|\p{Nd}+%` +
	`|\p{Nd}+(?:\.\p{Nd}+)?[mMkK]?` +
	`|[A-Za-z]+(?:[-_][A-Za-z0-9]+)*` +
	`|\p{Nd}+` +
	`|[^\s\v\x{1c}-\x{1f}\x{85}\p{Z}\p{L}\p{N}_]`

var tokenRe = regexp.MustCompile(Pattern)

// Tokenize returns the tokens of text in order. It never fails; text with no
// tokens yields an empty, non-nil slice.
func Tokenize(text string) []string {
	tokens := tokenRe.FindAllString(text, -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}
