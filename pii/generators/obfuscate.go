// Package generators produces random surface forms for each sensitive entity
// family, plus the digit-spelling obfuscation used for adversarial examples.
package generators

import "strings"

var digitWords = map[rune]string{
	'0': "zero", '1': "one", '2': "two", '3': "three", '4': "four",
	'5': "five", '6': "six", '7': "seven", '8': "eight", '9': "nine",
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// WordifyDigits spells every digit of s as an English word and joins all
// characters with single spaces: "12-3" becomes "one two - three".
func WordifyDigits(s string) string {
	parts := make([]string, 0, len(s))
	for _, r := range s {
		if w, ok := digitWords[r]; ok {
			parts = append(parts, w)
		} else {
			parts = append(parts, string(r))
		}
	}
	return strings.Join(parts, " ")
}

// ObfuscateDigits keeps the leading and trailing non-digit characters of
// value as they are and spells out the digit-bearing middle:
// "S1234567D" becomes "S one two three four five six seven D".
// Values without digits are returned unchanged.
func ObfuscateDigits(value string) string {
	first := strings.IndexFunc(value, isDigit)
	if first < 0 {
		return value
	}
	last := strings.LastIndexFunc(value, isDigit)

	parts := make([]string, 0, 3)
	if prefix := value[:first]; prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, WordifyDigits(value[first:last+1]))
	if suffix := value[last+1:]; suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, " ")
}
