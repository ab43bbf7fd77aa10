// Package tagging locates entity mentions inside token sequences and turns
// them into BIO label sequences.
package tagging

import (
	"github.com/hannes/kiji-ner/pii/entities"
	"github.com/hannes/kiji-ner/pii/tokenizer"
)

// FindSpan returns the indices of the first contiguous run of tokens equal to
// spanTokens, compared by exact string equality. It returns nil when there is
// no occurrence or spanTokens is empty.
func FindSpan(tokens, spanTokens []string) []int {
	n := len(spanTokens)
	if n == 0 || n > len(tokens) {
		return nil
	}
	for i := 0; i+n <= len(tokens); i++ {
		if equalAt(tokens, spanTokens, i) {
			span := make([]int, n)
			for j := range span {
				span[j] = i + j
			}
			return span
		}
	}
	return nil
}

func equalAt(tokens, spanTokens []string, start int) bool {
	for j, tok := range spanTokens {
		if tokens[start+j] != tok {
			return false
		}
	}
	return true
}

// Label tokenizes text and mention with the same grammar, locates the
// mention and tags it. An unlocatable mention yields all-O labels.
func Label(text, mention string, t entities.EntityType) ([]string, []entities.Label) {
	tokens := tokenizer.Tokenize(text)
	span := FindSpan(tokens, tokenizer.Tokenize(mention))
	return tokens, Tag(tokens, span, t)
}
