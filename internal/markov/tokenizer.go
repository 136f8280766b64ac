package markov

import (
	"strings"
	"unicode"
)

// Tokenize splits text on whitespace runs into normalized tokens.
// Unless caseSensitive, tokens are lowercased. With stripPunctuation,
// every non-alphanumeric rune is removed and tokens that end up empty
// are dropped. Empty input yields nil.
func Tokenize(text string, caseSensitive, stripPunctuation bool) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(fields))
	for _, word := range fields {
		if !caseSensitive {
			word = strings.ToLower(word)
		}
		if stripPunctuation {
			word = strings.Map(func(r rune) rune {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					return r
				}
				return -1
			}, word)
			if word == "" {
				continue
			}
		}
		tokens = append(tokens, word)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
