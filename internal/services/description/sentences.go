package description

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence even when followed by whitespace
var abbreviations = map[string]bool{
	"inc": true, "corp": true, "co": true, "ltd": true, "plc": true,
	"st": true, "mr": true, "mrs": true, "dr": true, "jr": true, "sr": true,
	"no": true, "vs": true, "approx": true, "est": true,
}

// firstSentences returns the first n sentences of text
func firstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || text == "" {
		return text
	}

	runes := []rune(text)
	count := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		if r == '.' && isAbbreviation(runes[:i]) {
			continue
		}
		count++
		if count == n {
			return string(runes[:i+1])
		}
	}
	return text
}

// isAbbreviation reports whether the word ending at the end of prefix is a
// known abbreviation, an initial, or dotted (e.g. "U.S").
func isAbbreviation(prefix []rune) bool {
	start := len(prefix)
	for start > 0 && prefix[start-1] != ' ' {
		start--
	}
	word := strings.TrimLeftFunc(string(prefix[start:]), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if word == "" {
		return false
	}
	if strings.Contains(word, ".") {
		return true
	}
	if len([]rune(word)) == 1 && unicode.IsUpper([]rune(word)[0]) {
		return true
	}
	return abbreviations[strings.ToLower(word)]
}

// tokens lowercases s and splits it on anything that is not a letter or digit
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAnyToken(s string, words map[string]bool) bool {
	for _, tok := range tokens(s) {
		if words[tok] {
			return true
		}
	}
	return false
}
