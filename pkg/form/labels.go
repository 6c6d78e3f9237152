package form

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Capitalize turns an entry name into a display label: dashes become spaces
// and the first letter is upper-cased. Other characters are left alone.
func Capitalize(name string) string {
	if name == "" {
		return ""
	}
	label := strings.ReplaceAll(name, "-", " ")
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}

// normaliseTokens lower-cases and trims tokens, dropping blanks.
func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		if token := normaliseToken(value); token != "" {
			result[token] = struct{}{}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// classTokens splits a row class on whitespace and commas.
func classTokens(class string) []string {
	parts := strings.FieldsFunc(class, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if token := normaliseToken(part); token != "" {
			out = append(out, token)
		}
	}
	return out
}

func matchesGroups(groups map[string]struct{}, class string) bool {
	if len(groups) == 0 {
		return true
	}
	for _, token := range classTokens(class) {
		if _, ok := groups[token]; ok {
			return true
		}
	}
	return false
}
