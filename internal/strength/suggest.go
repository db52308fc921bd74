package strength

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	minSuggestLen  = 4
	maxSuggestions = 3
)

var leet = map[rune]rune{
	'a': '@',
	'e': '3',
	'i': '!',
	'o': '0',
	's': '$',
}

// SuggestAlternatives derives up to three stronger variants of password.
// Inputs shorter than four characters get none. The result never contains
// duplicates or the input itself.
func SuggestAlternatives(password string, now time.Time) []string {
	out := make([]string, 0, maxSuggestions)
	if len([]rune(password)) < minSuggestLen {
		return out
	}

	year := now.Year()
	seen := map[string]bool{password: true}
	add := func(s string) {
		if len(out) < maxSuggestions && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	if l := leetSpeak(password); l != password {
		add(l + strconv.Itoa(year%100))
	}

	add(capitalizeAndPunctuate(password))
	add(password + "_" + strconv.Itoa(year) + "!")

	if !strings.Contains(password, " ") {
		add("My_" + password + "_Key#" + strconv.Itoa(year))
	}

	return out
}

// SuggestAlternativesNow is SuggestAlternatives for the current year.
func SuggestAlternativesNow(password string) []string {
	return SuggestAlternatives(password, time.Now())
}

func leetSpeak(s string) string {
	return strings.Map(func(r rune) rune {
		if sub, ok := leet[unicode.ToLower(r)]; ok {
			return sub
		}
		return r
	}, s)
}

func capitalizeAndPunctuate(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	out := string(runes)

	if !strings.ContainsAny(out, "0123456789") {
		out += "1"
	}
	if !strings.ContainsFunc(out, isNonAlnum) {
		out += "!"
	}
	return out
}

func isNonAlnum(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}
