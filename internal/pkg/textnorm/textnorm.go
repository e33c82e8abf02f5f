// Package textnorm holds the name formatting and comparison rules used when
// imported entities are matched against stored records.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

const (
	collegePrefix    = "COLLEGE OF"
	collegeCodeLimit = 5
	// CodeNotAvailable is stored when no code can be derived
	CodeNotAvailable = "N/A"
)

var digitRun = regexp.MustCompile(`\d+`)

// Key returns the comparison key for a name: case-folded with every
// non-alphanumeric rune removed. Keys are never stored.
func Key(s string) string {
	folded := cases.Fold().String(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Upper trims s, collapses inner whitespace and upper-cases it
func Upper(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Title lower-cases s and upper-cases the first rune of every word
func Title(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// CollegeCode derives a short code from a college name.
// "College of Natural Sciences" -> "NS".
func CollegeCode(name string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(Upper(name), collegePrefix))

	var code []rune
	for _, word := range strings.Fields(rest) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				code = append(code, r)
				break
			}
		}
	}
	if len(code) > collegeCodeLimit {
		code = code[:collegeCodeLimit]
	}
	if len(code) == 0 {
		return CodeNotAvailable
	}
	return string(code)
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// LevelNumber extracts the study level from a free-text name.
// The first run of digits is used as-is when it is at most maxLevel,
// otherwise it is read as a hundreds value ("300 Level" -> 3).
// Names without digits are level 1. The result is clamped to [1, maxLevel].
func LevelNumber(name string, maxLevel int) int {
	match := digitRun.FindString(name)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 1
	}
	if n > maxLevel {
		n /= 100
	}
	switch {
	case n < 1:
		return 1
	case n > maxLevel:
		return maxLevel
	default:
		return n
	}
}
