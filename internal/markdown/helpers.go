// Package markdown formats text for Telegram's MarkdownV2 parse mode.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

// MaxMessageLength is the Telegram limit for a single text message.
const MaxMessageLength = 4096

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

func EscapeV2(input string) string {
	charsToEscape := 0

	for i := range len(input) {
		if mdV2Lookup[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if mdV2Lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Split cuts text into chunks of at most limit runes, preferring line breaks,
// then spaces. A chunk never ends inside an escape sequence.
func Split(text string, limit int) []string {
	if limit <= 1 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string

	rest := []rune(text)
	for len(rest) > limit {
		cut := splitPoint(rest[:limit])

		chunk := strings.TrimRight(string(rest[:cut]), " \n")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		rest = []rune(strings.TrimLeft(string(rest[cut:]), " \n"))
	}

	if len(rest) > 0 {
		chunks = append(chunks, string(rest))
	}

	return chunks
}

func splitPoint(window []rune) int {
	half := len(window) / 2

	for _, sep := range []rune{'\n', ' '} {
		for i := len(window) - 1; i >= half; i-- {
			if window[i] == sep && !escaped(window, i) {
				return i + 1
			}
		}
	}

	cut := len(window)
	if escaped(window, cut) {
		cut--
	}

	return cut
}

// escaped reports whether the rune at i is preceded by an odd number of backslashes.
func escaped(runes []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && runes[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
