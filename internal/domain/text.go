package domain

import (
	"strings"
	"unicode"
)

// MaxSlugRunes bounds derived article slugs
const MaxSlugRunes = 80

// Slugify derives a URL slug from a title
// Letters of any script (Arabic included) and digits are kept and lowercased,
// runs of whitespace, '-' and '_' collapse to one hyphen, anything else is dropped.
// The result may be empty; callers decide on a fallback.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	count := 0

	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				if count+1 >= MaxSlugRunes {
					return b.String()
				}
				b.WriteRune('-')
				count++
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			count++
			if count >= MaxSlugRunes {
				return b.String()
			}
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}

	return b.String()
}

// WordCount counts whitespace separated words
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadingTime is ceil(words / words-per-minute) for the article language
func ReadingTime(content string, lang Language) int {
	words := WordCount(content)
	wpm := lang.WordsPerMinute()
	return (words + wpm - 1) / wpm
}

// TruncateRunes cuts s to at most n runes and appends "..." when it had to cut
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
