package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchAll reports whether the normalized input contains every
// matcher in the group. Both sides are normalized before comparing.
func MatchAll(text string, group []string) bool {
	text = NormalizeName(text)
	for _, m := range group {
		if !strings.Contains(text, NormalizeName(m)) {
			return false
		}
	}
	return len(group) > 0
}

// grouping marks only, star prices carry no decimal fraction.
// \s does not cover NBSP or narrow NBSP in RE2, so they are listed explicitly.
var groupingRegex = regexp.MustCompile("[\\s  .,]")

var digitRunRegex = regexp.MustCompile(`\d{1,9}`)

// ParseStars extracts an integral star price from surrounding text.
// "1 100", "1,100" and "1.100" all parse to 1100.
func ParseStars(text string) (int, bool) {
	clean := groupingRegex.ReplaceAllString(text, "")
	run := digitRunRegex.FindString(clean)
	if run == "" {
		return 0, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return n, true
}

var starSuffixRegex = regexp.MustCompile(`⭐.*$`)

// ParseGiftName takes the first line of a listing text and strips a
// trailing star-price suffix. Falls back to "Gift" when nothing is left.
func ParseGiftName(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = starSuffixRegex.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	if line == "" {
		return "Gift"
	}
	return line
}
