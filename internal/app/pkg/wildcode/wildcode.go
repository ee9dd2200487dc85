package wildcode

import "regexp"

var (
	wildPattern = regexp.MustCompile(`^wild(\d+)`)
	wordPattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// Normalize derives the canonical product code from a raw marketplace article.
// "wild273_blue_XL" becomes "wild273"; plain alphabetic articles pass through
// unchanged; anything else is returned as-is.
func Normalize(article string) string {
	if m := wildPattern.FindStringSubmatch(article); m != nil {
		return "wild" + m[1]
	}
	if wordPattern.MatchString(article) {
		return article
	}
	return article
}
