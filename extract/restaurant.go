package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Restaurant-level metadata is extracted once per page, independent of
// which dish strategy ends up producing the menu.

// titleSuffixRe strips the platform boilerplate delivery sites append to
// the page title ("Casa do Norte - Cardápio e Delivery").
var titleSuffixRe = regexp.MustCompile(`(?i)\s*[|\-–—·]\s*(card[áa]pio|delivery|pe[çc]a (online|j[áa])|menu online).*$`)

// closedWords are the status-banner substrings that mark a closed venue.
var closedWords = []string{"fechada", "fechado", "closed"}

// opensAtRe validates a reopening message before it is trusted.
var opensAtRe = regexp.MustCompile(`(?i)abre\s+([àa]s?|em)\s+`)

// RestaurantName finds the venue name: selector table first, page <title>
// with the platform suffix stripped as fallback. Empty when neither works.
func RestaurantName(doc *goquery.Document) string {
	for _, m := range restaurantNameMatchers {
		if text := collapse(doc.FindMatcher(m).First().Text()); text != "" {
			return text
		}
	}

	title := collapse(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	return strings.TrimSpace(titleSuffixRe.ReplaceAllString(title, ""))
}

// RestaurantImage finds the venue logo or header image, falling back to
// the og:image meta tag. Empty when nothing matches.
func RestaurantImage(doc *goquery.Document) string {
	for _, m := range restaurantImageMatchers {
		var found string
		doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
				found = strings.TrimSpace(src)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// ClosedStatus reports whether the page marks the venue as closed, and the
// reopening text when one is present. The reopening message is accepted
// only when it actually says when the venue opens.
func ClosedStatus(doc *goquery.Document) (closed bool, nextOpening string) {
	for _, m := range statusBannerMatchers {
		doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.ToLower(collapse(s.Text()))
			for _, w := range closedWords {
				if strings.Contains(text, w) {
					closed = true
					return false
				}
			}
			return true
		})
		if closed {
			break
		}
	}
	if !closed {
		return false, ""
	}

	for _, m := range statusMessageMatchers {
		doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapse(s.Text())
			if opensAtRe.MatchString(text) {
				nextOpening = text
				return false
			}
			return true
		})
		if nextOpening != "" {
			break
		}
	}
	return true, nextOpening
}
