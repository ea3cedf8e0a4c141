package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Field extractors walk the ordered selector tables against a dish-card
// node and return the first non-empty match. They never fail: absence is
// an empty string, which downstream logic reads as "field not found".

var wsRe = regexp.MustCompile(`\s+`)

// collapse trims and collapses runs of whitespace into single spaces.
func collapse(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// firstText returns the trimmed text of the first descendant matching any
// matcher, in table order.
func firstText(card *goquery.Selection, matchers []cascadia.Selector) string {
	for _, m := range matchers {
		var found string
		card.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := collapse(s.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// ExtractName returns the dish name from a card node, or "".
func ExtractName(card *goquery.Selection) string {
	return firstText(card, nameMatchers)
}

// ExtractDescription returns the dish description from a card node, or "".
func ExtractDescription(card *goquery.Selection) string {
	return firstText(card, descriptionMatchers)
}

// ExtractPrice returns the dish price text from a card node, or "". The
// match must contain a currency symbol or at least one digit; that keeps
// unrelated short text (labels, badges) from being mistaken for a price.
func ExtractPrice(card *goquery.Selection) string {
	for _, m := range priceMatchers {
		var found string
		card.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapse(s.Text())
			if text == "" {
				if v, ok := s.Attr("data-price"); ok {
					text = collapse(v)
				}
			}
			if looksLikePrice(text) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// ExtractImage returns the src of the first matching descendant image, or
// "". The last table entry is a bare img, so any image at all is the
// final fallback.
func ExtractImage(card *goquery.Selection) string {
	for _, m := range imageMatchers {
		var found string
		card.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
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
	return ""
}

// looksLikePrice reports whether text plausibly carries a price.
func looksLikePrice(text string) bool {
	if text == "" {
		return false
	}
	if strings.ContainsAny(text, "$€£") {
		return true
	}
	return strings.ContainsAny(text, "0123456789")
}
