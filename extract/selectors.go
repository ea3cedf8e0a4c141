package extract

import (
	"strings"

	"github.com/andybalholm/cascadia"
)

// The selector tables below are the accumulated heuristics for locating
// menu structure in the target site's unversioned markup. They are data,
// not code: traversal logic lives in strategies.go and fields.go, and the
// in-page browser script is generated from the same tables (inpage.go).

// categoryHeaderSelectors locate elements that announce a menu category.
var categoryHeaderSelectors = []string{
	`[class*="dish-category"]`,
	`[class*="menu-category"]`,
	`h2[class*="category"]`,
	`h3[class*="category"]`,
	`[class*="category-title"]`,
	`[class*="category-name"]`,
	`[data-testid*="category"]`,
	`[class*="category"]`,
}

// categoryContainerSelectors locate the subtree a category header governs.
var categoryContainerSelectors = []string{
	`[class*="category"]`,
	`[class*="section"]`,
	`[class*="group"]`,
	`section`,
}

// dishCardSelectors locate subtrees believed to represent one menu item.
var dishCardSelectors = []string{
	`[class*="dish-card"]`,
	`[class*="product-card"]`,
	`[class*="menu-item"]`,
	`[class*="dish-item"]`,
	`[data-testid*="dish"]`,
	`[data-testid*="product"]`,
}

// nameSelectors, in priority order, locate the dish name inside a card.
var nameSelectors = []string{
	`[class*="dish-name"]`,
	`[class*="product-name"]`,
	`[class*="item-title"]`,
	`[class*="title"]`,
	`[class*="name"]`,
	`h3`,
	`h4`,
}

// descriptionSelectors locate the dish description inside a card.
var descriptionSelectors = []string{
	`[class*="description"]`,
	`[class*="details"]`,
	`[class*="text"]`,
}

// priceSelectors locate the dish price inside a card. A match is only
// accepted when its text carries a currency symbol or a digit.
var priceSelectors = []string{
	`[class*="price"]`,
	`[data-price]`,
}

// imageSelectors locate the dish image inside a card, most specific first.
var imageSelectors = []string{
	`img[class*="dish"]`,
	`img[class*="product"]`,
	`img[class*="photo"]`,
	`img[class*="image"]`,
	`img`,
}

// dishNameAttrs are markup attributes that carry a dish name directly.
// The data-attribute strategy reads them, on both the Go side and in the
// browser's in-page script.
var dishNameAttrs = []string{"data-name", "data-title", "aria-label"}

// cardAncestorSelectors find the enclosing card when a strategy starts from
// an inner element (a heading or a data-attribute node).
var cardAncestorSelectors = []string{
	`[class*="card"]`,
	`[class*="dish"]`,
	`[class*="product"]`,
	`[class*="item"]`,
	`li`,
	`article`,
}

// restaurantNameSelectors locate the venue name, before falling back to the
// page <title>.
var restaurantNameSelectors = []string{
	`h1[class*="restaurant"]`,
	`h1[class*="merchant"]`,
	`[class*="restaurant-name"]`,
	`[class*="merchant-name"]`,
	`[data-testid*="restaurant-name"]`,
	`h1`,
}

// restaurantImageSelectors locate the venue logo/header image, before
// falling back to the og:image meta tag.
var restaurantImageSelectors = []string{
	`img[class*="logo"]`,
	`img[class*="restaurant"]`,
	`img[class*="merchant"]`,
	`[class*="header"] img`,
}

// statusBannerSelectors locate the open/closed banner.
var statusBannerSelectors = []string{
	`[class*="status"]`,
	`[class*="closed"]`,
	`[class*="availability"]`,
	`[class*="banner"]`,
}

// statusMessageSelectors locate the reopening-time message. Text is only
// accepted when it contains an "abre às" phrase.
var statusMessageSelectors = []string{
	`[class*="opening"]`,
	`[class*="schedule"]`,
	`[class*="status"]`,
	`[class*="message"]`,
}

// ExpandSelectors are "show more" controls the browser transport clicks to
// reveal collapsed menu sections. Individual click failures are ignored.
var ExpandSelectors = []string{
	`[class*="ver-mais"]`,
	`[class*="show-more"]`,
	`[class*="expand"]`,
	`button[class*="more"]`,
	`[aria-expanded="false"]`,
}

// Pre-compiled matchers. Grouped matchers answer "does any pattern match";
// the ordered tables above keep their priority semantics in fields.go.
var (
	categoryHeaderMatcher    = compileGroup(categoryHeaderSelectors)
	categoryContainerMatcher = compileGroup(categoryContainerSelectors)
	dishCardMatcher          = compileGroup(dishCardSelectors)
	cardAncestorMatcher      = compileGroup(cardAncestorSelectors)
	headingMatcher           = compileGroup([]string{`h3`, `h4`, `[class*="title"]`, `[class*="name"]`})
	dataAttrMatcher          = compileGroup(attrSelectors(dishNameAttrs))

	nameMatchers        = compileEach(nameSelectors)
	descriptionMatchers = compileEach(descriptionSelectors)
	priceMatchers       = compileEach(priceSelectors)
	imageMatchers       = compileEach(imageSelectors)

	restaurantNameMatchers  = compileEach(restaurantNameSelectors)
	restaurantImageMatchers = compileEach(restaurantImageSelectors)
	statusBannerMatchers    = compileEach(statusBannerSelectors)
	statusMessageMatchers   = compileEach(statusMessageSelectors)
)

func attrSelectors(attrs []string) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = "[" + a + "]"
	}
	return out
}

func compileGroup(selectors []string) cascadia.Selector {
	return cascadia.MustCompile(strings.Join(selectors, ", "))
}

func compileEach(selectors []string) []cascadia.Selector {
	out := make([]cascadia.Selector, len(selectors))
	for i, s := range selectors {
		out[i] = cascadia.MustCompile(s)
	}
	return out
}
