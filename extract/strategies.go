// Package extract turns a parsed restaurant page into a ScrapedData
// candidate. Four strategies run in order of structural confidence:
// category-grouped cards, flat cards, data attributes, bare headings.
// Each later strategy only runs when the earlier ones found nothing.
package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/cardapiolab/menugrab/classify"
	"github.com/cardapiolab/menugrab/models"
)

// GenericCategory is the fallback label for dishes found outside any
// recognised category structure.
const GenericCategory = "Cardápio"

// Extractor applies the page-level strategies with a shared classifier.
type Extractor struct {
	classifier *classify.Classifier
}

// New creates an Extractor.
func New(classifier *classify.Classifier) *Extractor {
	return &Extractor{classifier: classifier}
}

// Classifier exposes the dish-name filter for transports that post-filter
// externally produced items (browser in-page results, API JSON).
func (e *Extractor) Classifier() *classify.Classifier {
	return e.classifier
}

// FromDocument runs the strategy ladder against a parsed page and returns
// a candidate. ExtractionMethod is set to the winning strategy name; the
// transport layer prefixes it with the transport tag. Never returns nil.
func (e *Extractor) FromDocument(doc *goquery.Document, sourceURL string) *models.ScrapedData {
	sd := models.NewScrapedData("")
	sd.RestaurantName = RestaurantName(doc)
	sd.RestaurantImage = RestaurantImage(doc)
	sd.IsClosed, sd.NextOpening = ClosedStatus(doc)

	type strategy struct {
		name string
		run  func(*goquery.Document) []models.MenuItem
	}
	for _, s := range []strategy{
		{"structured-categories", e.structuredCategoryScan},
		{"dish-cards", e.flatCardScan},
		{"data-attributes", e.dataAttributeScan},
		{"headings", e.headingScan},
	} {
		items := s.run(doc)
		if len(items) == 0 {
			continue
		}
		for _, it := range items {
			sd.AddItem(it)
		}
		sd.ExtractionMethod = s.name
		slog.Debug("strategy produced items",
			"strategy", s.name, "items", len(items), "url", sourceURL)
		break
	}

	return sd
}

// structuredCategoryScan walks category headers, resolves each header's
// enclosing container, and collects the dish cards inside it. A category
// is kept only when it yielded at least one accepted dish.
func (e *Extractor) structuredCategoryScan(doc *goquery.Document) []models.MenuItem {
	var items []models.MenuItem
	seenCards := make(map[*html.Node]struct{})

	doc.FindMatcher(categoryHeaderMatcher).Each(func(_ int, header *goquery.Selection) {
		category := headerLabel(header)
		if category == "" {
			return
		}

		// Some layouts match a whole section as the "header"; when it
		// already holds dish cards it is its own container. Otherwise
		// use the nearest container-like ancestor, or the parent.
		container := header
		if container.FindMatcher(dishCardMatcher).Length() == 0 {
			if anc := header.ParentsMatcher(categoryContainerMatcher).First(); anc.Length() > 0 {
				container = anc
			} else {
				container = header.Parent()
			}
		}

		container.FindMatcher(dishCardMatcher).Each(func(_ int, card *goquery.Selection) {
			for _, n := range card.Nodes {
				if _, dup := seenCards[n]; dup {
					return
				}
				seenCards[n] = struct{}{}
			}
			if item, ok := e.itemFromCard(card, category); ok {
				items = append(items, item)
			}
		})
	})

	return items
}

// flatCardScan collects dish cards document-wide without category grouping.
func (e *Extractor) flatCardScan(doc *goquery.Document) []models.MenuItem {
	var items []models.MenuItem
	doc.FindMatcher(dishCardMatcher).Each(func(_ int, card *goquery.Selection) {
		if item, ok := e.itemFromCard(card, GenericCategory); ok {
			items = append(items, item)
		}
	})
	return items
}

// dataAttributeScan reads dish names straight from data-name/data-title/
// aria-label attributes; the remaining fields come from the nearest
// card-like ancestor.
func (e *Extractor) dataAttributeScan(doc *goquery.Document) []models.MenuItem {
	var items []models.MenuItem
	seen := make(map[string]struct{})

	doc.FindMatcher(dataAttrMatcher).Each(func(_ int, s *goquery.Selection) {
		name := attrName(s)
		if len(name) <= 3 || strings.ContainsAny(name, "$€£") {
			return
		}
		if !e.classifier.IsLikelyDishName(name) {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}

		card := s
		if anc := s.ParentsMatcher(cardAncestorMatcher).First(); anc.Length() > 0 {
			card = anc
		}
		items = append(items, models.MenuItem{
			Name:        name,
			Description: ExtractDescription(card),
			Price:       ExtractPrice(card),
			Image:       ExtractImage(card),
			Category:    GenericCategory,
		})
	})
	return items
}

// headingScan is the last resort: any heading-like element whose own text
// is a plausible dish name becomes an item, with the other fields read
// from the nearest card-like ancestor when one exists.
func (e *Extractor) headingScan(doc *goquery.Document) []models.MenuItem {
	var items []models.MenuItem
	seen := make(map[string]struct{})

	doc.FindMatcher(headingMatcher).Each(func(_ int, s *goquery.Selection) {
		name := collapse(s.Text())
		if !e.classifier.IsLikelyDishName(name) {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}

		item := models.MenuItem{Name: name, Category: GenericCategory}
		if anc := s.ParentsMatcher(cardAncestorMatcher).First(); anc.Length() > 0 {
			item.Description = ExtractDescription(anc)
			item.Price = ExtractPrice(anc)
			item.Image = ExtractImage(anc)
		}
		items = append(items, item)
	})
	return items
}

// itemFromCard builds an item from a dish-card node. The card is accepted
// only when a name was found and the classifier believes it.
func (e *Extractor) itemFromCard(card *goquery.Selection, category string) (models.MenuItem, bool) {
	name := ExtractName(card)
	if name == "" || !e.classifier.IsLikelyDishName(name) {
		return models.MenuItem{}, false
	}
	return models.MenuItem{
		Name:        name,
		Description: ExtractDescription(card),
		Price:       ExtractPrice(card),
		Image:       ExtractImage(card),
		Category:    category,
	}, true
}

// FilterInPlace drops items whose names fail the classifier, fills the
// generic category on items missing one, and rebuilds the category list.
// Used on results produced outside the strategies (browser page script,
// JSON payloads) so the classifier invariant holds everywhere.
func (e *Extractor) FilterInPlace(sd *models.ScrapedData) {
	kept := sd.MenuItems[:0]
	for _, it := range sd.MenuItems {
		it.Name = collapse(it.Name)
		if !e.classifier.IsLikelyDishName(it.Name) {
			continue
		}
		if strings.TrimSpace(it.Category) == "" {
			it.Category = GenericCategory
		}
		kept = append(kept, it)
	}
	sd.MenuItems = kept
	sd.RebuildCategories()
}

// headerLabel extracts a usable category name from a header element,
// preferring its own heading text over the subtree text (which on some
// layouts would swallow every dish name in the section).
func headerLabel(header *goquery.Selection) string {
	if h := header.Find("h2, h3").First(); h.Length() > 0 {
		if text := collapse(h.Text()); text != "" && len(text) < 60 {
			return text
		}
	}
	text := collapse(header.Clone().Children().Remove().End().Text())
	if text == "" {
		text = collapse(header.Text())
	}
	if len(text) == 0 || len(text) >= 60 {
		return ""
	}
	return text
}

// attrName pulls the candidate name from whichever attribute is present.
func attrName(s *goquery.Selection) string {
	for _, attr := range dishNameAttrs {
		if v, ok := s.Attr(attr); ok {
			if v = collapse(v); v != "" {
				return v
			}
		}
	}
	return ""
}
