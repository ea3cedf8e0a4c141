package models

// MenuItem is one candidate dish found on a restaurant page.
// Every item that survives to the final result has had its Name accepted
// by the plausibility classifier.
type MenuItem struct {
	// Name is the dish name. Never empty in a final result.
	Name string `json:"name"`

	// Description is the dish description text. May be empty.
	Description string `json:"description"`

	// Price is the raw price text as found on the page ("R$ 25,90").
	// Not guaranteed to be numeric-parseable. May be empty.
	Price string `json:"price"`

	// Image is the dish image URL (absolute or relative). May be empty.
	Image string `json:"image"`

	// Category is the enclosing category name, or the generic fallback
	// label when the page exposed no category structure.
	Category string `json:"category"`
}

// ScrapedData is the full result of one extraction attempt.
// One is built per strategy/transport combination; the orchestrator keeps
// the best candidate (most menu items) and discards the rest.
type ScrapedData struct {
	RestaurantName  string     `json:"restaurant_name"`
	RestaurantImage string     `json:"restaurant_image"`
	MenuItems       []MenuItem `json:"menu_items"`

	// MenuCategories is the distinct category names across MenuItems in
	// first-seen order. Kept in sync by AddItem / RebuildCategories.
	MenuCategories []string `json:"menu_categories"`

	// IsClosed reports whether the page indicates the venue is closed.
	IsClosed bool `json:"is_closed"`

	// NextOpening is free-text reopening time ("abre às 18:00").
	// Only meaningful when IsClosed is true.
	NextOpening string `json:"next_opening,omitempty"`

	// Warning is a human-readable caveat attached when the result is
	// degraded (closed venue, empty menu).
	Warning string `json:"warning,omitempty"`

	// ExtractionMethod tags which strategy/transport produced the result,
	// for diagnostics ("browser", "embedded-json", "api-json", "static-html").
	ExtractionMethod string `json:"extraction_method"`
}

// NewScrapedData creates an empty result tagged with the given method.
func NewScrapedData(method string) *ScrapedData {
	return &ScrapedData{
		MenuItems:        []MenuItem{},
		MenuCategories:   []string{},
		ExtractionMethod: method,
	}
}

// AddItem appends an item and records its category on first sight.
func (d *ScrapedData) AddItem(item MenuItem) {
	d.MenuItems = append(d.MenuItems, item)
	for _, c := range d.MenuCategories {
		if c == item.Category {
			return
		}
	}
	if item.Category != "" {
		d.MenuCategories = append(d.MenuCategories, item.Category)
	}
}

// RebuildCategories recomputes MenuCategories from MenuItems, preserving
// first-seen order. Used after bulk assignment of MenuItems.
func (d *ScrapedData) RebuildCategories() {
	d.MenuCategories = d.MenuCategories[:0]
	seen := make(map[string]struct{}, 8)
	for _, it := range d.MenuItems {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		d.MenuCategories = append(d.MenuCategories, it.Category)
	}
}

// ItemCount is the quality score used to rank candidates.
func (d *ScrapedData) ItemCount() int {
	if d == nil {
		return 0
	}
	return len(d.MenuItems)
}
