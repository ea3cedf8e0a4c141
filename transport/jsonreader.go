package transport

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/cardapiolab/menugrab/models"
)

// The JSON reader turns an arbitrary API or bootstrap payload into a
// candidate without knowing the exact schema version. It probes the known
// shapes in order: nested categories[].dishes[], then the flat product
// lists. Field names are probed in both English and Portuguese because the
// target backends mix them freely.

var errNoMenuShape = errors.New("json: no recognisable menu shape")

var (
	restaurantKeys   = []string{"restaurant", "merchant", "store", "data"}
	categoryListKeys = []string{"categories", "categorias", "menu", "cardapio", "sections"}
	dishListKeys     = []string{"dishes", "pratos", "items", "itens", "products", "produtos"}

	nameKeys        = []string{"name", "nome", "title", "titulo"}
	descriptionKeys = []string{"description", "descricao", "details", "detalhes"}
	priceKeys       = []string{"price", "preco", "valor", "unit_price"}
	imageKeys       = []string{"image", "imagem", "image_url", "photo", "foto", "picture"}
	logoKeys        = []string{"logo", "logo_url", "image", "imagem", "cover", "banner"}
	closedKeys      = []string{"closed", "is_closed", "fechado"}
	openKeys        = []string{"open", "opened", "is_open", "available", "aberto"}
	nextOpeningKeys = []string{"next_opening", "reopens_at", "opens_at", "proxima_abertura"}
)

// readMenuJSON parses a payload into a candidate tagged with method. The
// error return means "no data from this parser", never a caller failure.
func readMenuJSON(data []byte, method string) (*models.ScrapedData, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return readMenuValue(root, method)
}

// readMenuValue is readMenuJSON over an already-decoded value. The embedded
// transport uses it to probe nested bootstrap state without re-marshalling.
func readMenuValue(root any, method string) (*models.ScrapedData, error) {
	sd := models.NewScrapedData(method)

	// Restaurant metadata lives either at the top level or one level down
	// under a restaurant/merchant/data wrapper.
	if top, ok := root.(map[string]any); ok {
		meta := top
		for _, k := range restaurantKeys {
			if m, ok := top[k].(map[string]any); ok {
				meta = m
				break
			}
		}
		sd.RestaurantName = firstString(meta, nameKeys)
		sd.RestaurantImage = firstString(meta, logoKeys)
		sd.IsClosed = readClosed(meta)
		if sd.IsClosed {
			sd.NextOpening = firstString(meta, nextOpeningKeys)
		}
	}

	items := readCategorised(root)
	if len(items) == 0 {
		items = readFlat(root)
	}
	for _, it := range items {
		sd.AddItem(it)
	}

	if sd.RestaurantName == "" && len(sd.MenuItems) == 0 {
		return nil, errNoMenuShape
	}
	return sd, nil
}

// readCategorised probes the categories[].dishes[] shape, at the top level
// or one wrapper level down.
func readCategorised(root any) []models.MenuItem {
	var items []models.MenuItem
	forEachScope(root, func(scope map[string]any) bool {
		cats := firstSlice(scope, categoryListKeys)
		for _, c := range cats {
			cat, ok := c.(map[string]any)
			if !ok {
				continue
			}
			label := firstString(cat, nameKeys)
			for _, d := range firstSlice(cat, dishListKeys) {
				if item, ok := readDish(d, label); ok {
					items = append(items, item)
				}
			}
		}
		return len(items) > 0
	})
	return items
}

// readFlat probes the flat products[]/dishes[]/items[] shapes. A bare
// top-level array is treated as the dish list itself.
func readFlat(root any) []models.MenuItem {
	var items []models.MenuItem
	appendList := func(list []any) {
		for _, d := range list {
			if item, ok := readDish(d, ""); ok {
				items = append(items, item)
			}
		}
	}

	if list, ok := root.([]any); ok {
		appendList(list)
		return items
	}
	forEachScope(root, func(scope map[string]any) bool {
		appendList(firstSlice(scope, dishListKeys))
		return len(items) > 0
	})
	return items
}

// forEachScope visits the root object and its single-level wrappers
// (data/restaurant/merchant/store) until fn reports success.
func forEachScope(root any, fn func(map[string]any) bool) {
	top, ok := root.(map[string]any)
	if !ok {
		return
	}
	if fn(top) {
		return
	}
	for _, k := range restaurantKeys {
		if m, ok := top[k].(map[string]any); ok {
			if fn(m) {
				return
			}
		}
	}
}

// readDish maps one JSON object onto a MenuItem. The name plausibility
// check happens later, in the transport's FilterInPlace pass.
func readDish(v any, category string) (models.MenuItem, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return models.MenuItem{}, false
	}
	name := firstString(m, nameKeys)
	if name == "" {
		return models.MenuItem{}, false
	}
	if category == "" {
		category = firstString(m, []string{"category", "categoria"})
	}
	return models.MenuItem{
		Name:        name,
		Description: firstString(m, descriptionKeys),
		Price:       readPrice(m),
		Image:       firstString(m, imageKeys),
		Category:    category,
	}, true
}

// readPrice accepts either raw price text or a numeric value, which is
// rendered the way the target sites print it ("R$ 12,90").
func readPrice(m map[string]any) string {
	for _, k := range priceKeys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			if v > 0 {
				s := strconv.FormatFloat(v, 'f', 2, 64)
				return "R$ " + strings.ReplaceAll(s, ".", ",")
			}
		}
	}
	return ""
}

func readClosed(m map[string]any) bool {
	for _, k := range closedKeys {
		if b, ok := m[k].(bool); ok {
			return b
		}
	}
	for _, k := range openKeys {
		if b, ok := m[k].(bool); ok {
			return !b
		}
	}
	return false
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstSlice(m map[string]any, keys []string) []any {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok && len(l) > 0 {
			return l
		}
	}
	return nil
}
