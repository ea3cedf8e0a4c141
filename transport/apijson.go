package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/cardapiolab/menugrab/extract"
	"github.com/cardapiolab/menugrab/models"
)

// APIJSON guesses the REST endpoints behind a restaurant page. It only
// applies when the URL embeds a UUID-shaped merchant identifier; the
// endpoint list covers the path layouts observed across the target
// platform's frontend versions.
type APIJSON struct {
	fetcher   *Fetcher
	extractor *extract.Extractor
}

func NewAPIJSON(fetcher *Fetcher, extractor *extract.Extractor) *APIJSON {
	return &APIJSON{fetcher: fetcher, extractor: extractor}
}

func (t *APIJSON) Name() string { return "api-json" }

var errNoIdentifier = errors.New("api: URL carries no merchant identifier")

var uuidRe = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// endpointPaths are the guessed API paths, most likely first. %s is the
// merchant identifier.
var endpointPaths = []string{
	"/api/v1/merchants/%s/menu",
	"/api/merchants/%s/menu",
	"/api/v1/restaurants/%s/menu",
	"/api/restaurants/%s/menu",
	"/api/v1/merchants/%s/catalog",
	"/api/v2/merchants/%s/catalog",
	"/api/restaurants/%s/categories",
	"/api/restaurants/%s/products",
	"/api/restaurants/%s/dishes",
}

func (t *APIJSON) Fetch(ctx context.Context, req *Request) (*models.ScrapedData, error) {
	id := uuidRe.FindString(req.URL)
	if id == "" {
		return nil, errNoIdentifier
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("api: parse url: %w", err)
	}
	base := u.Scheme + "://" + u.Host

	headers := jsonHeaders()
	for _, path := range endpointPaths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		endpoint := base + fmt.Sprintf(path, id)
		res, err := t.fetcher.Get(ctx, endpoint, headers)
		if err != nil {
			continue
		}
		if !isJSONContent(res.contentType, res.body) {
			continue
		}

		sd, err := readMenuJSON(res.body, t.Name())
		if err != nil {
			continue
		}
		t.extractor.FilterInPlace(sd)
		if sd.ItemCount() > 0 || sd.RestaurantName != "" {
			return sd, nil
		}
	}
	return nil, fmt.Errorf("api: no endpoint answered for merchant %s", id)
}

// isJSONContent accepts an explicit JSON content type, or a JSON-looking
// body when the server lies about the type (text/plain is common).
func isJSONContent(contentType string, body []byte) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
