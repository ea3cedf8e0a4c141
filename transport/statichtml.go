package transport

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cardapiolab/menugrab/extract"
	"github.com/cardapiolab/menugrab/models"
)

// StaticHTML is the widest net: plain GETs across a list of guessed URL
// variants, degrading through three header tiers per variant. HTML
// responses go through the DOM strategies; JSON responses (some variants
// hit an API route) go through the JSON reader. The transport keeps the
// best candidate across variants and stops early once one looks complete.
type StaticHTML struct {
	fetcher    *Fetcher
	extractor  *extract.Extractor
	goodEnough int
}

func NewStaticHTML(fetcher *Fetcher, extractor *extract.Extractor, goodEnough int) *StaticHTML {
	return &StaticHTML{fetcher: fetcher, extractor: extractor, goodEnough: goodEnough}
}

func (t *StaticHTML) Name() string { return "static-html" }

func (t *StaticHTML) Fetch(ctx context.Context, req *Request) (*models.ScrapedData, error) {
	var best *models.ScrapedData

	for _, variant := range urlVariants(req.URL) {
		if ctx.Err() != nil {
			break
		}

		var res *fetchResult
		for _, headers := range headerTiers() {
			r, err := t.fetcher.Get(ctx, variant, headers)
			if err == nil {
				res = r
				break
			}
			if ctx.Err() != nil {
				break
			}
		}
		if res == nil {
			continue
		}

		sd := t.parse(res, variant)
		if sd == nil {
			continue
		}
		if best == nil || sd.ItemCount() > best.ItemCount() {
			best = sd
		}
		if best.ItemCount() >= t.goodEnough {
			break
		}
	}

	if best == nil {
		return nil, errors.New("static: every URL variant failed")
	}
	return best, nil
}

// FetchDirect is the orchestrator's unconditional last resort: a single
// GET of the URL exactly as given, no variants, no header degradation.
func (t *StaticHTML) FetchDirect(ctx context.Context, rawURL string) (*models.ScrapedData, error) {
	res, err := t.fetcher.Get(ctx, rawURL, browserHeaders(nextUserAgent()))
	if err != nil {
		return nil, err
	}
	if sd := t.parse(res, rawURL); sd != nil {
		return sd, nil
	}
	return nil, errors.New("static: direct fetch yielded nothing parseable")
}

// parse turns one response into a candidate, or nil when the body yields
// nothing parseable.
func (t *StaticHTML) parse(res *fetchResult, variant string) *models.ScrapedData {
	if isJSONContent(res.contentType, nil) {
		sd, err := readMenuJSON(res.body, t.Name())
		if err != nil {
			return nil
		}
		t.extractor.FilterInPlace(sd)
		return sd
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.body))
	if err != nil {
		return nil
	}
	sd := t.extractor.FromDocument(doc, variant)
	if sd.ExtractionMethod != "" {
		sd.ExtractionMethod = t.Name() + ":" + sd.ExtractionMethod
	} else {
		sd.ExtractionMethod = t.Name()
	}
	return sd
}

// urlVariants builds the ordered guess list for one source URL: the URL as
// given, path-segment swaps between the delivery and restaurant page
// styles, and appended menu sub-page guesses for each base form.
func urlVariants(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(u string) {
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	add(raw)

	bases := []string{raw}
	if strings.Contains(raw, "/delivery/") {
		bases = append(bases, strings.Replace(raw, "/delivery/", "/restaurant/", 1))
	}
	if strings.Contains(raw, "/restaurant/") {
		bases = append(bases, strings.Replace(raw, "/restaurant/", "/delivery/", 1))
	}

	for _, b := range bases {
		add(b)

		u, err := url.Parse(b)
		if err != nil {
			continue
		}
		u.Fragment = ""
		u.RawQuery = ""
		bare := strings.TrimRight(u.String(), "/")

		add(bare + "/menu")
		add(bare + "/cardapio")
		add(bare + "?tab=menu")
		add(bare + "?aba=cardapio")
	}

	return out
}
