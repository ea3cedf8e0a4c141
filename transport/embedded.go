package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cardapiolab/menugrab/extract"
	"github.com/cardapiolab/menugrab/models"
)

// Embedded reads the server-rendered bootstrap state that SPA frameworks
// ship inside the initial HTML. When it parses, it carries the restaurant
// and menu fields directly and no DOM heuristics are needed.
type Embedded struct {
	fetcher   *Fetcher
	extractor *extract.Extractor
}

func NewEmbedded(fetcher *Fetcher, extractor *extract.Extractor) *Embedded {
	return &Embedded{fetcher: fetcher, extractor: extractor}
}

func (t *Embedded) Name() string { return "embedded-json" }

var errNoBootstrap = errors.New("embedded: no usable bootstrap payload")

// inlineStateRe captures `window.__SOMETHING_STATE__ = {...}` assignments.
var inlineStateRe = regexp.MustCompile(`(?s)window\.__[A-Z_]+__\s*=\s*(\{.*\})`)

func (t *Embedded) Fetch(ctx context.Context, req *Request) (*models.ScrapedData, error) {
	res, err := t.fetcher.Get(ctx, req.URL, browserHeaders(nextUserAgent()))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.body))
	if err != nil {
		return nil, err
	}

	for _, payload := range bootstrapPayloads(doc) {
		var root any
		if json.Unmarshal([]byte(payload), &root) != nil {
			continue
		}
		sd, ok := searchBootstrap(root, t.Name())
		if !ok {
			continue
		}
		t.extractor.FilterInPlace(sd)
		return sd, nil
	}
	return nil, errNoBootstrap
}

// bootstrapPayloads collects candidate JSON texts from the script tags the
// known frameworks use: a JSON-typed script tag (__NEXT_DATA__ style) or an
// inline `window.__STATE__ = {...}` assignment.
func bootstrapPayloads(doc *goquery.Document) []string {
	var payloads []string

	doc.Find(`script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); strings.HasPrefix(text, "{") {
			payloads = append(payloads, text)
		}
	})

	doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		if m := inlineStateRe.FindStringSubmatch(s.Text()); m != nil {
			payloads = append(payloads, trimToBalanced(m[1]))
		}
	})

	return payloads
}

// trimToBalanced cuts the capture at the brace that closes the opening one,
// dropping whatever trailing script code the greedy regex swallowed.
// Quote-aware so braces inside string values don't end the payload early.
func trimToBalanced(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return s
}

// searchBootstrap walks the decoded state tree looking for a subtree the
// JSON reader understands. Items win over metadata-only hits; map keys are
// visited in sorted order so repeated runs find the same subtree.
func searchBootstrap(root any, method string) (*models.ScrapedData, bool) {
	const maxDepth = 8

	var metaOnly *models.ScrapedData
	queue := []any{root}

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []any
		for _, v := range queue {
			if sd, err := readMenuValue(v, method); err == nil {
				if sd.ItemCount() > 0 {
					return sd, true
				}
				if metaOnly == nil {
					metaOnly = sd
				}
			}

			switch node := v.(type) {
			case map[string]any:
				keys := make([]string, 0, len(node))
				for k := range node {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					switch node[k].(type) {
					case map[string]any, []any:
						next = append(next, node[k])
					}
				}
			case []any:
				for _, c := range node {
					switch c.(type) {
					case map[string]any, []any:
						next = append(next, c)
					}
				}
			}
		}
		queue = next
	}

	if metaOnly != nil {
		return metaOnly, true
	}
	return nil, false
}
