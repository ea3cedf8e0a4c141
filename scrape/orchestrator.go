// Package scrape drives the extraction cascade: it runs the transports in
// order, keeps the best candidate by menu-item count, applies the final
// fallbacks and warnings, and returns the single surviving result.
package scrape

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cardapiolab/menugrab/classify"
	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/extract"
	"github.com/cardapiolab/menugrab/models"
	"github.com/cardapiolab/menugrab/transport"
)

// User-facing warnings, in the language of the sites being scraped.
const (
	warnClosedPrefix    = "Restaurante fechado no momento."
	warnReopenUnknown   = "Horário de reabertura não disponível."
	warnEmptyMenu       = "Não foi possível extrair o cardápio. O conteúdo pode ser renderizado dinamicamente ou protegido contra acesso automatizado."
	placeholderImageURL = "https://placehold.co/600x400?text=Restaurante"
)

// Orchestrator owns the transport cascade and the per-host memory.
// Safe for concurrent use; candidates are independent values and the
// best-so-far is a local of each Scrape call.
type Orchestrator struct {
	transports []transport.Transport
	static     *transport.StaticHTML
	memory     *HostMemory
	cfg        config.ScraperConfig
}

// New builds the cascade from configuration. Order is cheapest-reliable
// first: browser (dev only, but it is the most faithful source when
// available), embedded bootstrap JSON, guessed API endpoints, static HTML.
func New(cfg *config.Config) *Orchestrator {
	classifier := classify.New(cfg.Classifier.LengthFallback)
	extractor := extract.New(classifier)
	fetcher := transport.NewFetcher(cfg.Scraper.FetchTimeout)

	static := transport.NewStaticHTML(fetcher, extractor, cfg.Scraper.GoodEnoughItems)

	var transports []transport.Transport
	if cfg.Browser.DevMode {
		transports = append(transports, transport.NewBrowser(cfg.Browser, extractor))
	}
	transports = append(transports,
		transport.NewEmbedded(fetcher, extractor),
		transport.NewAPIJSON(fetcher, extractor),
		static,
	)

	return &Orchestrator{
		transports: transports,
		static:     static,
		memory:     NewHostMemory(cfg.Scraper.HostMemoryTTL),
		cfg:        cfg.Scraper,
	}
}

// Close stops the host-memory cleanup goroutine.
func (o *Orchestrator) Close() {
	o.memory.Stop()
}

// Options tune one scrape run.
type Options struct {
	// SkipBrowser leaves the headless-browser transport out even in dev
	// mode.
	SkipBrowser bool
}

// Scrape runs the full cascade for one URL with default options.
func (o *Orchestrator) Scrape(ctx context.Context, rawURL string) (*models.ScrapedData, error) {
	return o.ScrapeWithOptions(ctx, rawURL, Options{})
}

// ScrapeWithOptions runs the full cascade for one URL.
//
// A missing URL is the only hard failure. Transport and parse failures
// abandon just that attempt; if every stage comes back empty the final
// direct fetch runs, and only when that also fails does Scrape return an
// error. An empty menu with a working fetch is a success with a warning.
func (o *Orchestrator) ScrapeWithOptions(ctx context.Context, rawURL string, opts Options) (*models.ScrapedData, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "no URL provided", nil)
	}

	host := hostOf(rawURL)
	req := &transport.Request{URL: rawURL}

	var (
		best   *models.ScrapedData
		winner string
	)
	for _, tr := range o.orderFor(host) {
		if ctx.Err() != nil {
			break
		}
		if opts.SkipBrowser {
			if _, isBrowser := tr.(*transport.Browser); isBrowser {
				continue
			}
		}

		sd, err := tr.Fetch(ctx, req)
		if err != nil {
			slog.Debug("transport produced no candidate",
				"transport", tr.Name(), "url", rawURL, "error", err)
			if o.memory.Get(host) == tr.Name() {
				o.memory.Delete(host)
			}
			continue
		}

		slog.Debug("transport produced candidate",
			"transport", tr.Name(), "url", rawURL, "items", sd.ItemCount())
		if best == nil || sd.ItemCount() > best.ItemCount() {
			best = sd
			winner = tr.Name()
		}
		if best.ItemCount() >= o.cfg.GoodEnoughItems {
			break
		}
	}

	// Unconditional last resort when the cascade found no menu.
	if best.ItemCount() == 0 {
		sd, err := o.static.FetchDirect(ctx, rawURL)
		if err == nil {
			if best == nil || sd.ItemCount() > best.ItemCount() {
				best = sd
				winner = o.static.Name()
			}
		} else if best == nil {
			return nil, models.NewScrapeError(
				models.ErrCodeTransport, "every acquisition method failed", err)
		}
	}

	if best.ItemCount() > 0 {
		o.memory.Set(host, winner)
	}
	o.finalize(best, rawURL)

	slog.Info("scrape finished",
		"url", rawURL, "transport", winner,
		"items", best.ItemCount(), "closed", best.IsClosed)
	return best, nil
}

// orderFor returns the cascade order for a host, promoting the remembered
// winning transport to the front when the memory has one.
func (o *Orchestrator) orderFor(host string) []transport.Transport {
	remembered := o.memory.Get(host)
	if remembered == "" {
		return o.transports
	}
	ordered := make([]transport.Transport, 0, len(o.transports))
	for _, tr := range o.transports {
		if tr.Name() == remembered {
			ordered = append(ordered, tr)
		}
	}
	if len(ordered) == 0 {
		return o.transports
	}
	for _, tr := range o.transports {
		if tr.Name() != remembered {
			ordered = append(ordered, tr)
		}
	}
	return ordered
}

// finalize fills placeholder fields and attaches the user-facing warnings.
func (o *Orchestrator) finalize(sd *models.ScrapedData, rawURL string) {
	if sd.RestaurantName == "" {
		sd.RestaurantName = placeholderName(rawURL)
	}
	if sd.RestaurantImage == "" {
		sd.RestaurantImage = placeholderImageURL
	}

	var warnings []string
	if sd.IsClosed {
		if sd.NextOpening != "" {
			warnings = append(warnings, warnClosedPrefix+" "+sd.NextOpening)
		} else {
			warnings = append(warnings, warnClosedPrefix+" "+warnReopenUnknown)
		}
	}
	if sd.ItemCount() == 0 {
		warnings = append(warnings, warnEmptyMenu)
	}
	sd.Warning = strings.Join(warnings, " ")
}

// hostOf is the memory key for a URL.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

// placeholderName derives a readable restaurant name from the URL slug
// ("cantina-da-vila" becomes "Cantina Da Vila"), falling back to the host.
func placeholderName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || looksLikeIdentifier(seg) {
			continue
		}
		words := strings.FieldsFunc(seg, func(r rune) bool {
			return r == '-' || r == '_'
		})
		if len(words) == 0 {
			continue
		}
		for j, w := range words {
			words[j] = capitalize(w)
		}
		return strings.Join(words, " ")
	}
	return u.Hostname()
}

// looksLikeIdentifier skips UUIDs and other opaque path segments that make
// terrible display names.
func looksLikeIdentifier(seg string) bool {
	if len(seg) == 36 && strings.Count(seg, "-") == 4 {
		return true
	}
	digits := 0
	for _, r := range seg {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits > len(seg)/2
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
