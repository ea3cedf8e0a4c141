package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/extract"
	"github.com/cardapiolab/menugrab/models"
)

// Browser renders the page in a headless Chromium before extracting, so
// JS-built menus are visible. Development-only: the orchestrator wires it
// in only when the dev flag is set. The browser process is scoped to one
// Fetch call and is released on every exit path.
//
// Lifecycle: launch → connect → page → stealth + headers + hijack (all
// before navigation, or they don't apply) → navigate → settle → expand
// collapsed sections → scroll for lazy content → run the in-page
// extraction script → close.
type Browser struct {
	cfg       config.BrowserConfig
	extractor *extract.Extractor
}

func NewBrowser(cfg config.BrowserConfig, extractor *extract.Extractor) *Browser {
	return &Browser{cfg: cfg, extractor: extractor}
}

func (t *Browser) Name() string { return "browser" }

func (t *Browser) Fetch(ctx context.Context, req *Request) (*models.ScrapedData, error) {
	l := launcher.New().
		Headless(t.cfg.Headless).
		NoSandbox(t.cfg.NoSandbox)
	if t.cfg.BrowserBin != "" {
		l = l.Bin(t.cfg.BrowserBin)
	}
	applyStealthFlags(l)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			slog.Warn("browser close failed", "error", closeErr)
		}
		l.Cleanup()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash, "failed to create page", err)
	}

	// Stealth, identity and headers must be installed before Navigate.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}
	_ = proto.NetworkSetUserAgentOverride{
		UserAgent:      nextUserAgent(),
		AcceptLanguage: acceptLanguage,
	}.Call(page)
	_ = proto.EmulationSetDeviceMetricsOverride{
		Width:             1366,
		Height:            768,
		DeviceScaleFactor: 1,
	}.Call(page)
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": acceptLanguage,
		}),
	}.Call(page)

	router := setupHijack(page, t.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx).Timeout(t.cfg.NavigationTimeout)
	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeBrowserError(err, "navigation to target URL failed")
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr)
	}
	if err := sleepCtx(ctx, t.cfg.SettleDelay); err != nil {
		return nil, categorizeBrowserError(err, "settle wait interrupted")
	}

	// Reveal collapsed sections; individual click failures don't matter.
	_, _ = p.Eval(`(sels) => {
		for (const sel of sels) {
			for (const el of document.querySelectorAll(sel)) {
				try { el.click(); } catch (e) {}
			}
		}
	}`, extract.ExpandSelectors)

	// Bottom and back up, to trigger lazy-loaded cards.
	_, _ = p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	if err := sleepCtx(ctx, 500*time.Millisecond); err != nil {
		return nil, categorizeBrowserError(err, "scroll wait interrupted")
	}
	_, _ = p.Eval(`() => window.scrollTo(0, 0)`)

	res, err := p.Eval(extract.InPageScript())
	if err != nil {
		return nil, categorizeBrowserError(err, "in-page extraction failed")
	}

	sd, err := decodePageResult(res.Value)
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeParse, "failed to decode in-page result", err)
	}
	t.extractor.FilterInPlace(sd)
	return sd, nil
}

// applyStealthFlags disables the Chromium behaviors that expose automation.
func applyStealthFlags(l *launcher.Launcher) {
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
}

// pageResult mirrors the object shape the in-page script returns.
type pageResult struct {
	RestaurantName  string            `json:"restaurant_name"`
	RestaurantImage string            `json:"restaurant_image"`
	MenuItems       []models.MenuItem `json:"menu_items"`
	IsClosed        bool              `json:"is_closed"`
	NextOpening     string            `json:"next_opening"`
}

func decodePageResult(value gson.JSON) (*models.ScrapedData, error) {
	raw, err := json.Marshal(value.Val())
	if err != nil {
		return nil, err
	}
	var pr pageResult
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, err
	}

	sd := models.NewScrapedData("browser")
	sd.RestaurantName = pr.RestaurantName
	sd.RestaurantImage = pr.RestaurantImage
	sd.IsClosed = pr.IsClosed
	sd.NextOpening = pr.NextOpening
	for _, it := range pr.MenuItems {
		sd.AddItem(it)
	}
	return sd, nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// categorizeBrowserError wraps raw errors into typed ScrapeErrors so the
// cascade log and the API layer can tell timeouts from crashes.
func categorizeBrowserError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeBrowserCrash, msg, err)
	}
}
