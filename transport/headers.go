package transport

import "sync/atomic"

// acceptLanguage matches the locale of the target sites; an en-US fetch of
// a pt-BR delivery page is a bot tell.
const acceptLanguage = "pt-BR,pt;q=0.9,en;q=0.8"

const htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"

// userAgents is the rotation pool for static fetches. Desktop browsers
// only; the target sites serve mobile UAs an app-install interstitial.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
}

var uaCursor atomic.Uint32

// nextUserAgent rotates through the pool. Rotation affects only request
// headers, never parsed output, so extraction stays deterministic.
func nextUserAgent() string {
	n := uaCursor.Add(1)
	return userAgents[int(n-1)%len(userAgents)]
}

// browserHeaders is the full browser-like header set (tier 0).
func browserHeaders(ua string) map[string]string {
	return map[string]string{
		"User-Agent":                ua,
		"Accept":                    htmlAccept,
		"Accept-Language":           acceptLanguage,
		"Cache-Control":             "no-cache",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
	}
}

// reducedHeaders drops the fetch-metadata headers (tier 1). Some CDN rules
// reject Sec-Fetch-* combinations they consider impossible.
func reducedHeaders(ua string) map[string]string {
	return map[string]string{
		"User-Agent":      ua,
		"Accept":          htmlAccept,
		"Accept-Language": acceptLanguage,
	}
}

// minimalHeaders is the bare-minimum set (tier 2).
func minimalHeaders(ua string) map[string]string {
	return map[string]string{
		"User-Agent": ua,
		"Accept":     "*/*",
	}
}

// headerTiers returns the three header sets for one URL attempt, fullest
// first, all sharing a single rotated user agent.
func headerTiers() []map[string]string {
	ua := nextUserAgent()
	return []map[string]string{
		browserHeaders(ua),
		reducedHeaders(ua),
		minimalHeaders(ua),
	}
}

// jsonHeaders is the header set for guessed API endpoints.
func jsonHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      nextUserAgent(),
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": acceptLanguage,
	}
}
