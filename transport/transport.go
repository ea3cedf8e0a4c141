// Package transport implements the document-acquisition methods of the
// extraction cascade. Each transport tries to obtain a menu candidate for
// a URL in its own way (rendered browser DOM, embedded bootstrap JSON,
// guessed REST endpoints, static HTML across URL variants); the scrape
// package drives them in order and keeps the best candidate.
package transport

import (
	"context"

	"github.com/cardapiolab/menugrab/models"
)

// Request carries one acquisition attempt.
type Request struct {
	// URL is the target restaurant page.
	URL string
}

// Transport obtains a candidate result for a URL.
//
// A (nil, error) return means "no candidate from this attempt": the caller
// logs it and moves on to the next transport. Transports never abort the
// cascade; the only hard failure (missing URL) is rejected before any
// transport runs.
type Transport interface {
	// Name identifies the transport in logs, host memory and
	// extraction_method tags.
	Name() string

	Fetch(ctx context.Context, req *Request) (*models.ScrapedData, error)
}
