package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the restaurant page to extract a menu from. Required.
	URL string `json:"url" binding:"required,url"`

	// Timeout is the maximum duration in seconds for the whole cascade.
	// Default: 60. Max: 180.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`

	// MaxAge, in milliseconds, enables the response cache: a cached result
	// younger than MaxAge is returned instead of re-running the cascade.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// SkipBrowser disables the headless-browser transport for this request
	// even when the process runs in development mode.
	SkipBrowser bool `json:"skip_browser,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 60
	}
}
