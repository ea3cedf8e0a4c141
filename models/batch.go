package models

import "sync"

// BatchRequest is the payload for POST /api/v1/batch/scrape.
type BatchRequest struct {
	// URLs is the list of restaurant pages to scrape. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=50"`

	// Options contains shared scrape options applied to all URLs.
	Options BatchOptions `json:"options"`

	// WebhookURL, if set, receives a signed batch.completed event when the
	// whole job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// BatchOptions are the shared settings applied to every URL in a batch.
type BatchOptions struct {
	Timeout     int  `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`
	SkipBrowser bool `json:"skip_browser,omitempty"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/scrape.
type BatchResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Results   []*ScrapeResponse `json:"results,omitempty"`
}

// BatchJob tracks an in-progress batch scrape operation. Status, Completed
// and Results are written by the batch worker goroutines while the status
// endpoint reads them, so they are guarded by mu: mutate through SetResult
// and Finish, read through Snapshot. ID, Total, WebhookURL and CreatedAt
// are immutable after creation.
type BatchJob struct {
	ID         string
	Status     string // "processing", "completed", "failed", "partial"
	Total      int
	Completed  int
	Results    []*ScrapeResponse
	WebhookURL string
	CreatedAt  int64 // unix timestamp

	mu sync.Mutex
}

// SetResult records the outcome for one URL and advances the completed
// counter. Safe for concurrent use by the batch workers.
func (j *BatchJob) SetResult(idx int, resp *ScrapeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Results[idx] = resp
	j.Completed++
}

// Finish marks the job's terminal status.
func (j *BatchJob) Finish(status string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
}

// Snapshot returns a consistent view of the job for API responses and
// webhook payloads. The result pointers are shared with the job, but a
// result is never written again once set.
func (j *BatchJob) Snapshot() BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]*ScrapeResponse, len(j.Results))
	copy(results, j.Results)
	return BatchStatusResponse{
		ID:        j.ID,
		Status:    j.Status,
		Completed: j.Completed,
		Total:     j.Total,
		Results:   results,
	}
}
