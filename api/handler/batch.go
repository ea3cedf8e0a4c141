package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/models"
	"github.com/cardapiolab/menugrab/scrape"
	"github.com/cardapiolab/menugrab/webhook"
)

// maxBatchConcurrency caps parallel cascades within one batch job; each
// cascade is already network-heavy on its own.
const maxBatchConcurrency = 5

// batchStore holds all in-flight and completed batch jobs.
var batchStore sync.Map

func init() {
	// Background goroutine to expire batch jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			batchStore.Range(func(key, value any) bool {
				job := value.(*models.BatchJob)
				if job.CreatedAt < cutoff {
					batchStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostBatch returns a handler for POST /api/v1/batch/scrape.
// It validates the request, creates a batch job, and launches goroutines
// to scrape each URL concurrently.
func PostBatch(o *scrape.Orchestrator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		jobID := "batch-" + randomID()
		job := &models.BatchJob{
			ID:         jobID,
			Status:     "processing",
			Total:      len(req.URLs),
			Completed:  0,
			Results:    make([]*models.ScrapeResponse, len(req.URLs)),
			WebhookURL: req.WebhookURL,
			CreatedAt:  time.Now().Unix(),
		}
		batchStore.Store(jobID, job)

		// Launch scraping in background.
		go runBatch(o, cfg, job, req)

		c.JSON(http.StatusOK, models.BatchResponse{
			ID:     jobID,
			Status: "processing",
			Total:  len(req.URLs),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/batch/:id.
func GetBatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := batchStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}

		job := val.(*models.BatchJob)
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// runBatch processes all URLs in a batch job with concurrency limited by a semaphore.
func runBatch(o *scrape.Orchestrator, cfg *config.Config, job *models.BatchJob, req models.BatchRequest) {
	sem := make(chan struct{}, maxBatchConcurrency)

	var wg sync.WaitGroup
	var completed atomic.Int32
	var failed atomic.Int32

	for i, rawURL := range req.URLs {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp := scrapeOne(o, targetURL, req.Options)
			job.SetResult(idx, resp)

			if resp.Success {
				completed.Add(1)
			} else {
				failed.Add(1)
			}
		}(i, rawURL)
	}

	wg.Wait()

	failedCount := int(failed.Load())
	completedCount := int(completed.Load())

	switch {
	case failedCount == job.Total:
		job.Finish("failed")
	case failedCount > 0:
		job.Finish("partial")
	default:
		job.Finish("completed")
	}

	snap := job.Snapshot()

	slog.Info("batch job finished",
		"id", job.ID,
		"status", snap.Status,
		"completed", completedCount,
		"failed", failedCount,
		"total", job.Total,
	)

	if job.WebhookURL != "" {
		webhook.DeliverAsync(job.WebhookURL, cfg.Webhook.Secret, &webhook.Event{
			Type:      "batch.completed",
			JobID:     job.ID,
			Timestamp: time.Now().Unix(),
			Data:      snap,
		})
	}
}

// scrapeOne runs a single cascade for one URL using shared batch options.
func scrapeOne(o *scrape.Orchestrator, targetURL string, opts models.BatchOptions) *models.ScrapeResponse {
	totalStart := time.Now()

	sreq := &models.ScrapeRequest{
		URL:         targetURL,
		Timeout:     opts.Timeout,
		SkipBrowser: opts.SkipBrowser,
	}
	sreq.Defaults()

	ctx, cancel := context.WithTimeout(
		context.Background(), time.Duration(sreq.Timeout)*time.Second)
	defer cancel()

	fetchStart := time.Now()
	data, err := o.ScrapeWithOptions(ctx, sreq.URL, scrape.Options{
		SkipBrowser: sreq.SkipBrowser,
	})
	fetchMs := time.Since(fetchStart).Milliseconds()

	if err != nil {
		scrapeErr, ok := err.(*models.ScrapeError)
		if !ok {
			scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
		}
		return &models.ScrapeResponse{
			Success: false,
			Error:   scrapeErr.ToDetail(),
			Timing: models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			},
		}
	}

	return &models.ScrapeResponse{
		Success: true,
		Data:    data,
		Timing: models.TimingInfo{
			TotalMs: time.Since(totalStart).Milliseconds(),
			FetchMs: fetchMs,
		},
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
