package models

import (
	"sync"
	"testing"
)

// Workers write results while the status endpoint reads snapshots; both
// must be safe to run together (go test -race covers the interleaving).
func TestBatchJobConcurrentResultsAndSnapshot(t *testing.T) {
	const total = 40
	job := &BatchJob{
		ID:      "batch-test",
		Status:  "processing",
		Total:   total,
		Results: make([]*ScrapeResponse, total),
	}

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			job.SetResult(idx, &ScrapeResponse{Success: idx%2 == 0})
		}(i)
	}

	readers := make(chan struct{})
	go func() {
		defer close(readers)
		for i := 0; i < 100; i++ {
			snap := job.Snapshot()
			if snap.Completed > snap.Total {
				t.Errorf("Completed = %d exceeds Total = %d", snap.Completed, snap.Total)
				return
			}
			for idx, r := range snap.Results {
				if r == nil {
					continue
				}
				if want := idx%2 == 0; r.Success != want {
					t.Errorf("Results[%d].Success = %v, want %v", idx, r.Success, want)
					return
				}
			}
		}
	}()

	wg.Wait()
	<-readers

	job.Finish("completed")
	snap := job.Snapshot()
	if snap.Status != "completed" {
		t.Errorf("Status = %q, want %q", snap.Status, "completed")
	}
	if snap.Completed != total {
		t.Errorf("Completed = %d, want %d", snap.Completed, total)
	}
	for idx, r := range snap.Results {
		if r == nil {
			t.Errorf("Results[%d] = nil after all workers finished", idx)
		}
	}
}

func TestBatchJobSnapshotCopiesResults(t *testing.T) {
	job := &BatchJob{
		ID:      "batch-copy",
		Status:  "processing",
		Total:   2,
		Results: make([]*ScrapeResponse, 2),
	}
	job.SetResult(0, &ScrapeResponse{Success: true})

	snap := job.Snapshot()
	job.SetResult(1, &ScrapeResponse{Success: false})

	if snap.Results[1] != nil {
		t.Error("snapshot sees a result recorded after it was taken")
	}
	if snap.Completed != 1 {
		t.Errorf("Completed = %d, want 1", snap.Completed)
	}
}
