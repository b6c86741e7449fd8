package loopnet

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"property-parser/models"
	"property-parser/utils"
)

// WorkerPool parses saved results pages offline. Saved pages do not depend
// on each other, so unlike the live crawl they can be handled in parallel.
type WorkerPool struct {
	workers int
	log     utils.LogFunc
	jobs    chan models.ScrapeJob
	results chan models.ScrapeResult
	wg      sync.WaitGroup
}

func NewWorkerPool(workers int, log utils.LogFunc) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = utils.Discard
	}
	return &WorkerPool{
		workers: workers,
		log:     log,
	}
}

// ParseFiles extracts listings from every file in paths. Results come back
// in the order of paths, whichever worker finished first.
func (p *WorkerPool) ParseFiles(ctx context.Context, paths []string) []models.ScrapeResult {
	if len(paths) == 0 {
		return nil
	}

	p.jobs = make(chan models.ScrapeJob, len(paths))
	p.results = make(chan models.ScrapeResult, len(paths))

	workerCount := p.workers
	if len(paths) < workerCount {
		workerCount = len(paths)
	}

	p.wg.Add(workerCount)
	for i := 1; i <= workerCount; i++ {
		go p.worker(ctx, i)
	}

	for i, path := range paths {
		p.jobs <- models.ScrapeJob{Index: i, Path: path}
	}
	close(p.jobs)

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return p.collect(len(paths))
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		result := models.ScrapeResult{Index: job.Index, Path: job.Path}
		if err := ctx.Err(); err != nil {
			result.Error = err
			p.results <- result
			continue
		}

		result.Listings, result.Warnings, result.Error = parseFile(job.Path)
		p.log(utils.LevelInfo, "Worker %d parsed %s (%d listings)", id, job.Path, len(result.Listings))
		p.results <- result
	}
}

func (p *WorkerPool) collect(n int) []models.ScrapeResult {
	all := make([]models.ScrapeResult, 0, n)
	failed := 0

	for result := range p.results {
		if result.Error != nil {
			p.log(utils.LevelError, "%s failed: %v", result.Path, result.Error)
			failed++
		}
		for _, w := range result.Warnings {
			p.log(utils.LevelWarn, "%s: %v", result.Path, w)
		}
		all = append(all, result)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })

	p.log(utils.LevelSuccess, "Files parsed: %d | Failed: %d", len(all)-failed, failed)
	return all
}

func parseFile(path string) ([]models.ListingRecord, []error, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := ParseHTML(string(raw))
	if err != nil {
		return nil, nil, err
	}

	listings, warnings := Extract(doc)
	return listings, warnings, nil
}
