package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/omen/internal/fingerprint"
	"github.com/ppiankov/omen/internal/model"
	"github.com/ppiankov/omen/internal/pipeline"
)

// Scanner defines the interface for scanning a URL
type Scanner interface {
	ScanURL(ctx context.Context, url string) (*pipeline.ScanResult, error)
}

// ScanJob represents a URL scan job
type ScanJob struct {
	URL     string
	Scanner Scanner
	Limiter *Limiter
}

// Execute waits for the URL's domain limiter, then scans
func (j *ScanJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.URL); err != nil {
			return &ScanResult{URL: j.URL, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	result, err := j.Scanner.ScanURL(ctx, j.URL)
	if err != nil {
		return &ScanResult{URL: j.URL, Error: err}
	}
	return &ScanResult{URL: j.URL, Report: result.Report}
}

// ScanResult represents the result of a scan job
type ScanResult struct {
	URL    string
	Report *model.Report
	Error  error
}

// GetError returns the error from the scan result
func (r *ScanResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple URLs concurrently
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. Requests to each domain
// are limited to requestsPerSecond; zero disables the limit.
func NewBatchProcessor(scanner Scanner, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		scanner:     scanner,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// Limiter returns the per-domain limiter shared by all jobs
func (b *BatchProcessor) Limiter() *Limiter {
	return b.limiter
}

// ProcessURLs scans the URLs concurrently. Results are in input order and
// failures are reported per URL.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*ScanResult {
	if len(urls) == 0 {
		return []*ScanResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, url := range urls {
		pool.Submit(&ScanJob{
			URL:     url,
			Scanner: b.scanner,
			Limiter: b.limiter,
		})
	}

	results := pool.Wait()

	scanResults := make([]*ScanResult, len(results))
	for i, result := range results {
		scanResults[i] = result.(*ScanResult)
	}

	return scanResults
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ScanResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line), skipping blanks
// and # comments and dropping repeats
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}

// DuplicateGroups groups successful results whose article fingerprints are
// within threshold of each other. Groups hold URLs in input order.
func DuplicateGroups(results []*ScanResult, threshold int) [][]string {
	var items []fingerprint.Item
	for _, r := range results {
		if r.Error != nil || r.Report == nil || r.Report.Fingerprint == "" {
			continue
		}
		items = append(items, fingerprint.Item{ID: r.URL, Digest: r.Report.Fingerprint})
	}
	return fingerprint.Group(items, threshold)
}
