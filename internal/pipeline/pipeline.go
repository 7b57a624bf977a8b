package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/omen/internal/analyze"
	"github.com/ppiankov/omen/internal/cache"
	"github.com/ppiankov/omen/internal/extract"
	"github.com/ppiankov/omen/internal/llm"
	"github.com/ppiankov/omen/internal/logging"
	"github.com/ppiankov/omen/internal/model"
)

// Pipeline orchestrates fetching, extraction, analysis and rendering
type Pipeline struct {
	fetcher    *Fetcher
	extractor  *extract.ArticleExtractor
	analyzer   *analyze.Analyzer
	renderer   *Renderer
	summarizer *llm.Summarizer // nil when no provider is configured
	closers    []func() error
	config     *model.Config
	logger     *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration. Extra
// fetcher options are applied after the configured ones.
func NewPipeline(cfg *model.Config, logger *zap.Logger, extra ...FetcherOption) *Pipeline {
	logger = logging.OrNop(logger)
	p := &Pipeline{
		extractor: extract.NewArticleExtractor(),
		analyzer:  analyze.NewAnalyzer(logger),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		config:    cfg,
		logger:    logger,
	}

	opts := []FetcherOption{
		WithLogger(logger),
		WithMaxRetries(cfg.HTTP.MaxRetries),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, WithCache(p.newCache(), cfg.Cache.DiskTTL))
	}
	if cfg.HTTP.RespectRobots {
		opts = append(opts, WithRobots())
	}
	opts = append(opts, extra...)
	p.fetcher = NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy, opts...)

	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			logger.Warn("Failed to initialize LLM provider", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			p.summarizer = s
		}
	}

	return p
}

// newCache builds the memory + disk cache, adding redis when configured
func (p *Pipeline) newCache() cache.Cache {
	cfg := p.config.Cache
	var shared cache.Cache

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.DiskTTL)
		if err != nil {
			p.logger.Warn("Redis cache unavailable, continuing without it", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			shared = rc
			p.closers = append(p.closers, rc.Close)
		}
	}

	return cache.NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL, shared)
}

// Close releases connections held by the pipeline
func (p *Pipeline) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

// ScanResult contains the complete scan result
type ScanResult struct {
	Report *model.Report
	Error  error
}

// ScanURL fetches a page and analyzes its article text
func (p *Pipeline) ScanURL(ctx context.Context, url string) (*ScanResult, error) {
	fetchResult, err := p.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	article, err := p.extractor.Extract(fetchResult.HTML, fetchResult.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("extract article: %w", err)
	}

	report := p.analyzer.Analyze(article, model.OriginURL)
	report.SourceURL = fetchResult.FinalURL
	if article.Title == "" {
		report.Subject = fetchResult.Subject
	}
	meta := fetchResult.Meta
	report.FetchMeta = &meta

	p.summarize(ctx, report)

	p.logger.Info("Scanned URL",
		zap.String("url", report.SourceURL),
		zap.Int("severity", report.Warfare.Severity),
		zap.Bool("from_cache", meta.FromCache))

	return &ScanResult{Report: report}, nil
}

// AnalyzeArticle analyzes text that did not come from a fetch
func (p *Pipeline) AnalyzeArticle(ctx context.Context, article model.Article, origin model.Origin) (*ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := p.analyzer.Analyze(article, origin)
	p.summarize(ctx, report)

	return &ScanResult{Report: report}, nil
}

// summarize attaches the LLM narrative after scoring; failures only warn
func (p *Pipeline) summarize(ctx context.Context, report *model.Report) {
	if !p.summarizer.IsEnabled() {
		return
	}

	summary, err := p.summarizer.GenerateSummary(ctx, *report)
	if err != nil {
		p.logger.Warn("LLM summary generation failed", zap.String("subject", report.Subject), zap.Error(err))
		return
	}
	report.LLM = summary
}

// RenderReport renders the report to the requested outputs and prints the
// digest to out
func (p *Pipeline) RenderReport(out io.Writer, report *model.Report, jsonPath string, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug("Wrote JSON", zap.String("path", jsonPath))
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("Wrote Markdown", zap.String("path", mdPath))
	}

	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			p.logger.Warn("Failed to write LLM summary", zap.String("path", llmPath), zap.Error(err))
		} else {
			p.logger.Debug("Wrote LLM summary", zap.String("path", llmPath))
		}
	}

	p.renderer.RenderSummary(out, report)

	return nil
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
