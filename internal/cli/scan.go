package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/omen/internal/model"
	"github.com/ppiankov/omen/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	noRobots    bool
	insecureTLS bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a single web page and generate a report",
	Long: `Scan fetches a web page and:
- Extracts the article title, description and body
- Scores key terms with the Gematria engine
- Matches spiritual warfare classifications, deity names and ritual phrases
- Writes JSON and Markdown reports with transparent signals

Example:
  omen scan https://example.com/news/story
  omen scan https://example.com/story --json report.json --md report.md
  omen scan https://example.com/story --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Output flags
	scanCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scanCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall scan timeout")

	addFetchFlags(scanCmd)
	addLLMFlags(scanCmd)
}

// addFetchFlags registers the HTTP flags shared by scan and batch
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "do not consult robots.txt")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// addLLMFlags registers the optional summary flags
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if changed("no-cache") && noCache {
		cfg.Cache.Enabled = false
	}
	if changed("no-footer") && noFooter {
		cfg.Output.IncludeFooter = false
	}
	if changed("no-robots") && noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
	if changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}

	if changed("llm") && llmEnabled {
		if changed("llm-provider") || cfg.LLM.Provider == "" {
			cfg.LLM.Provider = llmProvider
		}
		if changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
	}

	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

// commandContext returns the command's context, cancelled on SIGINT/SIGTERM
func commandContext(cmd *cobra.Command, limit time.Duration) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if limit <= 0 {
		return ctx, stop
	}

	ctx, cancel := context.WithTimeout(ctx, limit)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg := commandConfig()
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", url)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "⚙️  Fetching HTML...\n")
	}

	p := pipeline.NewPipeline(cfg, logger)
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("Failed to close pipeline", zap.Error(err))
		}
	}()

	result, err := p.ScanURL(ctx, url)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	report := result.Report

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted article: %s\n", report.Subject)
		fmt.Fprintf(os.Stderr, "✓ Found %d key terms (gematria total %d)\n", len(report.Gematria.KeyTerms), report.Gematria.TotalValue)
		fmt.Fprintf(os.Stderr, "✓ Warfare severity: %d/100\n", report.Warfare.Severity)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
	}

	if err := p.RenderReport(cmd.OutOrStdout(), report, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
