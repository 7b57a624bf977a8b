package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/omen/internal/extract"
	"github.com/ppiankov/omen/internal/model"
	"github.com/ppiankov/omen/internal/pipeline"
)

var (
	analyzeJSON     string
	analyzeMD       string
	analyzeDir      string
	analyzeTitle    string
	analyzeEmail    bool
	analyzeHTML     bool
	analyzeNoFooter bool
)

// inputFormat selects how raw bytes become an article
type inputFormat int

const (
	formatAuto inputFormat = iota
	formatText
	formatHTML
	formatEmail
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze local text, HTML or email files",
	Long: `Analyze scores article text that is already on disk or piped in.

Inputs are read from the named files, or from stdin when no file or "-" is
given. The format follows the file extension (.html/.htm, .eml, anything
else is plain text whose first line is the title); --html and --eml force
a format. Several files are analyzed in parallel.

Example:
  omen analyze story.txt
  curl -s https://example.com/story | omen analyze --html --json -
  omen analyze newsletters/*.eml --output-dir ./reports
  echo "Moloch rises" | omen analyze --title "Headline"`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "output JSON path for a single input (\"-\" for stdout)")
	analyzeCmd.Flags().StringVar(&analyzeMD, "md", "", "output Markdown path for a single input")
	analyzeCmd.Flags().StringVar(&analyzeDir, "output-dir", "", "write a JSON and Markdown report per input into this directory")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "article title (the whole input becomes the body)")
	analyzeCmd.Flags().BoolVar(&analyzeEmail, "eml", false, "treat inputs as RFC 822 email messages")
	analyzeCmd.Flags().BoolVar(&analyzeHTML, "html", false, "treat inputs as HTML pages")
	analyzeCmd.Flags().BoolVar(&analyzeNoFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeEmail && analyzeHTML {
		return fmt.Errorf("--eml and --html are mutually exclusive")
	}
	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	if countStdin(inputs) > 1 {
		return fmt.Errorf("stdin (-) can only be read once")
	}
	if len(inputs) > 1 && (analyzeJSON != "" || analyzeMD != "") {
		return fmt.Errorf("--json and --md take a single input; use --output-dir for several")
	}

	format := formatAuto
	switch {
	case analyzeEmail:
		format = formatEmail
	case analyzeHTML:
		format = formatHTML
	}

	cfg := commandConfig()
	cfg.Cache.Enabled = false // nothing is fetched
	if analyzeNoFooter {
		cfg.Output.IncludeFooter = false
	}

	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	p := pipeline.NewPipeline(cfg, logger)
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("Failed to close pipeline", zap.Error(err))
		}
	}()

	reports := make([]*model.Report, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Concurrency.Workers, 1))

	for i, input := range inputs {
		g.Go(func() error {
			article, origin, err := readInput(input, format, analyzeTitle, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			if article.IsEmpty() {
				logger.Warn("Input has no text", zap.String("input", input))
			}

			result, err := p.AnalyzeArticle(gctx, article, origin)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			reports[i] = result.Report
			logger.Debug("Analyzed input",
				zap.String("input", input),
				zap.Int("severity", result.Report.Warfare.Severity),
				zap.Int("gematria_total", result.Report.Gematria.TotalValue))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writeAnalyzeOutputs(cmd, p, reports)
}

func writeAnalyzeOutputs(cmd *cobra.Command, p *pipeline.Pipeline, reports []*model.Report) error {
	out := cmd.OutOrStdout()

	if analyzeJSON == "-" {
		if err := p.Renderer().WriteJSON(out, reports[0]); err != nil {
			return err
		}
		// keep stdout pure JSON
		return p.RenderReport(cmd.ErrOrStderr(), reports[0], "", analyzeMD)
	}

	if analyzeDir == "" {
		for _, report := range reports {
			if err := p.RenderReport(out, report, analyzeJSON, analyzeMD); err != nil {
				return fmt.Errorf("render failed: %w", err)
			}
		}
		return nil
	}

	used := make(map[string]int)
	for _, report := range reports {
		slug := uniqueName(sanitizeFilename(report.Subject), used)
		jsonPath := filepath.Join(analyzeDir, slug+".json")
		mdPath := filepath.Join(analyzeDir, slug+".md")
		if err := p.RenderReport(out, report, jsonPath, mdPath); err != nil {
			return fmt.Errorf("render %s: %w", report.Subject, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %s -> %s\n", report.Subject, jsonPath)
	}
	return nil
}

// readInput loads one input and converts it to an article. "-" reads stdin.
func readInput(path string, format inputFormat, title string, stdin io.Reader) (model.Article, model.Origin, error) {
	var (
		data   []byte
		err    error
		origin = model.OriginFile
		source = filepath.Base(path)
	)

	if path == "-" {
		origin = model.OriginStdin
		source = "stdin"
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Article{}, "", fmt.Errorf("read input: %w", err)
	}

	if format == formatAuto {
		format = formatFor(path)
	}

	var article model.Article
	switch format {
	case formatEmail:
		article, err = extract.FromEmail(bytes.NewReader(data))
		if err != nil {
			return model.Article{}, "", err
		}
		origin = model.OriginEmail
		if article.Source == "" {
			article.Source = source
		}
	case formatHTML:
		article, err = extract.NewArticleExtractor().Extract(string(data), "")
		if err != nil {
			return model.Article{}, "", err
		}
		article.Source = source
	default:
		if title != "" {
			article = model.Article{Body: strings.TrimSpace(string(data)), Source: source}
		} else {
			article = extract.FromText(string(data), source)
		}
	}

	if title != "" {
		article.Title = title
	}
	return article, origin, nil
}

func formatFor(path string) inputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		return formatEmail
	case ".html", ".htm":
		return formatHTML
	default:
		return formatText
	}
}

func countStdin(inputs []string) int {
	n := 0
	for _, in := range inputs {
		if in == "-" {
			n++
		}
	}
	return n
}
