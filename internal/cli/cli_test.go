package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/omen/internal/gematria"
	"github.com/ppiankov/omen/internal/model"
	"github.com/ppiankov/omen/internal/warfare"
)

const storyText = "Davos Summit\nThe Great Reset brings a new world order under the blood moon.\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadInput_TextFile(t *testing.T) {
	path := writeTemp(t, "story.txt", storyText)

	article, origin, err := readInput(path, formatAuto, "", nil)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}

	if origin != model.OriginFile {
		t.Errorf("Expected file origin, got %q", origin)
	}
	if article.Title != "Davos Summit" {
		t.Errorf("Unexpected title: %q", article.Title)
	}
	if article.Source != "story.txt" {
		t.Errorf("Unexpected source: %q", article.Source)
	}
	if !strings.HasPrefix(article.Body, "The Great Reset") {
		t.Errorf("Unexpected body: %q", article.Body)
	}
}

func TestReadInput_StdinWithTitle(t *testing.T) {
	article, origin, err := readInput("-", formatAuto, "Headline", strings.NewReader("  first line\nsecond line \n"))
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}

	if origin != model.OriginStdin {
		t.Errorf("Expected stdin origin, got %q", origin)
	}
	if article.Title != "Headline" {
		t.Errorf("Unexpected title: %q", article.Title)
	}
	if article.Body != "first line\nsecond line" {
		t.Errorf("Expected whole input as body, got %q", article.Body)
	}
	if article.Source != "stdin" {
		t.Errorf("Unexpected source: %q", article.Source)
	}
}

func TestReadInput_HTMLByExtension(t *testing.T) {
	page := `<html><head><title>Solstice Rites</title></head><body><p>World news today.</p></body></html>`
	path := writeTemp(t, "page.HTML", page)

	article, origin, err := readInput(path, formatAuto, "", nil)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}

	if origin != model.OriginFile {
		t.Errorf("Expected file origin, got %q", origin)
	}
	if article.Title != "Solstice Rites" {
		t.Errorf("Unexpected title: %q", article.Title)
	}
	if !strings.Contains(article.Body, "World news today.") {
		t.Errorf("Unexpected body: %q", article.Body)
	}
	if strings.Contains(article.Body, "<p>") {
		t.Errorf("Body should not contain markup: %q", article.Body)
	}
}

func TestReadInput_ForcedEmail(t *testing.T) {
	msg := "From: Watchman Weekly <news@watchman.example>\r\n" +
		"Subject: The Great Reset Returns\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"World leaders gathered to discuss global governance.\r\n"
	path := writeTemp(t, "message.txt", msg)

	article, origin, err := readInput(path, formatEmail, "", nil)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}

	if origin != model.OriginEmail {
		t.Errorf("Expected email origin, got %q", origin)
	}
	if article.Title != "The Great Reset Returns" {
		t.Errorf("Unexpected title: %q", article.Title)
	}
	if article.Body != "World leaders gathered to discuss global governance." {
		t.Errorf("Unexpected body: %q", article.Body)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	_, _, err := readInput(filepath.Join(t.TempDir(), "absent.txt"), formatAuto, "", nil)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want inputFormat
	}{
		{"a.eml", formatEmail},
		{"a.html", formatHTML},
		{"dir/a.htm", formatHTML},
		{"a.txt", formatText},
		{"-", formatText},
		{"noext", formatText},
	}

	for _, tt := range tests {
		if got := formatFor(tt.path); got != tt.want {
			t.Errorf("formatFor(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Davos Summit: Build Back Better", "davos-summit-build-back-better"},
		{"https://example.com/news/story", "https-example-com-news-story"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"", "report"},
		{"///", "report"},
		{"Ünïcode Tëst", "ünïcode-tëst"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := sanitizeFilename(strings.Repeat("é", 80))
	if len(long) > 100 {
		t.Errorf("Expected at most 100 bytes, got %d", len(long))
	}
	if !strings.HasPrefix(strings.Repeat("é", 80), long) {
		t.Errorf("Truncation split a rune: %q", long)
	}
}

func TestUniqueName(t *testing.T) {
	used := make(map[string]int)
	got := []string{
		uniqueName("story", used),
		uniqueName("story", used),
		uniqueName("other", used),
		uniqueName("story", used),
	}
	want := []string{"story", "story-2", "other", "story-3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := loadConfigFrom(viper.New())
	if err != nil {
		t.Fatalf("loadConfigFrom failed: %v", err)
	}
	if diff := cmp.Diff(model.DefaultConfig(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFrom_Env(t *testing.T) {
	t.Setenv("OMEN_HTTP_TIMEOUT", "5s")
	t.Setenv("OMEN_CONCURRENCY_WORKERS", "9")
	t.Setenv("OMEN_CACHE_REDIS_ADDR", "localhost:6379")
	t.Setenv("OMEN_LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	v := viper.New()
	bindEnv(v)

	cfg, err := loadConfigFrom(v)
	if err != nil {
		t.Fatalf("loadConfigFrom failed: %v", err)
	}

	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Concurrency.Workers != 9 {
		t.Errorf("Expected 9 workers, got %d", cfg.Concurrency.Workers)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Expected redis address from env, got %q", cfg.Cache.RedisAddr)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("Expected API key from OPENAI_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if !cfg.LLM.StrictCitations {
		t.Error("Expected strict citations default to survive")
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	path := writeTemp(t, "config.yaml", "http:\n  timeout: 7s\nllm:\n  provider: ollama\n  model: llama3\n")

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := loadConfigFrom(v)
	if err != nil {
		t.Fatalf("loadConfigFrom failed: %v", err)
	}

	if cfg.HTTP.Timeout != 7*time.Second {
		t.Errorf("Expected 7s timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3" {
		t.Errorf("Unexpected LLM config: %+v", cfg.LLM)
	}
	if cfg.HTTP.UserAgent != model.DefaultConfig().HTTP.UserAgent {
		t.Errorf("Expected default user agent, got %q", cfg.HTTP.UserAgent)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".omen", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Omen Configuration File") {
		t.Errorf("Missing header: %q", string(data[:40]))
	}

	var got model.Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(*model.DefaultConfig(), got); diff != "" {
		t.Errorf("written config mismatch (-want +got):\n%s", diff)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestShowConfig_HidesAPIKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"

	var buf bytes.Buffer
	if err := showConfig(&buf, cfg); err != nil {
		t.Fatalf("showConfig failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "sk-secret") {
		t.Error("API key must not be printed")
	}
	for _, want := range []string{"user_agent:", "duplicate_threshold:", "set (hidden)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{}
	addFetchFlags(cmd)
	addLLMFlags(cmd)

	for name, value := range map[string]string{"ua": "Tester/1.0", "no-robots": "true", "max-bytes": "1024"} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	cfg := model.DefaultConfig()
	if err := applyFlags(cmd, cfg); err != nil {
		t.Fatalf("applyFlags failed: %v", err)
	}

	if cfg.HTTP.UserAgent != "Tester/1.0" {
		t.Errorf("Unexpected user agent: %q", cfg.HTTP.UserAgent)
	}
	if cfg.HTTP.RespectRobots {
		t.Error("Expected robots to be disabled")
	}
	if cfg.HTTP.MaxBodyBytes != 1024 {
		t.Errorf("Unexpected max bytes: %d", cfg.HTTP.MaxBodyBytes)
	}
	if !cfg.Cache.Enabled {
		t.Error("Unset --no-cache must leave the cache enabled")
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("LLM must stay disabled without --llm, got %q", cfg.LLM.Provider)
	}
}

func TestApplyFlags_LLMRequiresKey(t *testing.T) {
	cmd := &cobra.Command{}
	addFetchFlags(cmd)
	addLLMFlags(cmd)
	if err := cmd.Flags().Set("llm", "true"); err != nil {
		t.Fatalf("set llm: %v", err)
	}

	cfg := model.DefaultConfig()
	if err := applyFlags(cmd, cfg); err == nil {
		t.Fatal("Expected error without an OpenAI key")
	}

	cfg = model.DefaultConfig()
	cfg.LLM.BaseURL = "http://localhost:11434/v1"
	if err := applyFlags(cmd, cfg); err != nil {
		t.Fatalf("Expected custom base URL to need no key, got %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected LLM config: %+v", cfg.LLM)
	}
}

func TestAnalyzeCommand_WritesJSON(t *testing.T) {
	logger = zap.NewNop()
	input := writeTemp(t, "story.txt", storyText)
	jsonPath := filepath.Join(t.TempDir(), "report.json")
	t.Cleanup(func() {
		analyzeJSON = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetArgs([]string{"analyze", input, "--json", jsonPath})
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)

	if err := Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	text := "Davos Summit\nThe Great Reset brings a new world order under the blood moon."
	if report.Subject != "Davos Summit" {
		t.Errorf("Unexpected subject: %q", report.Subject)
	}
	if report.Origin != model.OriginFile {
		t.Errorf("Unexpected origin: %q", report.Origin)
	}
	if want := warfare.Scan(text).Severity; report.Warfare.Severity != want {
		t.Errorf("Expected severity %d, got %d", want, report.Warfare.Severity)
	}
	if want := gematria.Analyze(text).TotalValue; report.Gematria.TotalValue != want {
		t.Errorf("Expected gematria total %d, got %d", want, report.Gematria.TotalValue)
	}
	if !strings.Contains(out.String(), "Davos Summit") {
		t.Errorf("Expected digest on stdout, got %q", out.String())
	}
}

func TestAnalyzeCommand_OutputDir(t *testing.T) {
	logger = zap.NewNop()
	input := writeTemp(t, "story.txt", storyText)
	dir := t.TempDir()
	t.Cleanup(func() {
		analyzeDir = ""
		analyzeNoFooter = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var stderr bytes.Buffer
	rootCmd.SetArgs([]string{"analyze", input, "--output-dir", dir, "--no-footer"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(&stderr)

	if err := Execute(); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	jsonPath := filepath.Join(dir, "davos-summit.json")
	if _, err := os.Stat(jsonPath); err != nil {
		t.Fatalf("Expected report at %s: %v", jsonPath, err)
	}
	if want := "✓ Davos Summit -> " + jsonPath; !strings.Contains(stderr.String(), want) {
		t.Errorf("Expected progress line %q, got %q", want, stderr.String())
	}

	if !appConfig.Cache.Enabled || !appConfig.Output.IncludeFooter {
		t.Errorf("analyze changed the loaded config: cache=%v footer=%v",
			appConfig.Cache.Enabled, appConfig.Output.IncludeFooter)
	}
}

func TestCommandConfig_IsCopy(t *testing.T) {
	orig := appConfig
	t.Cleanup(func() { appConfig = orig })
	appConfig = model.DefaultConfig()

	cfg := commandConfig()
	cfg.HTTP.UserAgent = "changed"
	cfg.Cache.Enabled = false

	if diff := cmp.Diff(model.DefaultConfig(), appConfig); diff != "" {
		t.Errorf("appConfig changed (-want +got):\n%s", diff)
	}
}

func TestAnalyzeCommand_RejectsDoubleStdin(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	rootCmd.SetArgs([]string{"analyze", "-", "-"})

	err := Execute()
	if err == nil || !strings.Contains(err.Error(), "stdin") {
		t.Fatalf("Expected stdin error, got %v", err)
	}
}
