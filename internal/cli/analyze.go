package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dkoh/mend/internal/batch"
	"github.com/dkoh/mend/internal/cache"
	"github.com/dkoh/mend/internal/config"
	"github.com/dkoh/mend/internal/diagram"
	"github.com/dkoh/mend/internal/history"
	"github.com/dkoh/mend/internal/llm"
	"github.com/dkoh/mend/internal/output"
	"github.com/dkoh/mend/internal/redact"
	"github.com/dkoh/mend/internal/review"
	"github.com/dkoh/mend/internal/scan"
	"github.com/spf13/cobra"
)

// Shared analyze flags
var (
	flagProvider   string
	flagModel      string
	flagCategories string
	flagFormat     string
	flagOut        string
	flagNoSave     bool
	flagNoRedact   bool
	flagStream     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>...",
	Short: "Analyze source files and write improvement reports",
	Long:  "Analyze collects C# files from the given paths, sends each one to the configured LLM provider, and writes a markdown and HTML report per file.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runAnalyze(args, cfg)
		return nil
	},
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagCategories != "" {
		m["categories"] = flagCategories
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOut != "" {
		m["out"] = flagOut
	}
	return m
}

func runAnalyze(paths []string, cfg config.Config) {
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	categories, err := review.ParseCategories(cfg.Categories)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}
	format, err := review.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	log := newLogger()
	// The batch analyzer owns the per-item retry loop, so the client keeps
	// a single-attempt budget.
	client, err := llm.New(llm.Options{
		Provider:        cfg.Provider,
		Model:           cfg.Model,
		TimeoutSeconds:  cfg.TimeoutSeconds,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
		MaxRetries:      1,
		Logger:          log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case llm.IsCredentialMissing(err):
			exitCode = ExitAuthError
		case llm.IsModelNotFound(err):
			exitCode = ExitUsageError
		default:
			exitCode = ExitRuntimeError
		}
		return
	}
	info := client.ModelInfo()

	items, err := scan.Collect(paths, scan.Options{
		Extensions:   cfg.FileExtensions,
		MaxFileBytes: cfg.MaxFileBytes,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "No matching source files found.")
		exitCode = ExitUsageError
		return
	}
	if cfg.Privacy.RedactSecrets {
		redactItems(items)
	}

	builder := review.NewBuilder(info.Model, info.ContextWindow-info.MaxOutputTokens, format, log)
	reporter := review.NewReporter(info.Model)

	adapter := &clientAdapter{client: client}
	if flagStream && len(items) == 1 {
		adapter.onChunk = func(chunk string) { fmt.Fprint(os.Stdout, chunk) }
	}

	opts := batch.Options{
		Categories: review.Names(categories),
		Logger:     log,
	}
	if cfg.Cache.Enabled {
		c, cerr := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "WARNING: cache unavailable: %v\n", cerr)
		} else {
			opts.Cache = c.ForModel(info.Provider, info.Model)
		}
	}

	analyzer := batch.New(
		adapter,
		func(code string, _ []string) string { return builder.Build(code, categories) },
		func(original, improved string, cats []string) string { return reporter.Build(original, improved, cats) },
		opts,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onProgress := func(current, total int, displayName string) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current+1, total, displayName)
	}
	summary := analyzer.Run(ctx, items, onProgress, nil)

	if !flagNoSave {
		saveResults(cfg, format, summary)
	}

	if err := output.WriteSummary(os.Stdout, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if summary.FailedCount > 0 {
		exitCode = ExitFailures
	}
}

// redactItems wraps each item's loader so secrets never reach the model,
// the cache, or the saved reports. Items collected by scan carry a nil
// loader, meaning read Path from disk.
func redactItems(items []batch.Item) {
	for i := range items {
		load := items[i].Load
		path := items[i].Path
		items[i].Load = func() ([]byte, error) {
			var data []byte
			var err error
			if load != nil {
				data, err = load()
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return nil, err
			}
			return []byte(redact.Secrets(string(data))), nil
		}
	}
}

// saveResults writes per-file reports, renders any flow diagrams, and
// records every attempted item in the history store. Persistence problems
// are warnings; the analysis already happened.
func saveResults(cfg config.Config, format review.OutputFormat, summary batch.Summary) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: history unavailable: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	var conv *diagram.Converter
	if format == review.FormatFlowDiagram {
		conv = diagram.New(30 * time.Second)
		if !conv.Available() {
			fmt.Fprintln(os.Stderr, "WARNING: mmdc not found, skipping diagram rendering")
			conv = nil
		}
	}

	for _, res := range summary.Results {
		rec := history.Record{
			Identifier:     res.Identifier,
			DisplayName:    res.DisplayName,
			Timestamp:      time.Now().Format(time.RFC3339),
			Succeeded:      res.Succeeded,
			ErrorMessage:   res.ErrorMessage,
			ElapsedSeconds: res.ElapsedSeconds,
		}

		if res.Succeeded {
			saved, serr := output.SaveReport(cfg.OutputDir, res.DisplayName, res.ReportText)
			if serr != nil {
				fmt.Fprintf(os.Stderr, "WARNING: saving report for %s: %v\n", res.DisplayName, serr)
			} else {
				rec.ReportName = saved.ReportName
				rec.MarkdownPath = saved.MarkdownPath
				rec.HTMLPath = saved.HTMLPath
			}
			if conv != nil {
				diagramDir := filepath.Join(cfg.OutputDir, "diagrams")
				stem := strings.TrimSuffix(res.DisplayName, filepath.Ext(res.DisplayName))
				if _, derr := conv.RenderAll(res.ImprovedText, diagramDir, stem); derr != nil {
					fmt.Fprintf(os.Stderr, "WARNING: rendering diagrams for %s: %v\n", res.DisplayName, derr)
				}
			}
		}

		if store != nil {
			if _, herr := store.Add(rec); herr != nil {
				fmt.Fprintf(os.Stderr, "WARNING: recording history for %s: %v\n", res.DisplayName, herr)
			}
		}
	}
}

// clientAdapter narrows the llm client to the batch analyzer's contract and
// extracts the improved code from the raw model response.
type clientAdapter struct {
	client  analyzeClient
	onChunk func(string)
}

// analyzeClient is the slice of the llm client the adapter needs.
type analyzeClient interface {
	Analyze(ctx context.Context, prompt string, opts llm.AnalyzeOptions) (string, error)
}

func (a *clientAdapter) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Analyze(ctx, prompt, llm.AnalyzeOptions{
		Streaming: true,
		OnChunk:   a.onChunk,
	})
	if err != nil {
		return "", err
	}
	return review.ExtractCode(resp), nil
}

func init() {
	analyzeCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic)")
	analyzeCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	analyzeCmd.Flags().StringVar(&flagCategories, "categories", "", "Review categories (comma-separated)")
	analyzeCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (improved_code, code_comments, flow_diagram)")
	analyzeCmd.Flags().StringVar(&flagOut, "out", "", "Report output directory")
	analyzeCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not write reports or history")
	analyzeCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	analyzeCmd.Flags().BoolVar(&flagStream, "stream", false, "Print response chunks live (single file only)")
}
