package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxAttempts bounds the per-item analysis loop.
	maxAttempts = 3
	// retryDelay is the fixed pause between attempts on the same item.
	retryDelay = time.Second
)

// Client is the narrow consumer-side contract the analyzer needs from an
// LLM client. The production implementation streams and fully drains the
// response; the analyzer only sees the final text.
type Client interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// PromptFunc builds the model request payload from source code and the
// run's category identifiers. It must not fail for non-empty code.
type PromptFunc func(code string, categories []string) string

// ReportFunc renders the per-file report. It must not fail for any inputs,
// including improved text that is not valid code.
type ReportFunc func(original, improved string, categories []string) string

// ProgressFunc observes each attempted item before it is processed.
type ProgressFunc func(current, total int, displayName string)

// CancelFunc reports whether the run should stop before the next item.
// It must be cheap and non-blocking; it is called synchronously from the
// run's goroutine.
type CancelFunc func() bool

// ResponseCache lets a run reuse earlier model responses for identical
// inputs. Provider and model are fixed per cache instance.
type ResponseCache interface {
	Get(categories []string, code string) (string, bool)
	Put(categories []string, code, response string)
}

// Options configure an Analyzer beyond its required collaborators.
type Options struct {
	// Categories is the ordered review-category set applied uniformly to
	// every item in a run.
	Categories []string
	// Logger receives per-item diagnostics. Nil means silent.
	Logger *slog.Logger
	// Cache, when non-nil, is consulted before each model call. A hit
	// counts as a first-attempt success.
	Cache ResponseCache
}

// Analyzer runs items through load → prompt → model → report sequentially.
type Analyzer struct {
	client      Client
	buildPrompt PromptFunc
	buildReport ReportFunc
	categories  []string
	cache       ResponseCache
	log         *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// New constructs an Analyzer from a client and the two collaborator
// functions.
func New(client Client, buildPrompt PromptFunc, buildReport ReportFunc, opts Options) *Analyzer {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Analyzer{
		client:      client,
		buildPrompt: buildPrompt,
		buildReport: buildReport,
		categories:  opts.Categories,
		cache:       opts.Cache,
		log:         log,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Run processes items in input order and returns the aggregate Summary.
// Per item, in this exact order: the cancellation check, the progress
// callback, then processing. A cancellation first visible at the Nth check
// therefore yields N-1 results and no Nth progress call. onProgress and
// isCancelled may be nil. Per-item errors never escape Run.
func (a *Analyzer) Run(ctx context.Context, items []Item, onProgress ProgressFunc, isCancelled CancelFunc) Summary {
	startedAt := time.Now()
	summary := Summary{TotalItems: len(items)}

	for i, item := range items {
		if ctx.Err() != nil || (isCancelled != nil && isCancelled()) {
			a.log.Info("run cancelled", "processed", i, "total", len(items))
			break
		}
		name := item.displayName()
		if onProgress != nil {
			onProgress(i, len(items), name)
		}

		res := a.processItem(ctx, item)
		summary.Results = append(summary.Results, res)
		switch res.outcome {
		case outcomeSucceeded:
			summary.SucceededCount++
		case outcomeSkipped:
			summary.SkippedCount++
		default:
			summary.FailedCount++
		}
	}

	summary.StartedAt = startedAt
	summary.FinishedAt = time.Now()
	summary.TotalElapsedSeconds = summary.FinishedAt.Sub(startedAt).Seconds()
	return summary
}

// processItem runs the single-item state machine:
// Loading → Skipped, or Loading → Analyzing(attempt) → Success or
// ExhaustedFailure. Loading problems short-circuit to Skipped and never
// enter the retry loop.
func (a *Analyzer) processItem(ctx context.Context, item Item) FileResult {
	start := time.Now()
	res := FileResult{
		Identifier:  item.Path,
		DisplayName: item.displayName(),
	}

	raw, err := item.load()
	if err != nil {
		return skipped(res, start, fmt.Sprintf("reading file: %v", err))
	}
	if !utf8.Valid(raw) {
		return skipped(res, start, "file is not valid UTF-8")
	}
	code := strings.TrimSpace(string(raw))
	if code == "" {
		return skipped(res, start, "file is empty")
	}
	res.OriginalText = code

	retries := 0
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		improved, err := a.analyzeOnce(ctx, code)
		if err == nil {
			res.ImprovedText = improved
			res.ReportText = a.buildReport(code, improved, a.categories)
			res.Succeeded = true
			res.RetryCount = retries
			res.outcome = outcomeSucceeded
			res.ElapsedSeconds = time.Since(start).Seconds()
			return res
		}

		retries++
		lastErr = err
		a.log.Warn("analysis attempt failed",
			"file", res.DisplayName,
			"attempt", attempt+1,
			"max", maxAttempts,
			"error", err)
		if attempt < maxAttempts-1 {
			if serr := a.sleep(ctx, retryDelay); serr != nil {
				break
			}
		}
	}

	res.outcome = outcomeFailed
	res.RetryCount = retries
	res.ErrorMessage = fmt.Sprintf("analysis failed after %d attempts: %v", retries, lastErr)
	res.ElapsedSeconds = time.Since(start).Seconds()
	return res
}

// analyzeOnce is one attempt: cache lookup, prompt build, model call. A
// panic from a collaborator is converted to an error so one bad item
// cannot abort the run; the message prefix distinguishes it from client
// errors.
func (a *Analyzer) analyzeOnce(ctx context.Context, code string) (improved string, err error) {
	defer func() {
		if r := recover(); r != nil {
			improved = ""
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()

	if a.cache != nil {
		if resp, ok := a.cache.Get(a.categories, code); ok {
			return resp, nil
		}
	}

	prompt := a.buildPrompt(code, a.categories)
	improved, err = a.client.Analyze(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(improved) == "" {
		return "", errors.New("model returned an empty response")
	}
	if a.cache != nil {
		a.cache.Put(a.categories, code, improved)
	}
	return improved, nil
}

func skipped(res FileResult, start time.Time, msg string) FileResult {
	res.outcome = outcomeSkipped
	res.ErrorMessage = msg + " (skipped)"
	res.ElapsedSeconds = time.Since(start).Seconds()
	return res
}
