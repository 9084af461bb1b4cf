package batch

import (
	"os"
	"path/filepath"
	"time"
)

// Item is one unit of work in a run: an identifier plus a content source.
type Item struct {
	// Path identifies the item. When Load is nil it is also the file
	// read from disk.
	Path string
	// DisplayName is shown in progress output. Empty defaults to the
	// base name of Path.
	DisplayName string
	// Load overrides reading Path from disk. Used for in-memory inputs
	// and by tests.
	Load func() ([]byte, error)
}

func (it Item) displayName() string {
	if it.DisplayName != "" {
		return it.DisplayName
	}
	return filepath.Base(it.Path)
}

func (it Item) load() ([]byte, error) {
	if it.Load != nil {
		return it.Load()
	}
	return os.ReadFile(it.Path)
}

// outcome classifies a FileResult at the point the result is built.
// Tallies switch on this, never on message text.
type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeSkipped
	outcomeFailed
)

// FileResult is the immutable outcome of one item. Exactly one is produced
// per processed item, at the end of that item's processing.
type FileResult struct {
	Identifier     string
	DisplayName    string
	Succeeded      bool
	OriginalText   string
	ImprovedText   string
	ReportText     string
	ErrorMessage   string
	ElapsedSeconds float64
	RetryCount     int

	outcome outcome
}

// Skipped reports whether analysis was never attempted because the input
// was unusable, as opposed to a failure after attempts were made.
func (r FileResult) Skipped() bool { return r.outcome == outcomeSkipped }

// Summary aggregates one run. Results are in input order, truncated at the
// cancellation point; items never started are counted only in TotalItems.
type Summary struct {
	TotalItems          int
	SucceededCount      int
	FailedCount         int
	SkippedCount        int
	Results             []FileResult
	TotalElapsedSeconds float64
	StartedAt           time.Time
	FinishedAt          time.Time
}
