package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dkoh/mend/internal/batch"
)

// WriteSummary prints the human-readable result of one batch run.
func WriteSummary(w io.Writer, s batch.Summary) error {
	ew := &errWriter{w: w}

	ew.println(strings.Repeat("─", 60))
	ew.printf("Analyzed %d of %d file(s) in %.1fs\n",
		len(s.Results), s.TotalItems, s.TotalElapsedSeconds)
	ew.printf("  succeeded: %d   failed: %d   skipped: %d\n",
		s.SucceededCount, s.FailedCount, s.SkippedCount)
	if s.TotalItems > len(s.Results) {
		ew.printf("  cancelled with %d file(s) unprocessed\n", s.TotalItems-len(s.Results))
	}
	ew.println(strings.Repeat("─", 60))

	for i, r := range s.Results {
		status := "ok  "
		switch {
		case r.Skipped():
			status = "skip"
		case !r.Succeeded:
			status = "FAIL"
		}
		ew.printf("%s  %2d. %s (%.1fs", status, i+1, r.DisplayName, r.ElapsedSeconds)
		if r.RetryCount > 0 {
			ew.printf(", %d retries", r.RetryCount)
		}
		ew.println(")")
		if r.ErrorMessage != "" {
			ew.printf("        %s\n", r.ErrorMessage)
		}
	}

	return ew.err
}

// errWriter collects the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, args...)
}
