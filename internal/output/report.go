package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SavedReport holds the destinations one report was written to.
type SavedReport struct {
	ReportName   string
	MarkdownPath string
	HTMLPath     string
}

// SaveReport writes markdown to <dir>/markdown/<name>.md and its HTML
// rendering to <dir>/html/<name>.html, where <name> is
// <base>_review_<YYYYMMDD_HHMMSS>. baseName keeps only its stem: passing
// "UserService.cs" yields UserService_review_... files.
func SaveReport(dir, baseName, markdown string) (SavedReport, error) {
	return saveReportAt(dir, baseName, markdown, time.Now())
}

func saveReportAt(dir, baseName, markdown string, at time.Time) (SavedReport, error) {
	stem := strings.TrimSuffix(filepath.Base(baseName), filepath.Ext(baseName))
	name := fmt.Sprintf("%s_review_%s", stem, at.Format("20060102_150405"))

	mdDir := filepath.Join(dir, "markdown")
	htmlDir := filepath.Join(dir, "html")
	for _, d := range []string{mdDir, htmlDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return SavedReport{}, fmt.Errorf("creating report directory: %w", err)
		}
	}

	mdPath := filepath.Join(mdDir, name+".md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return SavedReport{}, fmt.Errorf("writing markdown report: %w", err)
	}

	htmlPath := filepath.Join(htmlDir, name+".html")
	html, err := RenderHTML(markdown, name)
	if err != nil {
		return SavedReport{}, err
	}
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return SavedReport{}, fmt.Errorf("writing html report: %w", err)
	}

	return SavedReport{ReportName: name, MarkdownPath: mdPath, HTMLPath: htmlPath}, nil
}
