package review

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const toolName = "mend"

// codeBlockRE matches the first fenced code block in a model response,
// with or without a csharp/c# language tag.
var codeBlockRE = regexp.MustCompile("(?is)```(?:csharp|c#)?\\s*\n(.*?)\n```")

// codeLinePrefixes mark lines kept by the fallback extraction when a
// response has no code fences.
var codeLinePrefixes = []string{
	"public", "private", "protected", "internal",
	"class", "interface", "namespace", "using",
	"{", "}", "//", "///", "[", "#region", "#endregion",
}

// ExtractCode pulls the code out of a model response: the first fenced
// block when present, a line-filter pass otherwise, and the whole response
// as a last resort. It never fails.
func ExtractCode(response string) string {
	if m := codeBlockRE.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}

	var kept []string
	inCode := true
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if hasProsePrefix(trimmed) {
			inCode = false
			continue
		}
		if inCode || looksLikeCode(trimmed) {
			kept = append(kept, line)
		}
	}
	result := strings.TrimSpace(strings.Join(kept, "\n"))
	if result == "" {
		return strings.TrimSpace(response)
	}
	return result
}

func hasProsePrefix(line string) bool {
	for _, p := range []string{"Analysis:", "Improvement:", "Explanation:", "Note:"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func looksLikeCode(line string) bool {
	for _, p := range codeLinePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Reporter builds markdown reports for a fixed model name.
type Reporter struct {
	model string
	// now is replaceable in tests for a stable header.
	now func() time.Time
}

// NewReporter constructs a Reporter labeling its reports with model.
func NewReporter(model string) *Reporter {
	return &Reporter{model: model, now: time.Now}
}

// Build renders the full report for one file. It never fails, including
// when improved does not parse as code.
func (r *Reporter) Build(original, improved string, categories []string) string {
	clean := ExtractCode(improved)

	sections := []string{
		r.header(),
		summarySection(original, clean, categories),
		categoriesSection(categories),
		comparisonSection(original, clean),
		improvementsSection(original, clean),
		r.footer(),
	}
	return strings.Join(sections, "\n\n")
}

func (r *Reporter) header() string {
	return fmt.Sprintf(`# C# Code Review Report

**Generated**: %s
**Model**: %s
**Tool**: %s`, r.now().Format("2006-01-02 15:04:05"), r.model, toolName)
}

func summarySection(original, improved string, categories []string) string {
	originalLines := countNonBlank(original)
	improvedLines := countNonBlank(improved)
	return fmt.Sprintf(`## Summary

- **Original code**: %d lines
- **Improved code**: %d lines
- **Added lines**: %+d
- **Categories applied**: %d`,
		originalLines, improvedLines, improvedLines-originalLines, len(categories))
}

func categoriesSection(categories []string) string {
	var sb strings.Builder
	sb.WriteString("## Review Categories\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "\n- [x] **%s**", DisplayName(c))
	}
	return sb.String()
}

func comparisonSection(original, improved string) string {
	return fmt.Sprintf("## Code Comparison\n\n### Before\n\n```csharp\n%s\n```\n\n### After\n\n```csharp\n%s\n```",
		original, improved)
}

// improvementsSection lists changes detected by cheap text heuristics.
// Best effort only; a generic bullet stands in when nothing is detected.
func improvementsSection(original, improved string) string {
	lowerOrig := strings.ToLower(original)
	lowerImpr := strings.ToLower(improved)

	var bullets []string
	if strings.Contains(lowerImpr, "null") && !strings.Contains(lowerOrig, "null") {
		bullets = append(bullets, "- **Null checks added**: input validation prevents NullReferenceException")
	}
	if strings.Contains(improved, "using") && !strings.Contains(original, "using") {
		bullets = append(bullets, "- **Resource management**: using statements release resources automatically")
	}
	if strings.Contains(improved, "try") || strings.Contains(improved, "catch") {
		bullets = append(bullets, "- **Exception handling**: try-catch blocks harden error paths")
	}
	if strings.Contains(improved, "throw") && !strings.Contains(original, "throw") {
		bullets = append(bullets, "- **Explicit failures**: invalid input now raises a clear exception")
	}
	if strings.Contains(improved, "///") && !strings.Contains(original, "///") {
		bullets = append(bullets, "- **Documentation**: XML doc comments added to public API")
	}
	if len(bullets) == 0 {
		bullets = append(bullets, "- General code quality improvements")
	}
	return "## Key Improvements\n\n" + strings.Join(bullets, "\n")
}

func (r *Reporter) footer() string {
	return fmt.Sprintf("---\n\n*Generated by %s using %s*", toolName, r.model)
}

func countNonBlank(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
