package output

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 960px; margin: 2rem auto; padding: 0 1rem;
       font-family: -apple-system, "Segoe UI", sans-serif;
       background: #1e1e1e; color: #d4d4d4; line-height: 1.6; }
h1, h2, h3 { color: #569cd6; }
a { color: #4ec9b0; }
code { background: #2d2d2d; padding: 0.15em 0.35em; border-radius: 3px;
       font-family: "SF Mono", Consolas, monospace; font-size: 0.9em; }
pre { background: #2d2d2d; padding: 1rem; border-radius: 6px;
      overflow-x: auto; }
pre code { background: none; padding: 0; }
table { border-collapse: collapse; }
th, td { border: 1px solid #3c3c3c; padding: 0.4em 0.8em; }
hr { border: none; border-top: 1px solid #3c3c3c; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderHTML converts a markdown report into a standalone HTML page.
func RenderHTML(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return fmt.Sprintf(htmlPage, html.EscapeString(title), body.String()), nil
}
