package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"time"
)

// mermaidBlockRE matches fenced mermaid blocks in a markdown report.
var mermaidBlockRE = regexp.MustCompile("(?s)```mermaid\\s*\n(.*?)\n```")

// ExtractBlocks returns the body of every mermaid block in markdown, in
// document order.
func ExtractBlocks(markdown string) []string {
	var blocks []string
	for _, m := range mermaidBlockRE.FindAllStringSubmatch(markdown, -1) {
		blocks = append(blocks, m[1])
	}
	return blocks
}

// Converter renders mermaid source through the external mmdc binary.
type Converter struct {
	mmdcPath string
	timeout  time.Duration
}

// New probes the PATH for mmdc. A Converter is always returned; use
// Available to find out whether rendering will work.
func New(timeout time.Duration) *Converter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	path, err := exec.LookPath("mmdc")
	if err != nil {
		path = ""
	}
	return &Converter{mmdcPath: path, timeout: timeout}
}

// Available reports whether the mermaid CLI was found.
func (c *Converter) Available() bool { return c.mmdcPath != "" }

// RenderAll renders every mermaid block of markdown to an SVG under
// outDir, named <baseName>_diagram_<n>.svg, and returns the written
// paths in block order. Calling it without mmdc installed is an error;
// check Available first.
func (c *Converter) RenderAll(markdown, outDir, baseName string) ([]string, error) {
	if !c.Available() {
		return nil, fmt.Errorf("mmdc not found in PATH (install with: npm install -g @mermaid-js/mermaid-cli)")
	}
	blocks := ExtractBlocks(markdown)
	if len(blocks) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating diagram directory: %w", err)
	}

	var paths []string
	for i, block := range blocks {
		out := filepath.Join(outDir, fmt.Sprintf("%s_diagram_%d.svg", baseName, i+1))
		if err := c.render(block, out); err != nil {
			return paths, fmt.Errorf("rendering diagram %d: %w", i+1, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

func (c *Converter) render(source, outPath string) error {
	in, err := os.CreateTemp("", "mend-*.mmd")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.WriteString(source); err != nil {
		in.Close()
		return fmt.Errorf("writing mermaid source: %w", err)
	}
	in.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.mmdcPath, "-i", in.Name(), "-o", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%w: %s", err, stderr.String())
		}
		return err
	}
	return nil
}
