// Package diagram renders the mermaid blocks of a report to image files by
// shelling out to the mermaid CLI (mmdc). The renderer being absent is a
// normal, detectable condition rather than an error; callers check
// Available before rendering.
package diagram
