// Package report renders study progress as Markdown and PDF documents.
package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tlatoani315/estudiar-ipn/internal/progress"
)

// MarkdownFileName is the name of the generated report.
const MarkdownFileName = "progress.md"

// Outlines maps subject to its topic outline.
type Outlines map[string]map[string][]progress.OutlineEntry

// BuildMarkdown renders the global metrics, the per-subject table and each subject outline.
// Subjects, topics and subtopics are listed in lexicographic order.
func BuildMarkdown(date string, global progress.Global, subjects map[string]progress.SubjectMetrics, outlines Outlines) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# Study progress\n\nGenerated on %s\n\n", date)

	b.WriteString("## Overview\n\n")
	b.WriteString("| State | Items | Share |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Pending | %d | %.1f%% |\n", global.Pending, global.Percent(global.Pending))
	fmt.Fprintf(&b, "| In review | %d | %.1f%% |\n", global.InReview, global.Percent(global.InReview))
	fmt.Fprintf(&b, "| Mastered | %d | %.1f%% |\n", global.Mastered, global.Percent(global.Mastered))
	fmt.Fprintf(&b, "| Total | %d | |\n\n", global.TotalActive)
	fmt.Fprintf(&b, "Progress: %d of %d items studied (%.1f%%)\n\n",
		global.Progress(), global.TotalActive, global.Percent(global.Progress()))

	if len(subjects) == 0 {
		b.WriteString("No study items yet.\n")
		return b.Bytes()
	}

	b.WriteString("## Subjects\n\n")
	b.WriteString("| Subject | Subtopics seen | Topics seen |\n|---|---|---|\n")
	for _, subject := range progress.SortedKeys(subjects) {
		m := subjects[subject]
		fmt.Fprintf(&b, "| %s | %d/%d | %d/%d |\n", subject, m.Seen, m.Total, m.TopicsSeen, m.Topics)
	}
	b.WriteString("\n> **p** pending, **e** in review, **d** mastered\n")

	for _, subject := range progress.SortedKeys(outlines) {
		fmt.Fprintf(&b, "\n## %s\n", subject)
		outline := outlines[subject]
		for _, topic := range progress.SortedKeys(outline) {
			fmt.Fprintf(&b, "\n### %s\n\n", topic)
			for _, entry := range outline[topic] {
				fmt.Fprintf(&b, "- [%s] %s\n", entry.Marker, entry.Subtopic)
			}
		}
	}
	return b.Bytes()
}

// WriteMarkdown writes content to progress.md in dir and returns the file path.
func WriteMarkdown(dir string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, MarkdownFileName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return path, nil
}

// Generator collects metrics and outlines from an aggregator and writes the report.
type Generator struct {
	aggregator *progress.Aggregator
	outputDir  string
}

// NewGenerator creates a new Generator.
func NewGenerator(aggregator *progress.Aggregator, outputDir string) *Generator {
	return &Generator{aggregator: aggregator, outputDir: outputDir}
}

// Generate writes progress.md dated date and, when pdf is set, its PDF rendering.
// It returns the paths of the written files.
func (g *Generator) Generate(ctx context.Context, date string, pdf bool) ([]string, error) {
	global, err := g.aggregator.GlobalMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregator.GlobalMetrics() > %w", err)
	}
	subjects, err := g.aggregator.PerSubjectMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregator.PerSubjectMetrics() > %w", err)
	}

	outlines := make(Outlines, len(subjects))
	for subject := range subjects {
		outline, err := g.aggregator.TopicOutline(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("aggregator.TopicOutline(%s) > %w", subject, err)
		}
		outlines[subject] = outline
	}

	mdPath, err := WriteMarkdown(g.outputDir, BuildMarkdown(date, global, subjects, outlines))
	if err != nil {
		return nil, err
	}
	paths := []string{mdPath}
	if !pdf {
		return paths, nil
	}

	pdfPath, err := ConvertMarkdownToPDF(mdPath)
	if err != nil {
		return paths, err
	}
	return append(paths, pdfPath), nil
}
