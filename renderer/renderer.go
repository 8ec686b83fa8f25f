// Package renderer turns analysis results into markdown reports.
//
// Each report is a main template assembled from partial templates, all
// embedded next to this package. The data side is a flat view struct
// built from the engine's result types, so the templates only ever
// format, never compute.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderReport renders an analysis report to a markdown string.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title":     "report_title.md",
		"report_summary":   "report_summary.md",
		"report_benchmark": "report_benchmark.md",
		"report_fees":      "report_fees.md",
		"report_cashflows": "report_cashflows.md",
		"report_snapshots": "report_snapshots.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// RenderProjection renders a Monte Carlo projection to a markdown string.
func RenderProjection(p *Projection) string {
	partials := map[string]string{
		"projection_title":      "projection_title.md",
		"projection_outcomes":   "projection_outcomes.md",
		"projection_milestones": "projection_milestones.md",
		"projection_odds":       "projection_odds.md",
	}
	return renderTemplate("projection", "projection.md", partials, p)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
