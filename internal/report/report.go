// Package report renders a ScanResult for terminals and pipes.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/olegrjumin/techprint/internal/detector"
	"github.com/olegrjumin/techprint/internal/scanner"
)

var (
	primary = lipgloss.Color("#7D56F4")
	muted   = lipgloss.Color("#6B7280")
	warning = lipgloss.Color("#FFB800")
	success = lipgloss.Color("#00D26A")
	failure = lipgloss.Color("#FF3838")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(primary).
			Padding(0, 1)

	labelStyle  = lipgloss.NewStyle().Foreground(muted)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	nameStyle   = lipgloss.NewStyle().Bold(true)
	riskStyle   = lipgloss.NewStyle().Foreground(warning)
	okStyle     = lipgloss.NewStyle().Foreground(success)
	errStyle    = lipgloss.NewStyle().Foreground(failure)
)

// WriteJSON writes result as indented JSON followed by a newline. Nothing is
// written if encoding fails. Invalid UTF-8 is replaced with U+FFFD.
func WriteJSON(w io.Writer, result *scanner.ScanResult) error {
	body, err := json.Marshal(result, jsontext.WithIndent("  "), jsontext.AllowInvalidUTF8(true))
	if err != nil {
		return err
	}
	_, err = w.Write(append(body, '\n'))
	return err
}

// WriteTable writes a human readable summary of result
func WriteTable(w io.Writer, result *scanner.ScanResult) error {
	var b strings.Builder
	meta := result.ScanMetadata

	b.WriteString(titleStyle.Render("TechPrint"))
	b.WriteString("\n\n")
	writeField(&b, "Target", meta.TargetURL)
	writeField(&b, "Resolved", meta.ResolvedURL)
	writeField(&b, "Status", statusText(meta.StatusCode))
	writeField(&b, "Scanned", meta.ScanTimestampUTC)
	writeField(&b, "Scripts", fmt.Sprintf("%d/%d fetched", len(meta.ScriptSourcesFetched), len(meta.ScriptSourcesAttempted)))
	b.WriteString("\n")

	if len(result.DetectedTechnologies) == 0 {
		b.WriteString(labelStyle.Render("No technologies detected"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	rows := make([][]string, 0, len(result.DetectedTechnologies))
	for _, d := range result.DetectedTechnologies {
		rows = append(rows, []string{
			nameStyle.Render(d.Name),
			d.Category,
			d.Version,
			strconv.Itoa(d.Confidence) + "%",
		})
	}
	headers := []string{"Technology", "Category", "Version", "Confidence"}
	widths := columnWidths(headers, rows)

	for i, h := range headers {
		b.WriteString(padRight(headerStyle.Render(h), widths[i]+2))
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(padRight(cell, widths[i]+2))
		}
		b.WriteString("\n")
	}

	if risks := riskNotes(result.DetectedTechnologies); len(risks) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Risks"))
		b.WriteString("\n")
		for _, r := range risks {
			b.WriteString(riskStyle.Render("! "))
			b.WriteString(r)
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(padRight(labelStyle.Render(label), 10))
	b.WriteString(value)
	b.WriteString("\n")
}

func statusText(code int) string {
	s := strconv.Itoa(code)
	if code >= 400 {
		return errStyle.Render(s)
	}
	return okStyle.Render(s)
}

func riskNotes(detections []detector.Detection) []string {
	var notes []string
	for _, d := range detections {
		if d.Risk != nil && *d.Risk != "" {
			notes = append(notes, d.Name+": "+*d.Risk)
		}
	}
	return notes
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

// padRight pads s to width visible cells; lipgloss.Width ignores ANSI codes
func padRight(s string, width int) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}
	return s + strings.Repeat(" ", padding)
}
