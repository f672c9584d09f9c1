package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"resizer/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// BatchRows summarises a finished batch for RenderSummary.
func BatchRows(result processor.BatchResult) []SummaryRow {
	var total int64
	for _, s := range result.Successes {
		total += int64(s.ByteSize)
	}
	return []SummaryRow{
		{Label: "Images processed", Value: ProcessedLine(result)},
		{Label: "Failed", Value: fmt.Sprintf("%d", len(result.Failures))},
		{Label: "Output size", Value: FormatSize(total)},
	}
}

// ProcessedLine reads "N of M images processed".
func ProcessedLine(result processor.BatchResult) string {
	return fmt.Sprintf("%d of %d images processed", len(result.Successes), result.Total())
}

// RenderFailures lists each failure with its reason, or "" when there are
// none.
func RenderFailures(failures []processor.ProcessingFailure) string {
	if len(failures) == 0 {
		return ""
	}
	lines := make([]string, 0, len(failures)+1)
	lines = append(lines, warnStyle.Render("Failures:"))
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			labelStyle.Render(f.OriginalName),
			failStyle.Render(string(f.Reason)),
			dimStyle.Render(f.Detail)))
	}
	return strings.Join(lines, "\n")
}

// FormatSize renders a byte count as B, KB or MB with one decimal.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	failStyle  = lipgloss.NewStyle().Foreground(ColorFail)
)
