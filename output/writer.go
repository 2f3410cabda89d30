package output

import (
	"fmt"
	"strings"

	"daybook/reconcile"
)

type Writer interface {
	Write(path string, rows []reconcile.Row) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

func reportHeaders() []string {
	return []string{"Start", "End", "DurationSeconds", "Title", "SourceApp", "Ticket", "Origin", "Status", "OverlapPercent"}
}

func reportRow(row reconcile.Row) []string {
	return []string{
		row.Block.StartTime,
		row.Block.EndTime,
		fmt.Sprintf("%d", row.Block.DurationSeconds),
		row.Block.Title,
		row.Block.SourceApp,
		row.Block.SelectedTicket,
		string(row.Block.Origin),
		row.Verdict.Status.Label(),
		fmt.Sprintf("%d", row.Verdict.Percent),
	}
}
