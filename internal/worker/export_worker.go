// Package worker consumes recorded-expense events and appends them to
// the configured export target.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kopilka/internal/amqp"
	"kopilka/internal/sheets"
)

type ExportWorker struct {
	writer sheets.ExpenseWriter
}

func NewExportWorker(writer sheets.ExpenseWriter) *ExportWorker {
	return &ExportWorker{writer: writer}
}

// HandleRecorded exports one recorded-expense event. The message
// carries the full fact, so no database read-back is needed; a failed
// append is returned so the delivery gets requeued.
func (w *ExportWorker) HandleRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	row := sheets.Row{
		Created:  msg.Created,
		Owner:    msg.Username,
		Amount:   msg.Amount,
		Category: msg.Category,
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("append expense %d: %w", msg.Ref, err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"ref", msg.Ref,
		"sheets_ref", ref,
		"category", msg.Category,
		"amount", msg.Amount)

	return nil
}
