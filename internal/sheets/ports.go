// Package sheets defines the outbound port for expense export and the
// row shape written to a spreadsheet.
package sheets

import (
	"context"
	"time"
)

// Row is one exported expense line.
type Row struct {
	Created  time.Time
	Owner    string // username, or the stringified id when absent
	Amount   float64
	Category string // localized display name
}

// ExpenseWriter appends rows to an export target.
type ExpenseWriter interface {
	Append(ctx context.Context, r Row) (rowRef string, err error)
}
