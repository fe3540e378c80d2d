package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"autoshop-server/internal/repository"
)

const (
	jobOrderPrefix = "JO"
	invoicePrefix  = "INV"
)

// numberedColumns is where each prefix is stored, for reading back the last
// number when the counter table is missing.
var numberedColumns = map[string]struct{ table, column string }{
	jobOrderPrefix: {"appointments", "job_order_number"},
	invoicePrefix:  {"invoices", "invoice_number"},
}

// nextNumber issues PREFIX-YYYYMMDD-NNNN from the per-day counter. It must run
// inside the transaction that stores the numbered row.
func nextNumber(ctx context.Context, tx *repository.Store, logger *logrus.Logger, prefix string, day time.Time) (string, error) {
	date := day.Format("20060102")
	if !tx.Sequences.Ready(ctx) {
		logger.WithField("prefix", prefix).Warn("sequence table missing, numbering from the last issued number")
		return nextFromLastIssued(ctx, tx, prefix, date)
	}

	n, err := tx.Sequences.Next(ctx, prefix+"-"+date)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return formatNumber(prefix, date, n), nil
}

// nextFromLastIssued increments the highest number already stored for the
// day. Two concurrent writers can read the same value; the unique index on the
// numbered column rejects the second one.
func nextFromLastIssued(ctx context.Context, tx *repository.Store, prefix, date string) (string, error) {
	target, ok := numberedColumns[prefix]
	if !ok {
		return "", fmt.Errorf("no numbered column for prefix %q", prefix)
	}
	dayPrefix := prefix + "-" + date + "-"
	last, err := tx.Sequences.LastIssued(ctx, target.table, target.column, dayPrefix)
	if err != nil {
		return "", fmt.Errorf("read last %s number: %w", prefix, err)
	}
	if last == "" {
		return formatNumber(prefix, date, 1), nil
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(last, dayPrefix), 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse %s number %q: %w", prefix, last, err)
	}
	return formatNumber(prefix, date, n+1), nil
}

func formatNumber(prefix, date string, n int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date, n)
}
