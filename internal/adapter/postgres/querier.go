package postgres

import (
	"context"
	"time"

	"github.com/Temutjin2k/kekelink/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool the repositories use.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// observe records duration and outcome of one repository operation.
func observe(operation string, start time.Time, err error) {
	metrics.RecordDatabaseQuery(operation, err, time.Since(start))
}
