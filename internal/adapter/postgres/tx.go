package postgres

import (
	"context"

	"github.com/Temutjin2k/kekelink/pkg/trm"
)

// txOrDB returns the transaction opened by trm.Manager.Do, if any, else db.
func txOrDB(ctx context.Context, db Querier) Querier {
	if tx, ok := trm.FromContext(ctx); ok {
		return tx
	}
	return db
}
