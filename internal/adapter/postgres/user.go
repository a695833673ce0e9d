package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

type UserRepo struct {
	db Querier
}

func NewUserRepo(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

// Ensure creates a placeholder user row for id unless one exists. Identities
// are issued outside this service, so rows appear the first time a user
// takes part in a trip or files route feedback.
func (r *UserRepo) Ensure(ctx context.Context, id int64, role types.UserRole) (err error) {
	const op = "UserRepo.Ensure"
	defer func(start time.Time) { observe("ensure_user", start, err) }(time.Now())

	_, err = txOrDB(ctx, r.db).Exec(ctx, `
		INSERT INTO users (id, role, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, role, "User "+strconv.FormatInt(id, 10))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
