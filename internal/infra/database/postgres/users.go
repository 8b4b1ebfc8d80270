package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pb0420/trademonke/internal/domain"
)

const userCols = "id, phone, email, name, business_name, avatar_url, pass_hash, " +
	"is_verified, verification_status, is_admin, plan_id, subscription_status, " +
	"subscription_end_date, posts_count, active_posts_count, created_at, updated_at"

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var phone, email *string
	err := row.Scan(
		&u.ID, &phone, &email, &u.Name, &u.BusinessName, &u.AvatarURL, &u.PassHash,
		&u.IsVerified, &u.VerificationStatus, &u.IsAdmin, &u.PlanID, &u.SubscriptionStatus,
		&u.SubscriptionEndDate, &u.PostsCount, &u.ActivePostsCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if email != nil {
		u.Email = *email
	}
	return u, nil
}

func (r *PGRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	q := r.qb().Insert(r.tbl("users")).
		Columns("phone", "email", "name", "business_name", "pass_hash", "plan_id").
		Values(nullable(u.Phone), nullable(u.Email), u.Name, u.BusinessName, u.PassHash, defaultPlan(u.PlanID)).
		Suffix("RETURNING " + userCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	out, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s", time.Since(start), out.ID)
	return out, nil
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	q := r.qb().Select(userCols).From(r.tbl("users")).Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByID", sqlStr, args)

	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func (r *PGRepo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	q := r.qb().Select(userCols).From(r.tbl("users")).Where(sq.Eq{"email": email})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByEmail", sqlStr, args)

	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

// AdjustPostCounters applies deltas atomically in one UPDATE so concurrent
// post workflows cannot interleave a read-modify-write. Clamped at zero.
func (r *PGRepo) AdjustPostCounters(ctx context.Context, id domain.UserID, totalDelta, activeDelta int) error {
	sqlStr := "UPDATE " + r.tbl("users") + " SET " +
		"posts_count = GREATEST(posts_count + $1, 0), " +
		"active_posts_count = LEAST(GREATEST(active_posts_count + $2, 0), GREATEST(posts_count + $1, 0)), " +
		"updated_at = now() WHERE id = $3"
	args := []any{totalDelta, activeDelta, id}
	r.logSQL("AdjustPostCounters", sqlStr, args)

	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func defaultPlan(id domain.PlanID) domain.PlanID {
	if id == "" {
		return "free"
	}
	return id
}
