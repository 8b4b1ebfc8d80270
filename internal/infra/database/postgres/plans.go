package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pb0420/trademonke/internal/domain"
)

const planCols = "id, name, price, currency, max_active_posts, max_total_posts, priority_verification, features"

func scanPlan(row pgx.Row) (domain.Plan, error) {
	var p domain.Plan
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Currency,
		&p.MaxActivePosts, &p.MaxTotalPosts, &p.PriorityVerification, &p.Features,
	)
	return p, err
}

func (r *PGRepo) Plans(ctx context.Context) ([]domain.Plan, error) {
	q := r.qb().Select(planCols).From(r.tbl("plans")).OrderBy("price ASC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("Plans", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) PlanByID(ctx context.Context, id domain.PlanID) (domain.Plan, error) {
	q := r.qb().Select(planCols).From(r.tbl("plans")).Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("PlanByID", sqlStr, args)

	p, err := scanPlan(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Plan{}, domain.ErrNotFound
	}
	return p, err
}
