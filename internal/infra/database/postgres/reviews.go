package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/pb0420/trademonke/internal/domain"
)

func (r *PGRepo) ReviewsByReviewee(ctx context.Context, id domain.UserID) ([]domain.Review, error) {
	q := r.qb().Select("id, reviewer_id, reviewee_id, rating, comment, created_at").
		From(r.tbl("reviews")).
		Where(sq.Eq{"reviewee_id": id}).
		OrderBy("created_at DESC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("ReviewsByReviewee", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.ReviewerID, &rev.RevieweeID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *PGRepo) RatingSummary(ctx context.Context, id domain.UserID) (float64, int, error) {
	q := r.qb().Select("COALESCE(AVG(rating), 0), COUNT(*)").
		From(r.tbl("reviews")).
		Where(sq.Eq{"reviewee_id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("RatingSummary", sqlStr, args)

	var avg float64
	var count int
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}
