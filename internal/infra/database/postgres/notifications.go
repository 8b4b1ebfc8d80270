package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/pb0420/trademonke/internal/domain"
)

const notifCols = "id, user_id, type, title, content, is_read, metadata, created_at"

func (r *PGRepo) NotificationsByUser(ctx context.Context, id domain.UserID, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.qb().Select(notifCols).From(r.tbl("notifications")).
		Where(sq.Eq{"user_id": id}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	r.logSQL("NotificationsByUser", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Content,
			&n.IsRead, &n.Metadata, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	q := r.qb().Insert(r.tbl("notifications")).
		Columns("user_id", "type", "title", "content", "metadata").
		Values(n.UserID, n.Type, n.Title, n.Content, n.Metadata).
		Suffix("RETURNING id, is_read, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateNotification", sqlStr, args)

	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

// MarkNotificationsRead with an empty notifIDs marks everything the user has.
func (r *PGRepo) MarkNotificationsRead(ctx context.Context, id domain.UserID, notifIDs []string) error {
	q := r.qb().Update(r.tbl("notifications")).
		Set("is_read", true).
		Where(sq.Eq{"user_id": id})
	if len(notifIDs) > 0 {
		q = q.Where(sq.Eq{"id": notifIDs})
	}
	sqlStr, args, _ := q.ToSql()
	r.logSQL("MarkNotificationsRead", sqlStr, args)

	_, err := r.pool.Exec(ctx, sqlStr, args...)
	return err
}
