package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/pb0420/trademonke/internal/domain"
)

const mediaCols = "id, post_id, url, type, order_index"

func (r *PGRepo) AddMedia(ctx context.Context, m domain.Media) (domain.Media, error) {
	if m.Type == "" {
		m.Type = domain.MediaPhoto
	}
	q := r.qb().Insert(r.tbl("media")).
		Columns("post_id", "url", "type", "order_index").
		Values(m.PostID, m.URL, m.Type, m.OrderIndex).
		Suffix("RETURNING id")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("AddMedia", sqlStr, args)

	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&m.ID); err != nil {
		return domain.Media{}, err
	}
	return m, nil
}

func (r *PGRepo) MediaByPost(ctx context.Context, id domain.PostID) ([]domain.Media, error) {
	byPost, err := r.mediaForPosts(ctx, []domain.PostID{id})
	if err != nil {
		return nil, err
	}
	out := byPost[id]
	if out == nil {
		out = []domain.Media{}
	}
	return out, nil
}

// mediaForPosts loads attachments for a whole page in one query instead of
// one query per row.
func (r *PGRepo) mediaForPosts(ctx context.Context, ids []domain.PostID) (map[domain.PostID][]domain.Media, error) {
	out := make(map[domain.PostID][]domain.Media, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q := r.qb().Select(mediaCols).From(r.tbl("media")).
		Where(sq.Eq{"post_id": ids}).
		OrderBy("post_id", "order_index ASC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("mediaForPosts", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Media
		if err := rows.Scan(&m.ID, &m.PostID, &m.URL, &m.Type, &m.OrderIndex); err != nil {
			return nil, err
		}
		out[m.PostID] = append(out[m.PostID], m)
	}
	return out, rows.Err()
}
