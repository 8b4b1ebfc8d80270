package postgres

import (
	"context"

	"github.com/pb0420/trademonke/internal/domain"
)

func (r *PGRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	q := r.qb().Select("id, name, icon, service, created_at").
		From(r.tbl("categories")).
		OrderBy("service ASC", "id ASC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("Categories", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Service, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
