package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pb0420/trademonke/internal/domain"
)

const postCols = "p.id, p.user_id, p.title, p.description, p.category_id, p.price, " +
	"p.location, p.latitude, p.longitude, p.privacy, p.status, p.is_active, " +
	"p.show_business_name, p.view_count, p.created_at, p.updated_at"

const postJoinCols = postCols + ", " +
	"u.name, u.business_name, u.is_verified, u.avatar_url, " +
	"COALESCE(c.name, 'Other'), COALESCE(c.icon, '📦')"

func (r *PGRepo) postQuery() sq.SelectBuilder {
	return r.qb().Select(postJoinCols).
		From(r.tbl("posts") + " p").
		LeftJoin(r.tbl("users") + " u ON u.id = p.user_id").
		LeftJoin(r.tbl("categories") + " c ON c.id = p.category_id")
}

func scanPostDetails(row pgx.Row) (domain.PostWithDetails, error) {
	var d domain.PostWithDetails
	var catID *string
	var uname, ubiz, uavatar *string
	var uverified *bool
	err := row.Scan(
		&d.ID, &d.UserID, &d.Title, &d.Description, &catID, &d.Price,
		&d.Location, &d.Latitude, &d.Longitude, &d.Privacy, &d.Status, &d.IsActive,
		&d.ShowBusinessName, &d.ViewCount, &d.CreatedAt, &d.UpdatedAt,
		&uname, &ubiz, &uverified, &uavatar,
		&d.Category.Name, &d.Category.Icon,
	)
	if err != nil {
		return domain.PostWithDetails{}, err
	}
	if catID != nil {
		d.CategoryID = *catID
	}
	d.User = domain.UserSummary{ID: d.UserID, Name: "Anonymous"}
	if uname != nil && *uname != "" {
		d.User.Name = *uname
	}
	if ubiz != nil {
		d.User.BusinessName = *ubiz
	}
	if uverified != nil {
		d.User.IsVerified = *uverified
	}
	if uavatar != nil {
		d.User.AvatarURL = *uavatar
	}
	return d, nil
}

func (r *PGRepo) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	if p.Privacy == "" {
		p.Privacy = domain.PrivacyPublic
	}
	if p.Status == "" {
		p.Status = domain.PostPending
	}
	q := r.qb().Insert(r.tbl("posts")).
		Columns("user_id", "title", "description", "category_id", "price", "location",
			"latitude", "longitude", "privacy", "status", "is_active", "show_business_name").
		Values(p.UserID, p.Title, p.Description, nullable(p.CategoryID), p.Price, p.Location,
			p.Latitude, p.Longitude, p.Privacy, p.Status, p.IsActive, p.ShowBusinessName).
		Suffix("RETURNING id, view_count, created_at, updated_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreatePost", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	if err := row.Scan(&p.ID, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		r.logger.Printf("CreatePost scan error after %s: %v", time.Since(start), err)
		return domain.Post{}, err
	}
	r.logger.Printf("CreatePost ok in %s id=%s title=%q", time.Since(start), p.ID, p.Title)
	return p, nil
}

func (r *PGRepo) PostByID(ctx context.Context, id domain.PostID) (domain.PostWithDetails, error) {
	q := r.postQuery().Where(sq.Eq{"p.id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("PostByID", sqlStr, args)

	d, err := scanPostDetails(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PostWithDetails{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.PostWithDetails{}, err
	}
	media, err := r.mediaForPosts(ctx, []domain.PostID{d.ID})
	if err != nil {
		return domain.PostWithDetails{}, err
	}
	d.Media = media[d.ID]
	if d.Media == nil {
		d.Media = []domain.Media{}
	}
	return d, nil
}

func publicFeedConds() sq.And {
	return sq.And{
		sq.Eq{"p.status": domain.PostApproved},
		sq.Eq{"p.privacy": domain.PrivacyPublic},
		sq.Eq{"p.is_active": true},
	}
}

func applyFilter(conds sq.And, f domain.PostFilter) sq.And {
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"p.title": pat},
			sq.ILike{"p.description": pat},
		})
	}
	if f.CategoryID != "" {
		conds = append(conds, sq.Eq{"p.category_id": f.CategoryID})
	}
	if f.Location != "" {
		conds = append(conds, sq.ILike{"p.location": "%" + f.Location + "%"})
	}
	return conds
}

func orderClause(s domain.PostSort) string {
	switch s {
	case domain.SortPriceLow:
		return "p.price ASC"
	case domain.SortPriceHigh:
		return "p.price DESC"
	default:
		// distance ordering is resolved by the caller-side Haversine pass;
		// the SQL falls back to newest-first like the rest
		return "p.created_at DESC"
	}
}

func (r *PGRepo) ListPublic(ctx context.Context, f domain.PostFilter) (domain.PostPage, error) {
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	conds := applyFilter(publicFeedConds(), f)

	// total before pagination
	cq := r.qb().Select("COUNT(*)").From(r.tbl("posts") + " p").Where(conds)
	sqlStr, args, _ := cq.ToSql()
	r.logSQL("ListPublic.count", sqlStr, args)
	var total int
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return domain.PostPage{}, err
	}

	q := r.postQuery().Where(conds).
		OrderBy(orderClause(f.Sort)).
		Offset(uint64(offset)).Limit(uint64(limit))
	sqlStr, args, _ = q.ToSql()
	r.logSQL("ListPublic", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return domain.PostPage{}, err
	}
	defer rows.Close()

	details := make([]domain.PostWithDetails, 0, limit)
	ids := make([]domain.PostID, 0, limit)
	for rows.Next() {
		d, err := scanPostDetails(rows)
		if err != nil {
			return domain.PostPage{}, err
		}
		// Radius filtering stays in Go: no PostGIS, and the fallback
		// backend must behave identically.
		if f.Lat != nil && f.Lon != nil && f.MaxDistanceKm != nil {
			if !domain.WithinDistance(d.Post, *f.Lat, *f.Lon, *f.MaxDistanceKm) {
				total--
				continue
			}
		}
		details = append(details, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return domain.PostPage{}, err
	}

	media, err := r.mediaForPosts(ctx, ids)
	if err != nil {
		return domain.PostPage{}, err
	}
	for i := range details {
		details[i].Media = media[details[i].ID]
		if details[i].Media == nil {
			details[i].Media = []domain.Media{}
		}
	}

	return domain.PostPage{
		Posts:   details,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: total > offset+limit,
	}, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, owner domain.UserID) ([]domain.PostWithDetails, error) {
	q := r.postQuery().Where(sq.Eq{"p.user_id": owner}).OrderBy("p.created_at DESC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("ListByUser", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.PostWithDetails
	var ids []domain.PostID
	for rows.Next() {
		d, err := scanPostDetails(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	media, err := r.mediaForPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		details[i].Media = media[details[i].ID]
		if details[i].Media == nil {
			details[i].Media = []domain.Media{}
		}
	}
	return details, nil
}

// UpdatePost only touches owner-editable fields; status, activity and the
// view counter belong to moderation and the view endpoint.
func (r *PGRepo) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	q := r.qb().Update(r.tbl("posts")).
		Set("title", p.Title).
		Set("description", p.Description).
		Set("category_id", nullable(p.CategoryID)).
		Set("price", p.Price).
		Set("location", p.Location).
		Set("latitude", p.Latitude).
		Set("longitude", p.Longitude).
		Set("privacy", p.Privacy).
		Set("show_business_name", p.ShowBusinessName).
		Set("updated_at", time.Now().UTC()).
		Where(sq.And{sq.Eq{"id": p.ID}, sq.Eq{"user_id": p.UserID}}).
		Suffix("RETURNING status, is_active, view_count, created_at, updated_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdatePost", sqlStr, args)

	row := r.pool.QueryRow(ctx, sqlStr, args...)
	err := row.Scan(&p.Status, &p.IsActive, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, err
	}
	return p, nil
}

func (r *PGRepo) DeletePost(ctx context.Context, id domain.PostID, owner domain.UserID) (domain.Post, error) {
	q := r.qb().Delete(r.tbl("posts")).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"user_id": owner}}).
		Suffix("RETURNING " + deleteReturnCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeletePost", sqlStr, args)

	var p domain.Post
	var catID *string
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &catID, &p.Price,
		&p.Location, &p.Latitude, &p.Longitude, &p.Privacy, &p.Status, &p.IsActive,
		&p.ShowBusinessName, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, err
	}
	if catID != nil {
		p.CategoryID = *catID
	}
	return p, nil
}

const deleteReturnCols = "id, user_id, title, description, category_id, price, " +
	"location, latitude, longitude, privacy, status, is_active, " +
	"show_business_name, view_count, created_at, updated_at"

func (r *PGRepo) IncrementViewCount(ctx context.Context, id domain.PostID) error {
	sqlStr := "UPDATE " + r.tbl("posts") + " SET view_count = view_count + 1 WHERE id = $1"
	r.logSQL("IncrementViewCount", sqlStr, []any{id})

	tag, err := r.pool.Exec(ctx, sqlStr, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
