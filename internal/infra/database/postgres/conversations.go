package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pb0420/trademonke/internal/domain"
)

const convCols = "id, post_id, buyer_id, seller_id, created_at, updated_at"

func scanConversation(row pgx.Row) (domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(&c.ID, &c.PostID, &c.BuyerID, &c.SellerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *PGRepo) ConversationsByUser(ctx context.Context, id domain.UserID) ([]domain.ConversationWithDetails, error) {
	q := r.qb().Select(convCols).From(r.tbl("conversations")).
		Where(sq.Or{sq.Eq{"buyer_id": id}, sq.Eq{"seller_id": id}}).
		OrderBy("updated_at DESC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("ConversationsByUser", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.ConversationWithDetails, 0, len(convs))
	for _, c := range convs {
		d, err := r.conversationDetails(ctx, c, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *PGRepo) conversationDetails(ctx context.Context, c domain.Conversation, viewer domain.UserID) (domain.ConversationWithDetails, error) {
	d := domain.ConversationWithDetails{
		Conversation: c,
		LastMessage:  "No messages yet",
	}

	// last message
	q := r.qb().Select("content, created_at").From(r.tbl("messages")).
		Where(sq.Eq{"conversation_id": c.ID}).
		OrderBy("created_at DESC").Limit(1)
	sqlStr, args, _ := q.ToSql()
	var content string
	var at time.Time
	err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&content, &at)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// keep the placeholder
	case err != nil:
		return domain.ConversationWithDetails{}, err
	default:
		d.LastMessage = content
		d.LastMessageAt = at.UTC().Format(time.RFC3339)
	}

	// unread from the other party
	q = r.qb().Select("COUNT(*)").From(r.tbl("messages")).
		Where(sq.And{
			sq.Eq{"conversation_id": c.ID},
			sq.Eq{"is_read": false},
			sq.NotEq{"sender_id": viewer},
		})
	sqlStr, args, _ = q.ToSql()
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&d.UnreadCount); err != nil {
		return domain.ConversationWithDetails{}, err
	}

	// post summary
	q = r.qb().Select("title, price").From(r.tbl("posts")).Where(sq.Eq{"id": c.PostID})
	sqlStr, args, _ = q.ToSql()
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&d.Post.Title, &d.Post.Price); err != nil &&
		!errors.Is(err, pgx.ErrNoRows) {
		return domain.ConversationWithDetails{}, err
	}
	media, err := r.mediaForPosts(ctx, []domain.PostID{c.PostID})
	if err != nil {
		return domain.ConversationWithDetails{}, err
	}
	d.Post.Media = media[c.PostID]
	if d.Post.Media == nil {
		d.Post.Media = []domain.Media{}
	}

	// other party
	otherID := c.BuyerID
	if viewer == c.BuyerID {
		otherID = c.SellerID
	}
	other, err := r.UserByID(ctx, otherID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.ConversationWithDetails{}, err
	}
	d.OtherUser = domain.UserSummary{
		ID:           otherID,
		Name:         "Anonymous",
		BusinessName: other.BusinessName,
		IsVerified:   other.IsVerified,
		AvatarURL:    other.AvatarURL,
	}
	if other.Name != "" {
		d.OtherUser.Name = other.Name
	}
	return d, nil
}

func (r *PGRepo) ConversationByID(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	q := r.qb().Select(convCols).From(r.tbl("conversations")).Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("ConversationByID", sqlStr, args)

	c, err := scanConversation(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Conversation{}, domain.ErrNotFound
	}
	return c, err
}

// CreateConversation is idempotent per (post, buyer, seller): a repeat
// returns the existing thread instead of failing the unique constraint.
func (r *PGRepo) CreateConversation(ctx context.Context, c domain.Conversation) (domain.Conversation, error) {
	q := r.qb().Insert(r.tbl("conversations")).
		Columns("post_id", "buyer_id", "seller_id").
		Values(c.PostID, c.BuyerID, c.SellerID).
		Suffix("ON CONFLICT (post_id, buyer_id, seller_id) DO UPDATE SET updated_at = now() " +
			"RETURNING " + convCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateConversation", sqlStr, args)

	return scanConversation(r.pool.QueryRow(ctx, sqlStr, args...))
}

func (r *PGRepo) MessagesByConversation(ctx context.Context, id domain.ConversationID) ([]domain.Message, error) {
	q := r.qb().Select("id, conversation_id, sender_id, content, is_read, created_at").
		From(r.tbl("messages")).
		Where(sq.Eq{"conversation_id": id}).
		OrderBy("created_at ASC")
	sqlStr, args, _ := q.ToSql()
	r.logSQL("MessagesByConversation", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	q := r.qb().Insert(r.tbl("messages")).
		Columns("conversation_id", "sender_id", "content").
		Values(m.ConversationID, m.SenderID, m.Content).
		Suffix("RETURNING id, is_read, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("AddMessage", sqlStr, args)

	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&m.ID, &m.IsRead, &m.CreatedAt); err != nil {
		return domain.Message{}, err
	}

	// bump the thread so the inbox sorts it to the top
	upd := r.qb().Update(r.tbl("conversations")).
		Set("updated_at", m.CreatedAt).
		Where(sq.Eq{"id": m.ConversationID})
	sqlStr, args, _ = upd.ToSql()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PGRepo) MarkConversationRead(ctx context.Context, id domain.ConversationID, reader domain.UserID) error {
	q := r.qb().Update(r.tbl("messages")).
		Set("is_read", true).
		Where(sq.And{
			sq.Eq{"conversation_id": id},
			sq.NotEq{"sender_id": reader},
		})
	sqlStr, args, _ := q.ToSql()
	r.logSQL("MarkConversationRead", sqlStr, args)

	_, err := r.pool.Exec(ctx, sqlStr, args...)
	return err
}
