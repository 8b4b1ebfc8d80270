package memdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
)

func (r *Repo) ConversationsByUser(_ context.Context, id domain.UserID) ([]domain.ConversationWithDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.ConversationWithDetails
	for _, c := range r.conversations {
		if c.BuyerID != id && c.SellerID != id {
			continue
		}
		out = append(out, r.conversationDetailsLocked(c, id))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *Repo) conversationDetailsLocked(c domain.Conversation, me domain.UserID) domain.ConversationWithDetails {
	d := domain.ConversationWithDetails{Conversation: c}

	msgs := r.messages[c.ID]
	d.LastMessage = "No messages yet"
	d.LastMessageAt = c.CreatedAt.Format(time.RFC3339)
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		d.LastMessage = last.Content
		d.LastMessageAt = last.CreatedAt.Format(time.RFC3339)
	}
	for _, m := range msgs {
		if !m.IsRead && m.SenderID != me {
			d.UnreadCount++
		}
	}

	if p, ok := r.posts[c.PostID]; ok {
		d.Post = domain.PostSummary{Title: p.Title, Price: p.Price, Media: r.sortedMediaLocked(p.ID)}
	} else {
		d.Post = domain.PostSummary{Title: "Unknown Item"}
	}

	otherID := c.SellerID
	if me == c.SellerID {
		otherID = c.BuyerID
	}
	if u, ok := r.users[otherID]; ok {
		d.OtherUser = domain.UserSummary{
			ID: u.ID, Name: u.Name, IsVerified: u.IsVerified, AvatarURL: u.AvatarURL,
		}
	} else {
		d.OtherUser = domain.UserSummary{Name: "Unknown User"}
	}
	return d
}

func (r *Repo) ConversationByID(_ context.Context, id domain.ConversationID) (domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[id]
	if !ok {
		return domain.Conversation{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *Repo) CreateConversation(_ context.Context, c domain.Conversation) (domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.conversations[c.ID] = c
	return c, nil
}

func (r *Repo) MessagesByConversation(_ context.Context, id domain.ConversationID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms := make([]domain.Message, len(r.messages[id]))
	copy(ms, r.messages[id])
	return ms, nil
}

func (r *Repo) AddMessage(_ context.Context, m domain.Message) (domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[m.ConversationID]
	if !ok {
		return domain.Message{}, domain.ErrNotFound
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	c.UpdatedAt = m.CreatedAt
	r.conversations[c.ID] = c
	return m, nil
}

// MarkConversationRead flags every message not sent by the reader.
func (r *Repo) MarkConversationRead(_ context.Context, id domain.ConversationID, reader domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms := r.messages[id]
	for i := range ms {
		if ms[i].SenderID != reader {
			ms[i].IsRead = true
		}
	}
	return nil
}
