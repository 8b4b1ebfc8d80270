// Package memdb is the in-memory fallback data source: the same repository
// ports as the postgres implementation over mutex-guarded maps, pre-seeded
// with a fixed development dataset. The app builder selects it when no
// database is reachable; handlers never know which backend serves them.
package memdb

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
)

type Repo struct {
	mu sync.RWMutex

	logger *log.Logger

	users         map[domain.UserID]domain.User
	plans         map[domain.PlanID]domain.Plan
	planOrder     []domain.PlanID
	posts         map[domain.PostID]domain.Post
	categories    []domain.Category
	media         map[domain.PostID][]domain.Media
	notifications map[domain.UserID][]domain.Notification
	conversations map[domain.ConversationID]domain.Conversation
	messages      map[domain.ConversationID][]domain.Message
	reviews       map[domain.UserID][]domain.Review
}

// Compile-time port checks.
var (
	_ domain.UsersRepo         = (*Repo)(nil)
	_ domain.PlansRepo         = (*Repo)(nil)
	_ domain.PostsRepo         = (*Repo)(nil)
	_ domain.CategoriesRepo    = (*Repo)(nil)
	_ domain.MediaRepo         = (*Repo)(nil)
	_ domain.NotificationsRepo = (*Repo)(nil)
	_ domain.ConversationsRepo = (*Repo)(nil)
	_ domain.ReviewsRepo       = (*Repo)(nil)
)

// New returns an empty repo. Plans are still seeded: they are reference
// data the policy cannot work without.
func New(logger *log.Logger) *Repo {
	r := &Repo{
		logger:        logger,
		users:         make(map[domain.UserID]domain.User),
		plans:         make(map[domain.PlanID]domain.Plan),
		posts:         make(map[domain.PostID]domain.Post),
		media:         make(map[domain.PostID][]domain.Media),
		notifications: make(map[domain.UserID][]domain.Notification),
		conversations: make(map[domain.ConversationID]domain.Conversation),
		messages:      make(map[domain.ConversationID][]domain.Message),
		reviews:       make(map[domain.UserID][]domain.Review),
	}
	r.seedPlans()
	return r
}

// NewSeeded returns a repo pre-loaded with the development dataset.
func NewSeeded(logger *log.Logger) *Repo {
	r := New(logger)
	r.seed()
	return r
}

func (r *Repo) Ping(context.Context) error { return nil }

func (r *Repo) Close() {}

// ---- users ----

func (r *Repo) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if ex.Email != "" && strings.EqualFold(ex.Email, u.Email) {
			return domain.User{}, domain.ErrBadParams
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.PlanID == "" {
		u.PlanID = "free"
	}
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = domain.SubscriptionActive
	}
	if u.VerificationStatus == "" {
		u.VerificationStatus = domain.VerificationPending
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *Repo) UserByID(_ context.Context, id domain.UserID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *Repo) UserByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *Repo) AdjustPostCounters(_ context.Context, id domain.UserID, totalDelta, activeDelta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PostsCount = clampNonNegative(u.PostsCount + totalDelta)
	u.ActivePostsCount = clampNonNegative(u.ActivePostsCount + activeDelta)
	if u.ActivePostsCount > u.PostsCount {
		u.ActivePostsCount = u.PostsCount
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ---- plans ----

func (r *Repo) Plans(_ context.Context) ([]domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Plan, 0, len(r.planOrder))
	for _, id := range r.planOrder {
		out = append(out, r.plans[id])
	}
	return out, nil
}

func (r *Repo) PlanByID(_ context.Context, id domain.PlanID) (domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[id]
	if !ok {
		return domain.Plan{}, domain.ErrNotFound
	}
	return p, nil
}

// ---- categories ----

func (r *Repo) Categories(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

// ---- media ----

func (r *Repo) AddMedia(_ context.Context, m domain.Media) (domain.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.media[m.PostID] = append(r.media[m.PostID], m)
	return m, nil
}

func (r *Repo) MediaByPost(_ context.Context, id domain.PostID) ([]domain.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedMediaLocked(id), nil
}

func (r *Repo) sortedMediaLocked(id domain.PostID) []domain.Media {
	ms := make([]domain.Media, len(r.media[id]))
	copy(ms, r.media[id])
	sort.Slice(ms, func(i, j int) bool { return ms[i].OrderIndex < ms[j].OrderIndex })
	return ms
}

// ---- notifications ----

func (r *Repo) NotificationsByUser(_ context.Context, id domain.UserID, limit int) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns := make([]domain.Notification, len(r.notifications[id]))
	copy(ns, r.notifications[id])
	sort.Slice(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })
	if limit > 0 && len(ns) > limit {
		ns = ns[:limit]
	}
	return ns, nil
}

func (r *Repo) CreateNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.notifications[n.UserID] = append(r.notifications[n.UserID], n)
	return n, nil
}

func (r *Repo) MarkNotificationsRead(_ context.Context, id domain.UserID, notifIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := len(notifIDs) == 0 // empty set means "mark everything"
	wanted := make(map[string]bool, len(notifIDs))
	for _, nid := range notifIDs {
		wanted[nid] = true
	}
	ns := r.notifications[id]
	for i := range ns {
		if all || wanted[ns[i].ID.String()] {
			ns[i].IsRead = true
		}
	}
	return nil
}

// ---- reviews ----

func (r *Repo) ReviewsByReviewee(_ context.Context, id domain.UserID) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs := make([]domain.Review, len(r.reviews[id]))
	copy(rs, r.reviews[id])
	sort.Slice(rs, func(i, j int) bool { return rs[i].CreatedAt.After(rs[j].CreatedAt) })
	return rs, nil
}

func (r *Repo) RatingSummary(_ context.Context, id domain.UserID) (float64, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs := r.reviews[id]
	if len(rs) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, rv := range rs {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(rs)), len(rs), nil
}
