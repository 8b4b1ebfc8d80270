package domain

import (
	"context"
)

type PostSort string

const (
	SortNewest    PostSort = "newest"
	SortPriceLow  PostSort = "price-low"
	SortPriceHigh PostSort = "price-high"
	SortDistance  PostSort = "distance"
)

// Listing filters. Page is 1-based; a zero Limit means the default (20).
// Lat/Lon/MaxDistanceKm enable the radius post-filter (Haversine).
type PostFilter struct {
	Search        string
	CategoryID    CategoryID
	Location      string
	Sort          PostSort
	Page          int
	Limit         int
	Lat, Lon      *float64
	MaxDistanceKm *float64
}

// Page of listings plus the total before pagination.
type PostPage struct {
	Posts   []PostWithDetails `json:"posts"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
}

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, u User) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	// Counter adjustments issued by the post workflow. Deltas may be
	// negative; implementations clamp at zero.
	AdjustPostCounters(ctx context.Context, id UserID, totalDelta, activeDelta int) error
}

type PlansRepo interface {
	Plans(ctx context.Context) ([]Plan, error)
	PlanByID(ctx context.Context, id PlanID) (Plan, error)
}

type PostsRepo interface {
	CreatePost(ctx context.Context, p Post) (Post, error)
	PostByID(ctx context.Context, id PostID) (PostWithDetails, error)
	// Public feed: approved + public + active only.
	ListPublic(ctx context.Context, f PostFilter) (PostPage, error)
	// Owner view: every status.
	ListByUser(ctx context.Context, owner UserID) ([]PostWithDetails, error)
	UpdatePost(ctx context.Context, p Post) (Post, error)
	DeletePost(ctx context.Context, id PostID, owner UserID) (Post, error)
	IncrementViewCount(ctx context.Context, id PostID) error
}

type CategoriesRepo interface {
	Categories(ctx context.Context) ([]Category, error)
}

type MediaRepo interface {
	AddMedia(ctx context.Context, m Media) (Media, error)
	MediaByPost(ctx context.Context, id PostID) ([]Media, error)
}

type NotificationsRepo interface {
	NotificationsByUser(ctx context.Context, id UserID, limit int) ([]Notification, error)
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	MarkNotificationsRead(ctx context.Context, id UserID, notifIDs []string) error
}

type ConversationsRepo interface {
	ConversationsByUser(ctx context.Context, id UserID) ([]ConversationWithDetails, error)
	ConversationByID(ctx context.Context, id ConversationID) (Conversation, error)
	CreateConversation(ctx context.Context, c Conversation) (Conversation, error)
	MessagesByConversation(ctx context.Context, id ConversationID) ([]Message, error)
	AddMessage(ctx context.Context, m Message) (Message, error)
	MarkConversationRead(ctx context.Context, id ConversationID, reader UserID) error
}

type ReviewsRepo interface {
	ReviewsByReviewee(ctx context.Context, id UserID) ([]Review, error)
	RatingSummary(ctx context.Context, id UserID) (avg float64, count int, err error)
}

// Conversation as rendered in the inbox: last message, unread counter and
// the other party resolved relative to the requesting user.
type ConversationWithDetails struct {
	Conversation
	LastMessage   string      `json:"last_message"`
	LastMessageAt string      `json:"last_message_at"`
	UnreadCount   int         `json:"unread_count"`
	Post          PostSummary `json:"post"`
	OtherUser     UserSummary `json:"other_user"`
}

type PostSummary struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Media []Media `json:"media"`
}
