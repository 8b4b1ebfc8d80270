package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base identifiers
type UserID = uuid.UUID
type PostID = uuid.UUID
type CategoryID = string
type PlanID = string
type ConversationID = uuid.UUID

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type PostStatus string

const (
	PostPending  PostStatus = "pending"
	PostApproved PostStatus = "approved"
	PostRejected PostStatus = "rejected"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// User account. Counters are maintained by the post workflow; the quota
// policy only reads them. Invariant: ActivePostsCount <= PostsCount.
type User struct {
	ID                  UserID             `json:"id"`
	Phone               string             `json:"phone,omitempty"`
	Email               string             `json:"email,omitempty"`
	Name                string             `json:"name"`
	BusinessName        string             `json:"business_name,omitempty"`
	AvatarURL           string             `json:"avatar_url,omitempty"`
	PassHash            []byte             `json:"-"` // never exposed
	IsVerified          bool               `json:"is_verified"`
	VerificationStatus  VerificationStatus `json:"verification_status"`
	IsAdmin             bool               `json:"is_admin"`
	PlanID              PlanID             `json:"plan_id"`
	SubscriptionStatus  SubscriptionStatus `json:"subscription_status"`
	SubscriptionEndDate *time.Time         `json:"subscription_end_date,omitempty"`
	PostsCount          int                `json:"posts_count"`
	ActivePostsCount    int                `json:"active_posts_count"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Subscription plan. Seeded reference data, never mutated by the app.
// A nil limit means unbounded; 0 means "none allowed". The two are distinct.
type Plan struct {
	ID                   PlanID   `json:"id"`
	Name                 string   `json:"name"`
	Price                float64  `json:"price"`
	Currency             string   `json:"currency"`
	MaxActivePosts       *int     `json:"max_active_posts"`
	MaxTotalPosts        *int     `json:"max_total_posts"`
	PriorityVerification bool     `json:"priority_verification"`
	Features             []string `json:"features"`
}

// Marketplace listing.
type Post struct {
	ID               PostID     `json:"id"`
	UserID           UserID     `json:"user_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CategoryID       CategoryID `json:"category_id,omitempty"`
	Price            float64    `json:"price"`
	Location         string     `json:"location,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	Privacy          Privacy    `json:"privacy"`
	Status           PostStatus `json:"status"`
	IsActive         bool       `json:"is_active"`
	ShowBusinessName bool       `json:"show_business_name"`
	ViewCount        int        `json:"view_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Category struct {
	ID        CategoryID `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon"`
	Service   bool       `json:"service"` // service category vs product category
	CreatedAt time.Time  `json:"created_at"`
}

type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

type Media struct {
	ID         uuid.UUID `json:"id"`
	PostID     PostID    `json:"post_id"`
	URL        string    `json:"url"`
	Type       MediaType `json:"type"`
	OrderIndex int       `json:"order_index"`
}

type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    UserID         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	IsRead    bool           `json:"is_read"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type Conversation struct {
	ID        ConversationID `json:"id"`
	PostID    PostID         `json:"post_id"`
	BuyerID   UserID         `json:"buyer_id"`
	SellerID  UserID         `json:"seller_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Message struct {
	ID             uuid.UUID      `json:"id"`
	ConversationID ConversationID `json:"conversation_id"`
	SenderID       UserID         `json:"sender_id"`
	Content        string         `json:"content"`
	IsRead         bool           `json:"is_read"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Review struct {
	ID         uuid.UUID `json:"id"`
	ReviewerID UserID    `json:"reviewer_id"`
	RevieweeID UserID    `json:"reviewee_id"`
	Rating     int       `json:"rating"` // 1..5
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Denormalized shapes returned by the read endpoints. The list/detail
// queries join the owner summary, category and media in one go so the
// cached payload is self-contained.

type UserSummary struct {
	ID           UserID `json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name,omitempty"`
	IsVerified   bool   `json:"is_verified"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

type CategorySummary struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type PostWithDetails struct {
	Post
	User     UserSummary     `json:"user"`
	Category CategorySummary `json:"category"`
	Media    []Media         `json:"media"`
}
