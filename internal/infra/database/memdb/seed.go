package memdb

import (
	"time"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
)

// Fixed identifiers so the fallback dataset is stable across restarts and
// addressable from tests.
var (
	SeedJohnID  = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	SeedSarahID = uuid.MustParse("00000000-0000-4000-8000-000000000002")
	SeedMikeID  = uuid.MustParse("00000000-0000-4000-8000-000000000003")
	SeedAdminID = uuid.MustParse("00000000-0000-4000-8000-00000000000a")

	SeedCamryPostID  = uuid.MustParse("00000000-0000-4000-9000-000000000001")
	SeedIPhonePostID = uuid.MustParse("00000000-0000-4000-9000-000000000002")

	seedConversationID = uuid.MustParse("00000000-0000-4000-a000-000000000001")
)

func intp(n int) *int         { return &n }
func floatp(f float64) *float64 { return &f }

func ts(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func (r *Repo) seedPlans() {
	r.plans = map[domain.PlanID]domain.Plan{
		"free": {
			ID: "free", Name: "Free", Price: 0, Currency: "AUD",
			MaxActivePosts: intp(1), MaxTotalPosts: intp(5),
			Features: []string{"1 active listing", "5 total posts lifetime", "Basic support"},
		},
		"premium": {
			ID: "premium", Name: "Premium", Price: 25, Currency: "AUD",
			PriorityVerification: true,
			Features: []string{
				"Unlimited active listings", "Unlimited posts",
				"Priority verification", "Premium support", "Featured listings",
			},
		},
	}
	r.planOrder = []domain.PlanID{"free", "premium"}
}

func (r *Repo) seed() {
	users := []domain.User{
		{
			ID: SeedJohnID, Phone: "+61412345678", Email: "john@example.com",
			Name: "John Smith", IsVerified: false,
			VerificationStatus: domain.VerificationPending,
			PlanID:             "free", SubscriptionStatus: domain.SubscriptionActive,
			PostsCount: 3, ActivePostsCount: 1,
			CreatedAt: ts("2024-01-15T10:00:00Z"),
		},
		{
			ID: SeedSarahID, Phone: "+61423456789", Email: "sarah@example.com",
			Name: "Sarah Johnson", BusinessName: "Sarah's Electronics",
			IsVerified:         true,
			VerificationStatus: domain.VerificationApproved,
			PlanID:             "premium", SubscriptionStatus: domain.SubscriptionActive,
			PostsCount: 8, ActivePostsCount: 3,
			CreatedAt: ts("2024-01-10T14:30:00Z"),
		},
		{
			ID: SeedMikeID, Phone: "+61434567890", Email: "mike@example.com",
			Name: "Mike Wilson", IsVerified: false,
			VerificationStatus: domain.VerificationPending,
			PlanID:             "free", SubscriptionStatus: domain.SubscriptionActive,
			PostsCount: 1, ActivePostsCount: 1,
			CreatedAt: ts("2024-01-20T09:15:00Z"),
		},
		{
			ID: SeedAdminID, Phone: "+61400000000", Email: "admin@trademonke.com",
			Name: "Admin User", IsVerified: true,
			VerificationStatus: domain.VerificationApproved, IsAdmin: true,
			PlanID: "premium", SubscriptionStatus: domain.SubscriptionActive,
			CreatedAt: ts("2024-01-01T00:00:00Z"),
		},
	}
	for _, u := range users {
		u.UpdatedAt = u.CreatedAt
		r.users[u.ID] = u
	}

	cats := []domain.Category{
		{ID: "1", Name: "Cars", Icon: "🚗"},
		{ID: "2", Name: "Living", Icon: "🏠"},
		{ID: "3", Name: "Furniture", Icon: "🪑"},
		{ID: "5", Name: "Electronics", Icon: "📱"},
		{ID: "6", Name: "Fashion", Icon: "👕"},
		{ID: "7", Name: "Sports", Icon: "⚽"},
		{ID: "8", Name: "Books", Icon: "📚"},
		{ID: "9", Name: "Other", Icon: "📦"},
		{ID: "s1", Name: "Web Dev", Icon: "💻", Service: true},
		{ID: "s2", Name: "Cleaning", Icon: "🧹", Service: true},
		{ID: "s3", Name: "Tutoring", Icon: "📚", Service: true},
		{ID: "s4", Name: "Fitness", Icon: "💪", Service: true},
		{ID: "s5", Name: "Beauty", Icon: "💄", Service: true},
		{ID: "s6", Name: "Handyman", Icon: "🔧", Service: true},
		{ID: "s7", Name: "Photography", Icon: "📸", Service: true},
		{ID: "s8", Name: "Music", Icon: "🎵", Service: true},
		{ID: "s9", Name: "Pet Care", Icon: "🐕", Service: true},
		{ID: "s10", Name: "Delivery", Icon: "🚚", Service: true},
	}
	created := ts("2024-01-01T00:00:00Z")
	for i := range cats {
		cats[i].CreatedAt = created
	}
	r.categories = cats

	posts := []domain.Post{
		{
			ID: SeedCamryPostID, UserID: SeedJohnID,
			Title:       "2019 Toyota Camry - Excellent Condition",
			Description: "Well-maintained Toyota Camry with low mileage. Perfect for daily commuting. Full service history available.",
			CategoryID:  "1", Price: 25000, Location: "Sydney, NSW",
			Latitude: floatp(-33.8688197), Longitude: floatp(151.2092955),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: true,
			ViewCount: 45, CreatedAt: ts("2024-01-16T10:00:00Z"),
		},
		{
			ID: SeedIPhonePostID, UserID: SeedSarahID,
			Title:       "iPhone 14 Pro Max - Like New",
			Description: "Barely used iPhone 14 Pro Max in pristine condition. Comes with original box and accessories.",
			CategoryID:  "5", Price: 1200, Location: "Melbourne, VIC",
			Latitude: floatp(-37.8136276), Longitude: floatp(144.9630576),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: true,
			ShowBusinessName: true, ViewCount: 78, CreatedAt: ts("2024-01-18T14:30:00Z"),
		},
		{
			UserID: SeedJohnID,
			Title:       "Modern Dining Table Set",
			Description: "Beautiful oak dining table with 6 chairs. Perfect for family dinners. Minor wear but very sturdy.",
			CategoryID:  "3", Price: 800, Location: "Parramatta, NSW",
			Latitude: floatp(-33.8150), Longitude: floatp(151.0000),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: false,
			ViewCount: 23, CreatedAt: ts("2024-01-19T09:15:00Z"),
		},
		{
			UserID: SeedMikeID,
			Title:       "Professional Web Development Services",
			Description: "Experienced full-stack developer offering custom website development. React, Node.js, and more.",
			CategoryID:  "s1", Price: 100, Location: "Bondi, NSW",
			Latitude: floatp(-33.8915), Longitude: floatp(151.2767),
			Privacy: domain.PrivacyPublic, Status: domain.PostPending, IsActive: true,
			ViewCount: 12, CreatedAt: ts("2024-01-20T16:45:00Z"),
		},
		{
			UserID: SeedSarahID,
			Title:       "Vintage Leather Jacket",
			Description: "Authentic vintage leather jacket from the 80s. Size Medium. Great condition with unique character.",
			CategoryID:  "6", Price: 150, Location: "Surry Hills, NSW",
			Latitude: floatp(-33.8886), Longitude: floatp(151.2094),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: true,
			ViewCount: 34, CreatedAt: ts("2024-01-21T11:20:00Z"),
		},
		{
			UserID: SeedJohnID,
			Title:       "Gaming Setup - RTX 4080 PC",
			Description: "High-end gaming PC with RTX 4080, 32GB RAM, and RGB lighting. Perfect for streaming and gaming.",
			CategoryID:  "5", Price: 3500, Location: "Chatswood, NSW",
			Latitude: floatp(-33.7969), Longitude: floatp(151.1835),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: false,
			ViewCount: 89, CreatedAt: ts("2024-01-22T15:30:00Z"),
		},
		{
			UserID: SeedSarahID,
			Title:       "Yoga Classes - Personal Training",
			Description: "Certified yoga instructor offering private and group sessions. All levels welcome. Flexible scheduling.",
			CategoryID:  "s4", Price: 80, Location: "Manly, NSW",
			Latitude: floatp(-33.7969), Longitude: floatp(151.2841),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: true,
			ShowBusinessName: true, ViewCount: 45, CreatedAt: ts("2024-01-23T08:00:00Z"),
		},
		{
			UserID: SeedMikeID,
			Title:       "Mountain Bike - Trek X-Caliber",
			Description: "Excellent condition Trek mountain bike. Perfect for trails and city riding. Recently serviced.",
			CategoryID:  "7", Price: 650, Location: "Newtown, NSW",
			Latitude: floatp(-33.8978), Longitude: floatp(151.1794),
			Privacy: domain.PrivacyPublic, Status: domain.PostApproved, IsActive: false,
			ViewCount: 67, CreatedAt: ts("2024-01-24T12:15:00Z"),
		},
	}
	for _, p := range posts {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.UpdatedAt = p.CreatedAt
		r.posts[p.ID] = p

		r.media[p.ID] = []domain.Media{{
			ID: uuid.New(), PostID: p.ID, Type: domain.MediaPhoto, OrderIndex: 0,
			URL: "https://images.example.com/posts/" + p.ID.String() + "/0.jpg",
		}}
	}

	notifs := []domain.Notification{
		{
			UserID: SeedJohnID, Type: "post_approved", IsRead: false,
			Title:     "Post Approved ✅",
			Content:   `Your post "2019 Toyota Camry - Excellent Condition" has been approved and is now live!`,
			Metadata:  map[string]any{"post_id": SeedCamryPostID.String()},
			CreatedAt: ts("2024-01-16T10:30:00Z"),
		},
		{
			UserID: SeedJohnID, Type: "new_review", IsRead: false,
			Title:     "New Review Received ⭐",
			Content:   "You received a 5-star review from Sarah Johnson. Great job!",
			CreatedAt: ts("2024-01-17T14:15:00Z"),
		},
		{
			UserID: SeedSarahID, Type: "verification_approved", IsRead: true,
			Title:     "Account Verified 🎉",
			Content:   "Congratulations! Your account has been verified. You now have a verified badge.",
			CreatedAt: ts("2024-01-11T09:00:00Z"),
		},
		{
			UserID: SeedMikeID, Type: "welcome", IsRead: false,
			Title:     "Welcome to TradeMonke! 🎉",
			Content:   "Complete your verification to start posting items and build trust with other users.",
			CreatedAt: ts("2024-01-20T09:16:00Z"),
		},
	}
	for _, n := range notifs {
		n.ID = uuid.New()
		r.notifications[n.UserID] = append(r.notifications[n.UserID], n)
	}

	conv := domain.Conversation{
		ID: seedConversationID, PostID: SeedCamryPostID,
		BuyerID: SeedSarahID, SellerID: SeedJohnID,
		CreatedAt: ts("2024-01-20T10:00:00Z"), UpdatedAt: ts("2024-01-20T10:30:00Z"),
	}
	r.conversations[conv.ID] = conv
	r.messages[conv.ID] = []domain.Message{{
		ID: uuid.New(), ConversationID: conv.ID, SenderID: SeedSarahID,
		Content: "Is this item still available?", IsRead: false,
		CreatedAt: ts("2024-01-20T10:30:00Z"),
	}}

	r.reviews[SeedJohnID] = []domain.Review{{
		ID: uuid.New(), ReviewerID: SeedSarahID, RevieweeID: SeedJohnID,
		Rating: 5, Comment: "Great seller! Item was exactly as described.",
		CreatedAt: ts("2024-01-17T14:15:00Z"),
	}}
}
