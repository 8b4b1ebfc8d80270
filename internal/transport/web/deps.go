package web

import "github.com/pb0420/trademonke/internal/domain"

type Repos struct {
	Users         domain.UsersRepo
	Plans         domain.PlansRepo
	Posts         domain.PostsRepo
	Categories    domain.CategoriesRepo
	Media         domain.MediaRepo
	Notifications domain.NotificationsRepo
	Conversations domain.ConversationsRepo
	Reviews       domain.ReviewsRepo
}

type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}
