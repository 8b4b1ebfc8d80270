package memdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
)

const defaultPageSize = 20

func (r *Repo) CreatePost(_ context.Context, p domain.Post) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Privacy == "" {
		p.Privacy = domain.PrivacyPublic
	}
	if p.Status == "" {
		p.Status = domain.PostPending
	}
	r.posts[p.ID] = p
	return p, nil
}

func (r *Repo) PostByID(_ context.Context, id domain.PostID) (domain.PostWithDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return domain.PostWithDetails{}, domain.ErrNotFound
	}
	return r.withDetailsLocked(p), nil
}

func (r *Repo) ListPublic(_ context.Context, f domain.PostFilter) (domain.PostPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if p.Status != domain.PostApproved || p.Privacy != domain.PrivacyPublic || !p.IsActive {
			continue
		}
		if !matchesFilter(p, f) {
			continue
		}
		matched = append(matched, p)
	}

	sortPosts(matched, f)

	total := len(matched)
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]domain.PostWithDetails, 0, end-offset)
	for _, p := range matched[offset:end] {
		out = append(out, r.withDetailsLocked(p))
	}
	return domain.PostPage{
		Posts:   out,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: total > end,
	}, nil
}

func matchesFilter(p domain.Post, f domain.PostFilter) bool {
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), s) &&
			!strings.Contains(strings.ToLower(p.Description), s) {
			return false
		}
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Lat != nil && f.Lon != nil && f.MaxDistanceKm != nil {
		if !domain.WithinDistance(p, *f.Lat, *f.Lon, *f.MaxDistanceKm) {
			return false
		}
	}
	return true
}

func sortPosts(ps []domain.Post, f domain.PostFilter) {
	switch f.Sort {
	case domain.SortPriceLow:
		sort.Slice(ps, func(i, j int) bool { return ps[i].Price < ps[j].Price })
	case domain.SortPriceHigh:
		sort.Slice(ps, func(i, j int) bool { return ps[i].Price > ps[j].Price })
	case domain.SortDistance:
		if f.Lat != nil && f.Lon != nil {
			sort.Slice(ps, func(i, j int) bool {
				return postDistance(ps[i], *f.Lat, *f.Lon) < postDistance(ps[j], *f.Lat, *f.Lon)
			})
			return
		}
		fallthrough // no reference point: newest first, as the original does
	default:
		sort.Slice(ps, func(i, j int) bool { return ps[i].CreatedAt.After(ps[j].CreatedAt) })
	}
}

// postDistance pushes coordinate-less posts to the end.
func postDistance(p domain.Post, lat, lon float64) float64 {
	if p.Latitude == nil || p.Longitude == nil {
		return 1 << 20
	}
	return domain.DistanceKm(lat, lon, *p.Latitude, *p.Longitude)
}

func (r *Repo) ListByUser(_ context.Context, owner domain.UserID) ([]domain.PostWithDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PostWithDetails
	for _, p := range r.posts {
		if p.UserID == owner {
			out = append(out, r.withDetailsLocked(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repo) UpdatePost(_ context.Context, p domain.Post) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.posts[p.ID]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	if old.UserID != p.UserID {
		return domain.Post{}, domain.ErrForbidden
	}
	// Immutable fields carry over from the stored row.
	p.Status = old.Status
	p.IsActive = old.IsActive
	p.ViewCount = old.ViewCount
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.posts[p.ID] = p
	return p, nil
}

func (r *Repo) DeletePost(_ context.Context, id domain.PostID, owner domain.UserID) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	if p.UserID != owner {
		return domain.Post{}, domain.ErrForbidden
	}
	delete(r.posts, id)
	delete(r.media, id)
	return p, nil
}

func (r *Repo) IncrementViewCount(_ context.Context, id domain.PostID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.ViewCount++
	r.posts[id] = p
	return nil
}

// withDetailsLocked joins owner summary, category and media. Missing
// references degrade to anonymous/other, matching the fixture behavior.
func (r *Repo) withDetailsLocked(p domain.Post) domain.PostWithDetails {
	d := domain.PostWithDetails{Post: p}

	if u, ok := r.users[p.UserID]; ok {
		name := u.Name
		if name == "" {
			name = "Anonymous"
		}
		d.User = domain.UserSummary{
			ID: u.ID, Name: name, BusinessName: u.BusinessName,
			IsVerified: u.IsVerified, AvatarURL: u.AvatarURL,
		}
	} else {
		d.User = domain.UserSummary{Name: "Anonymous"}
	}

	d.Category = domain.CategorySummary{Name: "Other", Icon: "📦"}
	for _, c := range r.categories {
		if c.ID == p.CategoryID {
			d.Category = domain.CategorySummary{Name: c.Name, Icon: c.Icon}
			break
		}
	}

	d.Media = r.sortedMediaLocked(p.ID)
	return d
}
